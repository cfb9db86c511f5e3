// Package appmode resolves the application mode and the storage namespace
// derived from it. Demo and production data may share one store instance;
// the collection prefix is the only thing keeping them apart.
package appmode

// Mode is the runtime mode of the service.
type Mode string

const (
	Demo       Mode = "demo"
	Production Mode = "production"
)

// Logical collection names, before prefixing.
const (
	Residents          = "residents"
	Records            = "records"
	Users              = "users"
	DailySubcollection = "daily"
)

const demoPrefix = "demo_"

// Parse maps a raw configuration value to a Mode. Only the exact string
// "production" selects production; anything else, including "", is demo.
func Parse(raw string) Mode {
	if raw == string(Production) {
		return Production
	}
	return Demo
}

func (m Mode) IsDemo() bool {
	return m != Production
}

func (m Mode) IsProduction() bool {
	return m == Production
}

// Collection returns the storage name for a logical collection.
func (m Mode) Collection(base string) string {
	if m.IsDemo() {
		return demoPrefix + base
	}
	return base
}

func (m Mode) String() string {
	if m.IsDemo() {
		return string(Demo)
	}
	return string(Production)
}
