package record

import "time"

// Kind names one of the four entry lists of a daily record. The value is
// also the document field and the URL segment.
type Kind string

const (
	KindVitals     Kind = "vitals"
	KindExcretions Kind = "excretions"
	KindMeals      Kind = "meals"
	KindHydrations Kind = "hydrations"
)

// Kinds lists every entry kind in document order.
var Kinds = []Kind{KindVitals, KindExcretions, KindMeals, KindHydrations}

func ParseKind(raw string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

type ExcretionType string

const (
	ExcretionUrine ExcretionType = "urine"
	ExcretionFeces ExcretionType = "feces"
	ExcretionBoth  ExcretionType = "both"
)

type Amount string

const (
	AmountSmall  Amount = "small"
	AmountMedium Amount = "medium"
	AmountLarge  Amount = "large"
)

type FecesCondition string

const (
	FecesHard   FecesCondition = "hard"
	FecesNormal FecesCondition = "normal"
	FecesSoft   FecesCondition = "soft"
	FecesWatery FecesCondition = "watery"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

type Vital struct {
	ID                string    `json:"id"`
	Time              string    `json:"time"`
	Temperature       *float64  `json:"temperature,omitempty"`
	BloodPressureHigh *int      `json:"bloodPressureHigh,omitempty"`
	BloodPressureLow  *int      `json:"bloodPressureLow,omitempty"`
	Pulse             *int      `json:"pulse,omitempty"`
	SpO2              *int      `json:"spO2,omitempty"`
	Note              string    `json:"note,omitempty"`
	RecordedBy        string    `json:"recordedBy"`
	RecordedAt        time.Time `json:"recordedAt"`
}

type Excretion struct {
	ID              string         `json:"id"`
	Time            string         `json:"time"`
	Type            ExcretionType  `json:"type"`
	UrineAmount     Amount         `json:"urineAmount,omitempty"`
	FecesAmount     Amount         `json:"fecesAmount,omitempty"`
	FecesCondition  FecesCondition `json:"fecesCondition,omitempty"`
	HasIncontinence bool           `json:"hasIncontinence"`
	Note            string         `json:"note,omitempty"`
	RecordedBy      string         `json:"recordedBy"`
	RecordedAt      time.Time      `json:"recordedAt"`
}

type Meal struct {
	ID             string    `json:"id"`
	MealType       MealType  `json:"mealType"`
	MainDishAmount int       `json:"mainDishAmount"`
	SideDishAmount int       `json:"sideDishAmount"`
	SoupAmount     *int      `json:"soupAmount,omitempty"`
	Note           string    `json:"note,omitempty"`
	RecordedBy     string    `json:"recordedBy"`
	RecordedAt     time.Time `json:"recordedAt"`
}

type Hydration struct {
	ID         string    `json:"id"`
	Time       string    `json:"time"`
	Amount     int       `json:"amount"`
	DrinkType  string    `json:"drinkType,omitempty"`
	Note       string    `json:"note,omitempty"`
	RecordedBy string    `json:"recordedBy"`
	RecordedAt time.Time `json:"recordedAt"`
}

// DailyRecord aggregates everything logged for one resident on one date.
// The date key doubles as the document id.
type DailyRecord struct {
	ID         string      `json:"id"`
	ResidentID string      `json:"residentId"`
	Date       string      `json:"date"`
	Vitals     []Vital     `json:"vitals"`
	Excretions []Excretion `json:"excretions"`
	Meals      []Meal      `json:"meals"`
	Hydrations []Hydration `json:"hydrations"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Patch is a partial daily-record update. A nil list is left untouched; a
// non-nil list replaces the stored list wholesale. Fields carries scalar
// overrides merged at the top level.
type Patch struct {
	Vitals     *[]Vital       `json:"vitals,omitempty"`
	Excretions *[]Excretion   `json:"excretions,omitempty"`
	Meals      *[]Meal        `json:"meals,omitempty"`
	Hydrations *[]Hydration   `json:"hydrations,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// Kinds reports which lists the patch replaces.
func (p Patch) Kinds() []Kind {
	var kinds []Kind
	if p.Vitals != nil {
		kinds = append(kinds, KindVitals)
	}
	if p.Excretions != nil {
		kinds = append(kinds, KindExcretions)
	}
	if p.Meals != nil {
		kinds = append(kinds, KindMeals)
	}
	if p.Hydrations != nil {
		kinds = append(kinds, KindHydrations)
	}
	return kinds
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Kinds()) == 0 && len(p.Fields) == 0
}

// DayEntry pairs an active resident with its record for the day, nil when
// nothing has been logged yet.
type DayEntry struct {
	ResidentID   string       `json:"residentId"`
	ResidentName string       `json:"residentName"`
	RoomNumber   string       `json:"roomNumber"`
	Record       *DailyRecord `json:"record"`
}
