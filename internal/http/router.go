package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/record"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/resident"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/seed"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/telemetry"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/users"
)

const serviceName = "care-record-service"

// Options carries everything SetupRouter wires together.
type Options struct {
	Mode      appmode.Mode
	Location  *time.Location
	Store     docstore.Store
	Publisher messaging.PublisherInterface
	// Verifier is only consulted in production mode.
	Verifier       auth.TokenVerifier
	Permissions    auth.Permissions
	Metrics        *telemetry.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
}

// SetupRouter initializes all routes for the application
func SetupRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	residentRepo := resident.NewRepository(opts.Store, opts.Mode)
	residentService := resident.NewService(residentRepo, opts.Publisher, opts.Mode, logger)
	residentHandler := resident.NewHandler(residentService, resident.WithDeactivationCheck(func(r *http.Request) bool {
		pr, ok := auth.FromContext(r.Context())
		return ok && auth.HasPermission(pr, auth.PermResidentDelete, opts.Permissions)
	}))

	recordRepo := record.NewRepository(opts.Store, opts.Mode)
	var recordOpts []record.ServiceOption
	if opts.Metrics != nil {
		recordOpts = append(recordOpts, record.WithMetrics(opts.Metrics))
	}
	recordService := record.NewService(recordRepo, residentService, opts.Publisher, opts.Mode, opts.Location, logger, recordOpts...)
	recordHandler := record.NewHandler(recordService)

	userRepo := users.NewRepository(opts.Store, opts.Mode)
	userService := users.NewService(userRepo, opts.Mode, logger)
	userHandler := users.NewHandler(userService)

	seeder := seed.NewSeeder(residentRepo, recordRepo, userRepo, opts.Publisher, opts.Mode, opts.Location, logger)
	demoHandler := seed.NewHandler(seeder)

	authenticate := authChain(opts, userService, logger)
	protect := func(permission string, h http.HandlerFunc) http.Handler {
		var permMetrics auth.PermissionMetricsRecorder
		if opts.Metrics != nil {
			permMetrics = opts.Metrics
		}
		return authenticate(auth.RequirePermission(permission, opts.Permissions, logger, permMetrics)(h))
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware(serviceName))
	if opts.Metrics != nil {
		r.Use(MetricsMiddleware(opts.Metrics))
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": serviceName,
			"mode":    opts.Mode.String(),
		})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/mode", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"mode":   opts.Mode.String(),
			"isDemo": opts.Mode.IsDemo(),
		})
	}).Methods(http.MethodGet)

	// Session
	api.HandleFunc("/session/guest", userHandler.SignInGuest).Methods(http.MethodPost)
	api.Handle("/me", authenticate(http.HandlerFunc(userHandler.Me))).Methods(http.MethodGet)
	api.Handle("/users", protect(auth.PermUserManage, userHandler.CreateUser)).Methods(http.MethodPost)

	// Residents
	api.Handle("/residents", protect(auth.PermResidentRead, residentHandler.ListResidents)).Methods(http.MethodGet)
	api.Handle("/residents", protect(auth.PermResidentWrite, residentHandler.CreateResident)).Methods(http.MethodPost)
	api.Handle("/residents/{id}", protect(auth.PermResidentRead, residentHandler.GetResident)).Methods(http.MethodGet)
	api.Handle("/residents/{id}", protect(auth.PermResidentWrite, residentHandler.UpdateResident)).Methods(http.MethodPatch)
	api.Handle("/residents/{id}", protect(auth.PermResidentDelete, residentHandler.DeleteResident)).Methods(http.MethodDelete)

	// Daily records
	api.Handle("/residents/{id}/records", protect(auth.PermRecordRead, recordHandler.History)).Methods(http.MethodGet)
	api.Handle("/residents/{id}/records/{date}", protect(auth.PermRecordRead, recordHandler.GetRecord)).Methods(http.MethodGet)
	api.Handle("/residents/{id}/records/{date}", protect(auth.PermRecordWrite, recordHandler.ReplaceRecord)).Methods(http.MethodPut)
	api.Handle("/residents/{id}/records/{date}/{kind}", protect(auth.PermRecordWrite, recordHandler.AppendEntry)).Methods(http.MethodPost)
	api.Handle("/residents/{id}/records/{date}/{kind}/{entryId}", protect(auth.PermRecordWrite, recordHandler.RemoveEntry)).Methods(http.MethodDelete)
	api.Handle("/records/bulk", protect(auth.PermRecordBulk, recordHandler.BulkAppend)).Methods(http.MethodPost)
	api.Handle("/records/{date}", protect(auth.PermRecordRead, recordHandler.DayOverview)).Methods(http.MethodGet)

	// Demo maintenance
	api.Handle("/demo/status", protect(auth.PermDemoManage, demoHandler.Status)).Methods(http.MethodGet)
	api.Handle("/demo/seed", protect(auth.PermDemoManage, demoHandler.Seed)).Methods(http.MethodPost)
	api.Handle("/demo/reset", protect(auth.PermDemoManage, demoHandler.Reset)).Methods(http.MethodPost)

	return CORSMiddleware(opts.AllowedOrigins)(r)
}

// authChain signs demo requests in as the guest. Production requests need a
// verified bearer token; a token without roles gets the role stored in the
// user directory.
func authChain(opts Options, roles auth.RoleLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	if opts.Mode.IsDemo() {
		return auth.DemoSession()
	}

	var authMetrics auth.MetricsRecorder
	if opts.Metrics != nil {
		authMetrics = opts.Metrics
	}
	verify := auth.Middleware(opts.Verifier, logger, authMetrics)
	resolve := auth.ResolveRoles(roles, logger)
	return func(next http.Handler) http.Handler {
		return verify(resolve(next))
	}
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
