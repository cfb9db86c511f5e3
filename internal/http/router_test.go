package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/record"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/resident"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/testutil"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/users"
)

type recordedRequest struct {
	method, route string
	status        int
}

type requestLog struct {
	requests []recordedRequest
}

func (l *requestLog) RecordHTTPRequest(ctx context.Context, method, route string, status int, durationMs float64) {
	l.requests = append(l.requests, recordedRequest{method, route, status})
}

func loadPermissions(t *testing.T) auth.Permissions {
	t.Helper()
	perms, err := auth.LoadPermissions("../../permissions.yml")
	require.NoError(t, err)
	return perms
}

func newServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Store == nil {
		opts.Store = docstore.NewMemoryStore()
	}
	if opts.Permissions == nil {
		opts.Permissions = loadPermissions(t)
	}
	opts.Logger = zap.NewNop()
	opts.Location = time.UTC
	opts.AllowedOrigins = []string{"http://localhost:3000"}
	srv := httptest.NewServer(SetupRouter(opts))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Health(t *testing.T) {
	srv := newServer(t, Options{Mode: appmode.Demo})
	client := testutil.NewHTTPTestClient(srv.URL, "")

	var body map[string]string
	resp := client.GET(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, "care-record-service", body["service"])
	assert.Equal(t, "demo", body["mode"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newServer(t, Options{Mode: appmode.Demo})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/residents", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.com")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_DemoFlow(t *testing.T) {
	publisher := testutil.NewMockPublisher()
	srv := newServer(t, Options{Mode: appmode.Demo, Publisher: publisher})
	client := testutil.NewHTTPTestClient(srv.URL, "")

	var mode map[string]interface{}
	resp := client.GET(t, "/api/mode")
	testutil.DecodeJSON(t, resp, &mode)
	assert.Equal(t, true, mode["isDemo"])

	resp = client.POST(t, "/api/session/guest", nil)
	var session users.UserResponse
	testutil.DecodeJSON(t, resp, &session)
	assert.Equal(t, auth.GuestUserID, session.User.ID)

	resp = client.POST(t, "/api/demo/seed", nil)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	resp.Body.Close()

	var list resident.PaginatedResidentListResponse
	resp = client.GET(t, "/api/residents?limit=5")
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list.Residents, 5)
	assert.Equal(t, 30, list.Pagination.TotalRecords)
	target := list.Residents[0].ID

	today := time.Now().UTC().Format(record.DateLayout)
	resp = client.POST(t, "/api/residents/"+target+"/records/"+today+"/hydrations",
		map[string]interface{}{"time": "21:00", "amount": 120, "drinkType": "water"})
	var appended record.RecordResponse
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &appended)
	require.Len(t, appended.Record.Hydrations, 6, "seeded five plus the new one")
	assert.Equal(t, auth.GuestUserID, appended.Record.Hydrations[5].RecordedBy)
	publisher.AssertEventPublished(t, messaging.EventDailyRecordSaved)

	resp = client.POST(t, "/api/records/bulk", map[string]interface{}{
		"date":        today,
		"kind":        "meals",
		"residentIds": []string{list.Residents[1].ID, list.Residents[2].ID},
		"meal":        map[string]interface{}{"mealType": "snack", "mainDishAmount": 50, "sideDishAmount": 0},
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	var overview record.OverviewResponse
	resp = client.GET(t, "/api/records/"+today)
	testutil.DecodeJSON(t, resp, &overview)
	assert.Len(t, overview.Residents, 30)

	resp = client.POST(t, "/api/demo/seed", nil)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	resp.Body.Close()

	resp = client.POST(t, "/api/demo/reset", nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()
	publisher.AssertEventPublished(t, messaging.EventDemoReset)
}

func TestRouter_DemoGuestCanDeactivateResident(t *testing.T) {
	srv := newServer(t, Options{Mode: appmode.Demo})
	client := testutil.NewHTTPTestClient(srv.URL, "")

	resp := client.POST(t, "/api/residents", newResidentRequest("101"))
	var created resident.ResidentSuccessResponse
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &created)

	resp = client.DELETE(t, "/api/residents/"+created.Resident.ID)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	var got resident.ResidentSuccessResponse
	resp = client.GET(t, "/api/residents/"+created.Resident.ID)
	testutil.DecodeJSON(t, resp, &got)
	assert.False(t, got.Resident.IsActive, "delete is a soft delete")
}

func TestRouter_DeactivationRequiresDeletePermission(t *testing.T) {
	verifier, key := testutil.CreateTestVerifier(t)
	perms := auth.Permissions{
		auth.RoleAdmin: {auth.PermResidentRead, auth.PermResidentWrite, auth.PermResidentDelete},
		auth.RoleStaff: {auth.PermResidentRead, auth.PermResidentWrite},
	}
	srv := newServer(t, Options{Mode: appmode.Production, Verifier: verifier, Permissions: perms})

	admin := testutil.NewHTTPTestClient(srv.URL, testutil.GenerateAdminToken(t, key))
	staff := testutil.NewHTTPTestClient(srv.URL, testutil.GenerateStaffToken(t, key))

	resp := admin.POST(t, "/api/residents", newResidentRequest("102"))
	var created resident.ResidentSuccessResponse
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &created)
	path := "/api/residents/" + created.Resident.ID

	resp = staff.DELETE(t, path)
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = staff.PATCH(t, path, map[string]interface{}{"isActive": false})
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = staff.PATCH(t, path, map[string]interface{}{"careLevel": 4})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	var got resident.ResidentSuccessResponse
	resp = staff.GET(t, path)
	testutil.DecodeJSON(t, resp, &got)
	assert.True(t, got.Resident.IsActive)

	resp = admin.PATCH(t, path, map[string]interface{}{"isActive": false})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()
}

func newResidentRequest(room string) resident.CreateResidentRequest {
	return resident.CreateResidentRequest{
		Name: "Yamada Taro", NameKana: "ヤマダ タロウ", BirthDate: "1940-03-15",
		Gender: resident.GenderMale, RoomNumber: room, CareLevel: 3,
	}
}

func TestRouter_ProductionAuth(t *testing.T) {
	verifier, key := testutil.CreateTestVerifier(t)
	store := docstore.NewMemoryStore()
	srv := newServer(t, Options{Mode: appmode.Production, Store: store, Verifier: verifier})

	anonymous := testutil.NewHTTPTestClient(srv.URL, "")
	resp := anonymous.GET(t, "/api/residents")
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	resp = anonymous.POST(t, "/api/session/guest", nil)
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()

	admin := testutil.NewHTTPTestClient(srv.URL, testutil.GenerateAdminToken(t, key))
	resp = admin.POST(t, "/api/residents", newResidentRequest("101"))
	var created resident.ResidentSuccessResponse
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	testutil.DecodeJSON(t, resp, &created)

	snaps, err := store.Query(context.Background(), appmode.Residents, docstore.Query{})
	require.NoError(t, err)
	assert.Len(t, snaps, 1, "production writes the unprefixed collection")

	resp = admin.DELETE(t, "/api/residents/"+created.Resident.ID)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = admin.POST(t, "/api/demo/seed", nil)
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestRouter_ProductionRoleFromDirectory(t *testing.T) {
	verifier, key := testutil.CreateTestVerifier(t)
	store := docstore.NewMemoryStore()
	srv := newServer(t, Options{Mode: appmode.Production, Store: store, Verifier: verifier})

	repo := users.NewRepository(store, appmode.Production)
	require.NoError(t, repo.Create(context.Background(), users.User{
		ID: "uid-7", Email: "nurse@example.com", Name: "Nurse", Role: auth.RoleStaff, IsActive: true,
	}))

	roleless := testutil.NewHTTPTestClient(srv.URL, testutil.GenerateTestJWT(t, key, "uid-7", "nurse@example.com", nil))
	resp := roleless.GET(t, "/api/residents")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	var me users.UserResponse
	resp = roleless.GET(t, "/api/me")
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, "Nurse", me.User.Name)

	unknown := testutil.NewHTTPTestClient(srv.URL, testutil.GenerateTestJWT(t, key, "uid-8", "", nil))
	resp = unknown.GET(t, "/api/residents")
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestMetricsMiddleware_RecordsRouteTemplate(t *testing.T) {
	log := &requestLog{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(log))
	r.HandleFunc("/api/residents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/residents/abc", nil))

	require.Len(t, log.requests, 1)
	assert.Equal(t, recordedRequest{"GET", "/api/residents/{id}", http.StatusTeapot}, log.requests[0])
}
