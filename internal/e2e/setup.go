//go:build integration

package e2e

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
	httpserver "github.com/WailSalutem-Health-Care/care-record-service/internal/http"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/testutil"
)

// TestServer is a full router over the PostgreSQL document store.
type TestServer struct {
	Server        *httptest.Server
	DB            *sql.DB
	Store         *docstore.PostgresStore
	MockPublisher *testutil.MockPublisher
	PrivateKey    *rsa.PrivateKey
}

// SetupE2ETest starts a server in the given mode. It needs a reachable
// test database (TEST_DB_*) and is skipped otherwise.
func SetupE2ETest(t *testing.T, mode appmode.Mode) *TestServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := docstore.NewPostgresStore(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	testutil.CleanupTestDB(t, db)

	perms, err := auth.LoadPermissions("../../permissions.yml")
	if err != nil {
		t.Fatalf("Failed to load permissions: %v", err)
	}

	verifier, privateKey := testutil.CreateTestVerifier(t)
	mockPublisher := testutil.NewMockPublisher()

	router := httpserver.SetupRouter(httpserver.Options{
		Mode:           mode,
		Location:       time.UTC,
		Store:          store,
		Publisher:      mockPublisher,
		Verifier:       verifier,
		Permissions:    perms,
		Logger:         zap.NewNop(),
		AllowedOrigins: []string{"*"},
	})

	return &TestServer{
		Server:        httptest.NewServer(router),
		DB:            db,
		Store:         store,
		MockPublisher: mockPublisher,
		PrivateKey:    privateKey,
	}
}

func (ts *TestServer) Cleanup(t *testing.T) {
	t.Helper()
	ts.Server.Close()
	testutil.CleanupTestDB(t, ts.DB)
}

func (ts *TestServer) AdminClient(t *testing.T) *testutil.HTTPTestClient {
	t.Helper()
	return testutil.NewHTTPTestClient(ts.Server.URL, testutil.GenerateAdminToken(t, ts.PrivateKey))
}

func (ts *TestServer) StaffClient(t *testing.T) *testutil.HTTPTestClient {
	t.Helper()
	return testutil.NewHTTPTestClient(ts.Server.URL, testutil.GenerateStaffToken(t, ts.PrivateKey))
}

// AnonymousClient sends no token. Demo mode signs it in as the guest.
func (ts *TestServer) AnonymousClient() *testutil.HTTPTestClient {
	return testutil.NewHTTPTestClient(ts.Server.URL, "")
}
