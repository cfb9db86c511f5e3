package testutil

import (
	"database/sql"
	"os"
	"strconv"
	"testing"

	_ "github.com/lib/pq"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/config"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/db"
)

// TestDatabaseConfig reads TEST_DB_* variables, defaulting to a local
// care_records_test database.
func TestDatabaseConfig() config.DatabaseConfig {
	port, err := strconv.Atoi(envOr("TEST_DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}
	return config.DatabaseConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     port,
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: envOr("TEST_DB_PASSWORD", "postgres"),
		Name:     envOr("TEST_DB_NAME", "care_records_test"),
		SSLMode:  "disable",
	}
}

// SetupTestDB creates a connection to the test database. The test is skipped
// when the database is not reachable. The connection is closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("postgres", db.DSN(TestDatabaseConfig()))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Skipf("Skipping: test database not reachable: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// CleanupTestDB removes every stored document.
func CleanupTestDB(t *testing.T, conn *sql.DB) {
	t.Helper()

	if _, err := conn.Exec("TRUNCATE TABLE documents"); err != nil {
		t.Logf("Warning: Failed to clean up documents: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
