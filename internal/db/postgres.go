package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/config"
)

// DSN builds a lib/pq connection string. Sessions always run in UTC; the
// service converts to the facility timezone itself.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// Connect creates a connection to PostgreSQL with OpenTelemetry instrumentation
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
		return nil, fmt.Errorf("missing required database configuration")
	}

	attrs := otelsql.WithAttributes(
		semconv.DBSystemPostgreSQL,
		semconv.DBName(cfg.Name),
	)

	db, err := otelsql.Open("postgres", DSN(cfg), attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db, attrs); err != nil {
		logger.Warn("failed to register database stats metrics", zap.Error(err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("✓ Connected to PostgreSQL database (OpenTelemetry enabled)",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)
	return db, nil
}
