// Package bootstrap turns configuration into the long-lived clients both
// binaries share: the document store, the token verifier and the event
// publisher.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/config"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/db"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
)

const jwksRefreshInterval = 15 * time.Minute

// FirebaseApp initializes the Admin SDK. Without a credentials file the
// SDK falls back to application default credentials, which is also how the
// Firestore emulator is reached.
func FirebaseApp(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}

// OpenStore connects the configured backend. The caller closes it.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (docstore.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory document store, data is lost on restart")
		return docstore.NewMemoryStore(), nil

	case config.BackendFirestore:
		app, err := FirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		store, err := docstore.NewFirestoreFromApp(ctx, app)
		if err != nil {
			return nil, err
		}
		logger.Info("✓ Connected to Firestore", zap.String("project_id", cfg.Firebase.ProjectID))
		return store, nil

	case config.BackendPostgres:
		conn, err := db.Connect(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		store := docstore.NewPostgresStore(conn)
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		logger.Info("✓ Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		return docstore.NewRedisStore(client), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// Verifier builds the production token verifier. Demo mode needs none and
// gets nil.
func Verifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (auth.TokenVerifier, error) {
	if cfg.Mode.IsDemo() {
		return nil, nil
	}

	switch cfg.Auth.Provider {
	case config.AuthProviderFirebase:
		app, err := FirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		ver, err := auth.NewFirebaseVerifier(ctx, app)
		if err != nil {
			return nil, err
		}
		logger.Info("✓ Firebase ID token verification enabled")
		return ver, nil

	case config.AuthProviderJWKS:
		keys, err := auth.NewJWKS(cfg.Auth.JWKSURL, jwksRefreshInterval, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS: %w", err)
		}
		logger.Info("✓ JWKS token verification enabled", zap.String("issuer", cfg.Auth.Issuer))
		return auth.NewVerifier(auth.Config{
			Issuer:   cfg.Auth.Issuer,
			JWKSURL:  cfg.Auth.JWKSURL,
			Audience: cfg.Auth.Audience,
		}, keys), nil
	}
	return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
}

// Publisher connects to RabbitMQ when enabled. A broker that cannot be
// reached downgrades to the no-op publisher so the service still starts.
func Publisher(cfg config.RabbitMQConfig, logger *zap.Logger) messaging.PublisherInterface {
	if !cfg.Enabled {
		logger.Info("event publishing disabled")
		return messaging.NopPublisher{}
	}
	pub, err := messaging.NewPublisher(cfg.URL, logger)
	if err != nil {
		logger.Warn("continuing without event publishing", zap.Error(err))
		return messaging.NopPublisher{}
	}
	return pub
}
