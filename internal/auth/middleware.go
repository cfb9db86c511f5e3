package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey string

const principalKey ctxKey = "auth_principal"

var tracer = otel.Tracer("github.com/WailSalutem-Health-Care/care-record-service/auth")

// The fixed demo-mode identity.
const (
	GuestUserID = "demo-guest-user"
	GuestEmail  = "guest@demo.example.com"
	GuestName   = "Guest User"
)

// GuestPrincipal returns a fresh copy of the demo guest identity.
func GuestPrincipal() *Principal {
	return &Principal{
		UserID: GuestUserID,
		Email:  GuestEmail,
		Name:   GuestName,
		Roles:  []string{RoleStaff},
	}
}

// MetricsRecorder interface for recording auth metrics
type MetricsRecorder interface {
	RecordAuthFailure(ctx context.Context, reason string)
}

// ContextWithPrincipal returns ctx carrying principal.
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// FromContext extracts Principal from context.
func FromContext(ctx context.Context) (*Principal, bool) {
	pr, ok := ctx.Value(principalKey).(*Principal)
	return pr, ok && pr != nil
}

// Middleware validates the bearer token and injects the Principal into the
// request context. metrics may be nil.
func Middleware(ver TokenVerifier, logger *zap.Logger, metrics MetricsRecorder) func(http.Handler) http.Handler {
	fail := func(ctx context.Context, span trace.Span, w http.ResponseWriter, reason, msg string) {
		span.SetStatus(codes.Error, msg)
		span.SetAttributes(attribute.String("error.type", reason))
		if metrics != nil {
			metrics.RecordAuthFailure(ctx, reason)
		}
		http.Error(w, msg, http.StatusUnauthorized)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "auth.Middleware",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			authz := r.Header.Get("Authorization")
			if authz == "" {
				fail(ctx, span, w, "missing_authorization", "missing authorization")
				return
			}

			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				fail(ctx, span, w, "invalid_header_format", "invalid authorization header")
				return
			}

			pr, err := ver.VerifyToken(ctx, parts[1])
			if err != nil {
				logger.Warn("token validation failed", zap.Error(err))
				span.SetAttributes(attribute.String("error.message", err.Error()))
				fail(ctx, span, w, "invalid_token", "invalid token")
				return
			}

			span.SetAttributes(
				attribute.String("user.id", pr.UserID),
				attribute.String("user.email", pr.Email),
				attribute.StringSlice("user.roles", pr.Roles),
			)
			span.SetStatus(codes.Ok, "authentication successful")

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, pr)))
		})
	}
}

// DemoSession signs every request in as the guest. It is only mounted in
// demo mode, where the service has no login.
func DemoSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithPrincipal(r.Context(), GuestPrincipal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleLookup returns the role stored for a user, "" when unknown.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}

// ResolveRoles fills in the role from the user directory when the token
// carried none. Lookup errors leave the principal without roles.
func ResolveRoles(lookup RoleLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pr, ok := FromContext(r.Context())
			if !ok || len(pr.Roles) > 0 {
				next.ServeHTTP(w, r)
				return
			}

			role, err := lookup.RoleOf(r.Context(), pr.UserID)
			if err != nil {
				logger.Warn("role lookup failed", zap.String("user_id", pr.UserID), zap.Error(err))
			}
			if role != "" {
				resolved := *pr
				resolved.Roles = []string{strings.ToLower(role)}
				r = r.WithContext(ContextWithPrincipal(r.Context(), &resolved))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PermissionMetricsRecorder interface for recording permission check metrics
type PermissionMetricsRecorder interface {
	RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool)
}

// RequirePermission returns middleware that ensures the principal has
// permission. metrics may be nil.
func RequirePermission(per string, perms Permissions, logger *zap.Logger, metrics PermissionMetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := tracer.Start(r.Context(), "auth.RequirePermission",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("permission.required", per)),
			)
			defer span.End()

			record := func(allowed bool) {
				if metrics != nil {
					metrics.RecordPermissionCheck(ctx, per, float64(time.Since(start).Microseconds())/1000, allowed)
				}
			}

			pr, ok := FromContext(ctx)
			if !ok {
				span.SetStatus(codes.Error, "unauthenticated")
				record(false)
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			allowed := HasPermission(pr, per, perms)
			span.SetAttributes(
				attribute.Bool("permission.allowed", allowed),
				attribute.String("user.id", pr.UserID),
				attribute.StringSlice("user.roles", pr.Roles),
			)
			record(allowed)

			if !allowed {
				logger.Info("permission denied",
					zap.String("user_id", pr.UserID),
					zap.Strings("roles", pr.Roles),
					zap.String("permission", per),
				)
				span.SetStatus(codes.Error, "forbidden")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			span.SetStatus(codes.Ok, "permission granted")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HasPermission checks roles -> permissions mapping. Role names are matched
// case-insensitively.
func HasPermission(pr *Principal, permission string, perms Permissions) bool {
	for _, role := range pr.Roles {
		pList, ok := perms[role]
		if !ok {
			pList, ok = perms[strings.ToLower(role)]
		}
		if !ok {
			continue
		}
		for _, p := range pList {
			if p == permission {
				return true
			}
		}
	}
	return false
}
