package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records method, route template and status. It must run
// inside the router so the matched route is known.
func MetricsMiddleware(rec RequestRecorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			rec.RecordHTTPRequest(r.Context(), r.Method, route, sw.status,
				float64(time.Since(start).Microseconds())/1000)
		})
	}
}
