package alarms

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// NewRouter builds the API router with request logging, panic recovery, and
// CORS for the configured origins. An empty origin list allows any origin,
// which suits a dashboard served from the same host.
func NewRouter(handler *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	corsOptions := cors.Options{
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type"},
	}

	if len(corsOrigins) > 0 {
		corsOptions.AllowedOrigins = corsOrigins
	} else {
		corsOptions.AllowedOrigins = []string{"*"}
	}

	r.Use(cors.New(corsOptions).Handler)

	handler.Register(r)

	return r
}

// requestLogger logs each completed request with its status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		defer func() {
			logger.InfoKV(r.Context(), "Request completed",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.Status(),
				"bytes", wrapped.BytesWritten(),
				"duration", time.Since(started).String())
		}()

		next.ServeHTTP(wrapped, r)
	})
}
