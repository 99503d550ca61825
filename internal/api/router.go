package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/flipwatch/internal/api/handlers"
	"github.com/wonny/flipwatch/pkg/database"
	"github.com/wonny/flipwatch/pkg/logger"
)

// HealthChecker reports the archive database health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// Routes holds the handlers mounted by NewRouter. Jobs and Metrics are optional.
type Routes struct {
	Reports *handlers.ReportHandler
	Jobs    *handlers.JobsHandler // nil = 스케줄러 없이 실행 (serve)
	Metrics http.Handler          // nil = /metrics 비활성
	Archive HealthChecker         // nil = 보관 DB 없음
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(routes.Archive)).Methods("GET")

	// Report page
	r.Handle("/", http.RedirectHandler("/report", http.StatusFound)).Methods("GET")
	r.HandleFunc("/report", routes.Reports.GetReportPage).Methods("GET")
	r.HandleFunc("/report/{date}", routes.Reports.GetReportPage).Methods("GET")

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/report", routes.Reports.GetReport).Methods("GET")
	api.HandleFunc("/report/{date}", routes.Reports.GetReport).Methods("GET")
	api.HandleFunc("/runs", routes.Reports.ListRuns).Methods("GET")

	if routes.Jobs != nil {
		api.HandleFunc("/jobs", routes.Jobs.GetJobs).Methods("GET")
		api.HandleFunc("/jobs/{name}", routes.Jobs.GetJobHistory).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", routes.Jobs.RunJob).Methods("POST")
	}

	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
// An unreachable archive reports "degraded" with 503.
func healthCheckHandler(archive HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "flipwatch",
		}
		code := http.StatusOK

		if archive != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			health, err := archive.HealthCheck(ctx)
			body["archive"] = health
			if err != nil {
				body["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(body)
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
