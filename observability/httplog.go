// CLAUDE:SUMMARY HTTP middleware that records requests in http_request_logs.
package observability

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

// RequestLogger returns middleware that writes one http_request_logs row per
// request. Insert failures are logged, never surfaced to the client.
func RequestLogger(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			_, err := db.Exec(`
				INSERT INTO http_request_logs (
					method, path, status_code, duration_ms, ip_address, user_agent
				) VALUES (?,?,?,?,?,?)`,
				r.Method, r.URL.Path, sw.status,
				time.Since(start).Milliseconds(), r.RemoteAddr, r.UserAgent())
			if err != nil {
				slog.Warn("observability: request log failed", "error", err, "path", r.URL.Path)
			}
		})
	}
}

// statusWriter captures the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
