package middleware

import (
	"net/http"
	"runtime/debug"

	"dose-timeline/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recover corta un panic del handler, lo loguea estructurado y responde 500.
// http.ErrAbortHandler se re-lanza (lo usa net/http para abortar la respuesta).
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered", map[string]any{
					"request_id": chimw.GetReqID(r.Context()),
					"path":       r.URL.Path,
					"panic":      rec,
					"stack":      string(debug.Stack()),
				})
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
