package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/api/response"
)

// MsgUnexpected is returned to callers when a handler panics.
const MsgUnexpected = "An unexpected error occurred. Please try again."

// Recovery turns a handler panic into a generic JSON 500. The panic value
// and stack are logged only. http.ErrAbortHandler is re-raised so net/http
// can abort the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("handler panicked",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			response.Error(w, http.StatusInternalServerError, MsgUnexpected, "")
		}()
		next.ServeHTTP(w, r)
	})
}
