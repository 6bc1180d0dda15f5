package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var (
	corsMethods = []string{http.MethodPost, http.MethodOptions}
	corsHeaders = []string{"Content-Type", "Authorization"}
)

// TranscriptCORS answers preflights for the transcript route and stamps the
// permissive Access-Control-Allow-* headers on every response, errors included.
func TranscriptCORS(next http.Handler) http.Handler {
	preflight := cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     corsMethods,
		AllowedHeaders:     corsHeaders,
		OptionsPassthrough: true,
	})
	return preflight(staticCORS(next))
}

// staticCORS sets the fixed header values; go-chi/cors echoes only the
// requested method and headers on preflight, callers expect the full lists.
func staticCORS(next http.Handler) http.Handler {
	methods := strings.Join(corsMethods, ", ")
	headers := strings.Join(corsHeaders, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		next.ServeHTTP(w, r)
	})
}
