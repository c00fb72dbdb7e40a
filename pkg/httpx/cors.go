package httpx

import "net/http"

// CORSConfig controls the headers CORS writes.
type CORSConfig struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
	MaxAge       string
}

// DefaultCORS is permissive: the admin panel is served from a different
// origin than the API and authenticates with explicit headers, not cookies.
var DefaultCORS = CORSConfig{
	AllowOrigin:  "*",
	AllowMethods: "GET, POST, DELETE, OPTIONS",
	AllowHeaders: "Content-Type, Authorization, X-Admin-Token",
	MaxAge:       "86400",
}

// CORS adds cross-origin headers to every response and answers preflight
// OPTIONS requests itself with 200 and no body, before any auth runs.
func CORS(cfg CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", cfg.AllowOrigin)
			h.Set("Access-Control-Allow-Methods", cfg.AllowMethods)
			h.Set("Access-Control-Allow-Headers", cfg.AllowHeaders)
			h.Set("Access-Control-Max-Age", cfg.MaxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
