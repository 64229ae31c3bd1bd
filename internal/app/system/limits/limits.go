// internal/app/system/limits/limits.go
package limits

import "net/http"

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON API request bodies.
	// Every payload the API accepts (association create, member upsert,
	// login) is far below this.
	MaxJSONBodySize = 1 << 20 // 1 MB
)

// JSONBody is a middleware that caps request bodies at MaxJSONBodySize.
// Oversized bodies make the handler's json.Decode fail with a 400 rather
// than buffering unbounded input.
func JSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)
		}
		next.ServeHTTP(w, r)
	})
}
