package restapi

import (
	"fmt"
	"net/http"
)

// CacheControlMiddleware marks successful responses as cacheable for maxAge
// seconds. The reference endpoints sit behind it so browsers do not refetch
// route and company lists on every filter change. Errors are never cached,
// even on a cacheable route.
func CacheControlMiddleware(maxAgeSeconds int, next http.Handler) http.Handler {
	cacheable := "no-cache, no-store, must-revalidate"
	if maxAgeSeconds > 0 {
		cacheable = fmt.Sprintf("public, max-age=%d", maxAgeSeconds)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheControlWriter{ResponseWriter: w, onSuccess: cacheable}, r)
	})
}

type cacheControlWriter struct {
	http.ResponseWriter
	onSuccess string
	decided   bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.decided {
		w.decided = true
		value := "no-cache, no-store, must-revalidate"
		if code >= 200 && code < 300 {
			value = w.onSuccess
		}
		w.Header().Set("Cache-Control", value)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.decided {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
