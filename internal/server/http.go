package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// HTTPOptions configures the top-level HTTP handler.
type HTTPOptions struct {
	AllowedOrigins []string
	ServeMetrics   bool
}

// NewHTTPHandler mounts the practice service, /healthz and optionally
// /metrics, and serves them over h2c behind the CORS middleware.
func NewHTTPHandler(h *PracticeHandler, opts HTTPOptions) http.Handler {
	path, handler := NewPracticeServiceHandler(h)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.ServeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	return CORSMiddleware(h2c.NewHandler(mux, &http2.Server{}), opts.AllowedOrigins)
}

func CORSMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
