package httpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics serves /metrics. Nil disables the route.
	Metrics http.Handler

	// Health reports liveness. Nil means always healthy.
	Health func() error

	// Logger for request logging.
	Logger *slog.Logger

	// MetricsAllowList is the IP/CIDR allowlist for /metrics (empty = no restriction).
	MetricsAllowList []string
}

// NewRouter creates the HTTP router. It fails when the metrics allowlist
// has an entry that is neither an IP nor a CIDR.
func NewRouter(cfg *RouterConfig) (http.Handler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", chain(healthHandler(cfg.Health), accessLog(logger)))

	if cfg.Metrics != nil {
		allow, err := ParseAllowList(cfg.MetricsAllowList)
		if err != nil {
			return nil, fmt.Errorf("metrics allowlist: %w", err)
		}
		mux.Handle("GET /metrics", chain(cfg.Metrics, accessLog(logger), restrict(allow, logger)))
	}

	return mux, nil
}

func healthHandler(check func() error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		body := map[string]string{}
		if check != nil {
			if err := check(); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
				body["error"] = err.Error()
			}
		}
		body["status"] = status
		body["time"] = time.Now().UTC().Format(time.RFC3339)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	})
}
