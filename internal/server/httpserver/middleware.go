package httpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries the id of a request. A caller-supplied id is kept
// so a scraper can correlate its own logs.
const RequestIDHeader = "X-Request-ID"

type middleware func(http.Handler) http.Handler

// chain applies mws so that the first one runs first.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// accessLog tags each request with an id, turns a handler panic into a 500
// and logs the outcome. Successful requests log at debug level since
// scrapes are frequent.
func accessLog(logger *slog.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = ulid.Make().String()
			}
			w.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			defer func() {
				if p := recover(); p != nil {
					logger.Error("http handler panicked", "request_id", id, "path", r.URL.Path, "panic", p)
					if !rec.wrote {
						writeError(rec, http.StatusInternalServerError, "internal server error")
					}
				}

				attrs := []any{
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.status,
					"duration_ms", time.Since(start).Milliseconds(),
					"remote", r.RemoteAddr,
				}
				switch {
				case rec.status >= 500:
					logger.Error("http request failed", attrs...)
				case rec.status >= 400:
					logger.Warn("http request rejected", attrs...)
				default:
					logger.Debug("http request served", attrs...)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// AllowList matches clients against IP addresses and CIDR prefixes.
type AllowList struct {
	prefixes []netip.Prefix
}

// ParseAllowList parses metrics.allowlist entries. A bare address is a
// single-host prefix.
func ParseAllowList(entries []string) (*AllowList, error) {
	al := &AllowList{prefixes: make([]netip.Prefix, 0, len(entries))}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %q", entry)
			}
			al.prefixes = append(al.prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid IP %q", entry)
		}
		addr = addr.Unmap().WithZone("")
		al.prefixes = append(al.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return al, nil
}

// Allows reports whether remote, "host:port" or a bare address, is listed.
// An empty list allows everyone.
func (al *AllowList) Allows(remote string) bool {
	if al == nil || len(al.prefixes) == 0 {
		return true
	}

	host := remote
	if h, _, err := net.SplitHostPort(remote); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap().WithZone("")
	for _, p := range al.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// restrict rejects clients outside al. Only the socket peer counts;
// forwarding headers are ignored so they cannot widen the list.
func restrict(al *AllowList, logger *slog.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !al.Allows(r.RemoteAddr) {
				logger.Warn("metrics scrape denied", "remote", r.RemoteAddr)
				writeError(w, http.StatusForbidden, "client not in metrics allowlist")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
