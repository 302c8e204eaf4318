package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/yndnr/redmod-go/internal/server/httpserver"
	"github.com/yndnr/redmod-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyProto(&cfg.Proto); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Bind == "" {
		return errors.New("server.bind is required")
	}
	if net.ParseIP(cfg.Bind) == nil && cfg.Bind != "localhost" {
		return fmt.Errorf("server.bind %q is not an IP address", cfg.Bind)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Port)
	}
	if cfg.Timeout < 0 {
		return errors.New("server.timeout must not be negative")
	}
	if cfg.MaxClients < 0 {
		return errors.New("server.maxclients must not be negative")
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.ratelimit must not be negative")
	}
	if cfg.OutputBuffer < 0 {
		return errors.New("server.outputbuffer must not be negative")
	}
	if _, err := socketPerm(cfg.UnixSocketPerm); err != nil {
		return fmt.Errorf("server.unixsocketperm: %w", err)
	}
	return nil
}

// socketPerm reads Redis-style octal digits (700) as a file mode.
func socketPerm(digits int) (os.FileMode, error) {
	if digits < 0 {
		return 0, errors.New("must not be negative")
	}
	mode, err := strconv.ParseUint(strconv.Itoa(digits), 8, 32)
	if err != nil || mode > 0777 {
		return 0, fmt.Errorf("%d is not an octal permission", digits)
	}
	return os.FileMode(mode), nil
}

// Upper bounds for the proto section keep every declared length, plus its
// terminator, inside the int range the decoder indexes with.
const (
	maxBulkLenLimit   = math.MaxInt32
	maxArrayLenLimit  = 1 << 24
	maxInlineLenLimit = 1 << 24
	maxDepthLimit     = 1024
)

func verifyProto(cfg *ProtoSection) error {
	limits := []struct {
		key   string
		value int
		max   int
	}{
		{"proto.maxbulklen", cfg.MaxBulkLen, maxBulkLenLimit},
		{"proto.maxarraylen", cfg.MaxArrayLen, maxArrayLenLimit},
		{"proto.maxinlinelen", cfg.MaxInlineLen, maxInlineLenLimit},
		{"proto.maxdepth", cfg.MaxDepth, maxDepthLimit},
	}
	for _, l := range limits {
		if l.value < 0 {
			return fmt.Errorf("%s must not be negative", l.key)
		}
		if l.value > l.max {
			return fmt.Errorf("%s %d exceeds %d", l.key, l.value, l.max)
		}
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr %q: %w", cfg.Addr, err)
	}
	if _, err := httpserver.ParseAllowList(cfg.AllowList); err != nil {
		return fmt.Errorf("metrics.allowlist: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "text", "console", "json":
		return nil
	default:
		return fmt.Errorf("log.format %q must be text or json", cfg.Format)
	}
}
