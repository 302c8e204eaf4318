package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/yndnr/redmod-go/internal/server/redisserver"
	"github.com/yndnr/redmod-go/pkg/resp"
)

// ToRedisConfig converts ServerConfig to redisserver.Config.
func ToRedisConfig(cfg *ServerConfig) (*redisserver.Config, error) {
	if cfg == nil {
		return nil, errors.New("server config is nil")
	}

	rc := redisserver.DefaultConfig()
	rc.Address = net.JoinHostPort(cfg.Server.Bind, strconv.Itoa(cfg.Server.Port))
	rc.IdleTimeout = time.Duration(cfg.Server.Timeout) * time.Second
	rc.MaxClients = cfg.Server.MaxClients
	rc.RateLimit = cfg.Server.RateLimit
	rc.RequirePass = cfg.Security.RequirePass
	rc.UnixSocket = cfg.Server.UnixSocket
	if cfg.Server.UnixSocketPerm > 0 {
		perm, err := socketPerm(cfg.Server.UnixSocketPerm)
		if err != nil {
			return nil, fmt.Errorf("server.unixsocketperm: %w", err)
		}
		rc.UnixSocketPerm = perm
	}
	if cfg.Server.OutputBuffer > 0 {
		rc.OutboundQueue = cfg.Server.OutputBuffer
	}
	rc.Parser = resp.Parser{
		MaxDepth:     cfg.Proto.MaxDepth,
		MaxBulkLen:   cfg.Proto.MaxBulkLen,
		MaxArrayLen:  cfg.Proto.MaxArrayLen,
		MaxInlineLen: cfg.Proto.MaxInlineLen,
	}
	return rc, nil
}
