package redisserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/redmod-go/internal/core/command"
	"github.com/yndnr/redmod-go/internal/core/domain"
	"github.com/yndnr/redmod-go/internal/core/pubsub"
	tlog "github.com/yndnr/redmod-go/internal/telemetry/logger"
	"github.com/yndnr/redmod-go/pkg/cmap"
	"github.com/yndnr/redmod-go/pkg/resp"
)

// Config holds the server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// UnixSocket, when set, is a socket path served in addition to Address.
	UnixSocket string
	// UnixSocketPerm is applied to UnixSocket (default: 0700).
	UnixSocketPerm os.FileMode
	// IdleTimeout closes connections idle for longer. Zero disables it.
	IdleTimeout time.Duration
	// WriteTimeout bounds a single flush to the client (default: 30s).
	WriteTimeout time.Duration
	// MaxClients limits concurrent connections. Zero means unlimited.
	MaxClients int
	// RateLimit is the maximum number of commands per second per
	// connection. Zero disables rate limiting.
	RateLimit int
	// RequirePass, when set, must be presented with AUTH before any other
	// command.
	RequirePass string
	// OutboundQueue is the number of frames buffered per connection before
	// it is considered stalled (default: 1024).
	OutboundQueue int
	// Parser bounds decoded frames.
	Parser resp.Parser
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:        "0.0.0.0:6379",
		WriteTimeout:   30 * time.Second,
		MaxClients:     10000,
		OutboundQueue:  1024,
		UnixSocketPerm: 0700,
	}
}

// Metrics receives server events. The zero Option set uses a no-op.
type Metrics interface {
	ObserveCommand(name string, duration time.Duration, failed bool)
	ConnectionOpened()
	ConnectionClosed()
	MessageDelivered()
}

type nopMetrics struct{}

func (nopMetrics) ObserveCommand(string, time.Duration, bool) {}
func (nopMetrics) ConnectionOpened()                          {}
func (nopMetrics) ConnectionClosed()                          {}
func (nopMetrics) MessageDelivered()                          {}

// Option configures the Server.
type Option func(*Server)

// WithMetrics reports server events to m.
func WithMetrics(m Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// Server is the RESP server.
type Server struct {
	cfg     *Config
	engine  *command.Engine
	hub     *pubsub.Hub
	logger  *slog.Logger
	metrics Metrics

	commands map[string]connCommand
	clients  *cmap.Map[uint64, *Conn]
	nextID   atomic.Uint64

	runID     string
	startedAt time.Time

	slots         atomic.Int64
	totalConns    atomic.Int64
	totalCommands atomic.Int64

	mu      sync.Mutex
	ln      net.Listener
	unixLn  net.Listener
	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a server over engine and hub.
func New(cfg *Config, engine *command.Engine, hub *pubsub.Hub, logger *slog.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:       cfg,
		engine:    engine,
		hub:       hub,
		logger:    logger,
		metrics:   nopMetrics{},
		clients:   cmap.New[uint64, *Conn](),
		runID:     ulid.Make().String(),
		startedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.commands = s.connCommands()
	hub.AddListener(pubsub.Listeners{
		Message:     s.onMessage,
		Subscribe:   s.onSubscription("subscribe"),
		Unsubscribe: s.onSubscription("unsubscribe"),
	})

	return s
}

// Start listens on the configured address, and on the Unix socket when
// one is configured, and serves connections in the background until
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}

	var unixLn net.Listener
	if s.cfg.UnixSocket != "" {
		if unixLn, err = listenUnix(s.cfg.UnixSocket, s.cfg.UnixSocketPerm); err != nil {
			ln.Close()
			return err
		}
	}

	s.mu.Lock()
	s.ln = ln
	s.unixLn = unixLn
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("redis server listening", "address", ln.Addr().String(), "run_id", s.runID)
	s.serve(ctx, ln)
	if unixLn != nil {
		s.logger.Info("redis server listening", "unixsocket", s.cfg.UnixSocket)
		s.serve(ctx, unixLn)
	}
	return nil
}

func (s *Server) serve(ctx context.Context, ln net.Listener) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("redis server error", "address", ln.Addr().String(), "error", err)
		}
	}()
}

// listenUnix replaces a stale socket file left by an earlier process.
func listenUnix(path string, perm os.FileMode) (net.Listener, error) {
	if fi, err := os.Lstat(path); err == nil {
		if fi.Mode()&os.ModeSocket == 0 {
			return nil, fmt.Errorf("unixsocket %s exists and is not a socket", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if perm == 0 {
		perm = 0700
	}
	if err := os.Chmod(path, perm); err != nil {
		ln.Close()
		return nil, err
	}
	return ln, nil
}

// Addr returns the listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ConnectedClients returns the number of open connections.
func (s *Server) ConnectedClients() int {
	return s.clients.Count()
}

// Shutdown closes the listener and every connection, then waits for the
// connection goroutines to exit or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	s.mu.Lock()
	for _, ln := range []net.Listener{s.ln, s.unixLn} {
		if ln == nil {
			continue
		}
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) && firstErr == nil {
			firstErr = err
		}
	}
	s.mu.Unlock()

	for _, c := range s.clients.Values() {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		if !s.reserveSlot() {
			s.logger.Warn("connection rejected", "remote", peerAddr(nc), "reason", "maxclients")
			_ = nc.SetWriteDeadline(time.Now().Add(time.Second))
			_, _ = resp.Error(domain.ErrMaxClients.Error()).WriteTo(nc)
			_ = nc.Close()
			continue
		}

		c := newConn(s.nextID.Add(1), nc, s.cfg)
		s.clients.Set(c.id, c)
		s.totalConns.Add(1)
		s.metrics.ConnectionOpened()

		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			c.writeLoop(s.logger)
		}()
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, c)
		}()
	}
}

// reserveSlot claims a client slot under maxclients. Both listeners share
// the count, so the check and the claim are one atomic step.
func (s *Server) reserveSlot() bool {
	n := s.slots.Add(1)
	if s.cfg.MaxClients > 0 && n > int64(s.cfg.MaxClients) {
		s.slots.Add(-1)
		return false
	}
	return true
}

func (s *Server) releaseSlot() {
	s.slots.Add(-1)
}

// serveConn is the reader goroutine of c.
func (s *Server) serveConn(ctx context.Context, c *Conn) {
	logger := s.logger.With("client_id", c.id, "remote", c.RemoteAddr())
	logger.Debug("client connected")

	defer func() {
		s.clients.Pop(c.id)
		s.releaseSlot()
		s.hub.Unsubscribe(pubsub.ClientID(c.id))
		c.closeAfterFlush()
		s.metrics.ConnectionClosed()
		logger.Debug("client disconnected")
	}()

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	for {
		if s.cfg.IdleTimeout > 0 {
			if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
				return
			}
		}

		v, err := c.reader.ReadValue()
		if err != nil {
			s.readFailed(logger, c, err)
			return
		}

		tokens := resp.Simplify(v)
		if len(tokens) == 0 {
			continue
		}
		if logger.Enabled(ctx, slog.LevelDebug) {
			logger.Debug("command", "line", tlog.RedactCommand(tokens))
		}
		s.handle(c, tokens)
		if c.quitting {
			return
		}
	}
}

func (s *Server) readFailed(logger *slog.Logger, c *Conn, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, resp.ErrProtocol), errors.Is(err, resp.ErrLimitExceeded):
		logger.Warn("protocol error", "error", err)
		c.reply(resp.Error(domain.ProtocolError(protocolDetail(err)).Error()))
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Debug("connection idle timeout")
	case errors.Is(err, net.ErrClosed), c.isClosed():
	default:
		logger.Debug("connection read ended", "error", err)
	}
}

// protocolDetail strips the package prefix from a decoder error.
func protocolDetail(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, resp.ErrProtocol.Error()+": ")
	msg = strings.TrimPrefix(msg, resp.ErrLimitExceeded.Error()+": ")
	return msg
}
