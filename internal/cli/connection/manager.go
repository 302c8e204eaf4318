package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/yndnr/redmod-go/pkg/resp"
)

// Options describe how to reach a server.
type Options struct {
	Host     string
	Port     int
	Password string
	Timeout  time.Duration
}

// Addr returns host:port.
func (o Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Manager owns the CLI's connection. It dials on first use and again
// after a transport failure, authenticating each new connection.
type Manager struct {
	opts    Options
	current *Client
}

// NewManager creates a new connection manager.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Options returns the connection options.
func (m *Manager) Options() Options {
	return m.opts
}

// Connect returns the current client, dialing if there is none.
func (m *Manager) Connect(ctx context.Context) (*Client, error) {
	if m.current != nil {
		return m.current, nil
	}

	c, err := Dial(ctx, m.opts.Addr(), m.opts.Timeout)
	if err != nil {
		return nil, err
	}
	if m.opts.Password != "" {
		v, err := c.Do("AUTH", m.opts.Password)
		if err != nil {
			c.Close()
			return nil, err
		}
		if v.IsError() {
			c.Close()
			return nil, fmt.Errorf("auth: %s", v.Str)
		}
	}
	m.current = c
	return c, nil
}

// Do runs a command, reconnecting once if the connection was lost.
func (m *Manager) Do(ctx context.Context, args ...string) (resp.Value, error) {
	c, err := m.Connect(ctx)
	if err != nil {
		return resp.Value{}, err
	}

	v, err := c.Do(args...)
	if err == nil {
		return v, nil
	}
	m.Disconnect()
	if isConnLost(err) {
		if c, err = m.Connect(ctx); err != nil {
			return resp.Value{}, err
		}
		return c.Do(args...)
	}
	return resp.Value{}, err
}

// isConnLost reports whether err means the server dropped the connection,
// for example after a restart or an idle timeout.
func isConnLost(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	return errors.Is(err, ErrClosed) || errors.Is(err, net.ErrClosed)
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() {
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}

// IsConnected returns true if a connection is open.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}
