package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/yndnr/redmod-go/pkg/resp"
)

// DefaultTimeout bounds dialing and each request/reply exchange.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned when the client has been closed.
var ErrClosed = errors.New("connection: client closed")

// Client is a RESP connection. It is safe for concurrent use, but
// requests are serialized.
type Client struct {
	addr    string
	timeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader *resp.Reader
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		reader:  resp.NewReader(conn, resp.Parser{}),
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and waits for its reply. A resp error reply is
// returned as a Value, not as an error.
func (c *Client) Do(args ...string) (resp.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return resp.Value{}, ErrClosed
	}
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return resp.Value{}, err
	}
	if _, err := c.conn.Write(resp.Command(args...)); err != nil {
		return resp.Value{}, fmt.Errorf("write: %w", err)
	}
	v, err := c.reader.ReadValue()
	if err != nil {
		return resp.Value{}, fmt.Errorf("read: %w", err)
	}
	return v, nil
}

// Send writes a command without waiting for a reply. It is used to enter
// subscribe mode, after which replies arrive through Receive.
func (c *Client) Send(args ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	_, err := c.conn.Write(resp.Command(args...))
	return err
}

// Receive blocks until the server pushes the next value or ctx ends.
// Close the client once ctx has interrupted a read.
func (c *Client) Receive(ctx context.Context) (resp.Value, error) {
	c.mu.Lock()
	conn, reader := c.conn, c.reader
	c.mu.Unlock()
	if conn == nil {
		return resp.Value{}, ErrClosed
	}

	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return resp.Value{}, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	v, err := reader.ReadValue()
	if err != nil {
		if ctx.Err() != nil {
			return resp.Value{}, ctx.Err()
		}
		return resp.Value{}, err
	}
	return v, nil
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
