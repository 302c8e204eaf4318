package redisserver

import (
	"bufio"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/redmod-go/pkg/resp"
)

// Conn is one client connection.
type Conn struct {
	id      uint64
	netConn net.Conn
	addr    string
	reader  *resp.Reader
	limiter *rate.Limiter

	out          chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	closed       atomic.Bool
	writeTimeout time.Duration

	// Reader goroutine only.
	authed   bool
	quitting bool

	mu        sync.Mutex
	name      string
	lastCmd   string
	createdAt time.Time
	lastSeen  time.Time
}

func newConn(id uint64, nc net.Conn, cfg *Config) *Conn {
	queue := cfg.OutboundQueue
	if queue <= 0 {
		queue = 1024
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	now := time.Now()
	c := &Conn{
		id:           id,
		netConn:      nc,
		addr:         peerAddr(nc),
		reader:       resp.NewReader(nc, cfg.Parser),
		out:          make(chan []byte, queue),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		authed:       cfg.RequirePass == "",
		createdAt:    now,
		lastSeen:     now,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}
	return c
}

// ID returns the client id.
func (c *Conn) ID() uint64 {
	return c.id
}

// RemoteAddr returns the peer address as text. Unix socket peers are
// unnamed and reported as "<socket path>:0".
func (c *Conn) RemoteAddr() string {
	return c.addr
}

func peerAddr(nc net.Conn) string {
	remote := nc.RemoteAddr()
	if ua, ok := remote.(*net.UnixAddr); ok && (ua == nil || ua.Name == "" || ua.Name == "@") {
		remote = nil
	}
	if remote != nil && remote.String() != "" {
		return remote.String()
	}
	if a := nc.LocalAddr(); a != nil {
		return a.String() + ":0"
	}
	return ""
}

// Close closes the connection immediately, dropping queued frames.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		_ = c.netConn.Close()
	})
}

func (c *Conn) isClosed() bool {
	return c.closed.Load()
}

// reply queues v for the client.
func (c *Conn) reply(v resp.Value) bool {
	return c.push(v.AppendTo(nil))
}

// push queues an encoded frame; a nil frame tells the writer to close. A
// full queue means the client is not reading, and it is disconnected.
func (c *Conn) push(frame []byte) bool {
	if c.isClosed() {
		return false
	}
	select {
	case c.out <- frame:
		return true
	case <-c.done:
		return false
	default:
		c.Close()
		return false
	}
}

// closeAfterFlush makes the writer close the connection once every frame
// queued so far is written.
func (c *Conn) closeAfterFlush() {
	if !c.push(nil) {
		c.Close()
	}
}

// writeLoop is the writer goroutine of c.
func (c *Conn) writeLoop(logger *slog.Logger) {
	defer c.Close()
	bw := bufio.NewWriter(c.netConn)

	for {
		select {
		case frame := <-c.out:
			if frame == nil {
				c.flush(bw, logger)
				return
			}
			if _, err := bw.Write(frame); err != nil {
				return
			}
			if len(c.out) == 0 && !c.flush(bw, logger) {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) flush(bw *bufio.Writer, logger *slog.Logger) bool {
	if err := c.netConn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return false
	}
	if err := bw.Flush(); err != nil {
		logger.Debug("flush failed", "client_id", c.id, "error", err)
		return false
	}
	return true
}

func (c *Conn) touch(cmd string) {
	c.mu.Lock()
	c.lastCmd = cmd
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Conn) setName(name string) {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
}

func (c *Conn) getName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}
