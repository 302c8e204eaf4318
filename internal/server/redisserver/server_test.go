package redisserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	wire "github.com/tidwall/resp"

	"github.com/yndnr/redmod-go/internal/core/clock"
	"github.com/yndnr/redmod-go/internal/core/command"
	"github.com/yndnr/redmod-go/internal/core/pubsub"
	"github.com/yndnr/redmod-go/pkg/resp"
)

// ============================================================
// Test helpers
// ============================================================

type testServer struct {
	*Server
	hub *pubsub.Hub
}

func startTestServer(t *testing.T, mutate func(cfg *Config)) *testServer {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.WriteTimeout = time.Second
	if mutate != nil {
		mutate(cfg)
	}

	sched := clock.NewTimerScheduler(nil)
	engine := command.New(clock.System{}, sched)
	hub := pubsub.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := New(cfg, engine, hub, logger)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
		sched.Stop()
	})

	return &testServer{Server: srv, hub: hub}
}

type testClient struct {
	t    *testing.T
	conn net.Conn
	rd   *wire.Reader
}

func (s *testServer) dial(t *testing.T) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn, rd: wire.NewReader(conn)}
}

func (c *testClient) send(args ...string) {
	c.t.Helper()
	c.write(string(resp.Command(args...)))
}

func (c *testClient) write(raw string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(raw)); err != nil {
		c.t.Fatalf("Write() error = %v", err)
	}
}

func (c *testClient) read() wire.Value {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	v, _, err := c.rd.ReadValue()
	if err != nil {
		c.t.Fatalf("ReadValue() error = %v", err)
	}
	return v
}

func (c *testClient) do(args ...string) wire.Value {
	c.t.Helper()
	c.send(args...)
	return c.read()
}

// expectClosed waits for the server to close the connection.
func (c *testClient) expectClosed() {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := c.rd.ReadValue()
	if err == nil {
		c.t.Fatal("ReadValue() succeeded, want connection closed")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		c.t.Fatal("connection still open")
	}
}

func wantSimple(t *testing.T, v wire.Value, want string) {
	t.Helper()
	if v.Type() != wire.SimpleString || v.String() != want {
		t.Errorf("reply = %v %q, want simple string %q", v.Type(), v.String(), want)
	}
}

func wantBulk(t *testing.T, v wire.Value, want string) {
	t.Helper()
	if v.Type() != wire.BulkString || v.IsNull() || v.String() != want {
		t.Errorf("reply = %v %q, want bulk %q", v.Type(), v.String(), want)
	}
}

func wantInt(t *testing.T, v wire.Value, want int) {
	t.Helper()
	if v.Type() != wire.Integer || v.Integer() != want {
		t.Errorf("reply = %v %q, want integer %d", v.Type(), v.String(), want)
	}
}

func wantError(t *testing.T, v wire.Value, prefix string) {
	t.Helper()
	if v.Type() != wire.Error || !strings.HasPrefix(v.String(), prefix) {
		t.Errorf("reply = %v %q, want error starting with %q", v.Type(), v.String(), prefix)
	}
}

// wantPush checks a three-element pub/sub frame.
func wantPush(t *testing.T, v wire.Value, kind, channel string, count int) {
	t.Helper()
	arr := v.Array()
	if v.Type() != wire.Array || len(arr) != 3 {
		t.Fatalf("reply = %v %q, want 3-element array", v.Type(), v.String())
	}
	if arr[0].String() != kind || arr[1].String() != channel || arr[2].Integer() != count {
		t.Errorf("push = [%s %s %d], want [%s %s %d]",
			arr[0].String(), arr[1].String(), arr[2].Integer(), kind, channel, count)
	}
}

// ============================================================
// Configuration
// ============================================================

func TestServer_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Address != "0.0.0.0:6379" {
		t.Errorf("Address = %q, want 0.0.0.0:6379", cfg.Address)
	}
	if cfg.MaxClients != 10000 {
		t.Errorf("MaxClients = %d, want 10000", cfg.MaxClients)
	}
	if cfg.OutboundQueue != 1024 {
		t.Errorf("OutboundQueue = %d, want 1024", cfg.OutboundQueue)
	}
}

func TestServer_NewNilConfig(t *testing.T) {
	srv := New(nil, command.New(clock.System{}, &clock.Recorder{}), pubsub.NewHub(), nil)
	if srv.cfg == nil || srv.logger == nil {
		t.Fatal("New(nil, ...) left config or logger unset")
	}
	if srv.Addr() != nil {
		t.Errorf("Addr() = %v before Start, want nil", srv.Addr())
	}
	if len(srv.runID) != 26 {
		t.Errorf("runID = %q, want a 26-character ULID", srv.runID)
	}
}

// ============================================================
// Request handling
// ============================================================

func TestServer_PingEcho(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	wantSimple(t, c.do("PING"), "PONG")
	wantBulk(t, c.do("ping", "hello"), "hello")
	wantBulk(t, c.do("ECHO", "hi there"), "hi there")
	wantError(t, c.do("ECHO"), "ERR wrong number of arguments for 'echo' command")
	wantError(t, c.do("PING", "a", "b"), "ERR wrong number of arguments for 'ping' command")
}

func TestServer_InlineCommand(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	c.write("SET greeting hello\r\n")
	wantSimple(t, c.read(), "OK")
	c.write("GET greeting\n")
	wantBulk(t, c.read(), "hello")
}

func TestServer_EngineCommands(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	wantSimple(t, c.do("SET", "k", "v"), "OK")
	wantBulk(t, c.do("GET", "k"), "v")
	wantInt(t, c.do("EXPIRE", "k", "100"), 1)
	wantInt(t, c.do("TTL", "k"), 100)
	wantInt(t, c.do("HSET", "h", "f", "1"), 1)
	wantError(t, c.do("GET", "h"), "WRONGTYPE")
	wantError(t, c.do("NOPE"), "ERR unknown command 'NOPE'")

	if v := c.do("GET", "missing"); !v.IsNull() {
		t.Errorf("GET missing = %q, want null", v.String())
	}
}

func TestServer_KeyExpiresOnTimer(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	wantSimple(t, c.do("SET", "k", "v"), "OK")
	wantInt(t, c.do("PEXPIRE", "k", "20"), 1)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.do("EXISTS", "k").Integer() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("key did not expire")
}

func TestServer_Pipeline(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	var batch strings.Builder
	batch.Write(resp.Command("SET", "n", "1"))
	batch.Write(resp.Command("INCR_UNKNOWN", "n"))
	batch.Write(resp.Command("APPEND", "n", "23"))
	batch.Write(resp.Command("GET", "n"))
	batch.Write(resp.Command("PING"))
	c.write(batch.String())

	wantSimple(t, c.read(), "OK")
	wantError(t, c.read(), "ERR unknown command")
	wantInt(t, c.read(), 3)
	wantBulk(t, c.read(), "123")
	wantSimple(t, c.read(), "PONG")
}

func TestServer_SplitFrame(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	frame := string(resp.Command("ECHO", "split"))
	c.write(frame[:5])
	time.Sleep(20 * time.Millisecond)
	c.write(frame[5:])
	wantBulk(t, c.read(), "split")
}

func TestServer_Quit(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	wantSimple(t, c.do("QUIT"), "OK")
	c.expectClosed()
}

func TestServer_UnixSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redmod.sock")
	srv := startTestServer(t, func(cfg *Config) {
		cfg.UnixSocket = path
		cfg.UnixSocketPerm = 0770
	})

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("socket file missing: %v", err)
	}
	if fi.Mode()&os.ModeSocket == 0 || fi.Mode().Perm() != 0770 {
		t.Errorf("socket mode = %v", fi.Mode())
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	c := &testClient{t: t, conn: conn, rd: wire.NewReader(conn)}

	wantSimple(t, c.do("SET", "k", "v"), "OK")
	wantBulk(t, srv.dial(t).do("GET", "k"), "v")

	v := c.do("CLIENT", "LIST")
	if !strings.Contains(v.String(), "addr="+path+":0") {
		t.Errorf("CLIENT LIST = %q, want the socket path as addr", v.String())
	}
}

func TestServer_UnixSocketNotASocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain-file")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.UnixSocket = path
	srv := New(cfg, command.New(clock.System{}, clock.NewTimerScheduler(nil)), pubsub.NewHub(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := srv.Start(context.Background()); err == nil {
		srv.Shutdown(context.Background())
		t.Fatal("Start() should refuse to replace a regular file")
	}
}

// addrConn reports fixed addresses, standing in for an accepted socket.
type addrConn struct {
	net.Conn
	local, remote net.Addr
}

func (c addrConn) LocalAddr() net.Addr  { return c.local }
func (c addrConn) RemoteAddr() net.Addr { return c.remote }

func TestPeerAddr(t *testing.T) {
	sock := &net.UnixAddr{Name: "/tmp/redmod.sock", Net: "unix"}

	tests := []struct {
		name   string
		local  net.Addr
		remote net.Addr
		want   string
	}{
		{
			name:   "tcp peer",
			local:  &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6379},
			remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000},
			want:   "127.0.0.1:50000",
		},
		{name: "unnamed unix peer", local: sock, remote: &net.UnixAddr{Name: "@", Net: "unix"}, want: "/tmp/redmod.sock:0"},
		{name: "empty unix peer", local: sock, remote: &net.UnixAddr{Net: "unix"}, want: "/tmp/redmod.sock:0"},
		{name: "nil unix peer", local: sock, remote: (*net.UnixAddr)(nil), want: "/tmp/redmod.sock:0"},
		{name: "no peer", local: sock, want: "/tmp/redmod.sock:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := peerAddr(addrConn{local: tt.local, remote: tt.remote}); got != tt.want {
				t.Errorf("peerAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServer_ReserveSlot(t *testing.T) {
	srv := &Server{cfg: &Config{MaxClients: 10}}

	var granted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if srv.reserveSlot() {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	if granted.Load() != 10 {
		t.Fatalf("granted %d slots, want 10", granted.Load())
	}
	srv.releaseSlot()
	if !srv.reserveSlot() {
		t.Error("a released slot should be reusable")
	}
	if srv.reserveSlot() {
		t.Error("reserveSlot() past maxclients should fail")
	}
}

func TestServer_MaxClientsAcrossListeners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redmod.sock")
	srv := startTestServer(t, func(cfg *Config) {
		cfg.UnixSocket = path
		cfg.MaxClients = 1
	})

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	first := &testClient{t: t, conn: conn, rd: wire.NewReader(conn)}
	wantSimple(t, first.do("PING"), "PONG")

	second := srv.dial(t)
	wantError(t, second.read(), "ERR max number of clients reached")
	second.expectClosed()
}

func TestServer_ProtocolError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		input  string
		want   string
	}{
		{
			name:  "bad bulk length",
			input: "*1\r\n$abc\r\n",
			want:  `ERR Protocol error: invalid integer "abc"`,
		},
		{
			name:   "array over limit",
			mutate: func(cfg *Config) { cfg.Parser = resp.Parser{MaxArrayLen: 4} },
			input:  "*10\r\n",
			want:   "ERR Protocol error: array length 10 exceeds 4",
		},
		{
			name:   "bulk over limit",
			mutate: func(cfg *Config) { cfg.Parser = resp.Parser{MaxBulkLen: 8} },
			input:  "*1\r\n$100\r\n",
			want:   "ERR Protocol error: bulk length 100 exceeds 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := startTestServer(t, tt.mutate)
			c := srv.dial(t)

			c.write(tt.input)
			wantError(t, c.read(), tt.want)
			c.expectClosed()
		})
	}
}

func TestServer_RepliesBeforeProtocolErrorAreDelivered(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	c.write(string(resp.Command("PING")) + "$x\r\n")
	wantSimple(t, c.read(), "PONG")
	wantError(t, c.read(), "ERR Protocol error")
	c.expectClosed()
}

func TestServer_Select(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	wantSimple(t, c.do("SELECT", "0"), "OK")
	wantError(t, c.do("SELECT", "1"), "ERR DB index is out of range")
	wantError(t, c.do("SELECT", "x"), "ERR value is not an integer")
}

// ============================================================
// Authentication and limits
// ============================================================

func TestServer_Auth(t *testing.T) {
	srv := startTestServer(t, func(cfg *Config) { cfg.RequirePass = "secret" })
	c := srv.dial(t)

	wantError(t, c.do("GET", "k"), "NOAUTH")
	wantError(t, c.do("PING"), "NOAUTH")
	wantError(t, c.do("AUTH", "wrong"), "WRONGPASS")
	wantError(t, c.do("AUTH", "admin", "secret"), "WRONGPASS")
	wantSimple(t, c.do("AUTH", "secret"), "OK")
	wantSimple(t, c.do("PING"), "PONG")

	other := srv.dial(t)
	wantSimple(t, other.do("AUTH", "default", "secret"), "OK")
}

func TestServer_AuthWithoutPassword(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	wantError(t, c.do("AUTH", "secret"), "ERR")
	wantSimple(t, c.do("PING"), "PONG")
}

func TestServer_MaxClients(t *testing.T) {
	srv := startTestServer(t, func(cfg *Config) { cfg.MaxClients = 1 })

	first := srv.dial(t)
	wantSimple(t, first.do("PING"), "PONG")

	second := srv.dial(t)
	wantError(t, second.read(), "ERR max number of clients reached")
	second.expectClosed()

	wantSimple(t, first.do("PING"), "PONG")
}

func TestServer_RateLimit(t *testing.T) {
	srv := startTestServer(t, func(cfg *Config) { cfg.RateLimit = 1 })
	c := srv.dial(t)

	wantSimple(t, c.do("PING"), "PONG")
	wantError(t, c.do("PING"), "ERR rate limit exceeded")
}

// ============================================================
// Pub/Sub
// ============================================================

func TestServer_PubSub(t *testing.T) {
	srv := startTestServer(t, nil)
	sub := srv.dial(t)
	pub := srv.dial(t)

	sub.send("SUBSCRIBE", "news", "sport")
	wantPush(t, sub.read(), "subscribe", "news", 1)
	wantPush(t, sub.read(), "subscribe", "sport", 2)

	wantInt(t, pub.do("PUBLISH", "news", "hello"), 1)
	wantInt(t, pub.do("PUBLISH", "weather", "sun"), 0)

	msg := sub.read().Array()
	if len(msg) != 3 || msg[0].String() != "message" || msg[1].String() != "news" || msg[2].String() != "hello" {
		t.Fatalf("message = %v, want [message news hello]", msg)
	}

	// Subscribe mode restricts the command set.
	wantError(t, sub.do("GET", "k"), "ERR Can't execute 'GET'")
	pong := sub.do("PING").Array()
	if len(pong) != 2 || pong[0].String() != "pong" || pong[1].String() != "" {
		t.Errorf("PING in subscribe mode = %v, want [pong \"\"]", pong)
	}

	sub.send("UNSUBSCRIBE")
	wantPush(t, sub.read(), "unsubscribe", "news", 1)
	wantPush(t, sub.read(), "unsubscribe", "sport", 0)

	wantSimple(t, sub.do("PING"), "PONG")
	if v := sub.do("GET", "k"); !v.IsNull() {
		t.Errorf("GET after unsubscribe = %q, want null", v.String())
	}
}

func TestServer_UnsubscribeWithoutChannels(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	arr := c.do("UNSUBSCRIBE").Array()
	if len(arr) != 3 || arr[0].String() != "unsubscribe" || !arr[1].IsNull() || arr[2].Integer() != 0 {
		t.Errorf("UNSUBSCRIBE = %v, want [unsubscribe nil 0]", arr)
	}

	c.send("UNSUBSCRIBE", "never")
	wantPush(t, c.read(), "unsubscribe", "never", 0)
}

func TestServer_PublishOrderAcrossSubscribers(t *testing.T) {
	srv := startTestServer(t, nil)
	subs := []*testClient{srv.dial(t), srv.dial(t), srv.dial(t)}
	for _, s := range subs {
		s.send("SUBSCRIBE", "ch")
		wantPush(t, s.read(), "subscribe", "ch", 1)
	}

	pub := srv.dial(t)
	for _, payload := range []string{"1", "2", "3"} {
		wantInt(t, pub.do("PUBLISH", "ch", payload), len(subs))
	}

	for i, s := range subs {
		for _, want := range []string{"1", "2", "3"} {
			msg := s.read().Array()
			if len(msg) != 3 || msg[2].String() != want {
				t.Errorf("subscriber %d got %v, want payload %s", i, msg, want)
			}
		}
	}
}

func TestServer_DisconnectUnsubscribes(t *testing.T) {
	srv := startTestServer(t, nil)
	sub := srv.dial(t)
	sub.send("SUBSCRIBE", "ch")
	wantPush(t, sub.read(), "subscribe", "ch", 1)

	sub.conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ChannelCount() != 0 || srv.ConnectedClients() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("channels = %d, clients = %d after disconnect, want 0",
				srv.hub.ChannelCount(), srv.ConnectedClients())
		}
		time.Sleep(10 * time.Millisecond)
	}

	pub := srv.dial(t)
	wantInt(t, pub.do("PUBLISH", "ch", "x"), 0)
}

func TestServer_PubSubIntrospection(t *testing.T) {
	srv := startTestServer(t, nil)
	sub := srv.dial(t)
	sub.send("SUBSCRIBE", "news.tech", "news.art", "sport")
	for i := 0; i < 3; i++ {
		sub.read()
	}

	c := srv.dial(t)
	channels := c.do("PUBSUB", "CHANNELS").Array()
	if len(channels) != 3 || channels[0].String() != "news.art" {
		t.Errorf("PUBSUB CHANNELS = %v, want 3 sorted channels", channels)
	}
	if got := c.do("PUBSUB", "CHANNELS", "^news").Array(); len(got) != 2 {
		t.Errorf("PUBSUB CHANNELS ^news = %v, want 2 channels", got)
	}

	numsub := c.do("PUBSUB", "NUMSUB", "sport", "none").Array()
	if len(numsub) != 4 || numsub[1].Integer() != 1 || numsub[3].Integer() != 0 {
		t.Errorf("PUBSUB NUMSUB = %v, want [sport 1 none 0]", numsub)
	}
	wantInt(t, c.do("PUBSUB", "NUMPAT"), 0)
	wantError(t, c.do("PUBSUB", "BOGUS"), "ERR unknown subcommand 'BOGUS'")
}

// ============================================================
// Introspection
// ============================================================

func TestServer_Client(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	id := c.do("CLIENT", "ID").Integer()
	if id <= 0 {
		t.Errorf("CLIENT ID = %d, want positive", id)
	}
	if v := c.do("CLIENT", "GETNAME"); !v.IsNull() {
		t.Errorf("CLIENT GETNAME = %q, want null", v.String())
	}
	wantSimple(t, c.do("CLIENT", "SETNAME", "worker"), "OK")
	wantBulk(t, c.do("CLIENT", "GETNAME"), "worker")
	wantError(t, c.do("CLIENT", "SETNAME", "a b"), "ERR")
	wantError(t, c.do("CLIENT", "KILL"), "ERR unknown subcommand 'KILL'")

	list := c.do("CLIENT", "LIST").String()
	if !strings.Contains(list, "name=worker") || !strings.Contains(list, "cmd=client") {
		t.Errorf("CLIENT LIST = %q, want name=worker and cmd=client", list)
	}
}

func TestServer_Info(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	info := c.do("INFO").String()
	for _, want := range []string{
		"# Server\r\n",
		"redis_version:7.0.0\r\n",
		"run_id:" + srv.runID + "\r\n",
		"# Clients\r\nconnected_clients:1\r\n",
		"# Stats\r\n",
		"# Keyspace\r\n",
	} {
		if !strings.Contains(info, want) {
			t.Errorf("INFO missing %q in:\n%s", want, info)
		}
	}
	if strings.Contains(info, "db0:") {
		t.Errorf("INFO reports db0 for an empty keyspace:\n%s", info)
	}

	c.do("SET", "a", "1")
	c.do("SETEX", "b", "100", "2")
	keyspace := c.do("INFO", "keyspace").String()
	if !strings.Contains(keyspace, "db0:keys=2,expires=1") {
		t.Errorf("INFO keyspace = %q, want db0:keys=2,expires=1", keyspace)
	}
	if strings.Contains(keyspace, "# Server") {
		t.Errorf("INFO keyspace included the server section")
	}
}

func TestServer_Command(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)

	count := c.do("COMMAND", "COUNT").Integer()
	if count != len(srv.descriptors()) {
		t.Errorf("COMMAND COUNT = %d, want %d", count, len(srv.descriptors()))
	}

	names := map[string]bool{}
	for _, v := range c.do("COMMAND", "LIST").Array() {
		names[v.String()] = true
	}
	for _, want := range []string{"get", "hset", "subscribe", "ping", "info"} {
		if !names[want] {
			t.Errorf("COMMAND LIST missing %q", want)
		}
	}

	info := c.do("COMMAND", "INFO", "get", "nosuch").Array()
	if len(info) != 2 || info[0].Array()[0].String() != "get" || info[0].Array()[1].Integer() != 2 || !info[1].IsNull() {
		t.Errorf("COMMAND INFO = %v, want [[get 2 ...] nil]", info)
	}
	if all := c.do("COMMAND").Array(); len(all) != count {
		t.Errorf("COMMAND returned %d entries, want %d", len(all), count)
	}
}

// ============================================================
// Lifecycle
// ============================================================

func TestServer_ShutdownClosesClients(t *testing.T) {
	srv := startTestServer(t, nil)
	c := srv.dial(t)
	wantSimple(t, c.do("PING"), "PONG")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	c.expectClosed()

	if _, err := net.DialTimeout("tcp", srv.Addr().String(), 200*time.Millisecond); err == nil {
		t.Error("Dial() after Shutdown succeeded")
	}
}

func TestServer_ContextCancelClosesClients(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := New(cfg, command.New(clock.System{}, &clock.Recorder{}), pubsub.NewHub(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	}()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	c := &testClient{t: t, conn: conn, rd: wire.NewReader(conn)}
	wantSimple(t, c.do("PING"), "PONG")

	cancel()
	c.expectClosed()
}

func TestServer_IdleTimeout(t *testing.T) {
	srv := startTestServer(t, func(cfg *Config) { cfg.IdleTimeout = 50 * time.Millisecond })
	c := srv.dial(t)
	wantSimple(t, c.do("PING"), "PONG")
	c.expectClosed()
}
