package connection

import (
	"net"
	"sync"
	"testing"

	"github.com/yndnr/redmod-go/pkg/resp"
)

// fakeServer answers each command with the result of handle. A handler
// returning ok=false closes the connection instead of replying.
type fakeServer struct {
	ln       net.Listener
	mu       sync.Mutex
	accepted int
	commands [][]string
}

func newFakeServer(t *testing.T, handle func(args []string) (resp.Value, bool)) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	s := &fakeServer{ln: ln}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.accepted++
			s.mu.Unlock()
			go s.serve(conn, handle)
		}
	}()
	return s
}

func (s *fakeServer) serve(conn net.Conn, handle func([]string) (resp.Value, bool)) {
	defer conn.Close()
	rd := resp.NewReader(conn, resp.Parser{})
	for {
		v, err := rd.ReadValue()
		if err != nil {
			return
		}
		args := resp.SimplifyStrings(v)
		s.mu.Lock()
		s.commands = append(s.commands, args)
		s.mu.Unlock()

		reply, ok := handle(args)
		if !ok {
			return
		}
		if _, err := reply.WriteTo(conn); err != nil {
			return
		}
	}
}

func (s *fakeServer) options() Options {
	addr := s.ln.Addr().(*net.TCPAddr)
	return Options{Host: addr.IP.String(), Port: addr.Port}
}

func (s *fakeServer) addr() string {
	return s.ln.Addr().String()
}

func (s *fakeServer) acceptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

func (s *fakeServer) received() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.commands...)
}

// echoHandler replies to PING with PONG and to anything else with the
// argument count.
func echoHandler(args []string) (resp.Value, bool) {
	if len(args) > 0 && args[0] == "PING" {
		return resp.SimpleString("PONG"), true
	}
	return resp.Integer(int64(len(args))), true
}
