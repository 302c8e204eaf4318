package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/redmod-go/internal/cli/connection"
	"github.com/yndnr/redmod-go/internal/cli/output"
	"github.com/yndnr/redmod-go/pkg/resp"
)

// commandListTimeout keeps an unreachable server from delaying the prompt.
const commandListTimeout = 2 * time.Second

// session sends commands through one connection manager and prints
// replies. It implements repl.Executor.
type session struct {
	mgr       *connection.Manager
	formatter output.Formatter

	mu  sync.Mutex
	out io.Writer

	lastFailed bool
}

func newSession(mgr *connection.Manager, f output.Formatter, out io.Writer) *session {
	if out == nil {
		out = os.Stdout
	}
	return &session{mgr: mgr, formatter: f, out: out}
}

// Execute runs one command and prints its reply.
func (s *session) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if strings.EqualFold(args[0], "subscribe") {
		return s.subscribe(ctx, args)
	}

	v, err := s.mgr.Do(ctx, args...)
	if err != nil {
		return err
	}
	s.lastFailed = v.IsError()
	return s.print(v)
}

// subscribe streams pushed values until SIGINT or ctx ends. The
// connection is in subscribe mode afterwards, so it is dropped.
func (s *session) subscribe(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	c, err := s.mgr.Connect(ctx)
	if err != nil {
		return err
	}
	defer s.mgr.Disconnect()

	if err := c.Send(args...); err != nil {
		return err
	}
	s.write("Reading messages... (press Ctrl-C to quit)\n")

	for {
		v, err := c.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := s.print(v); err != nil {
			return err
		}
		if v.IsError() {
			s.lastFailed = true
			return nil
		}
	}
}

// commandNames asks the server for its command table.
func (s *session) commandNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandListTimeout)
	defer cancel()

	v, err := s.mgr.Do(ctx, "COMMAND", "LIST")
	if err != nil {
		return nil, err
	}
	if v.IsError() {
		return nil, fmt.Errorf("%s", v.Str)
	}
	return resp.SimplifyStrings(v), nil
}

func (s *session) print(v resp.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formatter.Format(s.out, v)
}

func (s *session) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.out, text)
}
