package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/redmod-go/pkg/resp"
)

func TestDial_Refused(t *testing.T) {
	srv := newFakeServer(t, echoHandler)
	addr := srv.addr()
	srv.ln.Close()

	if _, err := Dial(context.Background(), addr, time.Second); err == nil {
		t.Error("Dial() to a closed listener should fail")
	}
}

func TestClient_Do(t *testing.T) {
	srv := newFakeServer(t, func(args []string) (resp.Value, bool) {
		switch args[0] {
		case "GET":
			return resp.NullBulk(), true
		case "BAD":
			return resp.Error("ERR unknown command 'BAD'"), true
		case "LIST":
			return resp.Strings([]string{"a", "b"}), true
		}
		return resp.OK(), true
	})

	c, err := Dial(context.Background(), srv.addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	tests := []struct {
		args []string
		kind resp.Kind
	}{
		{[]string{"SET", "k", "v"}, resp.KindSimpleString},
		{[]string{"GET", "k"}, resp.KindNullBulkString},
		{[]string{"BAD"}, resp.KindError},
		{[]string{"LIST"}, resp.KindArray},
	}
	for _, tt := range tests {
		v, err := c.Do(tt.args...)
		if err != nil {
			t.Fatalf("Do(%v) error = %v", tt.args, err)
		}
		if v.Kind != tt.kind {
			t.Errorf("Do(%v) kind = %v, want %v", tt.args, v.Kind, tt.kind)
		}
	}

	got := srv.received()
	if len(got) != 4 || got[0][2] != "v" {
		t.Errorf("server received %v", got)
	}
}

func TestClient_Close(t *testing.T) {
	srv := newFakeServer(t, echoHandler)
	c, err := Dial(context.Background(), srv.addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := c.Do("PING"); !errors.Is(err, ErrClosed) {
		t.Errorf("Do() after Close error = %v, want ErrClosed", err)
	}
}

func TestClient_SendReceive(t *testing.T) {
	// Each SUBSCRIBE is acknowledged with a confirmation and one message.
	srv := newFakeServer(t, func(args []string) (resp.Value, bool) {
		return resp.Array(
			resp.BulkString("message"),
			resp.BulkString(args[1]),
			resp.BulkString("hello"),
		), true
	})

	c, err := Dial(context.Background(), srv.addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if err := c.Send("SUBSCRIBE", "news"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := c.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if got := resp.SimplifyStrings(v); len(got) != 3 || got[1] != "news" {
		t.Errorf("Receive() = %v", got)
	}
}

func TestClient_ReceiveCancel(t *testing.T) {
	srv := newFakeServer(t, echoHandler)
	c, err := Dial(context.Background(), srv.addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	if _, err := c.Receive(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Receive() error = %v, want context.Canceled", err)
	}
}
