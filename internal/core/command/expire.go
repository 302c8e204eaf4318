package command

import (
	"time"

	"github.com/yndnr/redmod-go/pkg/resp"
)

func (e *Engine) registerExpire() {
	for _, d := range []Descriptor{
		{Name: "expire", Required: 2, Handler: e.expireIn("expire", time.Second), Flags: FlagWrite},
		{Name: "pexpire", Required: 2, Handler: e.expireIn("pexpire", time.Millisecond), Flags: FlagWrite},
		{Name: "expireat", Required: 2, Handler: e.expireAt("expireat", time.Second), Flags: FlagWrite},
		{Name: "pexpireat", Required: 2, Handler: e.expireAt("pexpireat", time.Millisecond), Flags: FlagWrite},
		{Name: "ttl", Required: 1, Handler: e.ttl, Flags: FlagReadOnly},
		{Name: "pttl", Required: 1, Handler: e.pttl, Flags: FlagReadOnly},
		{Name: "persist", Required: 1, Handler: e.persist, Flags: FlagWrite},
	} {
		e.Register(d)
	}
}

func (e *Engine) expireIn(cmd string, unit time.Duration) Handler {
	return func(args [][]byte) resp.Value {
		ttl, err := parseTTL(cmd, args[1], unit)
		if err != nil {
			return errorReply(err)
		}
		return resp.Bool(e.store.Expire(string(args[0]), ttl))
	}
}

func (e *Engine) expireAt(cmd string, unit time.Duration) Handler {
	return func(args [][]byte) resp.Value {
		when, err := parseInstant(cmd, args[1], unit)
		if err != nil {
			return errorReply(err)
		}
		return resp.Bool(e.store.ExpireAt(string(args[0]), when))
	}
}

// ttl rounds the remaining milliseconds to the nearest second.
func (e *Engine) ttl(args [][]byte) resp.Value {
	ms := e.store.PTTL(string(args[0]))
	if ms < 0 {
		return resp.Integer(ms)
	}
	return resp.Integer((ms + 500) / 1000)
}

func (e *Engine) pttl(args [][]byte) resp.Value {
	return resp.Integer(e.store.PTTL(string(args[0])))
}

func (e *Engine) persist(args [][]byte) resp.Value {
	return resp.Bool(e.store.Persist(string(args[0])))
}
