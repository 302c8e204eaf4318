package command

import (
	"time"

	"github.com/yndnr/redmod-go/internal/core/domain"
	"github.com/yndnr/redmod-go/pkg/resp"
)

func (e *Engine) registerStrings() {
	for _, d := range []Descriptor{
		{Name: "set", Required: 2, Handler: e.set, Flags: FlagWrite},
		{Name: "setnx", Required: 2, Handler: e.setnx, Flags: FlagWrite},
		{Name: "getset", Required: 2, Handler: e.getset, Flags: FlagWrite},
		{Name: "get", Required: 1, Handler: e.get, Flags: FlagReadOnly},
		{Name: "setex", Required: 3, Handler: e.setexIn("setex", time.Second), Flags: FlagWrite},
		{Name: "psetex", Required: 3, Handler: e.setexIn("psetex", time.Millisecond), Flags: FlagWrite},
		{Name: "mget", Required: 1, Optional: Unbounded, Handler: e.mget, Flags: FlagReadOnly},
		{Name: "mset", Required: 2, Optional: Unbounded, Handler: e.mset, Flags: FlagWrite},
		{Name: "strlen", Required: 1, Handler: e.strlen, Flags: FlagReadOnly},
		{Name: "append", Required: 2, Handler: e.appendValue, Flags: FlagWrite},
	} {
		e.Register(d)
	}
}

func (e *Engine) set(args [][]byte) resp.Value {
	e.store.Set(string(args[0]), args[1])
	return resp.OK()
}

func (e *Engine) setnx(args [][]byte) resp.Value {
	return resp.Bool(e.store.SetNX(string(args[0]), args[1]))
}

func (e *Engine) getset(args [][]byte) resp.Value {
	old, err := e.store.GetSet(string(args[0]), args[1])
	if err != nil {
		return errorReply(err)
	}
	return resp.Bulk(old)
}

func (e *Engine) get(args [][]byte) resp.Value {
	val, err := e.store.Get(string(args[0]))
	if err != nil {
		return errorReply(err)
	}
	return resp.Bulk(val)
}

// setexIn handles SETEX and PSETEX: key, ttl in unit, value. The TTL is
// validated before anything is written.
func (e *Engine) setexIn(cmd string, unit time.Duration) Handler {
	return func(args [][]byte) resp.Value {
		ttl, err := parseTTL(cmd, args[1], unit)
		if err != nil {
			return errorReply(err)
		}
		e.store.SetWithTTL(string(args[0]), args[2], ttl)
		return resp.OK()
	}
}

func (e *Engine) mget(args [][]byte) resp.Value {
	return resp.BulkStrings(e.store.MGet(keysOf(args)...))
}

func (e *Engine) mset(args [][]byte) resp.Value {
	if len(args)%2 != 0 {
		return errorReply(domain.ArityError("mset"))
	}
	for i := 0; i < len(args); i += 2 {
		e.store.Set(string(args[i]), args[i+1])
	}
	return resp.OK()
}

func (e *Engine) strlen(args [][]byte) resp.Value {
	n, err := e.store.StrLen(string(args[0]))
	if err != nil {
		return errorReply(err)
	}
	return resp.Integer(int64(n))
}

func (e *Engine) appendValue(args [][]byte) resp.Value {
	n, err := e.store.Append(string(args[0]), args[1])
	if err != nil {
		return errorReply(err)
	}
	return resp.Integer(int64(n))
}
