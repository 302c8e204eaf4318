package command

import (
	"github.com/yndnr/redmod-go/pkg/resp"
)

func (e *Engine) registerHashes() {
	for _, d := range []Descriptor{
		{Name: "hset", Required: 3, Handler: e.hset, Flags: FlagWrite},
		{Name: "hsetnx", Required: 3, Handler: e.hsetnx, Flags: FlagWrite},
		{Name: "hget", Required: 2, Handler: e.hget, Flags: FlagReadOnly},
		{Name: "hmget", Required: 2, Optional: Unbounded, Handler: e.hmget, Flags: FlagReadOnly},
		{Name: "hdel", Required: 2, Optional: Unbounded, Handler: e.hdel, Flags: FlagWrite},
		{Name: "hlen", Required: 1, Handler: e.hlen, Flags: FlagReadOnly},
		{Name: "hkeys", Required: 1, Handler: e.hkeys, Flags: FlagReadOnly},
		{Name: "hvals", Required: 1, Handler: e.hvals, Flags: FlagReadOnly},
		{Name: "hexists", Required: 2, Handler: e.hexists, Flags: FlagReadOnly},
		{Name: "hstrlen", Required: 2, Handler: e.hstrlen, Flags: FlagReadOnly},
		{Name: "hgetall", Required: 1, Handler: e.hgetall, Flags: FlagReadOnly},
	} {
		e.Register(d)
	}
}

func (e *Engine) hset(args [][]byte) resp.Value {
	created, err := e.store.HSet(string(args[0]), string(args[1]), args[2])
	if err != nil {
		return errorReply(err)
	}
	return resp.Bool(created)
}

func (e *Engine) hsetnx(args [][]byte) resp.Value {
	set, err := e.store.HSetNX(string(args[0]), string(args[1]), args[2])
	if err != nil {
		return errorReply(err)
	}
	return resp.Bool(set)
}

func (e *Engine) hget(args [][]byte) resp.Value {
	val, err := e.store.HGet(string(args[0]), string(args[1]))
	if err != nil {
		return errorReply(err)
	}
	return resp.Bulk(val)
}

func (e *Engine) hmget(args [][]byte) resp.Value {
	vals, err := e.store.HMGet(string(args[0]), keysOf(args[1:])...)
	if err != nil {
		return errorReply(err)
	}
	return resp.BulkStrings(vals)
}

func (e *Engine) hdel(args [][]byte) resp.Value {
	n, err := e.store.HDel(string(args[0]), keysOf(args[1:])...)
	if err != nil {
		return errorReply(err)
	}
	return resp.Integer(int64(n))
}

func (e *Engine) hlen(args [][]byte) resp.Value {
	n, err := e.store.HLen(string(args[0]))
	if err != nil {
		return errorReply(err)
	}
	return resp.Integer(int64(n))
}

func (e *Engine) hkeys(args [][]byte) resp.Value {
	fields, err := e.store.HKeys(string(args[0]))
	if err != nil {
		return errorReply(err)
	}
	return resp.Strings(fields)
}

func (e *Engine) hvals(args [][]byte) resp.Value {
	vals, err := e.store.HVals(string(args[0]))
	if err != nil {
		return errorReply(err)
	}
	return resp.BulkStrings(vals)
}

func (e *Engine) hexists(args [][]byte) resp.Value {
	ok, err := e.store.HExists(string(args[0]), string(args[1]))
	if err != nil {
		return errorReply(err)
	}
	return resp.Bool(ok)
}

func (e *Engine) hstrlen(args [][]byte) resp.Value {
	n, err := e.store.HStrLen(string(args[0]), string(args[1]))
	if err != nil {
		return errorReply(err)
	}
	return resp.Integer(int64(n))
}

func (e *Engine) hgetall(args [][]byte) resp.Value {
	fields, err := e.store.HGetAll(string(args[0]))
	if err != nil {
		return errorReply(err)
	}
	elems := make([]resp.Value, 0, 2*len(fields))
	for _, f := range fields {
		elems = append(elems, resp.BulkString(f.Name), resp.Bulk(f.Value))
	}
	return resp.Array(elems...)
}
