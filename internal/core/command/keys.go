package command

import (
	"github.com/yndnr/redmod-go/pkg/resp"
)

func (e *Engine) registerKeys() {
	for _, d := range []Descriptor{
		{Name: "del", Required: 1, Optional: Unbounded, Handler: e.del, Flags: FlagWrite},
		{Name: "unlink", Required: 1, Optional: Unbounded, Handler: e.del, Flags: FlagWrite},
		{Name: "exists", Required: 1, Optional: Unbounded, Handler: e.exists, Flags: FlagReadOnly},
		{Name: "keys", Required: 1, Handler: e.keys, Flags: FlagReadOnly},
		{Name: "type", Required: 1, Handler: e.keyType, Flags: FlagReadOnly},
		{Name: "rename", Required: 2, Handler: e.rename, Flags: FlagWrite},
		{Name: "renamenx", Required: 2, Handler: e.renamenx, Flags: FlagWrite},
	} {
		e.Register(d)
	}
}

func (e *Engine) del(args [][]byte) resp.Value {
	return resp.Integer(int64(e.store.Del(keysOf(args)...)))
}

func (e *Engine) exists(args [][]byte) resp.Value {
	return resp.Integer(int64(e.store.Exists(keysOf(args)...)))
}

func (e *Engine) keys(args [][]byte) resp.Value {
	return resp.Strings(e.store.Keys(string(args[0])))
}

func (e *Engine) keyType(args [][]byte) resp.Value {
	return resp.BulkString(e.store.Type(string(args[0])))
}

func (e *Engine) rename(args [][]byte) resp.Value {
	if err := e.store.Rename(string(args[0]), string(args[1])); err != nil {
		return errorReply(err)
	}
	return resp.OK()
}

func (e *Engine) renamenx(args [][]byte) resp.Value {
	ok, err := e.store.RenameNX(string(args[0]), string(args[1]))
	if err != nil {
		return errorReply(err)
	}
	return resp.Bool(ok)
}
