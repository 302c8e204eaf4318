package command

import (
	"strings"

	"github.com/yndnr/redmod-go/internal/core/domain"
	"github.com/yndnr/redmod-go/pkg/resp"
)

func (e *Engine) registerServer() {
	for _, d := range []Descriptor{
		{Name: "dbsize", Handler: e.dbsize, Flags: FlagReadOnly},
		{Name: "flushdb", Optional: 1, Handler: e.flush, Flags: FlagWrite},
		{Name: "flushall", Optional: 1, Handler: e.flush, Flags: FlagWrite},
	} {
		e.Register(d)
	}
}

func (e *Engine) dbsize(_ [][]byte) resp.Value {
	return resp.Integer(int64(e.store.Len()))
}

// flush accepts the ASYNC and SYNC modifiers; both flush synchronously.
func (e *Engine) flush(args [][]byte) resp.Value {
	if len(args) == 1 {
		switch strings.ToUpper(string(args[0])) {
		case "ASYNC", "SYNC":
		default:
			return errorReply(domain.ErrSyntax)
		}
	}
	n := e.store.Flush()
	e.logger.Info("keyspace flushed", "keys", n)
	return resp.OK()
}
