package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/redmod-go/pkg/resp"
)

// RawFormatter prints replies the way redis-cli does in a terminal.
type RawFormatter struct{}

// Format writes v followed by a newline.
func (f *RawFormatter) Format(w io.Writer, v resp.Value) error {
	bw := bufio.NewWriter(w)
	writeRaw(bw, v, "")
	return bw.Flush()
}

// writeRaw writes v. Continuation lines of an array are prefixed with
// indent so that nested elements line up under their parent's index.
func writeRaw(w *bufio.Writer, v resp.Value, indent string) {
	switch v.Kind {
	case resp.KindSimpleString:
		w.WriteString(v.Str)
	case resp.KindError:
		w.WriteString("(error) ")
		w.WriteString(v.Str)
	case resp.KindInteger:
		w.WriteString("(integer) ")
		w.WriteString(strconv.FormatInt(v.Int, 10))
	case resp.KindBulkString:
		w.WriteString(strconv.Quote(string(v.Bulk)))
	case resp.KindNullBulkString, resp.KindNullArray:
		w.WriteString("(nil)")
	case resp.KindArray:
		if len(v.Elems) == 0 {
			w.WriteString("(empty array)")
			break
		}
		width := len(strconv.Itoa(len(v.Elems)))
		for i, e := range v.Elems {
			label := strconv.Itoa(i + 1)
			prefix := strings.Repeat(" ", width-len(label)) + label + ") "
			if i > 0 {
				w.WriteString(indent)
			}
			w.WriteString(prefix)
			writeRaw(w, e, indent+strings.Repeat(" ", len(prefix)))
			if i < len(v.Elems)-1 {
				w.WriteByte('\n')
			}
		}
	}
	if indent == "" {
		w.WriteByte('\n')
	}
}
