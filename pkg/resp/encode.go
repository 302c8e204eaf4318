package resp

import (
	"io"
	"strconv"
)

const crlf = "\r\n"

// Encode returns the wire form of v.
func Encode(v Value) []byte {
	return v.AppendTo(nil)
}

// AppendTo appends the wire form of v to dst and returns the extended slice.
func (v Value) AppendTo(dst []byte) []byte {
	switch v.Kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		return append(dst, crlf...)
	case KindError:
		dst = append(dst, '-')
		dst = append(dst, v.Str...)
		return append(dst, crlf...)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, crlf...)
	case KindBulkString:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.Bulk...)
		return append(dst, crlf...)
	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Elems)), 10)
		dst = append(dst, crlf...)
		for _, e := range v.Elems {
			dst = e.AppendTo(dst)
		}
		return dst
	case KindNullArray:
		return append(dst, "*-1\r\n"...)
	default:
		// KindNullBulkString and anything unrecognised.
		return append(dst, "$-1\r\n"...)
	}
}

// WriteTo writes the wire form of v to w.
func (v Value) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(v.AppendTo(nil))
	return int64(n), err
}

// Command encodes a request as an array of bulk strings, the form clients send.
func Command(args ...string) []byte {
	return Strings(args).AppendTo(nil)
}
