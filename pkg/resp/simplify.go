package resp

import "bytes"

// Simplify flattens v into an ordered list of tokens, typically a command
// name followed by its arguments.
//
// Arrays flatten depth-first, left to right. A bulk string is one token. A
// simple string is split on whitespace, which is how inline commands get
// their arguments. Integers and errors contribute their text. Null values
// contribute nothing.
func Simplify(v Value) [][]byte {
	return appendTokens(nil, v)
}

func appendTokens(dst [][]byte, v Value) [][]byte {
	switch v.Kind {
	case KindArray:
		for _, e := range v.Elems {
			dst = appendTokens(dst, e)
		}
		return dst
	case KindBulkString:
		return append(dst, v.Bulk)
	case KindSimpleString:
		return append(dst, bytes.Fields([]byte(v.Str))...)
	case KindNullBulkString, KindNullArray:
		return dst
	default:
		return append(dst, []byte(v.Text()))
	}
}

// SimplifyStrings is Simplify with the tokens converted to strings.
func SimplifyStrings(v Value) []string {
	tokens := Simplify(v)
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = string(t)
	}
	return out
}
