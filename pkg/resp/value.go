package resp

import (
	"math"
	"strconv"
)

// Kind identifies the wire shape of a Value.
type Kind uint8

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulkString
	KindArray
	KindNullBulkString
	KindNullArray
)

// String returns the short tag used in debug output.
func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "str"
	case KindError:
		return "err"
	case KindInteger:
		return "int"
	case KindBulkString:
		return "blk"
	case KindArray:
		return "arr"
	case KindNullBulkString:
		return "nil"
	case KindNullArray:
		return "nilarr"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single RESP value. Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Bulk  []byte
	Elems []Value
}

// SimpleString returns a "+text" value.
func SimpleString(text string) Value {
	return Value{Kind: KindSimpleString, Str: text}
}

// Error returns a "-text" value.
func Error(text string) Value {
	return Value{Kind: KindError, Str: text}
}

// Integer returns a ":n" value.
func Integer(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

// Float returns an integer value rounded half away from zero.
func Float(f float64) Value {
	return Integer(int64(math.Round(f)))
}

// Bool returns :1 for true and :0 for false.
func Bool(b bool) Value {
	if b {
		return Integer(1)
	}
	return Integer(0)
}

// BulkString returns a bulk string holding text.
func BulkString(text string) Value {
	return Value{Kind: KindBulkString, Bulk: []byte(text)}
}

// Bulk returns a bulk string holding b. A nil slice yields the null bulk string.
func Bulk(b []byte) Value {
	if b == nil {
		return NullBulk()
	}
	return Value{Kind: KindBulkString, Bulk: b}
}

// NullBulk returns the null bulk string ($-1).
func NullBulk() Value {
	return Value{Kind: KindNullBulkString}
}

// Array returns an array of the given elements. Array() is the empty array.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, Elems: elems}
}

// NullArray returns the null array (*-1).
func NullArray() Value {
	return Value{Kind: KindNullArray}
}

// Strings returns an array of bulk strings.
func Strings(ss []string) Value {
	elems := make([]Value, len(ss))
	for i, s := range ss {
		elems[i] = BulkString(s)
	}
	return Array(elems...)
}

// BulkStrings returns an array of bulk strings; nil entries encode as null.
func BulkStrings(bs [][]byte) Value {
	elems := make([]Value, len(bs))
	for i, b := range bs {
		elems[i] = Bulk(b)
	}
	return Array(elems...)
}

// OK returns +OK.
func OK() Value {
	return SimpleString("OK")
}

// Nil returns the null bulk string, the usual "no such value" reply.
func Nil() Value {
	return NullBulk()
}

// IsError reports whether v is an error reply.
func (v Value) IsError() bool {
	return v.Kind == KindError
}

// IsNull reports whether v is either null form.
func (v Value) IsNull() bool {
	return v.Kind == KindNullBulkString || v.Kind == KindNullArray
}

// Text returns the value coerced to text.
func (v Value) Text() string {
	switch v.Kind {
	case KindSimpleString, KindError:
		return v.Str
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindBulkString:
		return string(v.Bulk)
	default:
		return ""
	}
}
