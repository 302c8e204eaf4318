package memory

import (
	"sort"
	"time"
)

// Kind is the type of value a record holds.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindHash
)

// String returns the name reported by TYPE.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindHash:
		return "hash"
	default:
		return "none"
	}
}

// Record is one keyspace entry. Only the payload matching Kind is set.
// A zero ExpireAt means the key does not expire.
type Record struct {
	Kind     Kind
	Str      []byte
	Hash     map[string][]byte
	ExpireAt time.Time
}

// HasExpiry reports whether the record carries an expiry instant.
func (r *Record) HasExpiry() bool {
	return !r.ExpireAt.IsZero()
}

// sortedFields returns the hash field names in ascending order.
func (r *Record) sortedFields() []string {
	fields := make([]string, 0, len(r.Hash))
	for f := range r.Hash {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func newString(val []byte) *Record {
	return &Record{Kind: KindString, Str: clone(val)}
}

func newHash() *Record {
	return &Record{Kind: KindHash, Hash: make(map[string][]byte)}
}

// clone copies b into a non-nil slice, so an empty value is never confused
// with a missing one.
func clone(b []byte) []byte {
	return append([]byte{}, b...)
}
