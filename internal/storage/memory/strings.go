package memory

import (
	"time"

	"github.com/yndnr/redmod-go/internal/core/domain"
)

var errWrongType = domain.ErrWrongType

// Set stores val under key as a string, replacing any record and its expiry.
func (s *Store) Set(key string, val []byte) {
	s.records[key] = newString(val)
}

// SetNX sets key only if it does not exist, whatever its kind.
func (s *Store) SetNX(key string, val []byte) bool {
	if _, ok := s.records[key]; ok {
		return false
	}
	s.Set(key, val)
	return true
}

// GetSet sets key and returns its previous value, nil if it was absent.
func (s *Store) GetSet(key string, val []byte) ([]byte, error) {
	r, err := s.lookupKind(key, KindString)
	if err != nil {
		return nil, err
	}
	var old []byte
	if r != nil {
		old = r.Str
	}
	s.Set(key, val)
	return old, nil
}

// Get returns the value of key, nil if absent.
func (s *Store) Get(key string) ([]byte, error) {
	r, err := s.lookupKind(key, KindString)
	if err != nil || r == nil {
		return nil, err
	}
	return r.Str, nil
}

// SetWithTTL stores val under key and expires it ttl from now.
func (s *Store) SetWithTTL(key string, val []byte, ttl time.Duration) {
	s.Set(key, val)
	s.Expire(key, ttl)
}

// MGet returns the value of each key. Absent keys and keys of another
// kind yield nil.
func (s *Store) MGet(keys ...string) [][]byte {
	out := make([][]byte, len(keys))
	for i, key := range keys {
		if r, ok := s.records[key]; ok && r.Kind == KindString {
			out[i] = r.Str
		}
	}
	return out
}

// StrLen returns the length of the value at key, 0 if absent.
func (s *Store) StrLen(key string) (int, error) {
	r, err := s.lookupKind(key, KindString)
	if err != nil || r == nil {
		return 0, err
	}
	return len(r.Str), nil
}

// Append appends val to the value at key, creating it if absent, and
// returns the new length. The expiry is kept.
func (s *Store) Append(key string, val []byte) (int, error) {
	r, err := s.lookupKind(key, KindString)
	if err != nil {
		return 0, err
	}
	if r == nil {
		s.Set(key, val)
		return len(val), nil
	}
	r.Str = append(r.Str, val...)
	return len(r.Str), nil
}
