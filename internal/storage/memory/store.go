package memory

import (
	"github.com/yndnr/redmod-go/internal/core/clock"
)

// Store is an in-memory keyspace with scheduled expiration.
type Store struct {
	records   map[string]*Record
	clock     clock.Clock
	scheduler clock.Scheduler
	onExpire  func(key string)
}

// Option configures the Store.
type Option func(*Store)

// WithOnExpire registers a hook called with the key each time a scheduled
// expiration deletes it.
func WithOnExpire(fn func(key string)) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// New creates an empty store reading time from c and scheduling
// expirations on sched.
func New(c clock.Clock, sched clock.Scheduler, opts ...Option) *Store {
	s := &Store{
		records:   make(map[string]*Record),
		clock:     c,
		scheduler: sched,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return len(s.records)
}

// Expires returns the number of keys carrying an expiry.
func (s *Store) Expires() int {
	n := 0
	for _, r := range s.records {
		if r.HasExpiry() {
			n++
		}
	}
	return n
}

// Flush removes every key and returns how many there were. Timers already
// scheduled become no-ops.
func (s *Store) Flush() int {
	n := len(s.records)
	s.records = make(map[string]*Record)
	return n
}

// lookupKind returns the record for key, nil if absent, or ErrWrongType.
func (s *Store) lookupKind(key string, kind Kind) (*Record, error) {
	r, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	if r.Kind != kind {
		return nil, errWrongType
	}
	return r, nil
}
