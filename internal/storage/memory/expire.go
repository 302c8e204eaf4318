package memory

import (
	"time"

	"github.com/yndnr/redmod-go/internal/core/domain"
)

var errNoSuchKey = domain.ErrNoSuchKey

// Expire sets key to expire ttl from now. It returns false if key is absent.
func (s *Store) Expire(key string, ttl time.Duration) bool {
	return s.ExpireAt(key, s.clock.Now().Add(ttl))
}

// ExpireAt sets key to expire at when. It returns false if key is absent.
func (s *Store) ExpireAt(key string, when time.Time) bool {
	r, ok := s.records[key]
	if !ok {
		return false
	}
	r.ExpireAt = when
	s.schedule(key, when)
	return true
}

// PTTL returns the remaining time to live of key in milliseconds, -1 if it
// has no expiry and -2 if it is absent. An overdue key whose timer has not
// fired yet reports 0.
func (s *Store) PTTL(key string) int64 {
	r, ok := s.records[key]
	if !ok {
		return -2
	}
	if !r.HasExpiry() {
		return -1
	}
	ms := r.ExpireAt.Sub(s.clock.Now()).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

// Persist clears the expiry of key. It returns true if one was cleared.
func (s *Store) Persist(key string) bool {
	r, ok := s.records[key]
	if !ok || !r.HasExpiry() {
		return false
	}
	r.ExpireAt = time.Time{}
	return true
}

func (s *Store) schedule(key string, when time.Time) {
	s.scheduler.At(when, func() { s.expireIfDue(key) })
}

// expireIfDue deletes key if its current expiry instant has passed. The
// instant is read at fire time, never captured at schedule time.
func (s *Store) expireIfDue(key string) {
	r, ok := s.records[key]
	if !ok || !r.HasExpiry() {
		return
	}
	if r.ExpireAt.After(s.clock.Now()) {
		return
	}
	delete(s.records, key)
	if s.onExpire != nil {
		s.onExpire(key)
	}
}
