package memory

import (
	"regexp"
	"sort"
)

// Del removes the given keys and returns how many existed.
func (s *Store) Del(keys ...string) int {
	n := 0
	for _, key := range keys {
		if _, ok := s.records[key]; ok {
			delete(s.records, key)
			n++
		}
	}
	return n
}

// Exists returns how many of the given keys exist. A key listed twice is
// counted twice.
func (s *Store) Exists(keys ...string) int {
	n := 0
	for _, key := range keys {
		if _, ok := s.records[key]; ok {
			n++
		}
	}
	return n
}

// Keys returns, in ascending order, the keys matched anywhere by the
// regular expression pattern. An empty pattern matches every key; a pattern
// that does not compile matches none.
func (s *Store) Keys(pattern string) []string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return []string{}
	}

	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		if re.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Type returns "string", "hash", or "none" when key is absent.
func (s *Store) Type(key string) string {
	r, ok := s.records[key]
	if !ok {
		return "none"
	}
	return r.Kind.String()
}

// Rename moves the record at src, expiry included, to dst, replacing dst.
func (s *Store) Rename(src, dst string) error {
	r, ok := s.records[src]
	if !ok {
		return errNoSuchKey
	}
	if src == dst {
		return nil
	}
	s.move(r, src, dst)
	return nil
}

// RenameNX is Rename that refuses to replace an existing dst.
func (s *Store) RenameNX(src, dst string) (bool, error) {
	r, ok := s.records[src]
	if !ok {
		return false, errNoSuchKey
	}
	if _, exists := s.records[dst]; exists {
		return false, nil
	}
	s.move(r, src, dst)
	return true, nil
}

func (s *Store) move(r *Record, src, dst string) {
	delete(s.records, src)
	s.records[dst] = r
	if r.HasExpiry() {
		s.schedule(dst, r.ExpireAt)
	}
}
