package memory

// HashField is one field/value pair of a hash.
type HashField struct {
	Name  string
	Value []byte
}

// hashForWrite returns the hash at key, creating it if absent.
func (s *Store) hashForWrite(key string) (*Record, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = newHash()
		s.records[key] = r
	}
	return r, nil
}

// HSet sets field in the hash at key. It returns true if the field is new.
// The key's expiry is kept.
func (s *Store) HSet(key, field string, val []byte) (bool, error) {
	r, err := s.hashForWrite(key)
	if err != nil {
		return false, err
	}
	_, existed := r.Hash[field]
	r.Hash[field] = clone(val)
	return !existed, nil
}

// HSetNX sets field only if it does not exist yet.
func (s *Store) HSetNX(key, field string, val []byte) (bool, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil {
		return false, err
	}
	if r != nil {
		if _, ok := r.Hash[field]; ok {
			return false, nil
		}
	}
	return s.HSet(key, field, val)
}

// HGet returns the value of field, nil if the key or field is absent.
func (s *Store) HGet(key, field string) ([]byte, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil || r == nil {
		return nil, err
	}
	return r.Hash[field], nil
}

// HMGet returns the value of each field, nil for absent ones.
func (s *Store) HMGet(key string, fields ...string) ([][]byte, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(fields))
	if r == nil {
		return out, nil
	}
	for i, f := range fields {
		out[i] = r.Hash[f]
	}
	return out, nil
}

// HDel removes the given fields and returns how many existed. The key is
// removed once its last field is gone.
func (s *Store) HDel(key string, fields ...string) (int, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil || r == nil {
		return 0, err
	}
	n := 0
	for _, f := range fields {
		if _, ok := r.Hash[f]; ok {
			delete(r.Hash, f)
			n++
		}
	}
	if len(r.Hash) == 0 {
		delete(s.records, key)
	}
	return n, nil
}

// HLen returns the number of fields, 0 if key is absent.
func (s *Store) HLen(key string) (int, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil || r == nil {
		return 0, err
	}
	return len(r.Hash), nil
}

// HKeys returns the field names in ascending order.
func (s *Store) HKeys(key string) ([]string, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return []string{}, nil
	}
	return r.sortedFields(), nil
}

// HVals returns the values ordered by field name.
func (s *Store) HVals(key string) ([][]byte, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return [][]byte{}, nil
	}
	fields := r.sortedFields()
	vals := make([][]byte, len(fields))
	for i, f := range fields {
		vals[i] = r.Hash[f]
	}
	return vals, nil
}

// HExists reports whether field exists in the hash at key.
func (s *Store) HExists(key, field string) (bool, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil || r == nil {
		return false, err
	}
	_, ok := r.Hash[field]
	return ok, nil
}

// HStrLen returns the length of the value of field, 0 if absent.
func (s *Store) HStrLen(key, field string) (int, error) {
	val, err := s.HGet(key, field)
	return len(val), err
}

// HGetAll returns every field/value pair ordered by field name.
func (s *Store) HGetAll(key string) ([]HashField, error) {
	r, err := s.lookupKind(key, KindHash)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return []HashField{}, nil
	}
	fields := r.sortedFields()
	out := make([]HashField, len(fields))
	for i, f := range fields {
		out[i] = HashField{Name: f, Value: r.Hash[f]}
	}
	return out, nil
}
