// Package cmap provides a concurrent map sharded by key hash.
//
// Keys are spread over a power-of-two number of shards using murmur3, and
// every shard carries its own RWMutex:
//
//	m := cmap.New[uint64, *Client]()
//	m.Set(id, client)
//	c, ok := m.Get(id)
//
// Range visits shards one at a time, so it does not observe a consistent
// snapshot of the whole map.
package cmap
