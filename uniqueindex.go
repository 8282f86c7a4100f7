package chainbase

import "github.com/cespare/xxhash/v2"

// uniqueEntry is one slot in a uniqueIndex bucket. Buckets are keyed by hash,
// but the full key is kept alongside the id so a collision between two
// distinct keys never gets mistaken for a duplicate.
type uniqueEntry struct {
	key string
	id  uint64
}

// uniqueIndex enforces a UniqueBy constraint over a Table's live records. It
// is not a general secondary-lookup index (a Table never answers "find by
// key" queries); it only ever asks "does this key already belong to a
// different id".
type uniqueIndex struct {
	buckets map[uint64][]uniqueEntry
}

func newUniqueIndex() *uniqueIndex {
	return &uniqueIndex{buckets: make(map[uint64][]uniqueEntry)}
}

func (u *uniqueIndex) find(key string) (id uint64, found bool) {
	h := xxhash.Sum64String(key)
	for _, e := range u.buckets[h] {
		if e.key == key {
			return e.id, true
		}
	}
	return 0, false
}

func (u *uniqueIndex) set(key string, id uint64) {
	h := xxhash.Sum64String(key)
	bucket := u.buckets[h]
	for i, e := range bucket {
		if e.key == key {
			bucket[i].id = id
			return
		}
	}
	u.buckets[h] = append(bucket, uniqueEntry{key: key, id: id})
}

func (u *uniqueIndex) delete(key string) {
	h := xxhash.Sum64String(key)
	bucket := u.buckets[h]
	for i, e := range bucket {
		if e.key == key {
			u.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}
