package chainbase

import "github.com/google/btree"

// idSet keeps a Table's live ids in ascending order so Scan can walk the
// primary key range without touching the backend, the same role
// MemoryStore's btree plays for key order in a plain KV store.
type idSet struct {
	tree *btree.BTree
}

type idItem uint64

func (a idItem) Less(than btree.Item) bool {
	return a < than.(idItem)
}

func newIDSet() *idSet {
	return &idSet{tree: btree.New(32)}
}

func (s *idSet) Insert(id uint64) {
	s.tree.ReplaceOrInsert(idItem(id))
}

func (s *idSet) Delete(id uint64) {
	s.tree.Delete(idItem(id))
}

func (s *idSet) Has(id uint64) bool {
	return s.tree.Has(idItem(id))
}

func (s *idSet) Len() int {
	return s.tree.Len()
}

// Ascend walks ids in ascending order starting at from (inclusive), calling
// f for each until it returns false.
func (s *idSet) Ascend(from uint64, f func(id uint64) bool) {
	s.tree.AscendGreaterOrEqual(idItem(from), func(i btree.Item) bool {
		return f(uint64(i.(idItem)))
	})
}
