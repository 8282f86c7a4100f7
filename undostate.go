package chainbase

// undoState is a single undo frame: the information needed to reverse
// everything done to a Table while this frame sat on top of its stack.
//
// oldValues holds the pre-image of the first modification made to an id
// during this frame (later modifications of the same id do not overwrite
// it, matching the session's "keep the oldest pre-image" rule). removedValues
// holds the pre-image of every id removed during this frame. newIDs holds
// every id that was created (via Emplace) during this frame, so undo knows
// to delete it outright rather than restore a pre-image.
type undoState[T any] struct {
	oldValues     map[uint64]T
	removedValues map[uint64]T
	newIDs        map[uint64]struct{}
	oldNextID     uint64
	revision      int64
}

func newUndoState[T any](oldNextID uint64, revision int64) *undoState[T] {
	return &undoState[T]{
		oldValues:     make(map[uint64]T),
		removedValues: make(map[uint64]T),
		newIDs:        make(map[uint64]struct{}),
		oldNextID:     oldNextID,
		revision:      revision,
	}
}
