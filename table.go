package chainbase

// TableOptions configures a Table at construction time.
type TableOptions[T Record] struct {
	// UniqueBy, if set, extracts a uniqueness key from a record. Emplace
	// and Modify enforce that no two live records share a key.
	UniqueBy func(*T) string

	// Logf receives verbose diagnostics about mutation and session
	// activity. Nil disables logging.
	Logf func(format string, args ...any)
}

// Table is a typed collection of records keyed by a monotonically assigned
// 64-bit id, carrying its own stack of undo frames. It is the Go realization
// of the undo engine's per-collection index.
type Table[T Record] struct {
	name     string
	live     map[uint64]*T
	order    *idSet
	nextID   uint64
	revision int64
	stack    []*undoState[T]

	uniqueBy func(*T) string
	unique   *uniqueIndex

	onChange func(op Op, id uint64, cur, old *T)
	logf     func(format string, args ...any)
}

// NewTable constructs an empty Table. name identifies the table within a
// Database and is used verbatim as the storage bucket name when the table
// is backed by a DB.
func NewTable[T Record](name string, opt TableOptions[T]) *Table[T] {
	t := &Table[T]{
		name:  name,
		live:  make(map[uint64]*T),
		order: newIDSet(),
		logf:  opt.Logf,
	}
	if opt.UniqueBy != nil {
		t.uniqueBy = opt.UniqueBy
		t.unique = newUniqueIndex()
	}
	return t
}

func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) trace(format string, args ...any) {
	if t.logf != nil {
		t.logf(format, args...)
	}
}

func (t *Table[T]) top() *undoState[T] {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

func (t *Table[T]) hasUndo() bool { return len(t.stack) > 0 }

// Emplace allocates the next id, constructs the record via ctor, and
// inserts it. ctor is given the allocated id and must embed it in the
// returned record so RecordID reports it back correctly.
func (t *Table[T]) Emplace(ctor func(id uint64) T) (*T, error) {
	id := t.nextID
	rec := ctor(id)
	p := &rec

	var key string
	if t.uniqueBy != nil {
		key = t.uniqueBy(p)
		if existingID, found := t.unique.find(key); found {
			return nil, uniquenessErrf(t.name, key, existingID, id)
		}
	}

	t.nextID++
	t.live[id] = p
	t.order.Insert(id)
	if t.uniqueBy != nil {
		t.unique.set(key, id)
	}
	if top := t.top(); top != nil {
		top.newIDs[id] = struct{}{}
	}

	t.trace("chainbase: %s: emplace %d", t.name, id)
	t.notify(OpEmplace, id, p, nil)
	return p, nil
}

// Modify applies f in place to rec. If an undo session is open and this is
// the first touch of rec's id within the top frame, the pre-image is
// captured before f runs. A uniqueness violation caused by f is fatal: the
// invariant is strong enough that violating it denotes a logic bug, not a
// recoverable error (matches the reference index's modify()).
func (t *Table[T]) Modify(rec *T, f func(*T)) error {
	id := (*rec).RecordID()
	cur, ok := t.live[id]
	if !ok {
		return notFoundErrf(t.name, id)
	}

	var oldKey string
	if t.uniqueBy != nil {
		oldKey = t.uniqueBy(cur)
	}

	if top := t.top(); top != nil {
		if _, isNew := top.newIDs[id]; !isNew {
			if _, captured := top.oldValues[id]; !captured {
				top.oldValues[id] = *cur
			}
		}
	}

	old := *cur
	f(cur)

	if t.uniqueBy != nil {
		newKey := t.uniqueBy(cur)
		if newKey != oldKey {
			if existingID, found := t.unique.find(newKey); found && existingID != id {
				panic(uniquenessErrf(t.name, newKey, existingID, id))
			}
			t.unique.delete(oldKey)
			t.unique.set(newKey, id)
		}
	}

	t.trace("chainbase: %s: modify %d", t.name, id)
	t.notify(OpModify, id, cur, &old)
	return nil
}

// Remove deletes rec, resolving it against the top undo frame exactly as
// spec.md's four-case table requires.
func (t *Table[T]) Remove(rec *T) error {
	return t.RemoveByID((*rec).RecordID())
}

// RemoveByID is the engine's remove_object: it looks the record up, then
// removes it.
func (t *Table[T]) RemoveByID(id uint64) error {
	cur, ok := t.live[id]
	if !ok {
		return notFoundErrf(t.name, id)
	}

	if top := t.top(); top != nil {
		if _, isNew := top.newIDs[id]; isNew {
			delete(top.newIDs, id)
		} else if pre, wasModified := top.oldValues[id]; wasModified {
			top.removedValues[id] = pre
			delete(top.oldValues, id)
		} else if _, alreadyRemoved := top.removedValues[id]; !alreadyRemoved {
			top.removedValues[id] = *cur
		}
	}

	if t.uniqueBy != nil {
		t.unique.delete(t.uniqueBy(cur))
	}
	delete(t.live, id)
	t.order.Delete(id)

	t.trace("chainbase: %s: remove %d", t.name, id)
	t.notify(OpRemove, id, nil, cur)
	return nil
}

// Find is a point lookup that never fails.
func (t *Table[T]) Find(id uint64) (*T, bool) {
	p, ok := t.live[id]
	return p, ok
}

// Get is a point lookup that fails with NotFoundError.
func (t *Table[T]) Get(id uint64) (*T, error) {
	p, ok := t.live[id]
	if !ok {
		return nil, notFoundErrf(t.name, id)
	}
	return p, nil
}

// Len returns the number of live records.
func (t *Table[T]) Len() int { return len(t.live) }

// Scan walks live records in ascending id order starting at from
// (inclusive), calling f for each until it returns false.
func (t *Table[T]) Scan(from uint64, f func(id uint64, rec *T) bool) {
	t.order.Ascend(from, func(id uint64) bool {
		return f(id, t.live[id])
	})
}

// OnChange registers a callback invoked after every successful Emplace,
// Modify, and Remove. Only one callback may be registered; a later call
// replaces the previous one.
func (t *Table[T]) OnChange(f func(op Op, id uint64, cur, old *T)) {
	t.onChange = f
}

func (t *Table[T]) notify(op Op, id uint64, cur, old *T) {
	if t.onChange != nil {
		t.onChange(op, id, cur, old)
	}
}

// Revision returns the table's current revision.
func (t *Table[T]) Revision() int64 { return t.revision }

// StartUndoSession opens a new undo frame when enabled is true, stamping it
// with the next revision. When enabled is false, it returns a no-op
// Session carrying revision -1, matching the reference implementation's
// disabled-session convention.
func (t *Table[T]) StartUndoSession(enabled bool) *Session[T] {
	if !enabled {
		return &Session[T]{table: t, revision: -1, armed: false}
	}
	t.stack = append(t.stack, newUndoState[T](t.nextID, t.revision+1))
	t.revision++
	return &Session[T]{table: t, revision: t.revision, armed: true}
}

func (t *Table[T]) startUndoSession(enabled bool) boundSession {
	return t.StartUndoSession(enabled)
}

// Undo rolls back the top undo frame. It is a no-op when the stack is
// empty.
func (t *Table[T]) Undo() {
	if !t.hasUndo() {
		return
	}
	head := t.stack[len(t.stack)-1]

	for id := range head.newIDs {
		cur := t.live[id]
		if cur != nil && t.uniqueBy != nil {
			t.unique.delete(t.uniqueBy(cur))
		}
		delete(t.live, id)
		t.order.Delete(id)
		t.notify(OpRemove, id, nil, cur)
	}
	t.nextID = head.oldNextID

	for id, pre := range head.oldValues {
		cur := t.live[id]
		if t.uniqueBy != nil && cur != nil {
			newKey := t.uniqueBy(&pre)
			if existingID, found := t.unique.find(newKey); found && existingID != id {
				panic(uniquenessErrf(t.name, newKey, existingID, id))
			}
			t.unique.delete(t.uniqueBy(cur))
			t.unique.set(newKey, id)
		}
		if cur != nil {
			// Restore in place so pointers handed out earlier stay live.
			old := *cur
			*cur = pre
			t.notify(OpModify, id, cur, &old)
		} else {
			v := pre
			t.live[id] = &v
			t.notify(OpModify, id, &v, nil)
		}
	}

	for id, pre := range head.removedValues {
		if t.uniqueBy != nil {
			key := t.uniqueBy(&pre)
			if existingID, found := t.unique.find(key); found && existingID != id {
				panic(uniquenessErrf(t.name, key, existingID, id))
			}
			t.unique.set(key, id)
		}
		v := pre
		t.live[id] = &v
		t.order.Insert(id)
		t.notify(OpEmplace, id, &v, nil)
	}

	t.stack = t.stack[:len(t.stack)-1]
	t.revision--

	t.trace("chainbase: %s: undo, revision now %d", t.name, t.revision)
}

// UndoAll repeatedly undoes until the stack is empty.
func (t *Table[T]) UndoAll() {
	for t.hasUndo() {
		t.Undo()
	}
}

// Commit drops every frame at the bottom of the stack whose revision is
// <= r. Dropped frames can never be rolled back again.
func (t *Table[T]) Commit(r int64) {
	i := 0
	for i < len(t.stack) && t.stack[i].revision <= r {
		i++
	}
	if i > 0 {
		t.stack = t.stack[i:]
	}
}

// SetRevision seeds the table's revision. The stack must be empty.
func (t *Table[T]) SetRevision(r int64) error {
	if t.hasUndo() {
		return &StackNotEmptyError{Table: t.name}
	}
	t.revision = r
	return nil
}

// UndoStackRevisionRange reports (begin, end): when the stack is empty both
// equal the current revision; otherwise begin is one less than the bottom
// frame's revision and end is the top frame's revision.
func (t *Table[T]) UndoStackRevisionRange() (begin, end int64) {
	if !t.hasUndo() {
		return t.revision, t.revision
	}
	return t.stack[0].revision - 1, t.stack[len(t.stack)-1].revision
}
