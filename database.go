package chainbase

import "fmt"

// boundTable is the type-erased view of a Table[T] that Database holds,
// since Go generics cannot express a slice of differently-instantiated
// Table[T] values directly.
type boundTable interface {
	Name() string
	Revision() int64
	SetRevision(r int64) error
	Undo()
	Squash()
	Commit(r int64)
	UndoAll()
	UndoStackRevisionRange() (begin, end int64)
	startUndoSession(enabled bool) boundSession
}

// Database is a façade over a fixed, ordered list of heterogeneous Tables.
// It fans session-lifecycle operations out across all registered tables in
// registration order, so every table shares one revision timeline.
type Database struct {
	tables []boundTable
	byName map[string]boundTable
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{byName: make(map[string]boundTable)}
}

// RegisterTable adds tbl to db under its own name, aligning its undo stack
// revision range with the other tables already registered. If tbl was
// already registered by this name and its range now disagrees with the
// rest of the database, that is reported as InconsistentUndoStackError —
// ordinarily a sign of a corrupted restart. A different table under a name
// that is already registered is rejected with an error.
func RegisterTable[T Record](db *Database, tbl *Table[T]) error {
	existing, alreadyRegistered := db.byName[tbl.Name()]
	if alreadyRegistered && existing != boundTable(tbl) {
		return fmt.Errorf("chainbase: table name %q is already registered to a different table", tbl.Name())
	}

	if len(db.tables) > 0 {
		expectedBegin, expectedEnd := db.tables[0].UndoStackRevisionRange()
		gotBegin, gotEnd := tbl.UndoStackRevisionRange()

		if gotBegin != expectedBegin || gotEnd != expectedEnd {
			if alreadyRegistered {
				return &InconsistentUndoStackError{
					Table:    tbl.Name(),
					Got:      [2]int64{gotBegin, gotEnd},
					Expected: [2]int64{expectedBegin, expectedEnd},
				}
			}

			if err := tbl.SetRevision(expectedBegin); err != nil {
				return err
			}
			for tbl.Revision() < expectedEnd {
				tbl.StartUndoSession(true).Push()
			}
		}
	}

	if !alreadyRegistered {
		db.tables = append(db.tables, tbl)
	}
	db.byName[tbl.Name()] = tbl
	return nil
}

// Revision returns the first registered table's revision, or -1 if no
// table is registered.
func (db *Database) Revision() int64 {
	if len(db.tables) == 0 {
		return -1
	}
	return db.tables[0].Revision()
}

// SetRevision fans out to every registered table in order.
func (db *Database) SetRevision(r int64) error {
	for _, tbl := range db.tables {
		if err := tbl.SetRevision(r); err != nil {
			return err
		}
	}
	return nil
}

// Undo fans out to every registered table in order.
func (db *Database) Undo() {
	for _, tbl := range db.tables {
		tbl.Undo()
	}
}

// Squash fans out to every registered table in order.
func (db *Database) Squash() {
	for _, tbl := range db.tables {
		tbl.Squash()
	}
}

// Commit fans out to every registered table in order.
func (db *Database) Commit(r int64) {
	for _, tbl := range db.tables {
		tbl.Commit(r)
	}
}

// UndoAll fans out to every registered table in order.
func (db *Database) UndoAll() {
	for _, tbl := range db.tables {
		tbl.UndoAll()
	}
}

// StartUndoSession opens one sub-session per registered table, in
// registration order, and returns a CompositeSession driving them all in
// lock-step.
func (db *Database) StartUndoSession(enabled bool) *CompositeSession {
	sessions := make([]boundSession, 0, len(db.tables))
	var revision int64 = -1
	for i, tbl := range db.tables {
		sub := tbl.startUndoSession(enabled)
		if i == 0 {
			revision = sub.Revision()
		}
		sessions = append(sessions, sub)
	}
	return &CompositeSession{sessions: sessions, revision: revision}
}

// CompositeSession bundles one Session[T] per registered table so they
// advance in lock-step. Unlike Session[T]'s "armed" bool, CompositeSession
// mirrors the reference implementation's database-level session, which
// clears its sub-session list after every Push/Squash/Undo and then
// unconditionally calls Undo on scope exit — safe because an empty list
// fans out to nothing.
type CompositeSession struct {
	sessions []boundSession
	revision int64
}

// Revision returns the revision recorded from the first sub-session when
// this composite session was opened, or -1 if no tables were registered.
func (cs *CompositeSession) Revision() int64 { return cs.revision }

// Push leaves every sub-session's frame on its table's stack.
func (cs *CompositeSession) Push() {
	for _, s := range cs.sessions {
		s.Push()
	}
	cs.sessions = nil
}

// Squash folds every sub-session's frame into the one below it.
func (cs *CompositeSession) Squash() {
	for _, s := range cs.sessions {
		s.Squash()
	}
	cs.sessions = nil
}

// Undo rolls back every sub-session's frame, in registration order.
func (cs *CompositeSession) Undo() {
	for _, s := range cs.sessions {
		s.Undo()
	}
	cs.sessions = nil
}

// Close performs the scope-exit default action (Undo). Safe to call
// multiple times, and a no-op once Push, Squash, or Undo has already run.
func (cs *CompositeSession) Close() {
	cs.Undo()
}
