package chainbase

// boundSession is the type-erased view of a Session[T] that Database's
// CompositeSession fans out over, since a single Go slice cannot hold
// Session[T] instantiations for different T.
type boundSession interface {
	Push()
	Squash()
	Undo()
	Revision() int64
}

// Session is a scoped handle over a Table's top undo frame. It is
// single-shot: once Push, Squash, or Undo runs, the handle is disarmed and
// further calls (including Close) are no-ops. Go has no destructors, so
// callers must defer Close immediately after StartUndoSession to get the
// same "undo on scope exit" guarantee the reference implementation's C++
// session gets for free:
//
//	sess := table.StartUndoSession(true)
//	defer sess.Close()
//	... mutate ...
//	sess.Push() // or Squash(), or just let Close() undo it
type Session[T Record] struct {
	table    *Table[T]
	revision int64
	armed    bool
}

// Revision returns the revision stamped on this session, or -1 if the
// session is disabled.
func (s *Session[T]) Revision() int64 { return s.revision }

// Push leaves the frame on the stack and disarms the handle.
func (s *Session[T]) Push() {
	s.armed = false
}

// Squash folds the frame into the one below it and disarms the handle.
func (s *Session[T]) Squash() {
	if s.armed {
		s.table.Squash()
	}
	s.armed = false
}

// Undo rolls back the frame and disarms the handle.
func (s *Session[T]) Undo() {
	if s.armed {
		s.table.Undo()
	}
	s.armed = false
}

// Close performs the scope-exit default action (Undo) if the handle is
// still armed. Safe to call multiple times.
func (s *Session[T]) Close() {
	s.Undo()
}
