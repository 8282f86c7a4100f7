package chainbase

import "fmt"

// NotFoundError is returned by Get and RemoveByID when no record exists
// with the given id.
type NotFoundError struct {
	Table string
	ID    uint64
}

func notFoundErrf(table string, id uint64) error {
	return &NotFoundError{Table: table, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: id %d not found", e.Table, e.ID)
}

// UniquenessViolationError is raised when an insert or in-place modification
// would leave two records sharing the same UniqueBy key.
type UniquenessViolationError struct {
	Table       string
	Key         string
	ExistingID  uint64
	AttemptedID uint64
}

func uniquenessErrf(table, key string, existingID, attemptedID uint64) error {
	return &UniquenessViolationError{table, key, existingID, attemptedID}
}

func (e *UniquenessViolationError) Error() string {
	return fmt.Sprintf("%s: uniqueness constraint violated for key %q: id %d conflicts with existing id %d",
		e.Table, e.Key, e.AttemptedID, e.ExistingID)
}

// StackNotEmptyError is returned by SetRevision when the table has an open
// undo session.
type StackNotEmptyError struct {
	Table string
}

func (e *StackNotEmptyError) Error() string {
	return fmt.Sprintf("%s: cannot set revision while the undo stack is non-empty", e.Table)
}

// RevisionOutOfRangeError is returned by LoadTable when a table's
// persisted revision metadata does not fit in an int64.
type RevisionOutOfRangeError struct {
	Table     string
	Requested uint64
}

func (e *RevisionOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: revision %d is too high to set", e.Table, e.Requested)
}

// InconsistentUndoStackError is returned by Database.RegisterTable when a
// previously-registered table of the same name has an undo stack revision
// range that disagrees with the one being (re-)registered, suggesting
// database corruption.
type InconsistentUndoStackError struct {
	Table         string
	Got, Expected [2]int64
}

func (e *InconsistentUndoStackError) Error() string {
	return fmt.Sprintf("%s: existing undo stack revision range [%d, %d] is inconsistent with other tables in the database (revision range [%d, %d]); corrupted database?",
		e.Table, e.Got[0], e.Got[1], e.Expected[0], e.Expected[1])
}

// BackendError wraps a failure returned by the underlying KV storage
// backend, tagged with the operation that failed.
type BackendError struct {
	Op  string
	Err error
}

func backendErrf(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Error() string {
	return fmt.Sprintf("chainbase: %s: %v", e.Op, e.Err)
}
