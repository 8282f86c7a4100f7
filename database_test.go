package chainbase

import (
	"errors"
	"testing"
)

type account struct {
	ID      uint64
	Balance int64
}

func (a account) RecordID() uint64 { return a.ID }

// S6 — multi-table fan-out: two tables registered on one Database share a
// single revision timeline and roll back together.
func TestDatabase_MultiTableFanOut(t *testing.T) {
	widgets := newWidgetTable()
	accounts := NewTable[account]("accounts", TableOptions[account]{})

	db := NewDatabase()
	ensure(RegisterTable(db, widgets))
	ensure(RegisterTable(db, accounts))

	sess := db.StartUndoSession(true)
	if sess.Revision() != 1 {
		t.Fatalf("composite session revision = %d, wanted 1", sess.Revision())
	}

	must(widgets.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	must(accounts.Emplace(func(id uint64) account { return account{ID: id, Balance: 100} }))

	sess.Undo()

	if widgets.Len() != 0 || accounts.Len() != 0 {
		t.Fatalf("widgets.Len=%d accounts.Len=%d, wanted 0, 0", widgets.Len(), accounts.Len())
	}
	if db.Revision() != 0 {
		t.Fatalf("db.Revision = %d, wanted 0", db.Revision())
	}
}

func TestDatabase_RegisterTableRealignsFreshTable(t *testing.T) {
	widgets := newWidgetTable()
	db := NewDatabase()
	ensure(RegisterTable(db, widgets))

	for i := 0; i < 3; i++ {
		widgets.StartUndoSession(true).Push()
	}
	widgets.Commit(widgets.Revision())

	accounts := NewTable[account]("accounts", TableOptions[account]{})
	ensure(RegisterTable(db, accounts))

	if accounts.Revision() != widgets.Revision() {
		t.Fatalf("accounts.Revision = %d, wanted %d (realigned to existing table)", accounts.Revision(), widgets.Revision())
	}
}

func TestDatabase_RegisterTableDetectsInconsistentReRegistration(t *testing.T) {
	widgets := newWidgetTable()
	db := NewDatabase()
	ensure(RegisterTable(db, widgets))
	widgets.StartUndoSession(true).Push()

	accounts := NewTable[account]("accounts", TableOptions[account]{})
	ensure(RegisterTable(db, accounts))
	accounts.StartUndoSession(true).Push()
	accounts.StartUndoSession(true).Push() // accounts now two revisions ahead

	err := RegisterTable(db, accounts)
	var iuse *InconsistentUndoStackError
	if !errors.As(err, &iuse) {
		t.Fatalf("re-registering a diverged table: err = %v, wanted *InconsistentUndoStackError", err)
	}
}

func TestDatabase_RevisionEmptyDatabase(t *testing.T) {
	db := NewDatabase()
	if db.Revision() != -1 {
		t.Fatalf("Revision on empty database = %d, wanted -1", db.Revision())
	}
}

func TestDatabase_CommitAndSquashFanOut(t *testing.T) {
	widgets := newWidgetTable()
	accounts := NewTable[account]("accounts", TableOptions[account]{})
	db := NewDatabase()
	ensure(RegisterTable(db, widgets))
	ensure(RegisterTable(db, accounts))

	s1 := db.StartUndoSession(true)
	must(widgets.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	must(accounts.Emplace(func(id uint64) account { return account{ID: id, Balance: 1} }))
	s1.Push()

	s2 := db.StartUndoSession(true)
	s2.Squash()

	if len(widgets.stack) != 1 || len(accounts.stack) != 1 {
		t.Fatalf("expected one frame left per table after squash")
	}

	db.Commit(db.Revision())
	if widgets.hasUndo() || accounts.hasUndo() {
		t.Fatalf("expected both stacks empty after commit")
	}
	if widgets.Len() != 1 || accounts.Len() != 1 {
		t.Fatalf("committed rows should remain live")
	}
}
