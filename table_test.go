package chainbase

import (
	"errors"
	"testing"
)

type widget struct {
	ID      uint64
	Payload string
}

func (w widget) RecordID() uint64 { return w.ID }

func newWidgetTable() *Table[widget] {
	return NewTable[widget]("widgets", TableOptions[widget]{})
}

// S1 — Create/undo.
func TestTable_CreateUndo(t *testing.T) {
	tbl := newWidgetTable()

	sess := tbl.StartUndoSession(true)
	if sess.Revision() != 1 {
		t.Fatalf("session revision = %d, wanted 1", sess.Revision())
	}

	if _, err := tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }); err != nil {
		t.Fatalf("Emplace: %v", err)
	}

	sess.Close()

	if tbl.Len() != 0 {
		t.Fatalf("Len = %d, wanted 0", tbl.Len())
	}
	if tbl.nextID != 0 {
		t.Fatalf("nextID = %d, wanted 0", tbl.nextID)
	}
	if tbl.Revision() != 0 {
		t.Fatalf("Revision = %d, wanted 0", tbl.Revision())
	}
	if tbl.hasUndo() {
		t.Fatalf("stack should be empty after undo")
	}
}

// S2 — Modify/undo preserves first pre-image.
func TestTable_ModifyUndoPreservesFirstPreImage(t *testing.T) {
	tbl := newWidgetTable()
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))

	sess := tbl.StartUndoSession(true)
	defer sess.Close()

	rec := must(tbl.Get(0))
	ensure(tbl.Modify(rec, func(w *widget) { w.Payload = "b" }))
	ensure(tbl.Modify(rec, func(w *widget) { w.Payload = "c" }))

	sess.Undo()

	got := must(tbl.Get(0))
	if got.Payload != "a" {
		t.Fatalf("Payload after undo = %q, wanted %q", got.Payload, "a")
	}
}

// S3 — Remove-of-new cancels.
func TestTable_RemoveOfNewCancels(t *testing.T) {
	tbl := newWidgetTable()

	sess := tbl.StartUndoSession(true)
	defer sess.Close()

	rec := must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	ensure(tbl.Remove(rec))

	top := tbl.top()
	if len(top.newIDs) != 0 || len(top.oldValues) != 0 || len(top.removedValues) != 0 {
		t.Fatalf("top frame not empty after remove-of-new: %+v", top)
	}

	sess.Undo()

	if tbl.Len() != 0 || tbl.nextID != 0 {
		t.Fatalf("Len=%d nextID=%d, wanted 0, 0", tbl.Len(), tbl.nextID)
	}
}

// S4 — Squash modify+remove.
func TestTable_SquashModifyThenRemove(t *testing.T) {
	tbl := newWidgetTable()
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))

	s1 := tbl.StartUndoSession(true)
	rec := must(tbl.Get(0))
	ensure(tbl.Modify(rec, func(w *widget) { w.Payload = "b" }))

	s2 := tbl.StartUndoSession(true)
	ensure(tbl.Remove(rec))
	s2.Squash()

	top := tbl.top()
	if len(top.oldValues) != 0 {
		t.Fatalf("old_values should be empty after squash, got %+v", top.oldValues)
	}
	if pre, ok := top.removedValues[0]; !ok || pre.Payload != "a" {
		t.Fatalf("removed_values[0] = %+v, wanted Payload=a", pre)
	}
	if len(top.newIDs) != 0 {
		t.Fatalf("new_ids should be empty, got %+v", top.newIDs)
	}

	s1.Undo()

	got := must(tbl.Get(0))
	if got.Payload != "a" {
		t.Fatalf("Payload after undo = %q, wanted %q", got.Payload, "a")
	}
}

// S5 — Commit drops undo.
func TestTable_CommitDropsUndo(t *testing.T) {
	tbl := newWidgetTable()

	s1 := tbl.StartUndoSession(true) // revision 1
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))

	s2 := tbl.StartUndoSession(true) // revision 2
	rec := must(tbl.Get(0))
	ensure(tbl.Modify(rec, func(w *widget) { w.Payload = "b" }))

	tbl.Commit(1)
	s1.Push()
	_ = s2

	if len(tbl.stack) != 1 {
		t.Fatalf("stack len = %d, wanted 1", len(tbl.stack))
	}
	if pre, ok := tbl.stack[0].oldValues[0]; !ok || pre.Payload != "a" {
		t.Fatalf("remaining frame's old_values[0] = %+v, wanted Payload=a", pre)
	}

	tbl.Undo()

	got := must(tbl.Get(0))
	if got.Payload != "a" {
		t.Fatalf("Payload after undo = %q, wanted %q", got.Payload, "a")
	}
	if tbl.hasUndo() {
		t.Fatalf("stack should be empty")
	}
	if tbl.Revision() != 1 {
		t.Fatalf("Revision = %d, wanted 1", tbl.Revision())
	}
}

func TestTable_GetNotFound(t *testing.T) {
	tbl := newWidgetTable()
	_, err := tbl.Get(42)
	var nfe *NotFoundError
	if !errors.As(err, &nfe) || nfe.ID != 42 {
		t.Fatalf("Get(missing) err = %v, wanted *NotFoundError{ID:42}", err)
	}

	if _, ok := tbl.Find(42); ok {
		t.Fatalf("Find(missing) ok = true, wanted false")
	}
}

func TestTable_UniquenessViolationOnEmplace(t *testing.T) {
	tbl := NewTable[widget]("widgets", TableOptions[widget]{
		UniqueBy: func(w *widget) string { return w.Payload },
	})
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "dup"} }))

	_, err := tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "dup"} })
	var uve *UniquenessViolationError
	if !errors.As(err, &uve) {
		t.Fatalf("second Emplace err = %v, wanted *UniquenessViolationError", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, wanted 1 (failed emplace must not insert)", tbl.Len())
	}
}

func TestTable_ModifyUniquenessViolationPanics(t *testing.T) {
	tbl := NewTable[widget]("widgets", TableOptions[widget]{
		UniqueBy: func(w *widget) string { return w.Payload },
	})
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	rec := must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "b"} }))

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on uniqueness violation during Modify")
		}
	}()
	_ = tbl.Modify(rec, func(w *widget) { w.Payload = "a" })
}

func TestTable_SetRevisionRequiresEmptyStack(t *testing.T) {
	tbl := newWidgetTable()
	sess := tbl.StartUndoSession(true)
	defer sess.Close()

	var sne *StackNotEmptyError
	if err := tbl.SetRevision(5); !errors.As(err, &sne) {
		t.Fatalf("SetRevision with open session err = %v, wanted *StackNotEmptyError", err)
	}
}

func TestTable_SetRevisionThenRevision(t *testing.T) {
	tbl := newWidgetTable()
	ensure(tbl.SetRevision(7))
	if tbl.Revision() != 7 {
		t.Fatalf("Revision = %d, wanted 7", tbl.Revision())
	}
}

func TestTable_UndoStackRevisionRangeEmptyAndLayered(t *testing.T) {
	tbl := newWidgetTable()
	ensure(tbl.SetRevision(3))

	begin, end := tbl.UndoStackRevisionRange()
	if begin != 3 || end != 3 {
		t.Fatalf("range (quiescent) = (%d,%d), wanted (3,3)", begin, end)
	}

	tbl.StartUndoSession(true)
	tbl.StartUndoSession(true)

	begin, end = tbl.UndoStackRevisionRange()
	if begin != 3 || end != 5 {
		t.Fatalf("range (layered) = (%d,%d), wanted (3,5)", begin, end)
	}
}

func TestTable_ScanOrdersByID(t *testing.T) {
	tbl := newWidgetTable()
	for _, p := range []string{"a", "b", "c"} {
		must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: p} }))
	}

	var ids []uint64
	tbl.Scan(0, func(id uint64, rec *widget) bool {
		ids = append(ids, id)
		return true
	})
	if len(ids) != 3 || ids[0] != 0 || ids[1] != 1 || ids[2] != 2 {
		t.Fatalf("Scan order = %v, wanted [0 1 2]", ids)
	}
}

func TestTable_OnChangeReceivesOps(t *testing.T) {
	tbl := newWidgetTable()
	var ops []Op
	tbl.OnChange(func(op Op, id uint64, cur, old *widget) {
		ops = append(ops, op)
	})

	rec := must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	ensure(tbl.Modify(rec, func(w *widget) { w.Payload = "b" }))
	ensure(tbl.Remove(rec))

	if len(ops) != 3 || ops[0] != OpEmplace || ops[1] != OpModify || ops[2] != OpRemove {
		t.Fatalf("ops = %v, wanted [emplace modify remove]", ops)
	}
}

func TestTable_DisabledSessionIsNoOp(t *testing.T) {
	tbl := newWidgetTable()
	sess := tbl.StartUndoSession(false)
	if sess.Revision() != -1 {
		t.Fatalf("disabled session revision = %d, wanted -1", sess.Revision())
	}
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	sess.Close()

	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, wanted 1 (disabled session must not roll back)", tbl.Len())
	}
}
