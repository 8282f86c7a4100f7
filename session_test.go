package chainbase

import "testing"

func TestSession_PushKeepsChanges(t *testing.T) {
	tbl := newWidgetTable()
	sess := tbl.StartUndoSession(true)
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	sess.Push()

	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, wanted 1", tbl.Len())
	}
	if !tbl.hasUndo() {
		t.Fatalf("frame should remain on the stack after Push")
	}

	// Close after Push must be a no-op: the handle is disarmed.
	sess.Close()
	if tbl.Len() != 1 {
		t.Fatalf("Len after Close = %d, wanted 1 (Close must not undo after Push)", tbl.Len())
	}
}

func TestSession_CloseUndoesUnpushedFrame(t *testing.T) {
	tbl := newWidgetTable()
	sess := tbl.StartUndoSession(true)
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	sess.Close()

	if tbl.Len() != 0 {
		t.Fatalf("Len = %d, wanted 0", tbl.Len())
	}
}

func TestSession_UndoIsSingleShot(t *testing.T) {
	tbl := newWidgetTable()
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))

	outer := tbl.StartUndoSession(true)
	inner := tbl.StartUndoSession(true)
	rec := must(tbl.Get(0))
	ensure(tbl.Modify(rec, func(w *widget) { w.Payload = "b" }))

	inner.Undo()
	if len(tbl.stack) != 1 {
		t.Fatalf("stack len after inner.Undo = %d, wanted 1", len(tbl.stack))
	}

	// A second Undo call on an already-disarmed handle must do nothing,
	// even though the table now has a different top frame.
	inner.Undo()
	if len(tbl.stack) != 1 {
		t.Fatalf("stack len after second inner.Undo = %d, wanted 1 (must be a no-op)", len(tbl.stack))
	}

	outer.Close()
	if tbl.hasUndo() {
		t.Fatalf("stack should be empty after outer.Close")
	}
}

func TestSession_SquashSingleFramePops(t *testing.T) {
	tbl := newWidgetTable()
	sess := tbl.StartUndoSession(true)
	must(tbl.Emplace(func(id uint64) widget { return widget{ID: id, Payload: "a"} }))
	sess.Squash()

	if tbl.hasUndo() {
		t.Fatalf("stack should be empty after squashing the only frame")
	}
	if tbl.Revision() != 0 {
		t.Fatalf("Revision = %d, wanted 0", tbl.Revision())
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, wanted 1 (squash must not discard the change)", tbl.Len())
	}
}
