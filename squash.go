package chainbase

// Squash merges the top undo frame into the one below it, preserving the
// net effect as a single frame at the lower revision. If the stack holds
// exactly one frame, Squash behaves like Commit of that frame: it is
// popped, its changes stay live, and the revision drops by one.
//
// The per-id merge follows the reference implementation's case table
// exactly: a case the invariants in §3 rule out (an id modified or removed
// in the top frame although the frame below already recorded its removal)
// panics rather than silently producing a wrong merged frame.
func (t *Table[T]) Squash() {
	if !t.hasUndo() {
		return
	}
	if len(t.stack) == 1 {
		t.stack = t.stack[:0]
		t.revision--
		return
	}

	state := t.stack[len(t.stack)-1]
	prev := t.stack[len(t.stack)-2]

	for id, y := range state.oldValues {
		if _, isNew := prev.newIDs[id]; isNew {
			// new+upd -> new: prev's creation absorbs the update.
			continue
		}
		if _, wasModified := prev.oldValues[id]; wasModified {
			// upd+upd -> upd, keeping prev's earlier pre-image.
			continue
		}
		if _, wasRemoved := prev.removedValues[id]; wasRemoved {
			panic("chainbase: squash: id modified in a frame on top of its own removal")
		}
		// nop+upd -> upd
		prev.oldValues[id] = y
	}

	for id := range state.newIDs {
		prev.newIDs[id] = struct{}{}
	}

	for id, y := range state.removedValues {
		if _, isNew := prev.newIDs[id]; isNew {
			// new+del -> nop: the creation never escaped prev.
			delete(prev.newIDs, id)
			continue
		}
		if x, wasModified := prev.oldValues[id]; wasModified {
			// upd+del -> del, keeping prev's pre-image.
			prev.removedValues[id] = x
			delete(prev.oldValues, id)
			continue
		}
		if _, alreadyRemoved := prev.removedValues[id]; alreadyRemoved {
			panic("chainbase: squash: id removed twice across adjacent frames")
		}
		// nop+del -> del
		prev.removedValues[id] = y
	}

	t.stack = t.stack[:len(t.stack)-1]
	t.revision--

	t.trace("chainbase: %s: squash, revision now %d", t.name, t.revision)
}
