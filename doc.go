/*
Package chainbase implements a transactional, multi-versioned, in-memory
index layered over a persistent key-value store.

Callers evaluate a sequence of candidate state transitions against a set
of typed Tables. Each Table tracks the inverse of every mutation made
since an undo session was opened, so a caller that discovers a conflict
partway through a transition can roll back exactly what it did, down to
the exact bytes, without touching the rest.

We implement:

 1. Tables, typed collections of records keyed by a monotonically
    assigned 64-bit id, each carrying its own stack of undo frames.

 2. Sessions, scoped handles over a Table's undo stack that can be
    pushed (kept open), squashed (folded into the enclosing session),
    or undone (rolled back) exactly once.

 3. Databases, a façade over a fixed, ordered list of Tables that fans
    session lifecycle operations out across all of them in lock-step, so
    every table shares one revision timeline.

# Technical Details

**Undo frames.** Every Table carries a stack of undo frames, oldest at
the bottom. A frame records, for the duration it was on top of the
stack: which ids were newly created, which existing ids were modified
(first pre-image only), and which existing ids were removed. Undoing a
frame replays those three facts backwards; squashing a frame folds it
into the frame below without losing any of that information.

**Revisions.** Each frame is stamped with a revision number when opened.
Revisions increase by exactly one per pushed frame and form the clock a
Database uses to keep its Tables' undo stacks aligned with each other.

**Persistence boundary.** Only a Table's live state is ever persisted,
through the storage backend (bolt or in-memory). The undo stack itself
is volatile by design: it exists to let a caller retract recent,
uncommitted work, not to survive a restart.
*/
package chainbase
