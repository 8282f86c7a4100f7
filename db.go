package chainbase

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

const metaBucket = "chainbase:meta"

// MergeFunc combines a bucket's existing value for a key with an incoming
// one. It is the concrete realization of spec.md §6's merge(k, v) op,
// whose combining semantics the spec leaves user-defined.
type MergeFunc func(existing, incoming []byte) []byte

// Options configures Open, mirroring the reference implementation's own
// Options/Open shape (including its testing-vs-production bbolt tuning).
type Options struct {
	Logf      func(format string, args ...any)
	Verbose   bool
	IsTesting bool
	MmapSize  int
	ReadOnly  bool
	Merge     MergeFunc
}

// DB is the KV backend adapter spec.md §6 treats as an external
// collaborator: a thin, synchronous byte-level store that Tables are
// rehydrated from and written through to.
type DB struct {
	store   storage
	logf    func(format string, args ...any)
	verbose bool
	merge   MergeFunc
}

// Open opens (creating if necessary) a durable bbolt-backed DB at path.
func Open(path string, opt Options) (*DB, error) {
	bopt := &bbolt.Options{Timeout: 10 * time.Second, ReadOnly: opt.ReadOnly}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, backendErrf("open", err)
	}
	return newDB(newBoltStorage(bdb), opt), nil
}

// OpenMem opens a transient in-memory DB, the backend used by tests and by
// callers that don't need the undo engine's live state to survive restart.
func OpenMem(opt Options) *DB {
	return newDB(newMemStorage(), opt)
}

func newDB(store storage, opt Options) *DB {
	logf := opt.Logf
	if logf == nil && opt.Verbose {
		logf = func(format string, args ...any) { slog.Debug(fmt.Sprintf(format, args...)) }
	}
	return &DB{store: store, logf: logf, verbose: opt.Verbose, merge: opt.Merge}
}

func (db *DB) trace(format string, args ...any) {
	if db.logf != nil {
		db.logf(format, args...)
	}
}

// Close closes the underlying storage backend.
func (db *DB) Close() error {
	return db.store.Close()
}

// Get reads key from bucket, returning a nil slice if the bucket or key
// doesn't exist.
func (db *DB) Get(bucket string, key []byte) ([]byte, error) {
	tx, err := db.store.BeginTx(false)
	if err != nil {
		return nil, backendErrf("begin", err)
	}
	defer tx.Rollback()

	b := tx.Bucket(bucket, "")
	if b == nil {
		return nil, nil
	}
	v := b.Get(key)
	if v == nil {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put writes key/value into bucket, creating the bucket if necessary.
func (db *DB) Put(bucket string, key, value []byte) error {
	tx, err := db.store.BeginTx(true)
	if err != nil {
		return backendErrf("begin", err)
	}
	b, err := tx.CreateBucket(bucket, "")
	if err != nil {
		tx.Rollback()
		return backendErrf("createBucket", err)
	}
	if err := b.Put(key, value); err != nil {
		tx.Rollback()
		return backendErrf("put", err)
	}
	if err := tx.Commit(); err != nil {
		return backendErrf("commit", err)
	}
	return nil
}

// Delete removes key from bucket. Missing bucket or key is not an error.
func (db *DB) Delete(bucket string, key []byte) error {
	tx, err := db.store.BeginTx(true)
	if err != nil {
		return backendErrf("begin", err)
	}
	b := tx.Bucket(bucket, "")
	if b == nil {
		tx.Rollback()
		return nil
	}
	if err := b.Delete(key); err != nil {
		tx.Rollback()
		return backendErrf("delete", err)
	}
	if err := tx.Commit(); err != nil {
		return backendErrf("commit", err)
	}
	return nil
}

// Merge combines bucket's existing value for key with incoming using the
// DB's configured MergeFunc and stores the result, all within a single
// backend transaction. bbolt has no native merge primitive, so this is
// realized as read-modify-write rather than a storageBucket method.
func (db *DB) Merge(bucket string, key, incoming []byte) error {
	if db.merge == nil {
		return backendErrf("merge", fmt.Errorf("no MergeFunc configured"))
	}
	tx, err := db.store.BeginTx(true)
	if err != nil {
		return backendErrf("begin", err)
	}
	b, err := tx.CreateBucket(bucket, "")
	if err != nil {
		tx.Rollback()
		return backendErrf("createBucket", err)
	}
	existing := b.Get(key)
	merged := db.merge(existing, incoming)
	if err := b.Put(key, merged); err != nil {
		tx.Rollback()
		return backendErrf("put", err)
	}
	if err := tx.Commit(); err != nil {
		return backendErrf("commit", err)
	}
	return nil
}

func revisionKey(tableName string) []byte {
	return []byte(tableName + ":revision")
}

// SaveRevision persists a table's revision into the meta bucket, the
// caller-held metadata spec.md §6 says restart restores revision from.
func (db *DB) SaveRevision(tableName string, revision int64) error {
	return db.Put(metaBucket, revisionKey(tableName), strconv.AppendInt(nil, revision, 10))
}

// LoadRevision reads back a revision saved by SaveRevision. found is false
// if nothing has been saved for tableName yet. The result is unsigned
// because the persisted metadata is just decimal text written by whatever
// last called SaveRevision; unlike the in-memory Table.revision (a signed
// 64-bit counter per spec.md §3), nothing at this boundary guarantees the
// value actually fits. The range check spec.md §7 assigns to set_revision
// is made by LoadTable, against the raw parsed magnitude returned here.
func (db *DB) LoadRevision(tableName string) (revision uint64, found bool, err error) {
	raw, err := db.Get(metaBucket, revisionKey(tableName))
	if err != nil {
		return 0, false, err
	}
	if raw == nil {
		return 0, false, nil
	}
	revision, err = strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, false, backendErrf("LoadRevision", err)
	}
	return revision, true, nil
}

// LoadTable rehydrates tbl's live state from db's bucket named tbl.Name(),
// and restores its revision from previously saved metadata. The undo stack
// itself is never persisted (spec.md §6): a freshly loaded Table always
// starts Quiescent.
func LoadTable[T Record](db *DB, tbl *Table[T]) error {
	tx, err := db.store.BeginTx(false)
	if err != nil {
		return backendErrf("begin", err)
	}
	defer tx.Rollback()

	b := tx.Bucket(tbl.Name(), "")
	if b != nil {
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			id, err := decodeID(k)
			if err != nil {
				return err
			}
			rec, err := decodeRecord[T](v)
			if err != nil {
				return err
			}
			p := &rec
			tbl.live[id] = p
			tbl.order.Insert(id)
			if tbl.uniqueBy != nil {
				tbl.unique.set(tbl.uniqueBy(p), id)
			}
			if id >= tbl.nextID {
				tbl.nextID = id + 1
			}
		}
	}

	if revision, found, err := db.LoadRevision(tbl.Name()); err != nil {
		return err
	} else if found {
		if revision > math.MaxInt64 {
			return &RevisionOutOfRangeError{Table: tbl.Name(), Requested: revision}
		}
		if err := tbl.SetRevision(int64(revision)); err != nil {
			return err
		}
	}

	db.trace("chainbase: %s: loaded %d live records, revision %d", tbl.Name(), tbl.Len(), tbl.Revision())
	return nil
}

// PersistTable wires tbl so every Emplace, Modify, and Remove is written
// through to db immediately, matching spec.md §6: only live state is ever
// persisted, and it is persisted as it changes rather than batched at
// commit time.
func PersistTable[T Record](db *DB, tbl *Table[T]) {
	tbl.OnChange(func(op Op, id uint64, cur, old *T) {
		key := encodeID(id)
		switch op {
		case OpEmplace, OpModify:
			data, err := encodeRecord(cur)
			if err != nil {
				panic(err)
			}
			if err := db.Put(tbl.Name(), key, data); err != nil {
				panic(err)
			}
		case OpRemove:
			if err := db.Delete(tbl.Name(), key); err != nil {
				panic(err)
			}
		}
	})
}

// CommitTable commits tbl up to revision and persists the resulting
// revision to db's metadata, so a restart resumes from the same point.
func CommitTable[T Record](db *DB, tbl *Table[T], revision int64) error {
	tbl.Commit(revision)
	return db.SaveRevision(tbl.Name(), tbl.Revision())
}
