package chainbase

// Record is the constraint a type must satisfy to be stored in a Table.
// RecordID returns the record's primary key; a Table treats this value as
// immutable for the lifetime of the record, the same way a row's id column
// never changes once inserted.
type Record interface {
	RecordID() uint64
}
