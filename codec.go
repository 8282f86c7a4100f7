package chainbase

import "github.com/vmihailenco/msgpack/v5"

// encodeRecord renders rec as the opaque bytes stored against its id in the
// KV backend. The undo engine itself never looks inside these bytes (per
// spec.md §3); only this boundary layer and backendErrf's caller do.
func encodeRecord[T any](rec *T) ([]byte, error) {
	b, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, backendErrf("encode", err)
	}
	return b, nil
}

// decodeRecord is the inverse of encodeRecord, used when a Table is
// rehydrated from the backend by LoadTable.
func decodeRecord[T any](b []byte) (T, error) {
	var rec T
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return rec, backendErrf("decode", err)
	}
	return rec, nil
}
