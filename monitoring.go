package chainbase

// BucketStats returns the underlying storage bucket's statistics for a
// table backed by db — bucket byte size, independent of Table.Len, which
// only reports record count.
func (db *DB) BucketStats(bucket string) (bucketStats, error) {
	tx, err := db.store.BeginTx(false)
	if err != nil {
		return bucketStats{}, backendErrf("begin", err)
	}
	defer tx.Rollback()
	b := tx.Bucket(bucket, "")
	if b == nil {
		return bucketStats{}, nil
	}
	return b.Stats(), nil
}
