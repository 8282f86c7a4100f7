package chainbase

import "strconv"

// encodeID renders an id as the textual decimal key under which its record
// is stored in the backend. Decimal (rather than fixed-width binary) is
// chosen so the persisted data is directly inspectable with any generic KV
// browsing tool, at the cost of keys not sorting numerically in the
// backend's own byte order; callers that need ordered iteration go through
// idSet instead of relying on backend key order.
func encodeID(id uint64) []byte {
	return strconv.AppendUint(nil, id, 10)
}

// decodeID parses a key produced by encodeID.
func decodeID(key []byte) (uint64, error) {
	id, err := strconv.ParseUint(string(key), 10, 64)
	if err != nil {
		return 0, backendErrf("decodeID", err)
	}
	return id, nil
}
