package chainbase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DumpFlags controls which sections Table.Dump includes.
type DumpFlags uint64

const (
	DumpHeader DumpFlags = 1 << iota
	DumpRows
	DumpStack

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders a Table's live state and undo-stack depth for debugging.
// Output format is not stable and not meant for machine consumption.
func (t *Table[T]) Dump(f DumpFlags) string {
	var buf strings.Builder

	if f.Contains(DumpHeader) {
		fmt.Fprintln(&buf, rpadf('=', "%s (%d rows, revision %d, %d frames)", t.name, len(t.live), t.revision, len(t.stack)))
	}

	if f.Contains(DumpStack) {
		for i, frame := range t.stack {
			fmt.Fprintf(&buf, "  frame[%d]: revision=%d new=%d mod=%d removed=%d\n",
				i, frame.revision, len(frame.newIDs), len(frame.oldValues), len(frame.removedValues))
		}
	}

	if f.Contains(DumpRows) {
		t.Scan(0, func(id uint64, rec *T) bool {
			data, err := json.Marshal(rec)
			if err != nil {
				fmt.Fprintf(&buf, "  %d: ** ERROR: %v\n", id, err)
			} else {
				fmt.Fprintf(&buf, "  %d: %s\n", id, data)
			}
			return true
		})
	}

	return buf.String()
}

func rpadf(pad rune, format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	return rpad(s, 80, pad)
}
