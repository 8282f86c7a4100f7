package chainbase

import "fmt"

// Op identifies the kind of mutation a Table.OnChange callback observed.
type Op int

const (
	OpEmplace Op = iota
	OpModify
	OpRemove
)

func (v Op) String() string {
	switch v {
	case OpEmplace:
		return "emplace"
	case OpModify:
		return "modify"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("invalid op %d", int(v))
	}
}
