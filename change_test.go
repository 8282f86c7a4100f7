package chainbase

import "testing"

func TestOpString(t *testing.T) {
	if OpEmplace.String() != "emplace" || OpModify.String() != "modify" || OpRemove.String() != "remove" {
		t.Fatalf("unexpected Op.String values")
	}
	if got := Op(999).String(); got == "emplace" || got == "modify" || got == "remove" {
		t.Fatalf("unexpected Op(999).String() = %q", got)
	}
}
