package bytecode

import (
	"reflect"
	"testing"
)

func TestDebugInfoRoundTrip(t *testing.T) {
	d := NewDebugInfo()
	d.Record(0, 1, 1)
	d.Record(3, 2, 5)
	d.Record(7, 4, 1)

	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := UnmarshalDebugInfo(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(d, got) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, d)
	}
}

func TestDebugInfoMarshalDeterministic(t *testing.T) {
	d := NewDebugInfo()
	d.Record(0, 1, 1)
	d.Record(5, 2, 3)

	a, _ := d.Marshal()
	b, _ := d.Marshal()
	if !reflect.DeepEqual(a, b) {
		t.Error("canonical encoding produced different bytes for the same table")
	}
}

func TestDebugInfoLookup(t *testing.T) {
	d := NewDebugInfo()
	d.Record(0, 1, 1)
	d.Record(4, 2, 1)
	d.Record(9, 3, 7)

	tests := []struct {
		pc        int
		line, col int
		ok        bool
	}{
		{0, 1, 1, true},
		{3, 1, 1, true},
		{4, 2, 1, true},
		{8, 2, 1, true},
		{9, 3, 7, true},
		{100, 3, 7, true},
	}

	for _, tt := range tests {
		line, col, ok := d.Lookup(tt.pc)
		if ok != tt.ok || line != tt.line || col != tt.col {
			t.Errorf("Lookup(%d) = %d:%d %t, want %d:%d %t",
				tt.pc, line, col, ok, tt.line, tt.col, tt.ok)
		}
	}
}

func TestDebugInfoLookupEmpty(t *testing.T) {
	d := NewDebugInfo()
	if _, _, ok := d.Lookup(0); ok {
		t.Error("Lookup on empty table should miss")
	}
}

func TestDebugInfoCollapsesDuplicates(t *testing.T) {
	d := NewDebugInfo()
	d.Record(0, 1, 1)
	d.Record(1, 1, 1)
	d.Record(2, 1, 1)
	d.Record(3, 2, 1)

	if len(d.Positions) != 2 {
		t.Errorf("got %d entries, want 2", len(d.Positions))
	}
}

func TestUnmarshalDebugInfoRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalDebugInfo([]byte{0xFF, 0x00, 0x13}); err == nil {
		t.Error("expected an error for malformed input")
	}
}
