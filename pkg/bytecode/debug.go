package bytecode

import (
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Debug sidecars (.hydd) map instruction indices back to source
// positions. They are emitted next to .hydc output and are optional at
// run time: the VM works without one, it just loses line numbers in
// fault reports.

var (
	debugEncMode cbor.EncMode
	debugDecMode cbor.DecMode
)

func init() {
	var err error
	debugEncMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	debugDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// PCPosition records the source position of one instruction range. It
// applies from PC up to the next entry's PC.
type PCPosition struct {
	PC     int `cbor:"pc"`
	Line   int `cbor:"line"`
	Column int `cbor:"col"`
}

// DebugInfo is the decoded content of a .hydd sidecar.
type DebugInfo struct {
	Version   uint16       `cbor:"version"`
	Positions []PCPosition `cbor:"positions"`
}

// NewDebugInfo creates an empty debug table at the current format version.
func NewDebugInfo() *DebugInfo {
	return &DebugInfo{Version: FormatVersion}
}

// Record appends a position entry for the given instruction index.
// Consecutive entries with the same position are collapsed.
func (d *DebugInfo) Record(pc, line, column int) {
	if n := len(d.Positions); n > 0 {
		last := d.Positions[n-1]
		if last.Line == line && last.Column == column {
			return
		}
	}
	d.Positions = append(d.Positions, PCPosition{PC: pc, Line: line, Column: column})
}

// Lookup returns the source position covering an instruction index.
func (d *DebugInfo) Lookup(pc int) (line, column int, ok bool) {
	// Entries are sorted by PC; find the last entry at or before pc.
	i := sort.Search(len(d.Positions), func(i int) bool {
		return d.Positions[i].PC > pc
	})
	if i == 0 {
		return 0, 0, false
	}
	entry := d.Positions[i-1]
	return entry.Line, entry.Column, true
}

// Marshal encodes the debug table to canonical CBOR.
func (d *DebugInfo) Marshal() ([]byte, error) {
	return debugEncMode.Marshal(d)
}

// UnmarshalDebugInfo decodes a .hydd sidecar.
func UnmarshalDebugInfo(data []byte) (*DebugInfo, error) {
	var d DebugInfo
	if err := debugDecMode.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
