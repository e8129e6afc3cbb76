package aytracker

import "math"

// TuningTable converts notes into chip tone periods. Index 0 is C-1 and each
// following entry is one semitone higher.
type TuningTable []int

// NumTuningEntries is the size of the reference tables: 8 octaves of 12
// semitones.
const NumTuningEntries = 96

// ProTrackerTable is the tone table of ProTracker 3.4 and later (selector 0
// in PT3 headers).
var ProTrackerTable = TuningTable{
	0x0C22, 0x0B73, 0x0ACF, 0x0A33, 0x09A1, 0x0917, 0x0894, 0x0819, 0x07A4, 0x0737, 0x06CF, 0x066D,
	0x0611, 0x05BA, 0x0567, 0x051A, 0x04D0, 0x048B, 0x044A, 0x040C, 0x03D2, 0x039B, 0x0367, 0x0337,
	0x0308, 0x02DD, 0x02B4, 0x028D, 0x0268, 0x0246, 0x0225, 0x0206, 0x01E9, 0x01CE, 0x01B4, 0x019B,
	0x0184, 0x016E, 0x015A, 0x0146, 0x0134, 0x0123, 0x0112, 0x0103, 0x00F5, 0x00E7, 0x00DA, 0x00CE,
	0x00C2, 0x00B7, 0x00AD, 0x00A3, 0x009A, 0x0091, 0x0089, 0x0082, 0x007A, 0x0073, 0x006D, 0x0067,
	0x0061, 0x005C, 0x0056, 0x0052, 0x004D, 0x0049, 0x0045, 0x0041, 0x003D, 0x003A, 0x0036, 0x0033,
	0x0031, 0x002E, 0x002B, 0x0029, 0x0027, 0x0024, 0x0022, 0x0020, 0x001F, 0x001D, 0x001B, 0x001A,
	0x0018, 0x0017, 0x0016, 0x0014, 0x0013, 0x0012, 0x0011, 0x0010, 0x000F, 0x000E, 0x000D, 0x000C,
}

// referenceTables are selected by the tone table byte of PT3 headers and the
// NoteTable key of VT2 modules.
var referenceTables = [...]TuningTable{
	ProTrackerTable,
	EqualTempered(1750000, 440),
	EqualTempered(DefaultChipClock, 435),
	EqualTempered(DefaultChipClock, 440),
}

// NumReferenceTables is the number of valid tuning table selectors.
const NumReferenceTables = len(referenceTables)

// ReferenceTable returns a copy of the reference table for a selector. Unknown
// selectors give the default table.
func ReferenceTable(selector int) TuningTable {
	if selector < 0 || selector >= len(referenceTables) {
		return DefaultTuningTable()
	}
	return referenceTables[selector].Copy()
}

// DefaultTuningTable is used when a module does not specify a table.
func DefaultTuningTable() TuningTable {
	return ProTrackerTable.Copy()
}

// EqualTempered computes a 96-entry equal tempered table for a chip clock,
// with A-4 tuned to a4Hz. The AY tone generator outputs clock / (16 * period).
func EqualTempered(clockHz int, a4Hz float64) TuningTable {
	ret := make(TuningTable, NumTuningEntries)
	a4 := Note{Name: NoteA, Octave: 4}.Semitone()
	for i := range ret {
		freq := a4Hz * math.Pow(2, float64(i-a4)/12)
		period := int(math.Round(float64(clockHz) / (16 * freq)))
		ret[i] = min(max(period, 1), 0xFFF)
	}
	return ret
}

// Lookup returns the tone period for a note. NoteNone and NoteOff never
// consult the table. ok is false when the note is not pitched or its index
// falls outside the table; callers must then leave the tone register as is.
func (t TuningTable) Lookup(n Note) (period int, ok bool) {
	if !n.Pitched() {
		return 0, false
	}
	i := n.Semitone()
	if i < 0 || i >= len(t) {
		return 0, false
	}
	return t[i], true
}

// Copy returns a copy of the table that shares no memory with the original.
func (t TuningTable) Copy() TuningTable {
	if t == nil {
		return nil
	}
	return append(TuningTable{}, t...)
}
