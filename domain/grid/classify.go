package grid

// RowKind is the shape-based classification of a row
type RowKind int

const (
	// Blank rows have no non-empty cell
	Blank RowKind = iota
	// Name rows hold a single standalone value, a candidate table title
	Name
	// Header rows hold more than one value. Whether such a row is a header or
	// data depends on context the segmenter tracks.
	Header
	// Data rows extend an open table. Classify never returns it; only the
	// segmenter, which knows whether a table is open, assigns it.
	Data
)

func (k RowKind) String() string {
	switch k {
	case Blank:
		return "BLANK"
	case Name:
		return "NAME"
	case Header:
		return "HEADER"
	case Data:
		return "DATA"
	}
	return "UNKNOWN"
}

// Classify labels a row from its occupancy alone
func Classify(r Row) RowKind {
	switch n := r.Occupancy(); {
	case n == 0:
		return Blank
	case n == 1:
		return Name
	default:
		return Header
	}
}
