package grid

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the payload carried by a Cell
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	// KindAbsent marks a value removed by output sanitization. It behaves like
	// an empty cell everywhere and encodes as JSON null.
	KindAbsent
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindAbsent:
		return "absent"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Cell is a single spreadsheet value: empty, string, number or absent.
// The zero value is an empty cell.
type Cell struct {
	kind Kind
	str  string
	num  float64
}

// Empty returns an empty cell
func Empty() Cell { return Cell{} }

// Text returns a string cell
func Text(s string) Cell { return Cell{kind: KindString, str: s} }

// Number returns a numeric cell. Non-finite values are allowed here; they are
// replaced by the output sanitizer before serialization.
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// Absent returns the explicit no-value marker
func Absent() Cell { return Cell{kind: KindAbsent} }

// Kind returns the cell's tag
func (c Cell) Kind() Kind { return c.kind }

// AsString returns the string payload, or "" for non-string cells
func (c Cell) AsString() string { return c.str }

// AsNumber returns the numeric payload, or 0 for non-numeric cells
func (c Cell) AsNumber() float64 { return c.num }

// IsEmpty reports whether the cell counts as empty for occupancy: empty and
// absent cells, whitespace-only strings and NaN numbers.
func (c Cell) IsEmpty() bool {
	switch c.kind {
	case KindString:
		return strings.TrimSpace(c.str) == ""
	case KindNumber:
		return math.IsNaN(c.num)
	default:
		return true
	}
}

// IsNonFinite reports whether the cell is a number that is NaN or ±Inf
func (c Cell) IsNonFinite() bool {
	return c.kind == KindNumber && (math.IsNaN(c.num) || math.IsInf(c.num, 0))
}

// String renders the cell as text. Numbers use the shortest representation
// that round-trips, empty and absent cells render as "".
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.str
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Equal reports whether two cells carry the same tag and payload
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindString:
		return c.str == o.str
	case KindNumber:
		return c.num == o.num || (math.IsNaN(c.num) && math.IsNaN(o.num))
	}
	return true
}

// MarshalJSON encodes strings and numbers natively and empty/absent cells as null.
// Non-finite numbers are rejected, run the output sanitizer first.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindString:
		return json.Marshal(c.str)
	case KindNumber:
		if c.IsNonFinite() {
			return nil, fmt.Errorf("grid: cannot encode non-finite number %v", c.num)
		}
		return json.Marshal(c.num)
	default:
		return []byte("null"), nil
	}
}

// missingTokens are the spellings spreadsheet exports use for a missing value
var missingTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// IsMissingToken reports whether s, ignoring surrounding space, spells a missing value
func IsMissingToken(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// Parse turns raw loader text into a cell: "" and missing-value tokens such
// as "NA" or "#N/A" become empty, numeric text becomes a number, anything
// else stays a string.
func Parse(s string) Cell {
	if s == "" {
		return Empty()
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Text(s)
	}
	if IsMissingToken(trimmed) {
		return Empty()
	}
	if isNumericLiteral(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Number(f)
		}
	}
	return Text(s)
}

// isNumericLiteral rejects spellings strconv accepts but spreadsheets never
// produce as numbers ("inf", "NaN", "0x1p-2", "1_000").
func isNumericLiteral(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}
