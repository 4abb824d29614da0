package input

import "strings"

// column identifies a recognised workbook column
type column int

const (
	colKind column = iota
	colType
	colCase
	colLabel
	colEnd
	colPosition
	colMagnitude
	colShear
	colMoment
	numColumns
)

var columnNames = [numColumns]string{
	"kind", "type", "case", "label", "end", "position", "magnitude", "shear", "moment",
}

func (c column) String() string { return columnNames[c] }

// matchers are tried in column order; the first match claims the header cell,
// so "Load Type" is a type column and "Load Case" a case column, not magnitudes.
var matchers = [numColumns]func(h string) bool{
	colKind:      oneOf("kind", "element", "item", "member"),
	colType:      contains("type"),
	colCase:      contains("case"),
	colLabel:     oneOf("label", "name", "description", "remarks", "note"),
	colEnd:       func(h string) bool { return h == "to" || strings.HasPrefix(h, "end") },
	colPosition:  func(h string) bool { return strings.Contains(h, "position") || oneOf("x", "distance", "dist", "start", "from", "location", "length")(h) },
	colMagnitude: contains("magnitude", "value", "intensity", "load"),
	colShear:     contains("shear"),
	colMoment:    contains("moment"),
}

func oneOf(words ...string) func(string) bool {
	return func(h string) bool {
		for _, w := range words {
			if h == w {
				return true
			}
		}
		return false
	}
}

func contains(words ...string) func(string) bool {
	return func(h string) bool {
		for _, w := range words {
			if strings.Contains(h, w) {
				return true
			}
		}
		return false
	}
}

// normalizeHeader lowercases a header cell and strips a trailing unit such as
// "(m)" or "[kN]"
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "(["); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// header maps recognised columns to their 0-based cell index
type header [numColumns]int

// detectHeader returns the column layout of a header row. Unrecognised cells
// are ignored; the first cell to claim a column wins.
func detectHeader(row []string) header {
	var h header
	for i := range h {
		h[i] = -1
	}
	for idx, cell := range row {
		name := normalizeHeader(cell)
		if name == "" {
			continue
		}
		for c := column(0); c < numColumns; c++ {
			if matchers[c](name) {
				if h[c] < 0 {
					h[c] = idx
				}
				break
			}
		}
	}
	return h
}

func (h header) has(cols ...column) bool {
	for _, c := range cols {
		if h[c] < 0 {
			return false
		}
	}
	return true
}

// isBeamLayout reports whether the header describes beam elements
func (h header) isBeamLayout() bool { return h.has(colKind, colPosition) }

// isTableLayout reports whether the header describes tabulated diagrams
func (h header) isTableLayout() bool { return h.has(colPosition, colShear, colMoment) }

// cell returns the trimmed text of column c in row, or "" when absent
func (h header) cell(row []string, c column) string {
	i := h[c]
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
