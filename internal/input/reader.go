// Package input reads beam definitions and tabulated diagrams from .xlsx
// workbooks.
package input

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

// headerSearchRows is how many leading rows are scanned for a header row
const headerSearchRows = 10

// Mode tells how a worksheet was interpreted
type Mode string

const (
	// ModeBeam is a list of beam, support and load rows to be solved
	ModeBeam Mode = "beam"
	// ModeTable is precomputed position, shear and moment samples
	ModeTable Mode = "table"
)

// Options configures workbook reading
type Options struct {
	// Sheet to read; the first sheet when empty
	Sheet string
}

// Table holds tabulated shear force and bending moment samples
type Table struct {
	Length float64
	Rows   []TableRow
	Shear  *statics.Function
	Moment *statics.Function
}

// TableRow is one tabulated station
type TableRow struct {
	Row      int // worksheet row
	Position float64
	Shear    float64
	Moment   float64
}

// Source is the result of reading a workbook
type Source struct {
	Sheet string
	Mode  Mode
	Beam  *beam.Beam // set in ModeBeam
	Table *Table     // set in ModeTable
	Rows  int        // data rows consumed
}

// LoadFile opens path and reads it with Load
func LoadFile(path string, opts Options) (*Source, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, opts)
}

// LoadReader reads a workbook from r
func LoadReader(r io.Reader, opts Options) (*Source, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer f.Close()
	return Load(f, opts)
}

// Load detects the layout of the selected sheet and parses it
func Load(f *excelize.File, opts Options) (*Source, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &MalformedInputError{Err: errors.New("workbook has no sheets")}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &MalformedInputError{Sheet: sheet, Err: err}
	}

	for i := 0; i < len(rows) && i < headerSearchRows; i++ {
		h := detectHeader(rows[i])
		switch {
		case h.isBeamLayout():
			src := &Source{Sheet: sheet, Mode: ModeBeam}
			src.Beam, src.Rows, err = parseBeam(sheet, h, rows, i+1)
			if err != nil {
				return nil, err
			}
			return src, nil
		case h.isTableLayout():
			src := &Source{Sheet: sheet, Mode: ModeTable}
			src.Table, err = parseTable(sheet, h, rows, i+1)
			if err != nil {
				return nil, err
			}
			src.Rows = len(src.Table.Rows)
			return src, nil
		}
	}

	return nil, malformed(sheet, 0, "header", "",
		"no header row found in the first %d rows; need Kind/Type/Position/End/Magnitude or Position/Shear/Moment columns", headerSearchRows)
}

func parseBeam(sheet string, h header, rows [][]string, start int) (*beam.Beam, int, error) {
	var (
		length      float64
		haveLength  bool
		supports    []beam.Support
		loads       []beam.Load
		supportRows []int // worksheet row of each support
		loadRows    []int // worksheet row of each load
		consumed    int
		extent      float64
	)

	for i := start; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		if blank(row) {
			continue
		}
		consumed++

		kind := strings.ToLower(h.cell(row, colKind))
		switch kind {
		case "beam", "span":
			l, err := number(sheet, rowNum, h, row, colPosition, false)
			if err != nil {
				return nil, 0, err
			}
			if l == 0 {
				l, err = number(sheet, rowNum, h, row, colEnd, false)
				if err != nil {
					return nil, 0, err
				}
			}
			if l <= 0 {
				return nil, 0, malformed(sheet, rowNum, colPosition.String(), h.cell(row, colPosition), "beam length must be positive")
			}
			length, haveLength = l, true

		case "support":
			st, err := beam.ParseSupportType(h.cell(row, colType))
			if err != nil {
				return nil, 0, &MalformedInputError{Sheet: sheet, Row: rowNum, Field: colType.String(), Value: h.cell(row, colType), Err: err}
			}
			pos, err := number(sheet, rowNum, h, row, colPosition, true)
			if err != nil {
				return nil, 0, err
			}
			supports = append(supports, beam.Support{Position: pos, Type: st, Label: h.cell(row, colLabel)})
			supportRows = append(supportRows, rowNum)
			extent = math.Max(extent, pos)

		case "load":
			l, err := parseLoad(sheet, rowNum, h, row)
			if err != nil {
				return nil, 0, err
			}
			loads = append(loads, l)
			loadRows = append(loadRows, rowNum)
			extent = math.Max(extent, math.Max(l.Position, l.End))

		case "":
			return nil, 0, malformed(sheet, rowNum, colKind.String(), "", "missing element kind")
		default:
			return nil, 0, malformed(sheet, rowNum, colKind.String(), kind, "unknown element kind (want beam, support or load)")
		}
	}

	if !haveLength {
		length = extent
	}
	if length <= 0 {
		return nil, 0, malformed(sheet, 0, "length", "", "beam length could not be determined; add a beam row")
	}

	b, err := beam.New(length, supports, loads)
	if err != nil {
		var ve *beam.ValidationError
		if errors.As(err, &ve) {
			row := 0
			switch {
			case ve.Field == "supports" && ve.Index > 0:
				row = supportRows[ve.Index-1]
			case ve.Field == "loads" && ve.Index > 0:
				row = loadRows[ve.Index-1]
			}
			return nil, 0, &MalformedInputError{Sheet: sheet, Row: row, Err: err}
		}
		return nil, 0, &MalformedInputError{Sheet: sheet, Err: err}
	}
	return b, consumed, nil
}

func parseLoad(sheet string, rowNum int, h header, row []string) (beam.Load, error) {
	lt, err := beam.ParseLoadType(h.cell(row, colType))
	if err != nil {
		return beam.Load{}, &MalformedInputError{Sheet: sheet, Row: rowNum, Field: colType.String(), Value: h.cell(row, colType), Err: err}
	}
	lc, err := beam.ParseLoadCase(h.cell(row, colCase))
	if err != nil {
		return beam.Load{}, &MalformedInputError{Sheet: sheet, Row: rowNum, Field: colCase.String(), Value: h.cell(row, colCase), Err: err}
	}
	pos, err := number(sheet, rowNum, h, row, colPosition, true)
	if err != nil {
		return beam.Load{}, err
	}
	mag, err := number(sheet, rowNum, h, row, colMagnitude, true)
	if err != nil {
		return beam.Load{}, err
	}

	l := beam.Load{Type: lt, Position: pos, Magnitude: mag, Case: lc, Label: h.cell(row, colLabel)}
	if lt == beam.UniformLoad {
		if l.End, err = number(sheet, rowNum, h, row, colEnd, true); err != nil {
			return beam.Load{}, err
		}
	}
	return l, nil
}

func parseTable(sheet string, h header, rows [][]string, start int) (*Table, error) {
	t := &Table{}
	var shear, moment []statics.Point

	for i := start; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		if blank(row) {
			continue
		}
		x, err := number(sheet, rowNum, h, row, colPosition, true)
		if err != nil {
			return nil, err
		}
		v, err := number(sheet, rowNum, h, row, colShear, true)
		if err != nil {
			return nil, err
		}
		m, err := number(sheet, rowNum, h, row, colMoment, true)
		if err != nil {
			return nil, err
		}
		if x < 0 {
			return nil, malformed(sheet, rowNum, colPosition.String(), h.cell(row, colPosition), "position must not be negative")
		}
		t.Rows = append(t.Rows, TableRow{Row: rowNum, Position: x, Shear: v, Moment: m})
		shear = append(shear, statics.Point{X: x, Y: v})
		moment = append(moment, statics.Point{X: x, Y: m})
		t.Length = math.Max(t.Length, x)
	}

	if len(t.Rows) < 2 {
		return nil, malformed(sheet, 0, "rows", "", "need at least two tabulated stations, got %d", len(t.Rows))
	}
	if t.Length <= 0 {
		return nil, malformed(sheet, 0, colPosition.String(), "", "largest position must be positive")
	}
	t.Shear = statics.NewLinear("Shear Force", shear)
	t.Moment = statics.NewLinear("Bending Moment", moment)
	return t, nil
}

// number parses column c of row as a float. Missing optional cells read as 0.
func number(sheet string, rowNum int, h header, row []string, c column, required bool) (float64, error) {
	s := h.cell(row, c)
	if s == "" {
		if required {
			return 0, malformed(sheet, rowNum, c.String(), "", "value is required")
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformed(sheet, rowNum, c.String(), s, "not a number")
	}
	return v, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
