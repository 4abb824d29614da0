package input

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/gobeam/internal/beam"
)

// newWorkbook builds an in-memory workbook with rows written from A1
func newWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	return f
}

func TestTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beam.xlsx")
	require.NoError(t, WriteTemplate(path))

	src, err := LoadFile(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, ModeBeam, src.Mode)
	assert.Equal(t, TemplateSheet, src.Sheet)
	assert.Equal(t, len(templateRows), src.Rows)
	require.NotNil(t, src.Beam)

	b := src.Beam
	assert.Equal(t, 10.0, b.Length())
	require.Len(t, b.Supports(), 2)
	assert.Equal(t, beam.Pin, b.Supports()[0].Type)
	assert.Equal(t, "B", b.Supports()[1].Label)

	loads := b.Loads()
	require.Len(t, loads, 2)
	assert.Equal(t, beam.UniformLoad, loads[0].Type)
	assert.Equal(t, 10.0, loads[0].End)
	assert.Equal(t, beam.Live, loads[1].Case)
	assert.InDelta(t, 70, b.TotalLoad(), 1e-12)
}

func TestLoad_HeaderDetection(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"Simply supported beam"},
		{},
		{"Element", "Load Type", "X [m]", "End", "Value (kN)", "Load Case"},
		{"support", "pinned", 0},
		{"support", "roller", 6},
		{},
		{"load", "point", 3, "", 12, "L"},
	})

	src, err := Load(f, Options{})
	require.NoError(t, err)
	require.Equal(t, ModeBeam, src.Mode)
	assert.Equal(t, 6.0, src.Beam.Length(), "length falls back to the furthest position")
	assert.Equal(t, 3, src.Rows)
	assert.Equal(t, beam.Live, src.Beam.Loads()[0].Case)
}

func TestLoad_MalformedRows(t *testing.T) {
	header := []interface{}{"Kind", "Type", "Position", "End", "Magnitude"}
	tests := []struct {
		name  string
		row   []interface{}
		field string
	}{
		{"bad number", []interface{}{"load", "point", "abc", "", 5}, "position"},
		{"missing magnitude", []interface{}{"load", "point", 2}, "magnitude"},
		{"bad support type", []interface{}{"support", "spring", 2}, "type"},
		{"unknown kind", []interface{}{"strut", "pin", 2}, "kind"},
		{"udl without end", []interface{}{"load", "udl", 2, "", 4}, "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkbook(t, [][]interface{}{
				header,
				{"beam", "", 10},
				{"support", "pin", 0},
				tt.row,
			})

			_, err := Load(f, Options{})
			var me *MalformedInputError
			require.True(t, errors.As(err, &me), "got %v", err)
			assert.Equal(t, 4, me.Row)
			assert.Equal(t, tt.field, me.Field)
			assert.Equal(t, "Sheet1", me.Sheet)
		})
	}
}

func TestLoad_ModelValidationPointsAtRow(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"Kind", "Type", "Position", "End", "Magnitude"},
		{"beam", "", 10},
		{"support", "pin", 0},
		{"support", "roller", 10},
		{"load", "point", 14, "", 3},
	})

	_, err := Load(f, Options{})
	var me *MalformedInputError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, 5, me.Row)

	var ve *beam.ValidationError
	assert.True(t, errors.As(err, &ve), "model error is wrapped")
}

func TestLoad_TableMode(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"Position (m)", "Shear Force (kN)", "Bending Moment (kNm)"},
		{0, 25, 0},
		{5, 0, 62.5},
		{10, -25, 0},
	})

	src, err := Load(f, Options{})
	require.NoError(t, err)
	require.Equal(t, ModeTable, src.Mode)
	require.NotNil(t, src.Table)

	assert.Equal(t, 10.0, src.Table.Length)
	assert.Len(t, src.Table.Rows, 3)
	maxM, _ := src.Table.Moment.Extrema()
	assert.InDelta(t, 62.5, maxM.Value, 1e-12)
	assert.InDelta(t, 5, maxM.Position, 1e-12)
}

func TestLoad_NoHeader(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{{"a", "b"}, {1, 2}})

	_, err := Load(f, Options{})
	var me *MalformedInputError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "header", me.Field)
}

func TestLoadReader(t *testing.T) {
	tpl, err := NewTemplate()
	require.NoError(t, err)
	defer tpl.Close()

	buf, err := tpl.WriteToBuffer()
	require.NoError(t, err)

	src, err := LoadReader(bytes.NewReader(buf.Bytes()), Options{Sheet: TemplateSheet})
	require.NoError(t, err)
	assert.Equal(t, ModeBeam, src.Mode)
}

func TestLoad_MissingSheet(t *testing.T) {
	f := newWorkbook(t, nil)
	_, err := Load(f, Options{Sheet: "Nope"})
	assert.Error(t, err)
}
