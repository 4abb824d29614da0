package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/input"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Report.ReportID = "BA-2025-TEST"
	cfg.Analysis.Samples = 51
	require.NoError(t, cfg.Validate())
	return &cfg
}

// writeWorkbook saves rows to a new workbook in a temp dir
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(t.TempDir(), "beam.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func templateWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, input.WriteTemplate(path))
	return path
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "%s is not a PDF", path)
}

func TestRun_Template(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "report.pdf")

	var logs bytes.Buffer
	res, err := Run(context.Background(), Options{
		Input:      templateWorkbook(t),
		Output:     out,
		DiagramDir: filepath.Join(dir, "figs"),
		Config:     testConfig(t),
		Logger:     log.New(&logs),
	})
	require.NoError(t, err)

	assertPDF(t, out)
	assert.Equal(t, []string{
		out,
		filepath.Join(dir, "figs", "beam.svg"),
		filepath.Join(dir, "figs", "sfd.svg"),
		filepath.Join(dir, "figs", "bmd.svg"),
	}, res.Files)
	for _, f := range res.Files[1:] {
		assert.FileExists(t, f)
	}
	assert.Nil(t, res.Combination, "unfactored runs carry no combination")
	assert.InDelta(t, 70, res.Analysis.TotalReaction(), 1e-9)
	assert.Contains(t, logs.String(), "Wrote report")
}

func TestRun_RasterGoverning(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.Combination = config.Governing
	cfg.Diagram.Embed = "raster"

	out := filepath.Join(t.TempDir(), "report.pdf")
	res, err := Run(context.Background(), Options{Input: templateWorkbook(t), Output: out, Config: cfg, Logger: log.New(io.Discard)})
	require.NoError(t, err)
	assertPDF(t, out)

	require.NotNil(t, res.Combination)
	assert.Equal(t, "2", res.Combination.ID, "1.2D + 1.6L governs a dead plus live beam")
	assert.Len(t, res.Envelope, 7)
}

func TestRun_TableInput(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Position", "Shear", "Moment"},
		{0, 25, 0},
		{5, 0, 62.5},
		{10, -25, 0},
	})
	out := filepath.Join(t.TempDir(), "report.pdf")
	res, err := Run(context.Background(), Options{Input: path, Output: out, Config: testConfig(t), Logger: log.New(io.Discard)})
	require.NoError(t, err)

	assert.Nil(t, res.Analysis)
	assert.Equal(t, 10.0, res.Length())
	assertPDF(t, out)
}

func TestAnalyze_Errors(t *testing.T) {
	quiet := log.New(io.Discard)

	t.Run("malformed", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Kind", "Type", "Position", "Magnitude"},
			{"support", "pin", 0},
			{"load", "point", "four", 10},
		})
		_, err := Analyze(context.Background(), Options{Input: path, Config: testConfig(t), Logger: quiet})
		var me *input.MalformedInputError
		require.True(t, errors.As(err, &me), "got %v", err)
		assert.Equal(t, 3, me.Row)
	})

	t.Run("indeterminate", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Kind", "Type", "Position", "Magnitude"},
			{"beam", "", 10},
			{"support", "fixed", 0},
			{"support", "roller", 10},
			{"load", "point", 5, 10},
		})
		_, err := Analyze(context.Background(), Options{Input: path, Config: testConfig(t), Logger: quiet})
		var ie *statics.IndeterminateBeamError
		assert.True(t, errors.As(err, &ie), "got %v", err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Analyze(context.Background(), Options{Input: filepath.Join(t.TempDir(), "none.xlsx"), Logger: quiet})
		assert.Error(t, err)
	})
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(t.TempDir(), "report.pdf")
	_, err := Run(ctx, Options{Input: templateWorkbook(t), Output: out, Config: testConfig(t), Logger: log.New(io.Discard)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out)
}
