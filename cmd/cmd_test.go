package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gobeam/internal/input"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestLoggerContext(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, log.Default(), loggerFromContext(ctx))

	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	assert.Same(t, l, loggerFromContext(withLogger(ctx, l)))
}

func TestDescribeError(t *testing.T) {
	me := &input.MalformedInputError{Sheet: "Beam", Row: 7, Field: "position", Err: errors.New("not a number")}
	assert.Contains(t, describeError(fmt.Errorf("load: %w", me)), `check row 7 of sheet "Beam"`)

	ie := &statics.IndeterminateBeamError{Unknowns: 3, Equations: 2}
	assert.Contains(t, describeError(ie), "statically determinate")

	assert.Equal(t, "interrupted", describeError(context.Canceled))
	assert.Equal(t, "plain", describeError(errors.New("plain")))
}

// execute runs the root command with args and returns its standard output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "template", "beam.xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, "Template written")

	_, err = execute(t, "template", "beam.xlsx")
	assert.Error(t, err, "existing files are kept without --force")

	out, err = execute(t, "analyze", "beam.xlsx", "--no-charts")
	require.NoError(t, err)
	assert.Contains(t, out, "REACTIONS")
	assert.Contains(t, out, "Peak moment")

	out, err = execute(t, "combinations", "beam.xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, "GOVERNS")

	out, err = execute(t, "beam.xlsx", "report.pdf", "--diagrams", "figs")
	require.NoError(t, err)
	assert.Contains(t, out, "Report written")
	assert.FileExists(t, "report.pdf")
	assert.FileExists(t, filepath.Join("figs", "bmd.svg"))

	data, err := os.ReadFile("report.pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = execute(t, "beam.xlsx")
	assert.Error(t, err, "an output path is required")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gobeam v")
}
