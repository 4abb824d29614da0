package config

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsAreValid(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{})
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Report.Title, cfg.Report.Title)
	assert.Equal(t, "vector", cfg.Diagram.Embed)
	assert.Regexp(t, regexp.MustCompile(`^BA-\d{4}-[0-9A-F]{8}$`), cfg.Report.ReportID)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "gobeam.toml", `
[report]
title = "Footbridge Girder"
author = "A. Engineer"
report_id = "BA-2025-FB01"

[units]
length = "ft"
force = "kip"

[analysis]
combination = "governing"
samples = 101

[diagram]
embed = "raster"
`)
	cfg, err := Load(Options{Path: path, EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "Footbridge Girder", cfg.Report.Title)
	assert.Equal(t, "BA-2025-FB01", cfg.Report.ReportID)
	assert.Equal(t, "kip·ft", cfg.Units.MomentUnit())
	assert.Equal(t, Governing, cfg.Analysis.Combination)
	assert.Equal(t, 101, cfg.Analysis.Samples)
	assert.Equal(t, "raster", cfg.Diagram.Embed)
	assert.Equal(t, 11, cfg.Analysis.Stations, "unset values keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	envFile := writeFile(t, ".env", "GOBEAM_INSTITUTE=Dotenv University\nGOBEAM_AUTHOR=Dotenv Author\n")
	t.Setenv("GOBEAM_AUTHOR", "Env Author")
	t.Setenv("GOBEAM_COMBINATION", "2")
	t.Setenv("GOBEAM_SAMPLES", "51")
	t.Cleanup(func() { os.Unsetenv("GOBEAM_INSTITUTE") })

	cfg, err := Load(Options{Path: writeFile(t, "c.toml", ""), EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "Env Author", cfg.Report.Author, "process env wins over dotenv")
	assert.Equal(t, "Dotenv University", cfg.Report.Institute)
	assert.Equal(t, "2", cfg.Analysis.Combination)
	assert.Equal(t, 51, cfg.Analysis.Samples)
}

func TestLoad_EnvOverridesNumbersAndFormat(t *testing.T) {
	t.Setenv("GOBEAM_STATIONS", "21")
	t.Setenv("GOBEAM_DIAGRAM_WIDTH", "7.5")
	t.Setenv("GOBEAM_DIAGRAM_HEIGHT", " 3 ")
	t.Setenv("GOBEAM_FORMAT", "png")

	cfg, err := Load(Options{Path: writeFile(t, "c.toml", ""), EnvFile: filepath.Join(t.TempDir(), "none")})
	require.NoError(t, err)

	assert.Equal(t, 21, cfg.Analysis.Stations)
	assert.InDelta(t, 7.5, cfg.Diagram.Width, 1e-12)
	assert.InDelta(t, 3, cfg.Diagram.Height, 1e-12)
	assert.Equal(t, "png", cfg.Diagram.Format)

	t.Setenv("GOBEAM_DIAGRAM_WIDTH", "wide")
	_, err = Load(Options{Path: writeFile(t, "c.toml", ""), EnvFile: filepath.Join(t.TempDir(), "none")})
	assert.ErrorContains(t, err, "GOBEAM_DIAGRAM_WIDTH")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown combination", "[analysis]\ncombination = \"9\"\n"},
		{"bad embed", "[diagram]\nembed = \"bitmap\"\n"},
		{"too few samples", "[analysis]\nsamples = 3\n"},
		{"empty author", "[report]\nauthor = \"\"\n"},
		{"syntax", "[report\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "c.toml", tt.toml)
			_, err := Load(Options{Path: path, EnvFile: filepath.Join(t.TempDir(), "none")})
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(Options{Path: filepath.Join(t.TempDir(), "nope.toml")})
	assert.Error(t, err)
}

func TestNewReportID(t *testing.T) {
	id := NewReportID(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^BA-2025-[0-9A-F]{8}$`, id)
	assert.NotEqual(t, id, NewReportID(time.Now()))
}
