// Package config loads report settings from a TOML file, an optional .env
// file and GOBEAM_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/alexiusacademia/gobeam/internal/nscp"
)

// DefaultFile is read when no config path is given and the file exists
const DefaultFile = "gobeam.toml"

// DefaultEnvFile is loaded into the environment when present
const DefaultEnvFile = ".env"

// Governing selects the load combination with the largest bending moment
const Governing = "governing"

// Config holds every tunable of a report run
type Config struct {
	Report   Report   `toml:"report"`
	Units    Units    `toml:"units"`
	Analysis Analysis `toml:"analysis"`
	Diagram  Diagram  `toml:"diagram"`
	Input    Input    `toml:"input"`
}

// Report holds title page and header details
type Report struct {
	Title       string `toml:"title" validate:"required"`
	Subtitle    string `toml:"subtitle"`
	Institute   string `toml:"institute"`
	Author      string `toml:"author" validate:"required"`
	ReportID    string `toml:"report_id" validate:"required"`
	Description string `toml:"description"`
	Paper       string `toml:"paper" validate:"oneof=A4 A3 Letter Legal"`
}

// Units are the labels printed next to values; no conversion is applied
type Units struct {
	Length string `toml:"length" validate:"required"`
	Force  string `toml:"force" validate:"required"`
}

// MomentUnit returns the force-length product label, e.g. "kN·m"
func (u Units) MomentUnit() string { return u.Force + "·" + u.Length }

// Analysis controls the statics run
type Analysis struct {
	// Combination is "none", "governing" or an NSCP combination ID
	Combination string `toml:"combination" validate:"combination"`
	// Samples is the number of evenly spaced stations used for plotting
	Samples int `toml:"samples" validate:"gte=11,lte=5000"`
	// Stations is the number of rows in the tabulated results
	Stations int `toml:"stations" validate:"gte=2,lte=201"`
}

// Diagram controls figure rendering and embedding
type Diagram struct {
	// Embed is "vector" (imported PDF pages) or "raster" (PNG images)
	Embed  string  `toml:"embed" validate:"oneof=vector raster"`
	Width  float64 `toml:"width" validate:"gt=0,lte=20"`  // inches
	Height float64 `toml:"height" validate:"gt=0,lte=20"` // inches
	// Format of diagram files written next to the report
	Format string `toml:"format" validate:"oneof=svg pdf png eps"`
}

// Input selects the worksheet to read
type Input struct {
	Sheet string `toml:"sheet"`
}

// Options tells Load where to look
type Options struct {
	Path    string // config file; DefaultFile when empty
	EnvFile string // dotenv file; DefaultEnvFile when empty
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("combination", validateCombination)
}

func validateCombination(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if strings.EqualFold(v, Governing) {
		return true
	}
	_, err := nscp.Lookup(v)
	return err == nil
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Report: Report{
			Title:    "Simply Supported Beam Analysis Report",
			Subtitle: "Shear Force and Bending Moment Analysis",
			Author:   "Structural Engineer",
			Paper:    "A4",
		},
		Units: Units{Length: "m", Force: "kN"},
		Analysis: Analysis{
			Combination: "none",
			Samples:     201,
			Stations:    11,
		},
		Diagram: Diagram{
			Embed:  "vector",
			Width:  6.5,
			Height: 2.8,
			Format: "svg",
		},
	}
}

// Load builds the configuration from defaults, the config file, the dotenv
// file and the environment, then validates it
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path := opts.Path
	if path == "" && fileExists(DefaultFile) {
		path = DefaultFile
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if fileExists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Report.ReportID == "" {
		cfg.Report.ReportID = NewReportID(time.Now())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides fields from GOBEAM_* variables
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"GOBEAM_TITLE":       &c.Report.Title,
		"GOBEAM_SUBTITLE":    &c.Report.Subtitle,
		"GOBEAM_INSTITUTE":   &c.Report.Institute,
		"GOBEAM_AUTHOR":      &c.Report.Author,
		"GOBEAM_REPORT_ID":   &c.Report.ReportID,
		"GOBEAM_PAPER":       &c.Report.Paper,
		"GOBEAM_COMBINATION": &c.Analysis.Combination,
		"GOBEAM_DESCRIPTION": &c.Report.Description,
		"GOBEAM_EMBED":       &c.Diagram.Embed,
		"GOBEAM_FORMAT":      &c.Diagram.Format,
		"GOBEAM_SHEET":       &c.Input.Sheet,
		"GOBEAM_UNIT_LENGTH": &c.Units.Length,
		"GOBEAM_UNIT_FORCE":  &c.Units.Force,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"GOBEAM_SAMPLES":  &c.Analysis.Samples,
		"GOBEAM_STATIONS": &c.Analysis.Stations,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"GOBEAM_DIAGRAM_WIDTH":  &c.Diagram.Width,
		"GOBEAM_DIAGRAM_HEIGHT": &c.Diagram.Height,
	}
	for key, dst := range floats {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}
	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// NewReportID returns an identifier like "BA-2025-1A2B3C4D"
func NewReportID(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("BA-%d-%s", now.Year(), id[:8])
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
