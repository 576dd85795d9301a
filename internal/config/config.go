package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"

	"github.com/nao1215/stampout/internal/report"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "stampout"

	// DefaultConcurrency processes documents strictly one at a time.
	// Native document engines are often not safe for parallel use,
	// so parallelism is opt-in.
	DefaultConcurrency = 1

	// DefaultReportFormat is the human-readable terminal report.
	DefaultReportFormat = string(report.FormatSimple)

	// DefaultLogFormat is slog's text format.
	DefaultLogFormat = LogFormatText

	// LogFormatText selects slog.TextHandler output.
	LogFormatText = "text"

	// LogFormatJSON selects slog.JSONHandler output.
	LogFormatJSON = "json"
)

// Settings keys. Environment variables are the upper-cased key with the
// STAMPOUT_ prefix, for example STAMPOUT_REPORT_FORMAT.
const (
	KeyVerbose      = "verbose"
	KeyLogFormat    = "log_format"
	KeyReportFormat = "report_format"
	KeyReportFile   = "report_file"
	KeyHistory      = "history"
	KeyDBDir        = "db_dir"
	KeyConcurrency  = "concurrency"
	KeyEngine       = "engine"
	KeyDryRun       = "dry_run"
)

// Config holds the application settings for one invocation.
// It is populated by Load and passed down explicitly rather than
// kept in global state.
type Config struct {
	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`

	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log_format"`

	// ReportFormat is "simple", "json" or "markdown".
	ReportFormat string `mapstructure:"report_format"`

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string `mapstructure:"report_file"`

	// History enables saving each run to the history database.
	History bool `mapstructure:"history"`

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/stampout on Linux).
	DBDir string `mapstructure:"db_dir"`

	// Concurrency is the number of documents processed at once.
	Concurrency int `mapstructure:"concurrency"`

	// Engine names the registered document engine.
	Engine string `mapstructure:"engine"`

	// DryRun enumerates work items without opening any document.
	DryRun bool `mapstructure:"dry_run"`

	// ConfigFilePath is the settings file that was read, if any.
	ConfigFilePath string `mapstructure:"-"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		LogFormat:    DefaultLogFormat,
		ReportFormat: DefaultReportFormat,
		History:      true,
		DBDir:        XDGDataDir(),
		Concurrency:  DefaultConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for stampout.
// On Linux: ~/.local/share/stampout
// On macOS: ~/Library/Application Support/stampout
// On Windows: %LOCALAPPDATA%\stampout
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for stampout.
// On Linux: ~/.config/stampout
// On macOS: ~/Library/Application Support/stampout
// On Windows: %APPDATA%\stampout
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Normalize lower-cases the enumerated settings and trims the engine name.
func (c *Config) Normalize() {
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.ReportFormat = strings.ToLower(strings.TrimSpace(c.ReportFormat))
	c.Engine = strings.TrimSpace(c.Engine)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if !slices.Contains(report.Formats(), report.Format(c.ReportFormat)) {
		return ErrInvalidReportFormat
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}

	return nil
}

// CheckEngine reports ErrNoEngine when a real run has no engine selected.
// It is separate from Validate because the plan is checked in between.
func (c *Config) CheckEngine() error {
	if !c.DryRun && c.Engine == "" {
		return ErrNoEngine
	}
	return nil
}
