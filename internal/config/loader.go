package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultConfigFile is the settings file searched for in the working directory.
const DefaultConfigFile = "stampout.yaml"

// xdgConfigFile is the settings file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// envPrefix prefixes every settings environment variable.
const envPrefix = "STAMPOUT"

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// Fs is the filesystem settings files are read from. Defaults to the OS.
	Fs afero.Fs

	// ConfigFile is an explicit settings file (--config). It must exist.
	ConfigFile string

	// WorkDir is searched for DefaultConfigFile. Defaults to the current directory.
	WorkDir string

	// Flags are bound to settings keys when they were set on the command line.
	Flags *pflag.FlagSet

	// FlagKeys maps flag names to settings keys, for example "dry-run" to KeyDryRun.
	FlagKeys map[string]string
}

// Load resolves settings from, in increasing precedence:
// defaults, the settings file, STAMPOUT_* environment variables, flags.
// The returned Config is normalized but not validated.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.WorkDir = wd
	}

	v := viper.New()
	v.SetFs(opts.Fs)

	defaults := NewConfig()
	v.SetDefault(KeyVerbose, defaults.Verbose)
	v.SetDefault(KeyLogFormat, defaults.LogFormat)
	v.SetDefault(KeyReportFormat, defaults.ReportFormat)
	v.SetDefault(KeyReportFile, defaults.ReportFile)
	v.SetDefault(KeyHistory, defaults.History)
	v.SetDefault(KeyDBDir, defaults.DBDir)
	v.SetDefault(KeyConcurrency, defaults.Concurrency)
	v.SetDefault(KeyEngine, defaults.Engine)
	v.SetDefault(KeyDryRun, defaults.DryRun)

	path, err := FindConfigFile(opts.Fs, opts.ConfigFile, opts.WorkDir)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range opts.FlagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				return nil, fmt.Errorf("unknown flag %q bound to %q", name, key)
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	cfg.ConfigFilePath = path
	cfg.Normalize()

	return cfg, nil
}

// FindConfigFile searches for the settings file in the following order:
// 1. If configPath is specified, use it directly (ErrConfigNotFound if missing)
// 2. Look for stampout.yaml in workDir
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the settings file, or an empty string if none exists.
func FindConfigFile(fsys afero.Fs, configPath, workDir string) (string, error) {
	if configPath != "" {
		info, err := fsys.Stat(configPath)
		if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		if err != nil {
			return "", fmt.Errorf("failed to check settings file: %w", err)
		}
		return configPath, nil
	}

	candidates := []string{
		filepath.Join(workDir, DefaultConfigFile),
		filepath.Join(XDGConfigDir(), xdgConfigFile),
	}
	for _, candidate := range candidates {
		if info, err := fsys.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
