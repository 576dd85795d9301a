// Package config provides the application settings for stampout.
// Settings are not the plan: they choose how a run is carried out
// (engine, concurrency, report format, history) rather than what is redacted.
package config
