package config

import (
	"github.com/rs/zerolog"
)

// RootConfig carries the global flags and shared state every subcommand
// receives.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	NoColor    bool

	Logger zerolog.Logger
}
