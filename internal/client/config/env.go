package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvAPIBaseURL     = "NEUROFIT_API_URL"
	EnvRequestTimeout = "NEUROFIT_TIMEOUT"
	EnvSessionDB      = "NEUROFIT_SESSION_DB"
	EnvLogFormat      = "NEUROFIT_LOG_FORMAT"
	EnvLogLevel       = "NEUROFIT_LOG_LEVEL"
)

// DotEnvFile is loaded into the environment before it is read. Variables
// already set in the process environment win over the file.
var DotEnvFile = ".env"

// parseEnv overlays Config with NEUROFIT_* environment variables.
// NEUROFIT_TIMEOUT takes a Go duration such as "15s".
//
// Panics on an unreadable .env file or a malformed duration.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := os.LookupEnv(EnvAPIBaseURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvRequestTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv(EnvSessionDB); ok && v != "" {
		cfg.SessionDB = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
}
