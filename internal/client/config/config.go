package config

import "time"

// Config holds runtime settings for the NeuroFit CLI.
//
// Fields:
//   - APIBaseURL: root of the REST API, including the /api prefix.
//   - RequestTimeout: per-request HTTP timeout.
//   - SessionDB: path of the SQLite file that keeps the session between runs.
//   - LogFormat, LogLevel: see logging.New.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	SessionDB      string
	LogFormat      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.RequestTimeout = 30 * time.Second
	c.SessionDB = "neurofit_session.db"
	c.LogFormat = "text"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
