// Package config loads runtime configuration for the NeuroFit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables NEUROFIT_*, optionally seeded from a .env file.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-d string   session database path
//	-l string   log format
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8000/api",
//	  "request_timeout": "30s",
//	  "session_db": "neurofit_session.db",
//	  "log_format": "text",
//	  "log_level": "warn"
//	}
package config
