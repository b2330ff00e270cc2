package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/neurofit/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   API base URL
//	-t int      request timeout in seconds
//	-d string   session database path
//	-l string   log format: text, json or zerolog
//
// os.Args is filtered with flagx.FilterArgs so -c/-config and anything else
// meant for other components does not trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SessionDB, "d", cfg.SessionDB, "session database path")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text|json|zerolog)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
