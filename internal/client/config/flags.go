package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/capgallery/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   backend API base URL
//	-i int      session check interval (seconds, 0 disables)
//	-t int      request timeout (seconds, 0 means none)
//	-m string   metrics listen address
//	-l string   log level
//
// Only these flags are looked at; everything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-t", "-m", "-l"})

	fs := flag.NewFlagSet("capgallery", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base URL")
	checkInterval := fs.Int("i", int(cfg.SessionCheckInterval.Seconds()), "session check interval (in seconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// durations from the JSON file may be finer than a second; keep them
	// unless the flag was given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.SessionCheckInterval = time.Duration(*checkInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
