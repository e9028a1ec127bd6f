package main

import (
	"os"

	"github.com/spf13/pflag"
)

type options struct {
	envFile string
	port    string
	backend string
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("mesaya-booking", pflag.ContinueOnError)
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&opts.port, "port", "", "listen port (overrides PORT)")
	flags.StringVar(&opts.backend, "backend", "", "booking API base URL (overrides BACKEND_BASE_URL)")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// applyOverrides pushes flag values into the environment so config.Load sees them.
func (o options) applyOverrides() {
	if o.port != "" {
		_ = os.Setenv("PORT", o.port)
	}
	if o.backend != "" {
		_ = os.Setenv("BACKEND_BASE_URL", o.backend)
	}
}
