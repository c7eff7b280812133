package config

import (
	"github.com/jessevdk/go-flags"
)

// Load parses args (normally os.Args[1:]) into a Config seeded with
// defaults, the way lnd's own config loader layers flags over
// defaults before validating the result.
func Load(args []string) (*Config, error) {
	cfg := Default()

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
