package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModelPath  string // .hcl model file or directory
	ParamsPath string // optional JSON constant-data file
	OutPath    string // LP output file; empty means stdout

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
