package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration loading
var (
	ErrConfigNotFound = goerr.New("configuration file not found")
)
