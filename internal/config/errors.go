package config

import "errors"

// Configuration errors.
var (
	// ErrNoPrefixFile indicates no prefix file path was configured.
	ErrNoPrefixFile = errors.New("config: no prefix file configured")

	// ErrInvalidValue indicates a configuration value is out of range.
	ErrInvalidValue = errors.New("config: invalid value")
)
