package config

import "errors"

// Configuration errors
var (
	// ErrConfigVersion indicates an unsupported config file version
	ErrConfigVersion = errors.New("unsupported config version")

	// ErrInvalidFrameVersion indicates a frame version other than 2003, 2006 or 2015
	ErrInvalidFrameVersion = errors.New("invalid frame version")

	// ErrInvalidValue indicates an out-of-range setting
	ErrInvalidValue = errors.New("invalid config value")
)
