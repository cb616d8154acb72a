package scan

import "errors"

// Scanner errors
var (
	// ErrScannerRunning indicates Run was called on a scanner that is already running
	ErrScannerRunning = errors.New("scanner is already running")

	// ErrInvalidConfig indicates invalid scanner configuration
	ErrInvalidConfig = errors.New("invalid scanner configuration")

	// ErrNoChannels indicates no channels were specified for scanning
	ErrNoChannels = errors.New("no channels specified for scanning")

	// ErrInvalidHopInterval indicates a hop interval outside (0, 1h]
	ErrInvalidHopInterval = errors.New("hop interval must be between 1ms and 1h")

	// ErrInvalidQuiescentDelay indicates a quiescent delay outside [0, 1s]
	ErrInvalidQuiescentDelay = errors.New("quiescent delay must be between 0 and 1s")
)
