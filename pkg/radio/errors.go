package radio

import "errors"

// Radio errors
var (
	// ErrInvalidChannel indicates a channel outside 11-26
	ErrInvalidChannel = errors.New("channel out of range (11-26)")

	// ErrNoChannels indicates an empty channel list
	ErrNoChannels = errors.New("no channels specified")

	// ErrFrameTooLong indicates a frame that does not fit in a PSDU
	ErrFrameTooLong = errors.New("frame exceeds maximum PSDU size")

	// ErrClosed indicates the radio has been closed
	ErrClosed = errors.New("radio is closed")
)
