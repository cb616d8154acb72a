package mac

import "errors"

// Codec errors
var (
	// ErrTruncated indicates the frame ended before a required field
	ErrTruncated = errors.New("frame truncated")

	// ErrBadFCS indicates the frame check sequence did not match
	ErrBadFCS = errors.New("frame check sequence mismatch")

	// ErrReservedAddressMode indicates an addressing mode value of 1
	ErrReservedAddressMode = errors.New("reserved addressing mode")

	// ErrUnsupportedVersion indicates a frame version newer than 802.15.4-2015
	ErrUnsupportedVersion = errors.New("unsupported frame version")

	// ErrSecurityUnsupported indicates a secured frame; security is not handled
	ErrSecurityUnsupported = errors.New("secured frames are not supported")

	// ErrMalformedIE indicates an information element list that cannot be walked
	ErrMalformedIE = errors.New("malformed information element")

	// ErrUnsupportedFrameType indicates a frame type the encoder cannot produce
	ErrUnsupportedFrameType = errors.New("unsupported frame type")

	// ErrContentMismatch indicates header frame type and content variant disagree
	ErrContentMismatch = errors.New("frame type does not match content")

	// ErrFrameTooLong indicates an encoded frame would exceed MaxFrameSize
	ErrFrameTooLong = errors.New("frame exceeds maximum PSDU size")

	// ErrBufferTooSmall indicates the output buffer cannot hold the frame
	ErrBufferTooSmall = errors.New("buffer too small for frame")
)
