package sqlpager

import "errors"

var (
	// ErrInvalidArgument is returned for bad construction input before any I/O.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFeedInProgress is returned when a feed is requested while another one
	// is still running on the same paginator.
	ErrFeedInProgress = errors.New("feed already in progress")
	// ErrUnknownDriver is returned by LookupDriver and Open for unregistered names.
	ErrUnknownDriver = errors.New("unknown driver")
)
