// Package slideruntime provides Go bindings to the OpenSlide C library for
// reading whole-slide microscopy images.
package slideruntime

import (
	"errors"
	"fmt"
)

// SlideError represents an error from an OpenSlide operation.
// It carries the operation that failed, a human-readable message (including
// the native diagnostic text when the C library reported one), and a wrapped
// sentinel error usable with errors.Is.
type SlideError struct {
	Op      string // Operation that failed (e.g., "Open", "ReadRegion")
	Message string // Human-readable detail; native error text is vendor-defined and opaque
	Err     error  // Wrapped sentinel error (if any)
}

// Error implements the error interface.
func (e *SlideError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("openslide %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("openslide %s: %s", e.Op, e.Message)
}

// Unwrap returns the wrapped sentinel, allowing use with errors.Is and errors.As.
func (e *SlideError) Unwrap() error {
	return e.Err
}

// Sentinel errors for common failure conditions.
// These are used for error checking with errors.Is().
var (
	// ErrOpenFailed indicates the slide could not be opened: missing file,
	// unsupported format, or corrupt header. OpenSlide does not distinguish
	// these cases, so neither do we; the native diagnostic text, if any, is
	// attached to the SlideError message.
	ErrOpenFailed = errors.New("slideruntime: failed to open slide")

	// ErrSlideClosed indicates an operation was attempted on a closed slide.
	ErrSlideClosed = errors.New("slideruntime: slide is closed")

	// ErrInvalidLevel indicates a level index outside [0, LevelCount).
	ErrInvalidLevel = errors.New("slideruntime: level index out of range")

	// ErrRegionOutOfBounds indicates a region request with non-positive extent
	// or extending beyond the target level's pixel bounds.
	ErrRegionOutOfBounds = errors.New("slideruntime: region outside level bounds")

	// ErrInvalidDownsample indicates a negative downsample factor.
	ErrInvalidDownsample = errors.New("slideruntime: invalid downsample factor")

	// ErrNativeFailure indicates OpenSlide set its per-handle error slot after
	// a call. The message is vendor-defined text and should not be parsed.
	ErrNativeFailure = errors.New("slideruntime: native library error")

	// ErrVendorUnknown indicates vendor detection found no recognizable format.
	ErrVendorUnknown = errors.New("slideruntime: vendor not recognized")

	// ErrLibraryUnavailable indicates the binary was built without the
	// OpenSlide shared library (nocgo/stub build).
	ErrLibraryUnavailable = errors.New("slideruntime: openslide library not available")
)
