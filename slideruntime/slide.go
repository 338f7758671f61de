// The Slide type - handle lifecycle and guarded accessors over the raw
// OpenSlide handle.
//
// Every accessor follows the same three-phase pattern: validate arguments,
// delegate to the native call, then read the handle's error slot. The error
// slot is checked immediately after each delegate call, never before, and
// never cached across calls.

package slideruntime

import (
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"
)

// Slide is an open whole-slide image backed by one native OpenSlide handle.
//
// A Slide owns its handle exclusively: the handle is closed exactly once and
// never used after Close. The internal mutex makes Close race-safe against
// in-flight accessors, but OpenSlide's own thread-safety contract varies by
// vendor backend, so callers should serialize heavy reads on a single Slide.
// Separate Slides are fully independent.
//
// Opening is expensive; a tile server should cache and reuse Slides rather
// than reopening per request.
type Slide struct {
	mu     sync.Mutex
	native nativeSlide
	closed bool
	path   string
}

// Open opens the whole-slide image at path.
//
// Returns ErrOpenFailed when the path does not exist or OpenSlide cannot
// recognize the file. Some malformed files yield a handle with the error
// slot already set; that handle is released before the error is surfaced,
// so a failed Open never leaks a native handle.
func Open(path string) (*Slide, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &SlideError{
			Op:      "Open",
			Message: fmt.Sprintf("stat %s: %v", path, err),
			Err:     ErrOpenFailed,
		}
	}

	native, err := openNativeImpl(path)
	if err != nil {
		return nil, err
	}
	if msg := native.errorState(); msg != "" {
		native.close()
		return nil, &SlideError{Op: "Open", Message: msg, Err: ErrOpenFailed}
	}

	s := &Slide{native: native, path: path}

	// Backstop if Close() is never called.
	runtime.SetFinalizer(s, func(s *Slide) {
		s.Close()
	})

	return s, nil
}

// Path returns the file path the slide was opened from.
func (s *Slide) Path() string {
	return s.path
}

// Close releases the native handle. Safe to call multiple times; the native
// close runs at most once. Every accessor fails with ErrSlideClosed afterwards.
func (s *Slide) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.native.close()
	s.native = nil
	runtime.SetFinalizer(s, nil)
	return nil
}

// Dimensions returns the (width, height) pixel size of level 0, the full
// resolution image.
func (s *Slide) Dimensions() (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "Dimensions"
	if s.closed {
		return 0, 0, errClosed(op)
	}

	w, h := s.native.level0Dimensions()
	if err := s.checkNativeLocked(op); err != nil {
		return 0, 0, err
	}
	if w < 0 || h < 0 {
		return 0, 0, &SlideError{
			Op:      op,
			Message: fmt.Sprintf("native dimension query returned %dx%d", w, h),
			Err:     ErrNativeFailure,
		}
	}
	return w, h, nil
}

// LevelCount returns the number of levels in the slide pyramid.
func (s *Slide) LevelCount() (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "LevelCount"
	if s.closed {
		return 0, errClosed(op)
	}
	return s.levelCountLocked(op)
}

// LevelDimensions returns the (width, height) pixel size of the given level.
func (s *Slide) LevelDimensions(level int32) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "LevelDimensions"
	if s.closed {
		return 0, 0, errClosed(op)
	}
	if err := s.validLevelLocked(op, level); err != nil {
		return 0, 0, err
	}

	w, h := s.native.levelDimensions(level)
	if err := s.checkNativeLocked(op); err != nil {
		return 0, 0, err
	}
	if w < 0 || h < 0 {
		return 0, 0, &SlideError{
			Op:      op,
			Message: fmt.Sprintf("native dimension query returned %dx%d for level %d", w, h, level),
			Err:     ErrNativeFailure,
		}
	}
	return w, h, nil
}

// LevelDownsample returns the downsample factor of the given level: the
// ratio of the level 0 resolution to the level's resolution.
func (s *Slide) LevelDownsample(level int32) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "LevelDownsample"
	if s.closed {
		return 0, errClosed(op)
	}
	if err := s.validLevelLocked(op, level); err != nil {
		return 0, err
	}

	factor := s.native.levelDownsample(level)
	if err := s.checkNativeLocked(op); err != nil {
		return 0, err
	}
	if factor < 0 {
		return 0, &SlideError{
			Op:      op,
			Message: fmt.Sprintf("native downsample query returned %g for level %d", factor, level),
			Err:     ErrNativeFailure,
		}
	}
	return factor, nil
}

// BestLevelForDownsample returns the native library's suggested level for
// reading at the given downsample factor.
//
// The suggestion can be inconsistent at level boundaries: requesting 16.0
// may return the level whose own factor is 4, while 16.1 returns the
// factor-16 level. The result is passed through unmodified; do not assume
// the returned level's own factor equals the requested factor.
func (s *Slide) BestLevelForDownsample(factor float64) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "BestLevelForDownsample"
	if s.closed {
		return 0, errClosed(op)
	}
	if factor < 0 {
		return 0, &SlideError{
			Op:      op,
			Message: fmt.Sprintf("negative downsample factor %g", factor),
			Err:     ErrInvalidDownsample,
		}
	}

	level := s.native.bestLevelForDownsample(factor)
	if err := s.checkNativeLocked(op); err != nil {
		return 0, err
	}
	if level < 0 {
		return 0, &SlideError{
			Op:      op,
			Message: fmt.Sprintf("native best-level query returned %d", level),
			Err:     ErrNativeFailure,
		}
	}
	return level, nil
}

// ReadRegion reads and decodes a region of the slide into a freshly
// allocated buffer of exactly Width*Height*4 bytes of premultiplied ARGB.
// The buffer is owned by the caller and shares no memory with the native
// library. Use DecodeRegion to convert it into an image.RGBA.
//
// The request is validated against the target level's bounds before any
// native call: OpenSlide may read out-of-range memory otherwise.
func (s *Slide) ReadRegion(r Region) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "ReadRegion"
	if s.closed {
		return nil, errClosed(op)
	}
	if err := s.validLevelLocked(op, r.Level); err != nil {
		return nil, err
	}

	levelW, levelH := s.native.levelDimensions(r.Level)
	if err := s.checkNativeLocked(op); err != nil {
		return nil, err
	}
	downsample := s.native.levelDownsample(r.Level)
	if err := s.checkNativeLocked(op); err != nil {
		return nil, err
	}
	if err := validateRegion(r, levelW, levelH, downsample); err != nil {
		return nil, err
	}

	buf := make([]byte, r.BufferSize())
	s.native.readRegion(buf, r.X, r.Y, r.Level, r.Width, r.Height)
	if err := s.checkNativeLocked(op); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadRegionImage reads a region and decodes it into a straight-alpha
// image.RGBA.
func (s *Slide) ReadRegionImage(r Region) (*image.RGBA, error) {
	buf, err := s.ReadRegion(r)
	if err != nil {
		return nil, err
	}
	return DecodeRegion(buf, r.Width, r.Height)
}

// Properties returns a snapshot of all property key/value pairs of the
// slide. The map is an owned copy with no live connection to the native
// handle. Keys from the stable subset are available as Prop* constants.
func (s *Slide) Properties() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "Properties"
	if s.closed {
		return nil, errClosed(op)
	}

	names := s.native.propertyNames()
	props := make(map[string]string, len(names))
	for _, name := range names {
		props[name] = s.native.propertyValue(name)
	}
	// Enumeration cannot partially fail in the native contract; one check
	// at the end suffices.
	if err := s.checkNativeLocked(op); err != nil {
		return nil, err
	}
	return props, nil
}

// AssociatedImages decodes every auxiliary image embedded in the slide
// (thumbnail, label, macro, ...) keyed by name. A failure on any single
// image fails the whole call; no partial results are returned.
func (s *Slide) AssociatedImages() (map[string]AssociatedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const op = "AssociatedImages"
	if s.closed {
		return nil, errClosed(op)
	}

	names := s.native.associatedImageNames()
	images := make(map[string]AssociatedImage, len(names))
	for _, name := range names {
		w, h := s.native.associatedImageDimensions(name)
		if err := s.checkNativeLocked(op); err != nil {
			return nil, err
		}
		if w <= 0 || h <= 0 {
			return nil, &SlideError{
				Op:      op,
				Message: fmt.Sprintf("image %q reported dimensions %dx%d", name, w, h),
				Err:     ErrNativeFailure,
			}
		}

		buf := make([]byte, w*h*BytesPerPixel)
		s.native.readAssociatedImage(buf, name)
		if err := s.checkNativeLocked(op); err != nil {
			return nil, err
		}
		images[name] = AssociatedImage{Width: w, Height: h, Data: buf}
	}
	return images, nil
}

// DetectVendor sniffs the scanner vendor of a slide file without opening a
// full handle. Returns ErrVendorUnknown when no format is recognized.
func DetectVendor(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &SlideError{
			Op:      "DetectVendor",
			Message: fmt.Sprintf("stat %s: %v", path, err),
			Err:     ErrVendorUnknown,
		}
	}
	vendor, err := detectVendorNative(path)
	if err != nil {
		return "", err
	}
	if vendor == "" {
		return "", &SlideError{
			Op:      "DetectVendor",
			Message: "no recognizable slide format: " + path,
			Err:     ErrVendorUnknown,
		}
	}
	return vendor, nil
}

// LibraryVersion returns the version string of the linked OpenSlide
// library, or a stub marker in nocgo builds.
func LibraryVersion() string {
	return libraryVersionNative()
}

// levelCountLocked queries and error-checks the level count. Lock held.
func (s *Slide) levelCountLocked(op string) (int32, error) {
	count := s.native.levelCount()
	if err := s.checkNativeLocked(op); err != nil {
		return 0, err
	}
	// OpenSlide returns -1 on error; map the sentinel onto the error path
	// rather than returning it as data.
	if count < 0 {
		return 0, &SlideError{
			Op:      op,
			Message: fmt.Sprintf("native level count query returned %d", count),
			Err:     ErrNativeFailure,
		}
	}
	return count, nil
}

// validLevelLocked rejects level indices outside [0, LevelCount) before any
// per-level delegate call runs. Lock held.
func (s *Slide) validLevelLocked(op string, level int32) error {
	count, err := s.levelCountLocked(op)
	if err != nil {
		return err
	}
	if level < 0 || level >= count {
		return &SlideError{
			Op:      op,
			Message: fmt.Sprintf("level %d outside [0, %d)", level, count),
			Err:     ErrInvalidLevel,
		}
	}
	return nil
}

// checkNativeLocked reads the handle's error slot, which OpenSlide sets
// when a call fails. Lock held.
func (s *Slide) checkNativeLocked(op string) error {
	if msg := s.native.errorState(); msg != "" {
		return &SlideError{Op: op, Message: msg, Err: ErrNativeFailure}
	}
	return nil
}

func errClosed(op string) error {
	return &SlideError{Op: op, Message: "operation on closed slide", Err: ErrSlideClosed}
}
