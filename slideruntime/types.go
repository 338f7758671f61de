// Pure Go types and constants for the binding layer - no CGo dependencies.
package slideruntime

import "fmt"

// BytesPerPixel is the size of one pixel in a region buffer. OpenSlide
// writes premultiplied ARGB packed into 32-bit words.
const BytesPerPixel = 4

// Standard OpenSlide property names. These form the stable, vendor-agnostic
// subset of the properties dictionary; everything else in the map is
// vendor-specific and has no fixed schema.
const (
	PropComment         = "openslide.comment"
	PropVendor          = "openslide.vendor"
	PropLevelCount      = "openslide.level-count"
	PropQuickhash1      = "openslide.quickhash-1"
	PropBackgroundColor = "openslide.background-color"
	PropObjectivePower  = "openslide.objective-power"
	PropMPPX            = "openslide.mpp-x"
	PropMPPY            = "openslide.mpp-y"
	PropBoundsX         = "openslide.bounds-x"
	PropBoundsY         = "openslide.bounds-y"
	PropBoundsWidth     = "openslide.bounds-width"
	PropBoundsHeight    = "openslide.bounds-height"
)

// Region describes a rectangular read request against one pyramid level.
// The top-left corner is given in level 0 pixel space, matching the OpenSlide
// C API; the extent is given in the target level's own pixel space.
type Region struct {
	X      int64 // column of the top-left corner, in level 0 pixels
	Y      int64 // row of the top-left corner, in level 0 pixels
	Level  int32 // pyramid level to read from
	Width  int64 // extent in pixels at Level
	Height int64 // extent in pixels at Level
}

// BufferSize returns the number of bytes a read of this region fills.
func (r Region) BufferSize() int64 {
	return r.Width * r.Height * BytesPerPixel
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d) level %d", r.Width, r.Height, r.X, r.Y, r.Level)
}

// AssociatedImage is a decoded auxiliary image embedded in a slide file,
// such as a thumbnail, label, or macro view.
type AssociatedImage struct {
	Width  int64
	Height int64
	Data   []byte // premultiplied ARGB, Width*Height*4 bytes
}

// validateRegion checks a region request against the bounds of its target
// level before any native call is made: OpenSlide does not reliably guard
// out-of-range reads itself. The level-0 corner is mapped into level space by
// the level's downsample factor, which approximates the native layer's own
// level math (see the note on BestLevelForDownsample).
func validateRegion(r Region, levelW, levelH int64, downsample float64) error {
	if r.Width <= 0 || r.Height <= 0 {
		return &SlideError{
			Op:      "ReadRegion",
			Message: fmt.Sprintf("non-positive extent %dx%d", r.Width, r.Height),
			Err:     ErrRegionOutOfBounds,
		}
	}
	if r.X < 0 || r.Y < 0 {
		return &SlideError{
			Op:      "ReadRegion",
			Message: fmt.Sprintf("negative origin (%d,%d)", r.X, r.Y),
			Err:     ErrRegionOutOfBounds,
		}
	}
	if downsample < 1.0 {
		downsample = 1.0
	}
	col := int64(float64(r.X) / downsample)
	row := int64(float64(r.Y) / downsample)
	if col+r.Width > levelW || row+r.Height > levelH {
		return &SlideError{
			Op: "ReadRegion",
			Message: fmt.Sprintf("region %s exceeds level bounds %dx%d",
				r, levelW, levelH),
			Err: ErrRegionOutOfBounds,
		}
	}
	return nil
}
