package slideruntime

// nativeSlide is the per-handle surface of the OpenSlide C API. The real
// implementation lives in bindings.go (CGo); the stub build and tests
// substitute their own.
//
// Methods return raw native results: the caller reads the handle's error
// slot via errorState immediately after every call and interprets the
// library's -1 sentinels itself. Error checks are never batched across
// calls and never run before the delegate call.
// openNativeImpl produces the native handle for Open. It points at the
// build-selected openNative (cgo or stub); tests substitute a fake to reach
// the open-error path without libopenslide.
var openNativeImpl = openNative

type nativeSlide interface {
	levelCount() int32
	level0Dimensions() (w, h int64)
	levelDimensions(level int32) (w, h int64)
	levelDownsample(level int32) float64
	bestLevelForDownsample(factor float64) int32
	readRegion(dest []byte, x, y int64, level int32, w, h int64)
	propertyNames() []string
	propertyValue(name string) string
	associatedImageNames() []string
	associatedImageDimensions(name string) (w, h int64)
	readAssociatedImage(dest []byte, name string)

	// errorState returns the handle's error slot, or "" when clear. A
	// non-empty value means the handle is in a terminal failed condition.
	errorState() string

	// close releases the native handle. Called at most once per handle.
	close()
}
