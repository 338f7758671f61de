// CGo wrappers for the OpenSlide C API.
//
// Build Requirements:
// - libopenslide (3.4+) on the library search path
// - No headers required: the C surface is declared below and resolved at
//   link time, matching openslide.h
//
// Build Tags:
// - cgo: Requires CGo (enabled by default)
// - !nocgo: Excluded when the nocgo tag is set (for testing without libopenslide)
//
//go:build cgo && !nocgo

package slideruntime

/*
#cgo LDFLAGS: -lopenslide
#cgo windows LDFLAGS: -lopenslide

#include <stdlib.h>
#include <stdint.h>

// Forward declarations for the OpenSlide API.
// These must match openslide.h.

typedef struct _openslide openslide_t;

extern const char *openslide_detect_vendor(const char *filename);
extern openslide_t *openslide_open(const char *filename);
extern void openslide_close(openslide_t *osr);
extern const char *openslide_get_error(openslide_t *osr);

extern int32_t openslide_get_level_count(openslide_t *osr);
extern void openslide_get_level0_dimensions(openslide_t *osr, int64_t *w, int64_t *h);
extern void openslide_get_level_dimensions(openslide_t *osr, int32_t level, int64_t *w, int64_t *h);
extern double openslide_get_level_downsample(openslide_t *osr, int32_t level);
extern int32_t openslide_get_best_level_for_downsample(openslide_t *osr, double downsample);
extern void openslide_read_region(openslide_t *osr, uint32_t *dest,
                                  int64_t x, int64_t y, int32_t level, int64_t w, int64_t h);

extern const char * const *openslide_get_property_names(openslide_t *osr);
extern const char *openslide_get_property_value(openslide_t *osr, const char *name);

extern const char * const *openslide_get_associated_image_names(openslide_t *osr);
extern void openslide_get_associated_image_dimensions(openslide_t *osr, const char *name,
                                                      int64_t *w, int64_t *h);
extern void openslide_read_associated_image(openslide_t *osr, uint32_t *dest, const char *name);

extern const char *openslide_get_version(void);
*/
import "C"

import "unsafe"

// cgoSlide wraps one openslide_t handle. The pointer stays valid until
// close; lifetime and use-after-close discipline are enforced by Slide.
type cgoSlide struct {
	ptr *C.openslide_t
}

// openNative opens a slide file and returns the raw handle.
// A nil handle means the file is missing, unsupported, or corrupt; OpenSlide
// does not distinguish these and leaves no error slot to inspect.
func openNative(path string) (nativeSlide, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	osr := C.openslide_open(cPath)
	if osr == nil {
		return nil, &SlideError{
			Op:      "Open",
			Message: "unrecognized or unreadable slide file: " + path,
			Err:     ErrOpenFailed,
		}
	}
	return &cgoSlide{ptr: osr}, nil
}

// detectVendorNative sniffs the vendor of a slide file without opening it.
// Returns "" when no vendor is recognized.
func detectVendorNative(path string) (string, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	cVendor := C.openslide_detect_vendor(cPath)
	if cVendor == nil {
		return "", nil
	}
	return C.GoString(cVendor), nil
}

// libraryVersionNative returns the linked OpenSlide version string.
func libraryVersionNative() string {
	return C.GoString(C.openslide_get_version())
}

func (s *cgoSlide) levelCount() int32 {
	return int32(C.openslide_get_level_count(s.ptr))
}

func (s *cgoSlide) level0Dimensions() (int64, int64) {
	var w, h C.int64_t
	C.openslide_get_level0_dimensions(s.ptr, &w, &h)
	return int64(w), int64(h)
}

func (s *cgoSlide) levelDimensions(level int32) (int64, int64) {
	var w, h C.int64_t
	C.openslide_get_level_dimensions(s.ptr, C.int32_t(level), &w, &h)
	return int64(w), int64(h)
}

func (s *cgoSlide) levelDownsample(level int32) float64 {
	return float64(C.openslide_get_level_downsample(s.ptr, C.int32_t(level)))
}

func (s *cgoSlide) bestLevelForDownsample(factor float64) int32 {
	return int32(C.openslide_get_best_level_for_downsample(s.ptr, C.double(factor)))
}

func (s *cgoSlide) readRegion(dest []byte, x, y int64, level int32, w, h int64) {
	if len(dest) == 0 {
		return
	}
	C.openslide_read_region(s.ptr,
		(*C.uint32_t)(unsafe.Pointer(&dest[0])),
		C.int64_t(x), C.int64_t(y), C.int32_t(level), C.int64_t(w), C.int64_t(h))
}

func (s *cgoSlide) propertyNames() []string {
	return goStringArray(C.openslide_get_property_names(s.ptr))
}

func (s *cgoSlide) propertyValue(name string) string {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	cValue := C.openslide_get_property_value(s.ptr, cName)
	if cValue == nil {
		return ""
	}
	return C.GoString(cValue)
}

func (s *cgoSlide) associatedImageNames() []string {
	return goStringArray(C.openslide_get_associated_image_names(s.ptr))
}

func (s *cgoSlide) associatedImageDimensions(name string) (int64, int64) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var w, h C.int64_t
	C.openslide_get_associated_image_dimensions(s.ptr, cName, &w, &h)
	return int64(w), int64(h)
}

func (s *cgoSlide) readAssociatedImage(dest []byte, name string) {
	if len(dest) == 0 {
		return
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	C.openslide_read_associated_image(s.ptr,
		(*C.uint32_t)(unsafe.Pointer(&dest[0])), cName)
}

func (s *cgoSlide) errorState() string {
	cMsg := C.openslide_get_error(s.ptr)
	if cMsg == nil {
		return ""
	}
	return C.GoString(cMsg)
}

func (s *cgoSlide) close() {
	C.openslide_close(s.ptr)
	s.ptr = nil
}

// goStringArray copies a NULL-terminated C string array into owned Go
// strings. The native pointers are never retained past this call.
func goStringArray(arr **C.char) []string {
	if arr == nil {
		return nil
	}
	var out []string
	for p := arr; *p != nil; p = (**C.char)(unsafe.Pointer(uintptr(unsafe.Pointer(p)) + unsafe.Sizeof(*p))) {
		out = append(out, C.GoString(*p))
	}
	return out
}
