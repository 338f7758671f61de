//go:build !cgo || nocgo

// Stub implementation for builds without libopenslide.
// Build with: go build -tags nocgo
// Every open attempt fails with ErrLibraryUnavailable; the guard and error
// bridge logic stays testable through the nativeSlide seam.

package slideruntime

func openNative(path string) (nativeSlide, error) {
	return nil, &SlideError{
		Op:      "Open",
		Message: "libopenslide not linked (nocgo build): " + path,
		Err:     ErrLibraryUnavailable,
	}
}

func detectVendorNative(path string) (string, error) {
	return "", &SlideError{
		Op:      "DetectVendor",
		Message: "libopenslide not linked (nocgo build)",
		Err:     ErrLibraryUnavailable,
	}
}

func libraryVersionNative() string {
	return "stub (no libopenslide linked)"
}
