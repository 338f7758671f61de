package slideruntime

import (
	"errors"
	"testing"
)

func TestRegion_BufferSize(t *testing.T) {
	tests := []struct {
		region Region
		want   int64
	}{
		{Region{Width: 100, Height: 100}, 40000},
		{Region{Width: 1, Height: 1}, 4},
		{Region{Width: 512, Height: 256}, 524288},
	}

	for _, tt := range tests {
		if got := tt.region.BufferSize(); got != tt.want {
			t.Errorf("BufferSize(%dx%d) = %d, want %d", tt.region.Width, tt.region.Height, got, tt.want)
		}
	}
}

func TestValidateRegion(t *testing.T) {
	tests := []struct {
		name       string
		region     Region
		levelW     int64
		levelH     int64
		downsample float64
		wantErr    bool
	}{
		{"full level 0", Region{Width: 2048, Height: 1024}, 2048, 1024, 1, false},
		{"one past right edge", Region{X: 1, Width: 2048, Height: 10}, 2048, 1024, 1, true},
		{"one past bottom edge", Region{Y: 1, Width: 10, Height: 1024}, 2048, 1024, 1, true},
		{"zero width", Region{Width: 0, Height: 10}, 2048, 1024, 1, true},
		{"zero height", Region{Width: 10, Height: 0}, 2048, 1024, 1, true},
		{"negative width", Region{Width: -5, Height: 10}, 2048, 1024, 1, true},
		{"negative x", Region{X: -1, Width: 10, Height: 10}, 2048, 1024, 1, true},
		{"negative y", Region{Y: -1, Width: 10, Height: 10}, 2048, 1024, 1, true},
		{"downsampled corner fits", Region{X: 2044, Y: 1020, Width: 1, Height: 1}, 512, 256, 4, false},
		{"downsampled overflow", Region{X: 2044, Y: 0, Width: 10, Height: 10}, 512, 256, 4, true},
		{"degenerate downsample treated as 1", Region{Width: 10, Height: 10}, 10, 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRegion(tt.region, tt.levelW, tt.levelH, tt.downsample)
			if tt.wantErr {
				if !errors.Is(err, ErrRegionOutOfBounds) {
					t.Errorf("validateRegion() error = %v, want ErrRegionOutOfBounds", err)
				}
				return
			}
			if err != nil {
				t.Errorf("validateRegion() error = %v, want nil", err)
			}
		})
	}
}
