package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slidekit/slideruntime"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    slideruntime.Region
		wantErr bool
	}{
		{
			name: "basic",
			spec: "512,256,1,100x100",
			want: slideruntime.Region{X: 512, Y: 256, Level: 1, Width: 100, Height: 100},
		},
		{
			name: "level zero origin",
			spec: "0,0,0,2048x1024",
			want: slideruntime.Region{Width: 2048, Height: 1024},
		},
		{
			name: "spaces tolerated",
			spec: " 10, 20, 2, 30x40 ",
			want: slideruntime.Region{X: 10, Y: 20, Level: 2, Width: 30, Height: 40},
		},
		{
			name: "negative origin parses",
			spec: "-5,0,0,10x10",
			want: slideruntime.Region{X: -5, Width: 10, Height: 10},
		},
		{name: "too few parts", spec: "1,2,3", wantErr: true},
		{name: "too many parts", spec: "1,2,3,4x5,6", wantErr: true},
		{name: "missing size separator", spec: "1,2,3,45", wantErr: true},
		{name: "non-numeric x", spec: "a,2,3,4x5", wantErr: true},
		{name: "non-numeric height", spec: "1,2,3,4xb", wantErr: true},
		{name: "empty", spec: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRegion(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRegion(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseRegion(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ThumbnailSize != 512 {
		t.Errorf("ThumbnailSize = %d, want 512", cfg.ThumbnailSize)
	}
	if cfg.CatalogPath != "slides.db" {
		t.Errorf("CatalogPath = %q, want slides.db", cfg.CatalogPath)
	}
	if !cfg.matchesExtension("slide.svs") {
		t.Error("default extensions should match .svs")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slideinfo.yaml")
	data := `development: true
log_file: out/test.log
catalog_path: out/catalog.db
thumbnail_size: 256
scan_extensions: [".svs", ".ndpi"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Development {
		t.Error("Development = false, want true")
	}
	if cfg.LogFile != "out/test.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.ThumbnailSize != 256 {
		t.Errorf("ThumbnailSize = %d, want 256", cfg.ThumbnailSize)
	}
	if cfg.matchesExtension("slide.mrxs") {
		t.Error("file-configured extensions should not match .mrxs")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slideinfo.yaml")
	if err := os.WriteFile(path, []byte("thumbnail_size: 256\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLIDEINFO_THUMBNAIL_SIZE", "128")
	t.Setenv("SLIDEINFO_CATALOG", "/tmp/env.db")
	t.Setenv("SLIDEINFO_SCAN_EXTENSIONS", "SVS, tiff")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ThumbnailSize != 128 {
		t.Errorf("ThumbnailSize = %d, want env override 128", cfg.ThumbnailSize)
	}
	if cfg.CatalogPath != "/tmp/env.db" {
		t.Errorf("CatalogPath = %q, want env override", cfg.CatalogPath)
	}
	if !cfg.matchesExtension("a.svs") || !cfg.matchesExtension("b.TIFF") {
		t.Error("env extensions should normalize case and dots")
	}
	if cfg.matchesExtension("c.ndpi") {
		t.Error("env extensions should replace the default list")
	}
}

func TestLoadConfig_InvalidThumbnail(t *testing.T) {
	t.Setenv("SLIDEINFO_THUMBNAIL_SIZE", "-3")

	if _, err := LoadConfig(""); err == nil {
		t.Error("LoadConfig() with negative thumbnail size error = nil, want error")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slideinfo.yaml")
	if err := os.WriteFile(path, []byte("thumbnail_size: [not an int\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() with malformed YAML error = nil, want error")
	}
}

func TestSplitExtensions(t *testing.T) {
	got := splitExtensions(".svs, NDPI ,, .Tif")
	want := []string{".svs", ".ndpi", ".tif"}
	if len(got) != len(want) {
		t.Fatalf("splitExtensions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitExtensions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseMPP(t *testing.T) {
	if got := parseMPP("0.499"); got != 0.499 {
		t.Errorf("parseMPP(0.499) = %g", got)
	}
	if got := parseMPP(""); got != 0 {
		t.Errorf("parseMPP(empty) = %g, want 0", got)
	}
	if got := parseMPP("not-a-number"); got != 0 {
		t.Errorf("parseMPP(garbage) = %g, want 0", got)
	}
}

func TestWriteImage_UnsupportedFormat(t *testing.T) {
	err := writeImage(nil, filepath.Join(t.TempDir(), "region.bmp"))
	if err == nil {
		t.Fatal("writeImage() with .bmp error = nil, want error")
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		t.Errorf("writeImage() failed creating the file, not on format: %v", err)
	}
}
