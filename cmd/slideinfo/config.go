package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"slidekit/slideruntime"
)

// Config holds all slideinfo settings. Values come from an optional YAML
// file, overridden by environment variables, overridden by flags.
type Config struct {
	// Logging
	Development bool   `yaml:"development"`
	LogFile     string `yaml:"log_file"`

	// Catalog database used by scan mode
	CatalogPath string `yaml:"catalog_path"`

	// Output
	ThumbnailSize int `yaml:"thumbnail_size"` // Longest edge in pixels

	// Scan mode
	ScanExtensions []string `yaml:"scan_extensions"`
}

// defaultScanExtensions covers the formats OpenSlide can open.
var defaultScanExtensions = []string{
	".svs", ".ndpi", ".tif", ".tiff", ".mrxs", ".scn",
	".vms", ".vmu", ".bif", ".svslide",
}

// DefaultConfig returns the settings used when no file or env overrides
// are present.
func DefaultConfig() *Config {
	return &Config{
		Development:    false,
		LogFile:        "logs/slideinfo.log",
		CatalogPath:    "slides.db",
		ThumbnailSize:  512,
		ScanExtensions: defaultScanExtensions,
	}
}

// Helper function to get environment variable with default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to parse integer environment variable with default value
func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Helper function to parse boolean environment variable with default value
func parseBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

// LoadConfig loads configuration in three layers: defaults, then the YAML
// file at path (skipped when path is empty or missing), then environment
// variables. A .env file in the working directory is loaded first if
// present.
func LoadConfig(path string) (*Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Development = parseBoolEnv("SLIDEINFO_DEV", cfg.Development)
	cfg.LogFile = getEnvOrDefault("SLIDEINFO_LOG_FILE", cfg.LogFile)
	cfg.CatalogPath = getEnvOrDefault("SLIDEINFO_CATALOG", cfg.CatalogPath)
	cfg.ThumbnailSize = parseIntEnv("SLIDEINFO_THUMBNAIL_SIZE", cfg.ThumbnailSize)
	if exts := os.Getenv("SLIDEINFO_SCAN_EXTENSIONS"); exts != "" {
		cfg.ScanExtensions = splitExtensions(exts)
	}

	if cfg.ThumbnailSize < 1 {
		return nil, fmt.Errorf("thumbnail size must be positive, got %d", cfg.ThumbnailSize)
	}
	if len(cfg.ScanExtensions) == 0 {
		cfg.ScanExtensions = defaultScanExtensions
	}

	return cfg, nil
}

// splitExtensions parses a comma-separated extension list, normalizing
// each entry to a lowercase ".ext" form.
func splitExtensions(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		result = append(result, trimmed)
	}
	return result
}

// matchesExtension reports whether path ends in one of the configured
// slide extensions.
func (c *Config) matchesExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range c.ScanExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// parseRegion parses the -region flag value "x,y,level,WxH", e.g.
// "512,256,1,100x100". Coordinates are level-0 pixels; the size is in
// level pixels.
func parseRegion(value string) (slideruntime.Region, error) {
	var region slideruntime.Region

	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return region, fmt.Errorf("region %q: want x,y,level,WxH", value)
	}

	x, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return region, fmt.Errorf("region x %q: %w", parts[0], err)
	}
	y, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return region, fmt.Errorf("region y %q: %w", parts[1], err)
	}
	level, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 32)
	if err != nil {
		return region, fmt.Errorf("region level %q: %w", parts[2], err)
	}

	size := strings.SplitN(strings.TrimSpace(parts[3]), "x", 2)
	if len(size) != 2 {
		return region, fmt.Errorf("region size %q: want WxH", parts[3])
	}
	w, err := strconv.ParseInt(strings.TrimSpace(size[0]), 10, 64)
	if err != nil {
		return region, fmt.Errorf("region width %q: %w", size[0], err)
	}
	h, err := strconv.ParseInt(strings.TrimSpace(size[1]), 10, 64)
	if err != nil {
		return region, fmt.Errorf("region height %q: %w", size[1], err)
	}

	region.X = x
	region.Y = y
	region.Level = int32(level)
	region.Width = w
	region.Height = h
	return region, nil
}
