// Package config persists user-level application settings: default sheet
// stock, placement options, and recently imported files.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/glassfab/nestcut/internal/model"
)

// maxRecentFiles caps the recent-files list.
const maxRecentFiles = 10

// AppConfig holds user preferences persisted between runs.
type AppConfig struct {
	DefaultSheet     model.Sheet            `json:"default_sheet"`
	DefaultAlgorithm model.Algorithm        `json:"default_algorithm"`
	DefaultOptions   model.PlacementOptions `json:"default_options"`
	RecentFiles      []string               `json:"recent_files"`
}

// DefaultAppConfig returns the settings used before the user saves any. The
// stock sheet is a standard 2440x1220mm jumbo half in 4mm float glass.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultSheet: model.Sheet{
			Width:     2440,
			Height:    1220,
			Thickness: 4,
		},
		DefaultAlgorithm: model.AlgorithmBLF,
		DefaultOptions:   model.DefaultOptions(),
		RecentFiles:      []string{},
	}
}

// AddRecentFile prepends a path to the recent-files list, deduplicating and
// keeping at most maxRecentFiles entries.
func (c *AppConfig) AddRecentFile(path string) {
	files := []string{path}
	for _, f := range c.RecentFiles {
		if f != path {
			files = append(files, f)
		}
	}
	if len(files) > maxRecentFiles {
		files = files[:maxRecentFiles]
	}
	c.RecentFiles = files
}

// DefaultConfigDir returns the directory for application configuration,
// ~/.nestcut/ on all platforms.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".nestcut")
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Save persists the config to the given path as JSON, creating any missing
// parent directories.
func Save(path string, config AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads the config from the given path. A missing file returns
// DefaultAppConfig with no error.
func Load(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultAppConfig(), nil
		}
		return AppConfig{}, err
	}
	var config AppConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return AppConfig{}, err
	}
	if config.RecentFiles == nil {
		config.RecentFiles = []string{}
	}
	return config, nil
}
