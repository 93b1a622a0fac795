package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/StoryMap/internal/model"
)

// MaxRecentStories caps the recent-stories list kept in the app config.
const MaxRecentStories = 10

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.storymap/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".storymap")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
// Fields missing from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	// Ensure RecentStories is never nil
	if config.RecentStories == nil {
		config.RecentStories = []string{}
	}
	return config, nil
}

// RememberStory records path as the most recently used story and saves the
// config at configPath.
func RememberStory(configPath string, config *model.AppConfig, storyPath string) error {
	abs, err := filepath.Abs(storyPath)
	if err == nil {
		storyPath = abs
	}
	config.AddRecentStory(storyPath, MaxRecentStories)
	return SaveAppConfig(configPath, *config)
}
