package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new passages and stories
	DefaultPassageWidth  float64 `json:"default_passage_width"`
	DefaultPassageHeight float64 `json:"default_passage_height"`
	DefaultGap           float64 `json:"default_gap"`
	DefaultGridSize      float64 `json:"default_grid_size"`
	DefaultSnapToGrid    bool    `json:"default_snap_to_grid"`

	// Application preferences
	RecentStories []string `json:"recent_stories"`
	Theme         string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultPassageWidth:  defaults.PassageWidth,
		DefaultPassageHeight: defaults.PassageHeight,
		DefaultGap:           defaults.Gap,
		DefaultGridSize:      DefaultGridSize,
		DefaultSnapToGrid:    false,
		RecentStories:        []string{},
		Theme:                "system",
	}
}

// PlacementSettings returns the engine settings described by the config.
// Zero values fall back to the built-in defaults.
func (c AppConfig) PlacementSettings() PlacementSettings {
	s := DefaultSettings()
	if c.DefaultPassageWidth > 0 {
		s.PassageWidth = c.DefaultPassageWidth
	}
	if c.DefaultPassageHeight > 0 {
		s.PassageHeight = c.DefaultPassageHeight
	}
	if c.DefaultGap > 0 {
		s.Gap = c.DefaultGap
	}
	return s
}

// ApplyToStory copies the grid defaults into a story.
// This is used when creating a new story so it inherits the user's saved defaults.
func (c AppConfig) ApplyToStory(s *Story) {
	s.SnapToGrid = c.DefaultSnapToGrid
	if c.DefaultGridSize > 0 {
		s.GridSize = c.DefaultGridSize
	}
}

// AddRecentStory moves path to the front of the recent list, keeping at most max entries.
func (c *AppConfig) AddRecentStory(path string, max int) {
	recent := []string{path}
	for _, p := range c.RecentStories {
		if p != path {
			recent = append(recent, p)
		}
	}
	if max > 0 && len(recent) > max {
		recent = recent[:max]
	}
	c.RecentStories = recent
}
