// Package ui provides the StoryMap application UI components.
//
// This file defines a compact Fyne theme and maps the configured theme name
// onto a light or dark variant.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// StoryMapTheme wraps the default Fyne theme with compact sizing overrides
// so more of the story map fits on screen.
type StoryMapTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	fixed   bool // false follows the variant requested by the OS
}

// NewStoryMapTheme creates a new StoryMapTheme with the system default variant.
func NewStoryMapTheme() *StoryMapTheme {
	return &StoryMapTheme{
		base: theme.DefaultTheme(),
	}
}

// NewStoryMapThemeWithVariant creates a StoryMapTheme with a specific light/dark variant.
func NewStoryMapThemeWithVariant(variant fyne.ThemeVariant) *StoryMapTheme {
	return &StoryMapTheme{
		base:    theme.DefaultTheme(),
		variant: variant,
		fixed:   true,
	}
}

// SetVariant forces a light or dark variant.
func (t *StoryMapTheme) SetVariant(variant fyne.ThemeVariant) {
	t.variant = variant
	t.fixed = true
}

// Color delegates to the base theme, forcing the stored variant when one was set.
func (t *StoryMapTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.fixed {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

// Font delegates to the base theme.
func (t *StoryMapTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *StoryMapTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *StoryMapTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}

// ThemeVariant maps a config theme name ("light", "dark", "system") to a
// Fyne variant. ok is false for "system" and unknown names, in which case the
// OS preference applies.
func ThemeVariant(name string) (variant fyne.ThemeVariant, ok bool) {
	switch name {
	case "light":
		return theme.VariantLight, true
	case "dark":
		return theme.VariantDark, true
	default:
		return 0, false
	}
}

// NewThemeFromConfig returns the theme for a config theme name.
func NewThemeFromConfig(name string) *StoryMapTheme {
	if v, ok := ThemeVariant(name); ok {
		return NewStoryMapThemeWithVariant(v)
	}
	return NewStoryMapTheme()
}
