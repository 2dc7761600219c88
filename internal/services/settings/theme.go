// Package settings stores user preferences next to the ledger collections.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/services/storage"
)

// ThemeKey is the store key of the theme preference
const ThemeKey = "theme"

// Themes
const (
	ThemeDark    = "dark"
	ThemeVibrant = "vibrant"
)

// DefaultTheme is used until a preference is saved
const DefaultTheme = ThemeDark

// ErrUnknownTheme is returned for a theme name that is not offered
var ErrUnknownTheme = errors.New("unknown theme")

// Themes lists the available themes
var Themes = []string{ThemeDark, ThemeVibrant}

// Theme returns the saved theme, or DefaultTheme when none is saved
func Theme(ctx context.Context, kv storage.KV) (string, error) {
	data, ok, err := kv.Get(ctx, ThemeKey)
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	if !ok {
		return DefaultTheme, nil
	}
	name := strings.TrimSpace(string(data))
	if !valid(name) {
		return DefaultTheme, nil
	}
	return name, nil
}

// SetTheme saves the theme preference
func SetTheme(ctx context.Context, kv storage.KV, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !valid(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if err := kv.Set(ctx, ThemeKey, []byte(name)); err != nil {
		return "", fmt.Errorf("failed to save theme: %w", err)
	}
	return name, nil
}

func valid(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}
