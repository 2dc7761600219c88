package settings

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/services/storage"
)

func TestTheme(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	got, err := Theme(ctx, kv)
	if err != nil {
		t.Fatalf("Theme() error = %v", err)
	}
	if got != ThemeDark {
		t.Errorf("Theme() = %q, want %q", got, ThemeDark)
	}

	if _, err := SetTheme(ctx, kv, " Vibrant "); err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}
	if got, _ := Theme(ctx, kv); got != ThemeVibrant {
		t.Errorf("Theme() = %q, want %q", got, ThemeVibrant)
	}

	if _, err := SetTheme(ctx, kv, "neon"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("SetTheme(neon) error = %v, want ErrUnknownTheme", err)
	}
	if got, _ := Theme(ctx, kv); got != ThemeVibrant {
		t.Errorf("rejected theme should not be saved, got %q", got)
	}
}
