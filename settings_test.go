package main

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	store := NewSettingsStore(filepath.Join(t.TempDir(), "settings.yaml"))
	if got := store.Load(); got != defaultSettings() {
		t.Fatalf("Load = %+v", got)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewSettingsStore(path)

	want := defaultSettings()
	want.Feather = 2.5
	want.BrushSize = 64
	want.BgMode = "gradient"
	want.GradientA = "#112233"
	want.ComparePercent = 40

	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := NewSettingsStore(path).Load(); got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestSettingsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("brush_size: 50\nbg_mode: color\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := NewSettingsStore(path).Load()
	want := defaultSettings()
	want.BrushSize = 50
	want.BgMode = "color"
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestSettingsCorruptFileIsDiscarded(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "brush_size: [unterminated\n"},
		{"wrong type", "brush_size: huge\n"},
		{"bad colour", "bg_color: '#zzzzzz'\n"},
		{"bad mode", "bg_mode: plaid\n"},
		{"out of range", "compare_percent: 140\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if got := NewSettingsStore(path).Load(); got != defaultSettings() {
				t.Fatalf("Load = %+v", got)
			}
			if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
				t.Fatalf("corrupt file still present: %v", err)
			}
		})
	}
}

func TestSettingsEmptyPath(t *testing.T) {
	store := &SettingsStore{}
	if err := store.Save(defaultSettings()); err != nil {
		t.Fatal(err)
	}
	if store.Load() != defaultSettings() {
		t.Fatal("empty store did not return defaults")
	}
}

func TestSettingsBackground(t *testing.T) {
	s := defaultSettings()
	s.BgMode = "color"
	s.BgColor = "#ff8000"

	bg := s.Background(nil)
	if bg.Mode != BackgroundColor {
		t.Fatalf("mode = %v", bg.Mode)
	}
	if bg.Color != (color.NRGBA{R: 255, G: 128, A: 255}) {
		t.Fatalf("colour = %v", bg.Color)
	}
	if bg.Image != nil {
		t.Fatal("image set without one loaded")
	}

	if c := parseHexColor("nope", color.Black); c != color.Black {
		t.Fatalf("fallback = %v", c)
	}
}
