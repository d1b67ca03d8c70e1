package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Settings are the UI values remembered between runs.
type Settings struct {
	Feather        float64 `yaml:"feather"`
	AlphaBoost     float64 `yaml:"alpha_boost"`
	BrushSize      float64 `yaml:"brush_size"`
	WandTolerance  float64 `yaml:"wand_tolerance"`
	BgMode         string  `yaml:"bg_mode"`
	BgColor        string  `yaml:"bg_color"`
	GradientA      string  `yaml:"gradient_a"`
	GradientB      string  `yaml:"gradient_b"`
	ComparePercent float64 `yaml:"compare_percent"`
}

func defaultSettings() Settings {
	return Settings{
		Feather:        0,
		AlphaBoost:     1,
		BrushSize:      28,
		WandTolerance:  30,
		BgMode:         BackgroundNone.String(),
		BgColor:        "#ffffff",
		GradientA:      "#0ea5e9",
		GradientB:      "#f97316",
		ComparePercent: 100,
	}
}

// storedSettings mirrors Settings with optional fields so absent keys can
// fall back to defaults individually.
type storedSettings struct {
	Feather        *float64 `yaml:"feather"`
	AlphaBoost     *float64 `yaml:"alpha_boost"`
	BrushSize      *float64 `yaml:"brush_size"`
	WandTolerance  *float64 `yaml:"wand_tolerance"`
	BgMode         *string  `yaml:"bg_mode"`
	BgColor        *string  `yaml:"bg_color"`
	GradientA      *string  `yaml:"gradient_a"`
	GradientB      *string  `yaml:"gradient_b"`
	ComparePercent *float64 `yaml:"compare_percent"`
}

func (s storedSettings) apply(dst *Settings) {
	if s.Feather != nil {
		dst.Feather = *s.Feather
	}
	if s.AlphaBoost != nil {
		dst.AlphaBoost = *s.AlphaBoost
	}
	if s.BrushSize != nil {
		dst.BrushSize = *s.BrushSize
	}
	if s.WandTolerance != nil {
		dst.WandTolerance = *s.WandTolerance
	}
	if s.BgMode != nil {
		dst.BgMode = *s.BgMode
	}
	if s.BgColor != nil {
		dst.BgColor = *s.BgColor
	}
	if s.GradientA != nil {
		dst.GradientA = *s.GradientA
	}
	if s.GradientB != nil {
		dst.GradientB = *s.GradientB
	}
	if s.ComparePercent != nil {
		dst.ComparePercent = *s.ComparePercent
	}
}

var errBadSetting = errors.New("invalid setting")

func (s Settings) validate() error {
	if _, ok := parseBackgroundMode(s.BgMode); !ok {
		return fmt.Errorf("%w: bg_mode %q", errBadSetting, s.BgMode)
	}
	for key, hex := range map[string]string{"bg_color": s.BgColor, "gradient_a": s.GradientA, "gradient_b": s.GradientB} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%w: %s %q", errBadSetting, key, hex)
		}
	}
	if s.BrushSize <= 0 || s.WandTolerance < 0 || s.ComparePercent < 0 || s.ComparePercent > 100 {
		return fmt.Errorf("%w: out of range value", errBadSetting)
	}
	return nil
}

// SettingsStore persists Settings as YAML in a single file.
type SettingsStore struct {
	path string
}

// NewSettingsStore uses path, or <UserConfigDir>/cutout/settings.yaml when
// path is empty.
func NewSettingsStore(path string) *SettingsStore {
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "cutout", "settings.yaml")
		}
	}
	return &SettingsStore{path: path}
}

func (st *SettingsStore) Path() string { return st.path }

// Load never fails: a missing file yields defaults, a corrupt one is removed
// and also yields defaults.
func (st *SettingsStore) Load() Settings {
	settings := defaultSettings()
	if st.path == "" {
		return settings
	}
	data, err := os.ReadFile(st.path)
	if err != nil {
		return settings
	}

	var stored storedSettings
	if err := yaml.Unmarshal(data, &stored); err != nil {
		st.discard(err)
		return defaultSettings()
	}
	stored.apply(&settings)
	if err := settings.validate(); err != nil {
		st.discard(err)
		return defaultSettings()
	}
	return settings
}

func (st *SettingsStore) discard(cause error) {
	logger().Warn("discarding corrupt settings", "path", st.path, "err", cause)
	if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger().Warn("remove settings", "path", st.path, "err", err)
	}
}

func (st *SettingsStore) Save(s Settings) error {
	if st.path == "" {
		return nil
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := os.WriteFile(st.path, data, 0644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Background builds the compositor background from the settings. img is
// the decoded background image, nil while none is loaded.
func (s Settings) Background(img image.Image) Background {
	mode, _ := parseBackgroundMode(s.BgMode)
	return Background{
		Mode:      mode,
		Color:     parseHexColor(s.BgColor, color.White),
		GradientA: parseHexColor(s.GradientA, color.White),
		GradientB: parseHexColor(s.GradientB, color.Black),
		Image:     img,
	}
}

// parseHexColor returns c for a #rrggbb string, falling back to fallback.
func parseHexColor(hex string, fallback color.Color) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
