package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Settings holds every option the layout engine recognizes. The struct is
// comparable so a changed value can be detected with ==.
type Settings struct {
	Nodes     NodeSettings      `toml:"nodes"`
	Expansion ExpansionSettings `toml:"expansion"`
	Viewport  ViewportSettings  `toml:"viewport"`
	Colors    ColorSettings     `toml:"colors"`
}

// NodeSettings controls node disc sizes.
type NodeSettings struct {
	TableRadius  float64 `toml:"table_radius"`
	DetailRadius float64 `toml:"detail_radius"`
}

// ExpansionSettings controls how detail nodes are spawned.
type ExpansionSettings struct {
	SpawnRadius  float64 `toml:"spawn_radius"`
	MaxActive    int     `toml:"max_active"`
	TransitionMs int     `toml:"transition_ms"`
}

// ViewportSettings bounds the pan/zoom transform.
type ViewportSettings struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	MinScale float64 `toml:"min_scale"`
	MaxScale float64 `toml:"max_scale"`
}

// ColorSettings are consumed by the renderer only.
type ColorSettings struct {
	Table           string `toml:"table"`
	TableStroke     string `toml:"table_stroke"`
	Attribute       string `toml:"attribute"`
	AttributeStroke string `toml:"attribute_stroke"`
	Link            string `toml:"link"`
	Text            string `toml:"text"`
}

// Default returns the default settings.
func Default() Settings {
	return Settings{
		Nodes: NodeSettings{TableRadius: 30, DetailRadius: 15},
		Expansion: ExpansionSettings{
			SpawnRadius:  120,
			MaxActive:    3,
			TransitionMs: 350,
		},
		Viewport: ViewportSettings{Width: 1200, Height: 800, MinScale: 0.1, MaxScale: 10},
		Colors: ColorSettings{
			Table:           "#00B4FF",
			TableStroke:     "#0088C0",
			Attribute:       "#00CC99",
			AttributeStroke: "#008866",
			Link:            "#94a3b8",
			Text:            "#dbdbdb",
		},
	}
}

// TransitionDuration is the expand/collapse animation length.
func (s Settings) TransitionDuration() time.Duration {
	return time.Duration(s.Expansion.TransitionMs) * time.Millisecond
}

// Validate reports every out-of-range value.
func (s Settings) Validate() error {
	var errs []error
	if s.Nodes.TableRadius <= 0 {
		errs = append(errs, fmt.Errorf("nodes.table_radius must be > 0, got %v", s.Nodes.TableRadius))
	}
	if s.Nodes.DetailRadius <= 0 {
		errs = append(errs, fmt.Errorf("nodes.detail_radius must be > 0, got %v", s.Nodes.DetailRadius))
	}
	if s.Expansion.SpawnRadius <= 0 {
		errs = append(errs, fmt.Errorf("expansion.spawn_radius must be > 0, got %v", s.Expansion.SpawnRadius))
	}
	if s.Expansion.MaxActive < 1 {
		errs = append(errs, fmt.Errorf("expansion.max_active must be >= 1, got %d", s.Expansion.MaxActive))
	}
	if s.Expansion.TransitionMs < 0 {
		errs = append(errs, fmt.Errorf("expansion.transition_ms must be >= 0, got %d", s.Expansion.TransitionMs))
	}
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport size must be positive, got %vx%v", s.Viewport.Width, s.Viewport.Height))
	}
	if s.Viewport.MinScale <= 0 {
		errs = append(errs, fmt.Errorf("viewport.min_scale must be > 0, got %v", s.Viewport.MinScale))
	}
	if s.Viewport.MaxScale < s.Viewport.MinScale {
		errs = append(errs, fmt.Errorf("viewport.max_scale %v is below min_scale %v", s.Viewport.MaxScale, s.Viewport.MinScale))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the schemalens config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "schemalens")
}

// Path returns the user settings file path.
func Path() string {
	return filepath.Join(ConfigDir(), "settings.toml")
}

// ProjectFile is looked up from the working directory upwards.
const ProjectFile = ".schemalens.toml"

// Locate returns the settings file Load reads: the nearest project file,
// otherwise the user settings file.
func Locate() string {
	if p := findProjectConfig(); p != "" {
		return p
	}
	return Path()
}

// Load reads the settings file returned by Locate. A missing file yields
// defaults.
func Load() (Settings, error) {
	return LoadFile(Locate())
}

// LoadFile decodes path over the defaults. Keys absent from the file keep
// their default value.
func LoadFile(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings to the user settings file.
func Save(s Settings) error {
	return SaveFile(Path(), s)
}

// SaveFile writes the settings to path.
func SaveFile(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(s)
}

// EnsureExists creates the settings file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}

func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
