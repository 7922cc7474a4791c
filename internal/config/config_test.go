package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, 30.0, s.Nodes.TableRadius)
	assert.Equal(t, 15.0, s.Nodes.DetailRadius)
	assert.Equal(t, 120.0, s.Expansion.SpawnRadius)
	assert.Equal(t, 3, s.Expansion.MaxActive)
	assert.Equal(t, 350*time.Millisecond, s.TransitionDuration())
	assert.Equal(t, 0.1, s.Viewport.MinScale)
	assert.Equal(t, 10.0, s.Viewport.MaxScale)
	assert.NoError(t, s.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"zero table radius", func(s *Settings) { s.Nodes.TableRadius = 0 }, "table_radius"},
		{"negative detail radius", func(s *Settings) { s.Nodes.DetailRadius = -1 }, "detail_radius"},
		{"zero spawn radius", func(s *Settings) { s.Expansion.SpawnRadius = 0 }, "spawn_radius"},
		{"zero max active", func(s *Settings) { s.Expansion.MaxActive = 0 }, "max_active"},
		{"negative transition", func(s *Settings) { s.Expansion.TransitionMs = -5 }, "transition_ms"},
		{"empty viewport", func(s *Settings) { s.Viewport.Width = 0 }, "viewport size"},
		{"zero min scale", func(s *Settings) { s.Viewport.MinScale = 0 }, "min_scale"},
		{"inverted scale range", func(s *Settings) { s.Viewport.MaxScale = 0.05 }, "max_scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)

			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		s := Default()
		s.Nodes.TableRadius = 0
		s.Expansion.MaxActive = 0

		err := s.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table_radius")
		assert.Contains(t, err.Error(), "max_active")
	})
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	assert.Equal(t, "/tmp/test-xdg/schemalens", ConfigDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "schemalens"), ConfigDir())
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Chdir(tmpDir)

	s := Default()
	s.Expansion.MaxActive = 5
	s.Nodes.TableRadius = 42

	require.NoError(t, Save(s))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file yields defaults", func(t *testing.T) {
		s, err := LoadFile(filepath.Join(dir, "missing.toml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), s)
	})

	t.Run("partial file keeps other defaults", func(t *testing.T) {
		path := filepath.Join(dir, "partial.toml")
		require.NoError(t, os.WriteFile(path, []byte("[expansion]\nmax_active = 5\n"), 0o644))

		s, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 5, s.Expansion.MaxActive)
		assert.Equal(t, 30.0, s.Nodes.TableRadius)
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[expansion\n"), 0o644))

		s, err := LoadFile(path)
		require.Error(t, err)
		assert.Equal(t, Default(), s)
	})

	t.Run("out of range values", func(t *testing.T) {
		path := filepath.Join(dir, "range.toml")
		require.NoError(t, os.WriteFile(path, []byte("[expansion]\nmax_active = 0\n"), 0o644))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_active")
	})
}

func TestEnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	require.NoError(t, EnsureExists())

	path := filepath.Join(tmpDir, "schemalens", "settings.toml")
	_, err := os.Stat(path)
	assert.NoError(t, err, "settings file not created")

	// Second call should be no-op
	require.NoError(t, EnsureExists())
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "a", "b", "c")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ProjectFile), []byte("[nodes]\ntable_radius = 50\n"), 0o644))

	t.Chdir(subDir)

	found := findProjectConfig()
	// Resolve symlinks (macOS /var -> /private/var)
	expectedResolved, _ := filepath.EvalSymlinks(filepath.Join(tmpDir, ProjectFile))
	foundResolved, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, expectedResolved, foundResolved)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50.0, s.Nodes.TableRadius)

	located, _ := filepath.EvalSymlinks(Locate())
	assert.Equal(t, expectedResolved, located)
}

func TestLocateFallsBackToUserFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Chdir(tmpDir)

	assert.Equal(t, filepath.Join(tmpDir, "schemalens", "settings.toml"), Locate())
}
