package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesAndFillsDefaults(t *testing.T) {
	content := `
physics:
  linkDistance: 150
  chargeStrength: -500
viewport:
  maxScale: 5
server:
  addr: ":9999"
`
	path := filepath.Join(t.TempDir(), "linkscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 150.0, cfg.Physics.LinkDistance)
	assert.Equal(t, -500.0, cfg.Physics.ChargeStrength)
	assert.Equal(t, 5.0, cfg.Viewport.MaxScale)
	assert.Equal(t, ":9999", cfg.Server.Addr)

	// Omitted sections and fields fall back to defaults.
	assert.Equal(t, Default().Client, cfg.Client)
	assert.Equal(t, Default().Server.Dataset, cfg.Server.Dataset)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics: [nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestForceOptionsConversion(t *testing.T) {
	cfg := Default()
	opts := cfg.ForceOptions()
	require.NotNil(t, opts)
	assert.Equal(t, 100.0, opts.LinkDistance)
	assert.Equal(t, -300.0, opts.ChargeStrength)
	assert.Equal(t, 0.85, opts.Damping)

	empty := &Config{}
	assert.Nil(t, empty.ForceOptions())
	assert.Nil(t, empty.ViewportOptions())
}

func TestViewportOptionsConversion(t *testing.T) {
	cfg := Default()
	opts := cfg.ViewportOptions()
	require.NotNil(t, opts)
	assert.Equal(t, 0.5, opts.MinScale)
	assert.Equal(t, 3.0, opts.MaxScale)
	assert.Equal(t, 0.2, opts.ZoomStep)
}
