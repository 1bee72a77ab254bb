// Package config loads linkscope.yaml: physics tuning, viewport bounds, and
// connection settings for the viewer and the development server.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tracive/linkscope/pkg/force"
	"github.com/tracive/linkscope/pkg/viewport"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = "linkscope.yaml"

// Config is the root of linkscope.yaml.
type Config struct {
	Physics  *PhysicsConfig  `yaml:"physics,omitempty"`
	Viewport *ViewportConfig `yaml:"viewport,omitempty"`
	Server   *ServerConfig   `yaml:"server,omitempty"`
	Client   *ClientConfig   `yaml:"client,omitempty"`
}

// PhysicsConfig tunes the force simulation.
type PhysicsConfig struct {
	LinkDistance   float64 `yaml:"linkDistance,omitempty"`
	LinkStrength   float64 `yaml:"linkStrength,omitempty"`
	ChargeStrength float64 `yaml:"chargeStrength,omitempty"`
	CollideRadius  float64 `yaml:"collideRadius,omitempty"`
	Damping        float64 `yaml:"damping,omitempty"`
	AlphaMin       float64 `yaml:"alphaMin,omitempty"`
	AlphaDecay     float64 `yaml:"alphaDecay,omitempty"`
}

// ViewportConfig bounds the view transform. One range serves every zoom
// path.
type ViewportConfig struct {
	MinScale float64 `yaml:"minScale,omitempty"`
	MaxScale float64 `yaml:"maxScale,omitempty"`
	ZoomStep float64 `yaml:"zoomStep,omitempty"`
}

// ServerConfig configures the development graph server.
type ServerConfig struct {
	Addr    string `yaml:"addr,omitempty"`
	Dataset string `yaml:"dataset,omitempty"`
	Watch   bool   `yaml:"watch"`
}

// ClientConfig configures the viewer's API connection.
type ClientConfig struct {
	BaseURL string `yaml:"baseURL,omitempty"`
	Limit   int    `yaml:"limit,omitempty"`
}

// Load reads the config file at path, or returns defaults when it does not
// exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Physics: &PhysicsConfig{
			LinkDistance:   100,
			LinkStrength:   0.05,
			ChargeStrength: -300,
			CollideRadius:  40,
			Damping:        0.85,
			AlphaMin:       0.001,
			AlphaDecay:     0.0228,
		},
		Viewport: &ViewportConfig{
			MinScale: 0.5,
			MaxScale: 3.0,
			ZoomStep: 0.2,
		},
		Server: &ServerConfig{
			Addr:    "localhost:8780",
			Dataset: "dataset.yaml",
			Watch:   true,
		},
		Client: &ClientConfig{
			BaseURL: "http://localhost:8780",
			Limit:   100,
		},
	}
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.Physics == nil {
		cfg.Physics = d.Physics
	}
	if cfg.Viewport == nil {
		cfg.Viewport = d.Viewport
	}
	if cfg.Server == nil {
		cfg.Server = d.Server
	} else {
		if cfg.Server.Addr == "" {
			cfg.Server.Addr = d.Server.Addr
		}
		if cfg.Server.Dataset == "" {
			cfg.Server.Dataset = d.Server.Dataset
		}
	}
	if cfg.Client == nil {
		cfg.Client = d.Client
	} else {
		if cfg.Client.BaseURL == "" {
			cfg.Client.BaseURL = d.Client.BaseURL
		}
		if cfg.Client.Limit == 0 {
			cfg.Client.Limit = d.Client.Limit
		}
	}
}

// ForceOptions converts the physics section for the engine. Unset fields
// fall through to the engine's own defaults.
func (c *Config) ForceOptions() *force.Options {
	p := c.Physics
	if p == nil {
		return nil
	}
	return &force.Options{
		LinkDistance:   p.LinkDistance,
		LinkStrength:   p.LinkStrength,
		ChargeStrength: p.ChargeStrength,
		CollideRadius:  p.CollideRadius,
		Damping:        p.Damping,
		AlphaMin:       p.AlphaMin,
		AlphaDecay:     p.AlphaDecay,
	}
}

// ViewportOptions converts the viewport section for the transform.
func (c *Config) ViewportOptions() *viewport.Options {
	v := c.Viewport
	if v == nil {
		return nil
	}
	return &viewport.Options{
		MinScale: v.MinScale,
		MaxScale: v.MaxScale,
		ZoomStep: v.ZoomStep,
	}
}
