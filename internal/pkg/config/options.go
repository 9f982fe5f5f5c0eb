package config

import (
	"time"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/core/usecases"
)

// DatasetSpecs returns the configured documents in declaration order.
func (c *Config) DatasetSpecs() []ports.DatasetSpec {
	out := make([]ports.DatasetSpec, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		out = append(out, ports.DatasetSpec{Source: ds.Source, Role: domain.Role(ds.Role)})
	}
	return out
}

func (c *Config) SceneOptions() usecases.SceneOptions {
	return usecases.SceneOptions{
		Datasets: c.DatasetSpecs(),
		Background: domain.Background{
			Href:   c.Background.Href,
			Width:  c.Background.Width,
			Height: c.Background.Height,
		},
		Layout: usecases.Layout{
			SchemeWidth:  c.Layout.SchemeWidth,
			SchemeHeight: c.Layout.SchemeHeight,
			CalibrationX: c.Layout.CalibrationX,
			OffsetY:      c.Layout.OffsetY,
			FlipY:        c.Layout.FlipY,
		},
	}
}

func (c *Config) ComposerOptions() usecases.ComposerOptions {
	return usecases.ComposerOptions{
		Order: c.DrawOrder(),
		Style: usecases.StyleMode(c.Style.Mode),
	}
}

func (c *Config) ViewportOptions() usecases.ViewportOptions {
	return usecases.ViewportOptions{
		MinZoom:    c.Viewport.MinZoom,
		MaxZoom:    c.Viewport.MaxZoom,
		LocateZoom: c.Viewport.LocateZoom,
	}
}

// SnapshotTimeout returns the headless render timeout.
func (c *Config) SnapshotTimeout() time.Duration {
	return time.Duration(c.Snapshot.Timeout) * time.Second
}

// NATSMaxAge returns the selection stream retention.
func (c *Config) NATSMaxAge() time.Duration {
	return time.Duration(c.NATS.MaxAge) * time.Second
}
