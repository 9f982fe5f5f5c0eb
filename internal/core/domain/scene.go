package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// Style is the visual style of a rendered shape.
type Style struct {
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillColor   string  `json:"fill_color,omitempty"`
	FillOpacity float64 `json:"fill_opacity"`
}

// Marker decorates point-like features; Radius is also the selectable radius.
type Marker struct {
	Radius      float64 `json:"radius"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fill_opacity"`
}

// RenderedFeature is a feature in pixel space bound to its interactions.
type RenderedFeature struct {
	Feature Feature `json:"feature"`
	Style   Style   `json:"style"`
	Marker  *Marker `json:"marker,omitempty"`
	// Tooltip is the passive hover label; empty when the feature has no label.
	Tooltip string `json:"tooltip,omitempty"`
}

// Layer is one transformed dataset drawn above the previous ones.
type Layer struct {
	Role     Role              `json:"role"`
	Name     string            `json:"name"`
	Features []RenderedFeature `json:"features"`
}

// Background is the raster the layers are aligned on.
type Background struct {
	Href   string  `json:"href"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Scene is a fully composed, immutable map.
type Scene struct {
	// Version is a hash of the rendered content.
	Version    string      `json:"version"`
	Background Background  `json:"background"`
	Bounds     BoundingBox `json:"bounds"`
	Degenerate bool        `json:"degenerate"`
	Rect       Rect        `json:"rect"`
	Layers     []Layer     `json:"layers"`
	LoadedAt   time.Time   `json:"loaded_at"`
	Notice     *Notice     `json:"notice,omitempty"`
	byKey      map[string]*RenderedFeature
}

// Index builds the key lookup. Called once before the scene is published.
func (s *Scene) Index() {
	s.byKey = make(map[string]*RenderedFeature)
	for li := range s.Layers {
		for fi := range s.Layers[li].Features {
			rf := &s.Layers[li].Features[fi]
			s.byKey[rf.Feature.Key] = rf
		}
	}
}

// Feature returns the rendered feature bound to key.
func (s *Scene) Feature(key string) (*RenderedFeature, bool) {
	rf, ok := s.byKey[key]
	return rf, ok
}

// FeatureCount returns the number of rendered features across all layers.
func (s *Scene) FeatureCount() int {
	n := 0
	for _, l := range s.Layers {
		n += len(l.Features)
	}
	return n
}

// NoticeLevel grades a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warn"
	NoticeError NoticeLevel = "error"
)

// NoticeTTL is how long a notice stays visible.
const NoticeTTL = 2200 * time.Millisecond

// Notice is a short, non-blocking user message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	TTLMs   int64       `json:"ttl_ms"`
}

// NewNotice builds a notice with the standard TTL.
func NewNotice(level NoticeLevel, msg string) *Notice {
	return &Notice{Level: level, Message: msg, TTLMs: NoticeTTL.Milliseconds()}
}

// UserMarker is the "you are here" marker of a session.
type UserMarker struct {
	Source  orb.Point `json:"source"`
	Pixel   orb.Point `json:"pixel"`
	Marker  Marker    `json:"marker"`
	Tooltip string    `json:"tooltip"`
}

// Viewport is the suggested view after re-centering.
type Viewport struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Zoom    float64 `json:"zoom"`
}
