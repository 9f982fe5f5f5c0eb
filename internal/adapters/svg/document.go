// Package svg renders composed scenes as standalone SVG documents. Every
// shape carries its selection key in data-key and its tooltip as <title>.
package svg

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
)

// Renderer produces SVG render targets.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer { return &Renderer{} }

func (Renderer) Format() string      { return "svg" }
func (Renderer) ContentType() string { return "image/svg+xml" }

// NewTarget returns an empty document of the given pixel size.
func (Renderer) NewTarget(width, height float64) ports.RenderTarget {
	return NewDocument(width, height)
}

// Document is a ports.Surface that accumulates SVG markup.
type Document struct {
	width, height float64
	bg            *domain.Background
	body          strings.Builder
	layers        int
}

// NewDocument creates an empty document.
func NewDocument(width, height float64) *Document {
	return &Document{width: width, height: height}
}

// SetBackground sets the raster drawn beneath every layer.
func (d *Document) SetBackground(bg domain.Background) {
	d.bg = &bg
	if d.width == 0 {
		d.width = bg.Width
	}
	if d.height == 0 {
		d.height = bg.Height
	}
}

// AddLayer appends a layer group above the previous ones.
func (d *Document) AddLayer(layer domain.Layer) error {
	fmt.Fprintf(&d.body, `<g class="layer" data-role="%s">`, esc(string(layer.Role)))
	for _, rf := range layer.Features {
		if err := d.feature(rf); err != nil {
			return fmt.Errorf("feature %s: %w", rf.Feature.Key, err)
		}
	}
	d.body.WriteString("</g>\n")
	d.layers++
	return nil
}

// Layers returns the number of attached layers.
func (d *Document) Layers() int { return d.layers }

// Encode returns the complete document.
func (d *Document) Encode(ctx context.Context) ([]byte, error) {
	var b strings.Builder
	w, h := num(d.width), num(d.height)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n", w, h, w, h)
	if d.bg != nil && d.bg.Href != "" {
		fmt.Fprintf(&b, `<image href="%s" x="0" y="0" width="%s" height="%s" preserveAspectRatio="none"/>`+"\n",
			esc(d.bg.Href), num(d.bg.Width), num(d.bg.Height))
	}
	b.WriteString(d.body.String())
	b.WriteString("</svg>\n")
	return []byte(b.String()), nil
}

func (d *Document) feature(rf domain.RenderedFeature) error {
	g := rf.Feature.Geometry
	if g == nil {
		return nil
	}
	fmt.Fprintf(&d.body, `<g class="feature" data-key="%s"`, esc(rf.Feature.Key))
	if rf.Feature.ID != "" {
		fmt.Fprintf(&d.body, ` data-id="%s"`, esc(rf.Feature.ID))
	}
	if rf.Feature.Type != "" {
		fmt.Fprintf(&d.body, ` data-type="%s"`, esc(rf.Feature.Type))
	}
	d.body.WriteString(">")
	if rf.Tooltip != "" {
		fmt.Fprintf(&d.body, "<title>%s</title>", esc(rf.Tooltip))
	}
	if err := d.shape(g, rf); err != nil {
		return err
	}
	d.body.WriteString("</g>")
	return nil
}

func (d *Document) shape(g orb.Geometry, rf domain.RenderedFeature) error {
	switch g := g.(type) {
	case orb.Point:
		d.circle(g, rf)
	case orb.MultiPoint:
		for _, p := range g {
			d.circle(p, rf)
		}
	case orb.LineString:
		d.path(linePath(g), rf.Style, false)
	case orb.MultiLineString:
		var sb strings.Builder
		for _, ls := range g {
			sb.WriteString(linePath(ls))
		}
		d.path(sb.String(), rf.Style, false)
	case orb.Ring:
		d.path(ringPath(g), rf.Style, true)
	case orb.Polygon:
		d.path(polygonPath(g), rf.Style, true)
	case orb.MultiPolygon:
		var sb strings.Builder
		for _, p := range g {
			sb.WriteString(polygonPath(p))
		}
		d.path(sb.String(), rf.Style, true)
	case orb.Collection:
		for _, c := range g {
			if err := d.shape(c, rf); err != nil {
				return err
			}
		}
	case orb.Bound:
		d.path(polygonPath(g.ToPolygon()), rf.Style, true)
	default:
		return fmt.Errorf("unsupported geometry %T", g)
	}
	return nil
}

func (d *Document) circle(p orb.Point, rf domain.RenderedFeature) {
	m := rf.Marker
	if m == nil {
		m = &domain.Marker{Radius: 7, Weight: rf.Style.Weight, Opacity: rf.Style.Opacity, FillOpacity: rf.Style.FillOpacity}
	}
	fill := rf.Style.FillColor
	if fill == "" {
		fill = rf.Style.Color
	}
	fmt.Fprintf(&d.body, `<circle cx="%s" cy="%s" r="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s" fill="%s" fill-opacity="%s"/>`,
		num(p[0]), num(p[1]), num(m.Radius), esc(rf.Style.Color), num(m.Weight), num(m.Opacity), esc(fill), num(m.FillOpacity))
}

func (d *Document) path(data string, s domain.Style, closed bool) {
	if data == "" {
		return
	}
	fill, fillOpacity := "none", "0"
	if closed && s.FillOpacity > 0 {
		fill = s.FillColor
		if fill == "" {
			fill = s.Color
		}
		fillOpacity = num(s.FillOpacity)
	}
	fmt.Fprintf(&d.body, `<path d="%s" fill-rule="evenodd" stroke="%s" stroke-width="%s" stroke-opacity="%s" fill="%s" fill-opacity="%s"/>`,
		strings.TrimSpace(data), esc(s.Color), num(s.Weight), num(s.Opacity), esc(fill), fillOpacity)
}

func linePath(pts []orb.Point) string {
	if len(pts) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range pts {
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString(" L")
		}
		sb.WriteString(num(p[0]))
		sb.WriteString(" ")
		sb.WriteString(num(p[1]))
	}
	sb.WriteString(" ")
	return sb.String()
}

func ringPath(r orb.Ring) string {
	lp := linePath(r)
	if lp == "" {
		return ""
	}
	return lp + "Z "
}

func polygonPath(p orb.Polygon) string {
	var sb strings.Builder
	for _, r := range p {
		sb.WriteString(ringPath(r))
	}
	return sb.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func esc(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
