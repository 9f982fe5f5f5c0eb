package http

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// LayerSummary describes one layer without its features.
type LayerSummary struct {
	Role  domain.Role `json:"role"`
	Name  string      `json:"name"`
	Count int         `json:"count"`
}

// SceneSummary is the scene without feature payloads.
type SceneSummary struct {
	Version    string             `json:"version"`
	Background domain.Background  `json:"background"`
	Bounds     domain.BoundingBox `json:"bounds"`
	Degenerate bool               `json:"degenerate"`
	Rect       domain.Rect        `json:"rect"`
	Layers     []LayerSummary     `json:"layers"`
	Notice     *domain.Notice     `json:"notice,omitempty"`
}

// CatalogEntry is a catalog record keyed by its feature id.
type CatalogEntry struct {
	ID     string               `json:"id"`
	Record domain.CatalogRecord `json:"record"`
}

// ProjectedPoint is a source coordinate and its pixel position.
type ProjectedPoint struct {
	Source orb.Point `json:"source"`
	Pixel  orb.Point `json:"pixel"`
}

func summarize(scene *domain.Scene) SceneSummary {
	layers := make([]LayerSummary, 0, len(scene.Layers))
	for _, l := range scene.Layers {
		layers = append(layers, LayerSummary{Role: l.Role, Name: l.Name, Count: len(l.Features)})
	}
	return SceneSummary{
		Version:    scene.Version,
		Background: scene.Background,
		Bounds:     scene.Bounds,
		Degenerate: scene.Degenerate,
		Rect:       scene.Rect,
		Layers:     layers,
		Notice:     scene.Notice,
	}
}

// sceneForRequest returns the published scene, or a relayout of it when the
// request carries width and height.
func sceneForRequest(c *fiber.Ctx, deps *Dependencies) (*domain.Scene, error) {
	scene, err := deps.Scenes.Scene()
	if err != nil {
		return nil, err
	}
	if c.Query("width") == "" && c.Query("height") == "" {
		return scene, nil
	}
	rect, err := parseRect(c, scene.Rect)
	if err != nil {
		return nil, err
	}
	return deps.Scenes.Relayout(rect)
}

var errBadRect = errors.New("width and height must be positive numbers")

func parseRect(c *fiber.Ctx, base domain.Rect) (domain.Rect, error) {
	rect := base
	var err error
	if rect.Width, err = queryFloat(c, "width", base.Width); err != nil || rect.Width <= 0 {
		return rect, errBadRect
	}
	if rect.Height, err = queryFloat(c, "height", base.Height); err != nil || rect.Height <= 0 {
		return rect, errBadRect
	}
	if rect.OffsetX, err = queryFloat(c, "offset_x", base.OffsetX); err != nil {
		return rect, errBadRect
	}
	if rect.OffsetY, err = queryFloat(c, "offset_y", base.OffsetY); err != nil {
		return rect, errBadRect
	}
	if v := c.Query("flip_y"); v != "" {
		rect.FlipY = v == "true" || v == "1"
	}
	return rect, nil
}

func queryFloat(c *fiber.Ctx, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// queryPoint parses required x and y query parameters.
func queryPoint(c *fiber.Ctx) (orb.Point, error) {
	if c.Query("x") == "" || c.Query("y") == "" {
		return orb.Point{}, errors.New("x and y are required")
	}
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		return orb.Point{}, errors.New("x and y must be numbers")
	}
	return orb.Point{x, y}, nil
}

// GetSceneHandler returns the full composed scene, optionally relaid out
// into the rectangle given by width, height, offset_x, offset_y and flip_y.
func GetSceneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scene, err := sceneForRequest(c, deps)
		if errors.Is(err, errBadRect) {
			return errBadRequest(c, err.Error())
		}
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(scene)
	}
}

// SceneSummaryHandler returns the scene metadata and per-layer counts.
func SceneSummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scene, err := deps.Scenes.Scene()
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(summarize(scene))
	}
}

// ReloadSceneHandler re-reads every dataset and the catalog. A failed reload
// keeps the previously published scene.
func ReloadSceneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scene, err := deps.Scenes.Load(c.UserContext())
		if err != nil {
			slog.WarnContext(c.UserContext(), "scene reload failed", "error", err)
			return errUnavailable(c, err)
		}
		return c.JSON(summarize(scene))
	}
}

// ListLayersHandler returns the per-layer summaries in draw order.
func ListLayersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scene, err := deps.Scenes.Scene()
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(summarize(scene).Layers)
	}
}

// GetLayerHandler returns a paginated page of one layer's features.
func GetLayerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit, err := parsePage(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		scene, err := deps.Scenes.Scene()
		if err != nil {
			return errFromDomain(c, err)
		}
		role := domain.Role(c.Params("role"))
		idx := slices.IndexFunc(scene.Layers, func(l domain.Layer) bool { return l.Role == role })
		if idx < 0 {
			return errNotFound(c, "layer not found")
		}
		data, p := page(scene.Layers[idx].Features, offset, limit)
		SetLinkHeaders(c, p)
		return c.JSON(PaginatedResponse{Data: data, Pagination: p})
	}
}

// ListFeaturesHandler returns rendered features across layers in draw order,
// optionally filtered by role and type.
func ListFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit, err := parsePage(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		scene, err := deps.Scenes.Scene()
		if err != nil {
			return errFromDomain(c, err)
		}
		role, typ := domain.Role(c.Query("role")), c.Query("type")

		var all []domain.RenderedFeature
		for _, l := range scene.Layers {
			if role != "" && l.Role != role {
				continue
			}
			for _, rf := range l.Features {
				if typ != "" && rf.Feature.Type != typ {
					continue
				}
				all = append(all, rf)
			}
		}
		data, p := page(all, offset, limit)
		SetLinkHeaders(c, p)
		return c.JSON(PaginatedResponse{Data: data, Pagination: p})
	}
}

// GetFeatureHandler returns one rendered feature. Keys contain a slash
// ("cabins/3"), so the route uses a wildcard.
func GetFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		if key == "" {
			return errBadRequest(c, "feature key is required")
		}
		scene, err := deps.Scenes.Scene()
		if err != nil {
			return errFromDomain(c, err)
		}
		rf, ok := scene.Feature(key)
		if !ok {
			return errNotFound(c, "feature not found")
		}
		return c.JSON(rf)
	}
}

// HitTestHandler returns the topmost feature under a pixel.
func HitTestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := queryPoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		rf, err := deps.Scenes.FeatureAt(pt[0], pt[1])
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(rf)
	}
}

// ProjectHandler maps a source coordinate into pixel space.
func ProjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := queryPoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		px, err := deps.Scenes.ToPixel(pt)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ProjectedPoint{Source: pt, Pixel: px})
	}
}

// ListCatalogHandler returns catalog records sorted by feature id.
func ListCatalogHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit, err := parsePage(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if !deps.Scenes.Ready() {
			_, err := deps.Scenes.Scene()
			return errFromDomain(c, err)
		}
		cat := deps.Scenes.Catalog()
		entries := make([]CatalogEntry, 0, len(cat))
		for id, rec := range cat {
			entries = append(entries, CatalogEntry{ID: id, Record: rec})
		}
		slices.SortFunc(entries, func(a, b CatalogEntry) int { return strings.Compare(a.ID, b.ID) })
		data, p := page(entries, offset, limit)
		SetLinkHeaders(c, p)
		return c.JSON(PaginatedResponse{Data: data, Pagination: p})
	}
}

// GetCatalogRecordHandler returns the record of one feature id.
func GetCatalogRecordHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !deps.Scenes.Ready() {
			_, err := deps.Scenes.Scene()
			return errFromDomain(c, err)
		}
		id := c.Params("id")
		rec, ok := deps.Scenes.Catalog().Lookup(id)
		if !ok {
			return errNotFound(c, "catalog record not found")
		}
		return c.JSON(CatalogEntry{ID: id, Record: rec})
	}
}
