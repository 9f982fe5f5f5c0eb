package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/core/usecases"
)

// --- Mock Renderer ---

type mockTarget struct {
	mockSurface
}

func (m *mockTarget) Encode(ctx context.Context) ([]byte, error) {
	return []byte("layers:" + string(rune('0'+len(m.layers)))), nil
}

type mockRenderer struct {
	targets       int
	width, height float64
}

func (m *mockRenderer) Format() string      { return "txt" }
func (m *mockRenderer) ContentType() string { return "text/plain" }

func (m *mockRenderer) NewTarget(width, height float64) ports.RenderTarget {
	m.targets++
	m.width, m.height = width, height
	return &mockTarget{}
}

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestRenderService_RenderAndCache(t *testing.T) {
	r := &mockRenderer{}
	cache := &mockCache{}
	svc := usecases.NewRenderService(usecases.NewLayerComposer(usecases.ComposerOptions{}), cache, 60, r)
	scene := &domain.Scene{Version: "3", Layers: []domain.Layer{{Role: domain.RoleZones}, {Role: domain.RolePOI}}}

	data, ct, err := svc.Render(context.Background(), "txt", scene)
	require.NoError(t, err)
	assert.Equal(t, "layers:2", string(data))
	assert.Equal(t, "text/plain", ct)
	assert.Contains(t, cache.data, "render:txt:3")

	_, _, err = svc.Render(context.Background(), "txt", scene)
	require.NoError(t, err)
	assert.Equal(t, 1, r.targets)
	assert.Equal(t, []string{"txt"}, svc.Formats())
}

func TestRenderService_UnknownFormat(t *testing.T) {
	svc := usecases.NewRenderService(usecases.NewLayerComposer(usecases.ComposerOptions{}), nil, 0)

	_, _, err := svc.Render(context.Background(), "gif", &domain.Scene{})

	assert.ErrorIs(t, err, usecases.ErrUnsupportedFormat)
}

func TestRenderService_CanvasFitsRelaidOutRect(t *testing.T) {
	r := &mockRenderer{}
	svc := usecases.NewRenderService(usecases.NewLayerComposer(usecases.ComposerOptions{}), nil, 0, r)
	scene := &domain.Scene{
		Version:    "big",
		Background: domain.Background{Width: 1482, Height: 844},
		Rect:       domain.Rect{Width: 3000, Height: 2000, OffsetX: 10},
	}

	_, _, err := svc.Render(context.Background(), "txt", scene)
	require.NoError(t, err)
	assert.Equal(t, 3010.0, r.width)
	assert.Equal(t, 2000.0, r.height)

	w, h := usecases.CanvasSize(&domain.Scene{
		Background: domain.Background{Width: 1482, Height: 844},
		Rect:       domain.Rect{Width: 1126, Height: 844, OffsetX: 146},
	})
	assert.Equal(t, 1482.0, w)
	assert.Equal(t, 844.0, h)
}
