package usecases

import (
	"sync"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/pkg/metrics"
)

// SelectionController is the single-focus detail state machine of one viewer.
// States are Closed (initial) and Open; every transition replaces the state.
type SelectionController struct {
	catalog func() domain.Catalog
	labels  domain.Labels

	mu    sync.Mutex
	state domain.SelectionState
}

// NewSelectionController creates a controller in the Closed state over a
// fixed catalog.
func NewSelectionController(catalog domain.Catalog, labels domain.Labels) *SelectionController {
	return NewLiveSelectionController(func() domain.Catalog { return catalog }, labels)
}

// NewLiveSelectionController creates a controller that reads the catalog at
// every Select, so records follow the currently published catalog.
func NewLiveSelectionController(catalog func() domain.Catalog, labels domain.Labels) *SelectionController {
	if catalog == nil {
		catalog = func() domain.Catalog { return nil }
	}
	return &SelectionController{
		catalog: catalog,
		labels:  labels,
		state:   domain.SelectionState{Status: domain.SelectionClosed},
	}
}

// Select opens f. A feature without a catalog record opens with an empty
// record; a selection while Open replaces the previous one.
func (c *SelectionController) Select(f domain.Feature) domain.SelectionState {
	cat := c.catalog()
	if cat == nil {
		cat = domain.Catalog{}
	}
	rec, ok := cat.Lookup(f.ID)
	if !ok {
		metrics.CatalogMisses.Inc()
	}
	view := BuildDetailView(f, rec, c.labels)

	next := domain.SelectionState{
		Status:  domain.SelectionOpen,
		Feature: &f,
		Record:  &rec,
		View:    &view,
	}

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()

	metrics.Selections.WithLabelValues(string(domain.SelectionOpen)).Inc()
	return next
}

// Close moves to Closed. It reports whether the state changed, so closing an
// already closed controller is a silent no-op.
func (c *SelectionController) Close() (domain.SelectionState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.IsOpen() {
		return c.state, false
	}
	c.state = domain.SelectionState{Status: domain.SelectionClosed}
	metrics.Selections.WithLabelValues(string(domain.SelectionClosed)).Inc()
	return c.state, true
}

// State returns the current state.
func (c *SelectionController) State() domain.SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
