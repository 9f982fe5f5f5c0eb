package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/pkg/metrics"
)

// Geolocation notices.
const (
	LocateOKMessage   = "Showing your location"
	LocateFailMessage = "Could not get your location"
)

// ViewportOptions bounds the zoom suggested after re-centering.
type ViewportOptions struct {
	MinZoom    float64
	MaxZoom    float64
	LocateZoom float64
}

// LocateResult is the outcome of a geolocation update.
type LocateResult struct {
	Marker   *domain.UserMarker `json:"marker,omitempty"`
	Viewport *domain.Viewport   `json:"viewport,omitempty"`
	Notice   *domain.Notice     `json:"notice"`
}

type session struct {
	controller *SelectionController
	marker     *domain.UserMarker
	lastSeen   time.Time
}

// SessionService holds one selection controller per viewer session and
// resolves feature keys and pixels against the published scene.
type SessionService struct {
	scenes    *SceneService
	labels    domain.Labels
	publisher ports.EventPublisher
	viewport  ViewportOptions

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionService creates a new SessionService. publisher may be nil.
func NewSessionService(scenes *SceneService, labels domain.Labels, publisher ports.EventPublisher, viewport ViewportOptions) *SessionService {
	return &SessionService{
		scenes:    scenes,
		labels:    labels,
		publisher: publisher,
		viewport:  viewport,
		sessions:  make(map[string]*session),
	}
}

// CreateSession starts a viewer session. Its selections resolve records
// against whichever catalog is published at the time of each Select.
func (s *SessionService) CreateSession(ctx context.Context) (string, domain.SelectionState, error) {
	scene, err := s.scenes.Scene()
	if err != nil {
		return "", domain.SelectionState{}, err
	}
	id := uuid.NewString()
	sess := &session{
		controller: NewLiveSelectionController(s.scenes.Catalog, s.labels),
		lastSeen:   time.Now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	slog.DebugContext(ctx, "session created", "session_id", id, "scene_version", scene.Version)
	return id, sess.controller.State(), nil
}

// EndSession drops a session.
func (s *SessionService) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	metrics.ActiveSessions.Set(float64(n))
	slog.DebugContext(ctx, "session ended", "session_id", id)
	return nil
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (s *SessionService) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
	return removed
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// State returns the selection state of a session.
func (s *SessionService) State(ctx context.Context, id string) (domain.SelectionState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SelectionState{}, err
	}
	return sess.controller.State(), nil
}

// Select opens the feature bound to key.
func (s *SessionService) Select(ctx context.Context, id, key string) (domain.SelectionState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SelectionState{}, err
	}
	scene, err := s.scenes.Scene()
	if err != nil {
		return domain.SelectionState{}, err
	}
	rf, ok := scene.Feature(key)
	if !ok {
		return domain.SelectionState{}, fmt.Errorf("%w: %s", domain.ErrFeatureNotFound, key)
	}
	return s.open(ctx, id, sess, rf.Feature), nil
}

// SelectAt opens the topmost feature under a pixel of the published scene.
func (s *SessionService) SelectAt(ctx context.Context, id string, x, y float64) (domain.SelectionState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SelectionState{}, err
	}
	rf, err := s.scenes.FeatureAt(x, y)
	if err != nil {
		return domain.SelectionState{}, err
	}
	return s.open(ctx, id, sess, rf.Feature), nil
}

// Close closes the session's detail view. Closing a closed view publishes nothing.
func (s *SessionService) Close(ctx context.Context, id string) (domain.SelectionState, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SelectionState{}, err
	}
	state, changed := sess.controller.Close()
	if changed {
		s.publish(ctx, ports.SelectionEvent{SessionID: id, Status: state.Status})
	}
	return state, nil
}

// Locate places the session's user marker. ok=false is a failed lookup on the
// viewer side and only yields a notice.
func (s *SessionService) Locate(ctx context.Context, id string, pt orb.Point, currentZoom float64, ok bool) (LocateResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return LocateResult{}, err
	}
	if !ok || math.IsNaN(pt[0]) || math.IsNaN(pt[1]) {
		slog.DebugContext(ctx, "geolocation unavailable", "session_id", id)
		return LocateResult{Notice: domain.NewNotice(domain.NoticeWarn, LocateFailMessage)}, nil
	}
	px, err := s.scenes.ToPixel(pt)
	if err != nil {
		return LocateResult{}, err
	}

	marker := &domain.UserMarker{
		Source:  pt,
		Pixel:   px,
		Marker:  domain.Marker{Radius: 8, Weight: 2, Opacity: 1, FillOpacity: 0.3},
		Tooltip: s.labels.UserMarker,
	}
	s.mu.Lock()
	sess.marker = marker
	s.mu.Unlock()

	return LocateResult{
		Marker:   marker,
		Viewport: &domain.Viewport{CenterX: px[0], CenterY: px[1], Zoom: s.locateZoom(currentZoom)},
		Notice:   domain.NewNotice(domain.NoticeInfo, LocateOKMessage),
	}, nil
}

// UserMarker returns the session's user marker, if one was placed.
func (s *SessionService) UserMarker(id string) (*domain.UserMarker, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sess.marker, nil
}

func (s *SessionService) locateZoom(current float64) float64 {
	z := math.Max(current, s.viewport.LocateZoom)
	if s.viewport.MaxZoom > s.viewport.MinZoom {
		z = math.Min(math.Max(z, s.viewport.MinZoom), s.viewport.MaxZoom)
	}
	return z
}

func (s *SessionService) open(ctx context.Context, id string, sess *session, f domain.Feature) domain.SelectionState {
	state := sess.controller.Select(f)
	slog.DebugContext(ctx, "feature selected", "session_id", id, "feature_key", f.Key, "feature_id", f.ID)
	s.publish(ctx, ports.SelectionEvent{SessionID: id, Status: state.Status, View: state.View})
	return state
}

func (s *SessionService) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	sess.lastSeen = time.Now()
	return sess, nil
}

func (s *SessionService) publish(ctx context.Context, event ports.SelectionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSelection(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish selection event", "session_id", event.SessionID, "error", err)
	}
}
