package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"discover-server/coordinator"
	"discover-server/metrics"
	"discover-server/models"
)

var ErrSessionNotFound = errors.New("session not found")
var ErrInvalidSession = errors.New("invalid session options")

// SessionOptions overrides the configured defaults of a new session. Nil fields
// keep the default.
type SessionOptions struct {
	Lat          *float64            `json:"lat"`
	Long         *float64            `json:"long"`
	RadiusMeters *float64            `json:"radius_meters"`
	Filters      *models.FilterState `json:"filters"`
}

// SessionService owns every live discovery session. Each session has its own
// coordinator and shares nothing with the others but the backend.
type SessionService struct {
	searcher       coordinator.Searcher
	projector      coordinator.ViewProjector
	defaults       coordinator.Settings
	openNowDefault bool
	ttl            time.Duration
	metrics        *metrics.Registry
	opts           []coordinator.Option
	now            func() time.Time

	mu       sync.Mutex
	sessions map[string]*coordinator.Coordinator
}

// NewSessionService builds the service. reg may be nil; opts are passed to every
// coordinator it creates.
func NewSessionService(
	searcher coordinator.Searcher,
	projector coordinator.ViewProjector,
	defaults coordinator.Settings,
	openNowDefault bool,
	ttl time.Duration,
	reg *metrics.Registry,
	opts ...coordinator.Option,
) *SessionService {
	if reg != nil {
		opts = append([]coordinator.Option{coordinator.WithObserver(reg)}, opts...)
	}
	return &SessionService{
		searcher:       searcher,
		projector:      projector,
		defaults:       defaults,
		openNowDefault: openNowDefault,
		ttl:            ttl,
		metrics:        reg,
		opts:           opts,
		now:            time.Now,
		sessions:       make(map[string]*coordinator.Coordinator),
	}
}

// Create starts a session and schedules its first search.
func (s *SessionService) Create(ctx context.Context, o SessionOptions) (*coordinator.Coordinator, error) {
	settings, filters, err := s.resolve(o)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	c := coordinator.New(id, s.searcher, s.projector, settings, filters, s.opts...)
	if err := c.Start(); err != nil {
		c.Close()
		return nil, fmt.Errorf("error starting session: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = c
	active := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
		s.metrics.ActiveSessions.Set(float64(active))
	}
	log.Printf("[SessionService] Created session %s at lat=%.6f, long=%.6f, radius=%.0fm",
		id, settings.OriginLat, settings.OriginLong, settings.RadiusMeters)
	return c, nil
}

func (s *SessionService) resolve(o SessionOptions) (coordinator.Settings, models.FilterState, error) {
	settings := s.defaults
	if o.Lat != nil {
		if *o.Lat < -90 || *o.Lat > 90 {
			return settings, models.FilterState{}, fmt.Errorf("%w: lat %v out of range", ErrInvalidSession, *o.Lat)
		}
		settings.OriginLat = *o.Lat
	}
	if o.Long != nil {
		if *o.Long < -180 || *o.Long > 180 {
			return settings, models.FilterState{}, fmt.Errorf("%w: long %v out of range", ErrInvalidSession, *o.Long)
		}
		settings.OriginLong = *o.Long
	}
	if o.RadiusMeters != nil {
		if *o.RadiusMeters <= 0 {
			return settings, models.FilterState{}, fmt.Errorf("%w: radius_meters must be positive", ErrInvalidSession)
		}
		settings.RadiusMeters = *o.RadiusMeters
	}

	filters := models.DefaultFilterState(s.openNowDefault)
	if o.Filters != nil {
		filters = *o.Filters
		a, err := models.ParseAmenity(string(filters.Amenity))
		if err != nil {
			return settings, filters, err
		}
		filters.Amenity = a
		if err := models.ValidateMinRating(filters.MinRating); err != nil {
			return settings, filters, err
		}
	}
	return settings, filters, nil
}

func (s *SessionService) Get(id string) (*coordinator.Coordinator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// Close tears down one session.
func (s *SessionService) Close(id string) error {
	c, err := s.remove(id)
	if err != nil {
		return err
	}
	c.Close()
	log.Printf("[SessionService] Closed session %s", id)
	return nil
}

// CloseAll tears down every session; used on shutdown.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	all := make([]*coordinator.Coordinator, 0, len(s.sessions))
	for id, c := range s.sessions {
		all = append(all, c)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	s.setActive()
	log.Printf("[SessionService] Closed %d sessions", len(all))
}

// IDs lists the live sessions, sorted.
func (s *SessionService) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReapIdle closes sessions without client activity for longer than the TTL and
// returns how many it closed.
func (s *SessionService) ReapIdle() int {
	now := s.now()

	s.mu.Lock()
	var idle []*coordinator.Coordinator
	for id, c := range s.sessions {
		if now.Sub(c.LastActive()) > s.ttl {
			idle = append(idle, c)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, c := range idle {
		log.Printf("[SessionService] Reaping idle session %s", c.ID())
		c.Close()
	}
	if s.metrics != nil {
		s.metrics.SessionsReaped.Add(float64(len(idle)))
	}
	s.setActive()
	return len(idle)
}

// StartReaper launches the background loop reaping idle sessions at the given
// interval until ctx is done.
func (s *SessionService) StartReaper(ctx context.Context, interval time.Duration) {
	go s.startReaper(ctx, interval)
}

func (s *SessionService) startReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.ReapIdle(); n > 0 {
				log.Printf("[SessionService] Reaper closed %d idle sessions", n)
			}
		}
	}
}

func (s *SessionService) remove(id string) (*coordinator.Coordinator, error) {
	s.mu.Lock()
	c, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.setActive()
	return c, nil
}

func (s *SessionService) setActive() {
	if s.metrics == nil {
		return
	}
	s.mu.Lock()
	n := len(s.sessions)
	s.mu.Unlock()
	s.metrics.ActiveSessions.Set(float64(n))
}
