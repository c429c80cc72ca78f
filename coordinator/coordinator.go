// Package coordinator runs one discovery session: it owns the filter state,
// debounces edits into searches, drops stale results and publishes snapshots.
package coordinator

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"discover-server/models"
)

var ErrClosed = errors.New("session closed")

// Searcher runs a remote search for one criteria snapshot.
type Searcher interface {
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Establishment, error)
}

// ViewProjector turns the raw set into the visible list.
type ViewProjector interface {
	Project(raw []models.Establishment, openNowOnly bool, now time.Time) models.ViewModel
}

// Observer is told about the outcome of searches. Implementations must be safe
// for concurrent use.
type Observer interface {
	QueryIssued()
	QueryCompleted(latency time.Duration)
	StaleDiscarded()
	SearchFailed()
}

type nopObserver struct{}

func (nopObserver) QueryIssued()                 {}
func (nopObserver) QueryCompleted(time.Duration) {}
func (nopObserver) StaleDiscarded()              {}
func (nopObserver) SearchFailed()                {}

type Option func(*Coordinator)

func WithClock(clock Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

func WithObserver(observer Observer) Option {
	return func(c *Coordinator) { c.observer = observer }
}

type envelope struct {
	ev  Event
	ack chan struct{}
}

// Coordinator is the runtime around Reduce. All state changes happen on one loop
// goroutine; the exported methods only send events to it.
type Coordinator struct {
	id        string
	settings  Settings
	searcher  Searcher
	projector ViewProjector
	clock     Clock
	observer  Observer

	events    chan envelope
	done      chan struct{}
	closeOnce sync.Once

	// Loop-owned.
	state        State
	debounce     Timer
	tick         Timer
	cancelSearch context.CancelFunc

	mu         sync.Mutex
	version    uint64
	latest     Snapshot
	subs       map[int]chan Snapshot
	nextSub    int
	lastActive time.Time
}

// New creates a session and starts its loop. No search runs until Start.
func New(id string, searcher Searcher, projector ViewProjector, settings Settings, filters models.FilterState, opts ...Option) *Coordinator {
	c := &Coordinator{
		id:        id,
		settings:  settings,
		searcher:  searcher,
		projector: projector,
		clock:     SystemClock(),
		observer:  nopObserver{},
		events:    make(chan envelope),
		done:      make(chan struct{}),
		state:     NewState(filters),
		subs:      make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}

	now := c.clock.Now()
	c.lastActive = now
	c.latest = c.snapshot(now)

	go c.run()
	return c
}

func (c *Coordinator) ID() string { return c.id }

// Start schedules the initial search through the debounce window.
func (c *Coordinator) Start() error { return c.dispatch(Started{}) }

func (c *Coordinator) SetSearchText(text string) error {
	return c.dispatch(SearchTextEdited{Text: text})
}

func (c *Coordinator) SetAmenity(a models.Amenity) error {
	return c.dispatch(AmenitySelected{Amenity: a})
}

func (c *Coordinator) SetMinRating(r float64) error {
	if err := models.ValidateMinRating(r); err != nil {
		return err
	}
	return c.dispatch(MinRatingSelected{MinRating: r})
}

func (c *Coordinator) SetPopularOnly(on bool) error {
	return c.dispatch(PopularToggled{On: on})
}

func (c *Coordinator) SetOpenNowOnly(on bool) error {
	return c.dispatch(OpenNowToggled{On: on})
}

// Retry searches again right away with the current filters.
func (c *Coordinator) Retry() error { return c.dispatch(RetryRequested{}) }

// Close stops timers, cancels the in-flight search and ends the loop. Results that
// arrive afterwards are dropped. Close is idempotent.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		if err := c.dispatch(TornDown{}); err != nil && !errors.Is(err, ErrClosed) {
			log.Printf("[QueryCoordinator] session %s: teardown: %v", c.id, err)
		}
		<-c.done
	})
}

// Done is closed once the session has been torn down.
func (c *Coordinator) Done() <-chan struct{} { return c.done }

// Snapshot returns the most recently published snapshot.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// LastActive is the time of the last client action.
func (c *Coordinator) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Wait blocks until a snapshot newer than since is published and returns it.
func (c *Coordinator) Wait(ctx context.Context, since uint64) (Snapshot, error) {
	latest := c.Snapshot()
	if latest.Version > since {
		return latest, nil
	}

	updates, cancel := c.Subscribe()
	defer cancel()
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return c.Snapshot(), ErrClosed
			}
			if snap.Version > since {
				return snap, nil
			}
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
}

// Subscribe returns a channel receiving every published snapshot. Slow readers
// only ever see the newest one. The channel is closed by cancel or teardown.
func (c *Coordinator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.latest
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// dispatch hands ev to the loop and waits until it has been applied.
func (c *Coordinator) dispatch(ev Event) error {
	env := envelope{ev: ev, ack: make(chan struct{})}
	select {
	case c.events <- env:
	case <-c.done:
		return ErrClosed
	}

	c.mu.Lock()
	c.lastActive = c.clock.Now()
	c.mu.Unlock()

	select {
	case <-env.ack:
		return nil
	case <-c.done:
		return nil
	}
}

// post hands ev to the loop without waiting for it; used by timers and searches.
func (c *Coordinator) post(ev Event) {
	select {
	case c.events <- envelope{ev: ev}:
	case <-c.done:
	}
}

func (c *Coordinator) run() {
	for env := range c.events {
		var effects []Effect
		c.state, effects = Reduce(c.state, env.ev, c.settings)
		for _, eff := range effects {
			c.apply(eff)
		}
		if env.ack != nil {
			close(env.ack)
		}
		if c.state.Closed {
			c.shutdown()
			return
		}
	}
}

func (c *Coordinator) apply(eff Effect) {
	switch e := eff.(type) {
	case ScheduleDebounce:
		if c.debounce != nil {
			c.debounce.Stop()
		}
		gen := e.Gen
		c.debounce = c.clock.AfterFunc(e.Delay, func() { c.post(DebounceElapsed{Gen: gen}) })

	case IssueSearch:
		if c.cancelSearch != nil {
			c.cancelSearch()
		}
		ctx, cancel := context.WithCancel(context.Background())
		c.cancelSearch = cancel
		c.observer.QueryIssued()
		log.Printf("[QueryCoordinator] session %s: issuing search #%d", c.id, e.Seq)
		go c.search(ctx, e.Seq, e.Criteria)

	case Publish:
		c.publish()

	case ScheduleTick:
		if c.tick != nil {
			c.tick.Stop()
		}
		c.tick = c.clock.AfterFunc(e.Delay, func() { c.post(ClockTicked{}) })

	case DiscardStale:
		c.observer.StaleDiscarded()
		log.Printf("[QueryCoordinator] session %s: discarding stale result #%d (latest #%d)", c.id, e.Seq, e.Latest)

	case RecordFailure:
		c.observer.SearchFailed()
		log.Printf("[QueryCoordinator] session %s: search #%d failed: %v", c.id, e.Seq, e.Err)

	case CancelAll:
		if c.debounce != nil {
			c.debounce.Stop()
		}
		if c.tick != nil {
			c.tick.Stop()
		}
		if c.cancelSearch != nil {
			c.cancelSearch()
		}
	}
}

func (c *Coordinator) search(ctx context.Context, seq uint64, criteria models.SearchCriteria) {
	started := time.Now()
	results, err := c.searcher.Search(ctx, criteria)
	c.observer.QueryCompleted(time.Since(started))
	if err != nil {
		c.post(SearchFailed{Seq: seq, Err: err})
		return
	}
	c.post(SearchSucceeded{Seq: seq, Results: results})
}

func (c *Coordinator) snapshot(now time.Time) Snapshot {
	s := Snapshot{
		SessionID:   c.id,
		Filters:     c.state.Filters,
		View:        c.projector.Project(c.state.Raw, c.state.Filters.OpenNowOnly, now),
		RawCount:    len(c.state.Raw),
		IsLoading:   c.state.IsLoading(),
		Phase:       c.state.Phase,
		EvaluatedAt: now,
	}
	if c.state.LastError != nil {
		s.LastError = c.state.LastError.Error()
	}
	return s
}

func (c *Coordinator) publish() {
	snap := c.snapshot(c.clock.Now())

	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	snap.Version = c.version
	c.latest = snap

	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Coordinator) shutdown() {
	c.mu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	close(c.done)
	c.mu.Unlock()

	log.Printf("[QueryCoordinator] session %s closed", c.id)
}
