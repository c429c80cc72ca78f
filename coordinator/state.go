package coordinator

import (
	"strings"
	"time"

	"discover-server/models"
)

// Phase is where the session is in its query lifecycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
	PhaseSettled Phase = "settled"
	PhaseFailed  Phase = "failed"
)

// Settings are the fixed parameters of one session.
type Settings struct {
	OriginLat              float64
	OriginLong             float64
	RadiusMeters           float64
	PageSize               int
	PopularReviewThreshold int
	DebounceWindow         time.Duration
	// ViewRefreshInterval republishes the view periodically; zero disables it.
	ViewRefreshInterval time.Duration
}

// Criteria resolves a filter snapshot into the search the backend should run.
func (s Settings) Criteria(f models.FilterState) models.SearchCriteria {
	c := models.SearchCriteria{
		OriginLat:    s.OriginLat,
		OriginLong:   s.OriginLong,
		RadiusMeters: s.RadiusMeters,
		MinRating:    f.MinRating,
		PageSize:     s.PageSize,
	}
	if text := strings.TrimSpace(f.SearchText); text != "" {
		c.Text = &text
	}
	if f.Amenity != "" && f.Amenity != models.AmenityAll {
		a := f.Amenity
		c.Amenity = &a
	}
	if f.PopularOnly {
		c.MinReviewCount = s.PopularReviewThreshold
	}
	return c
}

// State is owned by a single coordinator loop and only changed through Reduce.
type State struct {
	Filters   models.FilterState
	Phase     Phase
	Raw       []models.Establishment
	LastError error

	// DebounceGen identifies the debounce timer that is allowed to fire.
	DebounceGen uint64
	// HighestSeq is the sequence number of the newest issued search.
	HighestSeq uint64

	Started bool
	Closed  bool
}

func NewState(filters models.FilterState) State {
	return State{Filters: filters, Phase: PhaseIdle}
}

// IsLoading is true while a search is outstanding and before the first one is issued.
func (s State) IsLoading() bool {
	return s.Phase == PhasePending || s.Phase == PhaseIdle
}

// Reduce applies ev to s. It never blocks and never touches the outside world:
// everything beyond the new state is described by the returned effects.
func Reduce(s State, ev Event, cfg Settings) (State, []Effect) {
	if s.Closed {
		return s, nil
	}

	switch e := ev.(type) {
	case Started:
		if s.Started {
			return s, nil
		}
		s.Started = true
		effects := []Effect{scheduleDebounce(&s, cfg), Publish{}}
		if cfg.ViewRefreshInterval > 0 {
			effects = append(effects, ScheduleTick{Delay: cfg.ViewRefreshInterval})
		}
		return s, effects

	case SearchTextEdited:
		return editServerFilter(s, s.Filters.WithSearchText(e.Text), cfg)

	case AmenitySelected:
		return editServerFilter(s, s.Filters.WithAmenity(e.Amenity), cfg)

	case MinRatingSelected:
		return editServerFilter(s, s.Filters.WithMinRating(e.MinRating), cfg)

	case PopularToggled:
		return editServerFilter(s, s.Filters.WithPopularOnly(e.On), cfg)

	case OpenNowToggled:
		if s.Filters.OpenNowOnly == e.On {
			return s, nil
		}
		s.Filters = s.Filters.WithOpenNowOnly(e.On)
		return s, []Effect{Publish{}}

	case DebounceElapsed:
		if e.Gen != s.DebounceGen {
			return s, nil
		}
		return issueSearch(s, cfg)

	case RetryRequested:
		// Disarm any pending debounce; the search below already uses the latest filters.
		s.DebounceGen++
		return issueSearch(s, cfg)

	case SearchSucceeded:
		if e.Seq != s.HighestSeq {
			return s, []Effect{DiscardStale{Seq: e.Seq, Latest: s.HighestSeq}}
		}
		s.Raw = e.Results
		s.Phase = PhaseSettled
		s.LastError = nil
		return s, []Effect{Publish{}}

	case SearchFailed:
		if e.Seq != s.HighestSeq {
			return s, []Effect{DiscardStale{Seq: e.Seq, Latest: s.HighestSeq}}
		}
		s.Phase = PhaseFailed
		s.LastError = e.Err
		return s, []Effect{RecordFailure{Seq: e.Seq, Err: e.Err}, Publish{}}

	case ClockTicked:
		if cfg.ViewRefreshInterval <= 0 {
			return s, nil
		}
		return s, []Effect{Publish{}, ScheduleTick{Delay: cfg.ViewRefreshInterval}}

	case TornDown:
		s.Closed = true
		s.DebounceGen++
		return s, []Effect{CancelAll{}}
	}
	return s, nil
}

// editServerFilter records the edit and restarts the debounce only when the
// search the backend would run changes.
func editServerFilter(s State, next models.FilterState, cfg Settings) (State, []Effect) {
	if next == s.Filters {
		return s, nil
	}
	prev := s.Filters
	s.Filters = next
	if next.ServerCriteriaEqual(prev) {
		return s, []Effect{Publish{}}
	}
	return s, []Effect{scheduleDebounce(&s, cfg), Publish{}}
}

func scheduleDebounce(s *State, cfg Settings) Effect {
	s.DebounceGen++
	return ScheduleDebounce{Gen: s.DebounceGen, Delay: cfg.DebounceWindow}
}

func issueSearch(s State, cfg Settings) (State, []Effect) {
	s.HighestSeq++
	s.Phase = PhasePending
	return s, []Effect{
		IssueSearch{Seq: s.HighestSeq, Criteria: cfg.Criteria(s.Filters)},
		Publish{},
	}
}
