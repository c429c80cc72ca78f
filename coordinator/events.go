package coordinator

import (
	"time"

	"discover-server/models"
)

// Event is an input to Reduce. Edits come from the client, the rest from timers
// and finished searches.
type Event interface{ isEvent() }

type Started struct{}

type SearchTextEdited struct{ Text string }

type AmenitySelected struct{ Amenity models.Amenity }

type MinRatingSelected struct{ MinRating float64 }

type PopularToggled struct{ On bool }

type OpenNowToggled struct{ On bool }

// DebounceElapsed fires when the debounce timer armed with Gen runs out.
type DebounceElapsed struct{ Gen uint64 }

type SearchSucceeded struct {
	Seq     uint64
	Results []models.Establishment
}

type SearchFailed struct {
	Seq uint64
	Err error
}

type RetryRequested struct{}

type ClockTicked struct{}

type TornDown struct{}

func (Started) isEvent()           {}
func (SearchTextEdited) isEvent()  {}
func (AmenitySelected) isEvent()   {}
func (MinRatingSelected) isEvent() {}
func (PopularToggled) isEvent()    {}
func (OpenNowToggled) isEvent()    {}
func (DebounceElapsed) isEvent()   {}
func (SearchSucceeded) isEvent()   {}
func (SearchFailed) isEvent()      {}
func (RetryRequested) isEvent()    {}
func (ClockTicked) isEvent()       {}
func (TornDown) isEvent()          {}

// Effect is work Reduce asks the runtime to perform.
type Effect interface{ isEffect() }

// ScheduleDebounce replaces any armed debounce timer with one tagged Gen.
type ScheduleDebounce struct {
	Gen   uint64
	Delay time.Duration
}

// IssueSearch starts a search and cancels whichever search was in flight.
type IssueSearch struct {
	Seq      uint64
	Criteria models.SearchCriteria
}

// Publish projects the current state and hands a snapshot to subscribers.
type Publish struct{}

type ScheduleTick struct{ Delay time.Duration }

// DiscardStale records a completion that lost to a newer search.
type DiscardStale struct {
	Seq    uint64
	Latest uint64
}

type RecordFailure struct {
	Seq uint64
	Err error
}

// CancelAll stops every timer and in-flight search.
type CancelAll struct{}

func (ScheduleDebounce) isEffect() {}
func (IssueSearch) isEffect()      {}
func (Publish) isEffect()          {}
func (ScheduleTick) isEffect()     {}
func (DiscardStale) isEffect()     {}
func (RecordFailure) isEffect()    {}
func (CancelAll) isEffect()        {}
