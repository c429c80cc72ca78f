package schedule

import (
	"log"
	"sync"
	"time"
)

const DefaultCacheSize = 1024

// ParseObserver is told about every spec string that failed to parse.
type ParseObserver interface {
	ScheduleParseFailed()
}

// Evaluator evaluates opening-hours strings and memoizes parsed schedules per
// string. Unparsable strings are memoized too, so each one is logged once.
type Evaluator struct {
	mu         sync.Mutex
	cache      map[string]*Schedule // nil value: spec failed to parse
	maxEntries int
	observer   ParseObserver
}

func NewEvaluator(maxEntries int, observer ParseObserver) *Evaluator {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	return &Evaluator{
		cache:      make(map[string]*Schedule),
		maxEntries: maxEntries,
		observer:   observer,
	}
}

// Evaluate returns Unknown for a nil or unparsable spec, and the schedule's state
// at at otherwise. at must already be in the establishment's timezone.
func (e *Evaluator) Evaluate(spec *string, at time.Time) OpenState {
	if spec == nil {
		return Unknown
	}
	s := e.lookup(*spec)
	if s == nil {
		return Unknown
	}
	return s.StateAt(at)
}

func (e *Evaluator) lookup(spec string) *Schedule {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.cache[spec]; ok {
		return s
	}
	if len(e.cache) >= e.maxEntries {
		e.cache = make(map[string]*Schedule)
	}

	s, err := Parse(spec)
	if err != nil {
		log.Printf("[ScheduleEvaluator] %v; treating as unknown", err)
		if e.observer != nil {
			e.observer.ScheduleParseFailed()
		}
		s = nil
	}
	e.cache[spec] = s
	return s
}

// Len reports how many spec strings are memoized.
func (e *Evaluator) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}
