// Package projector derives the visible list from a raw result set and the
// client-side filters.
package projector

import (
	"time"

	"discover-server/models"
	"discover-server/schedule"
)

// ScheduleEvaluator answers whether an opening-hours string is open at an instant.
type ScheduleEvaluator interface {
	Evaluate(spec *string, at time.Time) schedule.OpenState
}

// UnknownPolicy decides how an establishment with Unknown hours is treated by the
// open-now filter.
type UnknownPolicy int

const (
	// AssumeOpenWhenUnknown keeps establishments whose hours are missing or unreadable.
	AssumeOpenWhenUnknown UnknownPolicy = iota
	// HideWhenUnknown drops them.
	HideWhenUnknown
)

type Projector struct {
	evaluator ScheduleEvaluator
	policy    UnknownPolicy
	location  *time.Location
}

// NewProjector builds a projector evaluating hours in loc. A nil loc evaluates in
// the location of the instant passed to Project.
func NewProjector(evaluator ScheduleEvaluator, policy UnknownPolicy, loc *time.Location) *Projector {
	return &Projector{evaluator: evaluator, policy: policy, location: loc}
}

// Project returns the establishments of raw that pass the open-now filter, in the
// order they were received. raw is never modified.
func (p *Projector) Project(raw []models.Establishment, openNowOnly bool, now time.Time) models.ViewModel {
	if !openNowOnly {
		out := make([]models.Establishment, len(raw))
		copy(out, raw)
		return models.ViewModel{Establishments: out}
	}

	if p.location != nil {
		now = now.In(p.location)
	}
	out := make([]models.Establishment, 0, len(raw))
	for _, e := range raw {
		if p.keep(p.evaluator.Evaluate(e.OpeningHours, now)) {
			out = append(out, e)
		}
	}
	return models.ViewModel{Establishments: out}
}

// StatusOf evaluates a single establishment in the projector's location.
func (p *Projector) StatusOf(e models.Establishment, now time.Time) schedule.OpenState {
	if p.location != nil {
		now = now.In(p.location)
	}
	return p.evaluator.Evaluate(e.OpeningHours, now)
}

func (p *Projector) keep(state schedule.OpenState) bool {
	switch state {
	case schedule.Open:
		return true
	case schedule.Unknown:
		return p.policy == AssumeOpenWhenUnknown
	default:
		return false
	}
}
