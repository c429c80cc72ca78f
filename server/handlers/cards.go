package handlers

import (
	"time"

	"discover-server/coordinator"
	"discover-server/models"
	"discover-server/schedule"
	"discover-server/util"
)

// StatusEvaluator tells whether one establishment is open at an instant.
type StatusEvaluator interface {
	StatusOf(e models.Establishment, now time.Time) schedule.OpenState
}

// EstablishmentCard is one list entry as the home screen renders it.
type EstablishmentCard struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Amenity        models.Amenity `json:"amenity"`
	CuisineTags    []string       `json:"cuisine_tags"`
	DistanceLabel  string         `json:"distance_label"`
	RatingLabel    string         `json:"rating_label"`
	ReviewCount    int            `json:"review_count"`
	OpenBadge      string         `json:"open_badge"`
	OpenBadgeColor string         `json:"open_badge_color"`
	HoursInfo      string         `json:"hours_info"`
}

// SessionResponse is a snapshot plus the cards of its view.
type SessionResponse struct {
	coordinator.Snapshot
	Cards []EstablishmentCard `json:"cards"`
}

func newSessionResponse(snap coordinator.Snapshot, status StatusEvaluator) SessionResponse {
	cards := make([]EstablishmentCard, 0, snap.View.Len())
	for _, e := range snap.View.Establishments {
		cards = append(cards, newCard(e, status.StatusOf(e, snap.EvaluatedAt)))
	}
	return SessionResponse{Snapshot: snap, Cards: cards}
}

func newCard(e models.Establishment, state schedule.OpenState) EstablishmentCard {
	card := EstablishmentCard{
		ID:             e.ID,
		Name:           e.Name,
		Amenity:        e.Amenity,
		CuisineTags:    e.CuisineTags,
		DistanceLabel:  util.DistanceLabel(e.DistanceMeters),
		RatingLabel:    util.RatingLabel(e.AverageRating),
		ReviewCount:    e.ReviewCount,
		OpenBadge:      "Open Now",
		OpenBadgeColor: "#2e7d32",
		HoursInfo:      "No hours info",
	}
	if state == schedule.Closed {
		card.OpenBadge = "Closed"
		card.OpenBadgeColor = "#d32f2f"
	}
	if e.OpeningHours != nil {
		card.HoursInfo = "Has hours"
	}
	if card.CuisineTags == nil {
		card.CuisineTags = []string{}
	}
	return card
}
