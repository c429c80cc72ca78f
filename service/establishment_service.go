package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"discover-server/api/discovery"
	"discover-server/models"
	"discover-server/schedule"
)

const MENU_PREVIEW_ITEMS = 3

// OpenStatus is the label shown next to an establishment's name.
type OpenStatus struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

var (
	StatusNoHours        = OpenStatus{Text: "No hours info", Color: "#666"}
	StatusOpen           = OpenStatus{Text: "Open Now", Color: "green"}
	StatusClosed         = OpenStatus{Text: "Closed", Color: "red"}
	StatusHoursAvailable = OpenStatus{Text: "Hours available", Color: "#666"}
)

// DetailsView is the details payload plus everything a client would otherwise
// compute from it.
type DetailsView struct {
	Details       models.EstablishmentDetails `json:"details"`
	Status        OpenStatus                  `json:"status"`
	Menu          models.Menu                 `json:"menu"`
	MenuTruncated bool                        `json:"menu_truncated"`
	PhoneE164     string                      `json:"phone_e164,omitempty"`
}

type EstablishmentService struct {
	api         discovery.DiscoveryAPI
	evaluator   *schedule.Evaluator
	location    *time.Location
	phoneRegion string
	now         func() time.Time
}

func NewEstablishmentService(
	api discovery.DiscoveryAPI,
	evaluator *schedule.Evaluator,
	loc *time.Location,
	phoneRegion string,
) *EstablishmentService {
	return &EstablishmentService{
		api:         api,
		evaluator:   evaluator,
		location:    loc,
		phoneRegion: phoneRegion,
		now:         time.Now,
	}
}

// GetDetails fetches one establishment as seen from (lat, lon).
func (s *EstablishmentService) GetDetails(ctx context.Context, id string, lat, lon float64, expanded bool) (*DetailsView, error) {
	details, err := s.api.GetEstablishmentDetails(ctx, id, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("error fetching establishment %s: %w", id, err)
	}

	menu := details.Menu.Preview(expanded, MENU_PREVIEW_ITEMS)
	return &DetailsView{
		Details:       *details,
		Status:        s.Status(details.OpeningHours),
		Menu:          menu,
		MenuTruncated: menuItemCount(menu) < menuItemCount(details.Menu),
		PhoneE164:     s.normalizePhone(details.Phone),
	}, nil
}

// Status labels an opening-hours string at the current instant.
func (s *EstablishmentService) Status(hours *string) OpenStatus {
	if hours == nil || strings.TrimSpace(*hours) == "" {
		return StatusNoHours
	}
	now := s.now()
	if s.location != nil {
		now = now.In(s.location)
	}
	switch s.evaluator.Evaluate(hours, now) {
	case schedule.Open:
		return StatusOpen
	case schedule.Closed:
		return StatusClosed
	default:
		return StatusHoursAvailable
	}
}

// normalizePhone returns the number in E.164, or "" when it cannot be parsed.
func (s *EstablishmentService) normalizePhone(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, s.phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		log.Printf("[EstablishmentService] Ignoring unparsable phone %q: %v", raw, err)
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func menuItemCount(m models.Menu) int {
	n := 0
	for _, c := range m {
		n += len(c.Items)
	}
	return n
}
