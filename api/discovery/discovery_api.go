package discovery

import (
	"context"
	"errors"
	"strings"

	"discover-server/models"
)

// DiscoveryAPI is the backend the discovery pipeline talks to.
type DiscoveryAPI interface {
	// Search runs one parameterized query and returns establishments nearest first.
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Establishment, error)
	GetEstablishmentDetails(ctx context.Context, id string, lat, lon float64) (*models.EstablishmentDetails, error)
	PostReview(ctx context.Context, review models.ReviewRecord) error
}

var ErrEstablishmentNotFound = errors.New("establishment not found")

// UNKNOWN_ESTABLISHMENT_NAME stands in for a row the backend returned without a name.
const UNKNOWN_ESTABLISHMENT_NAME = "Unknown"

func fillDefaults(rows []models.Establishment) {
	for i := range rows {
		if strings.TrimSpace(rows[i].Name) == "" {
			rows[i].Name = UNKNOWN_ESTABLISHMENT_NAME
		}
	}
}

// SearchError is the single failure type of Search. Transport, decoding and
// backend errors are all reported through it.
type SearchError struct {
	Message string
	Err     error
}

func (e *SearchError) Error() string { return e.Message }

func (e *SearchError) Unwrap() error { return e.Err }

func newSearchError(msg string, err error) *SearchError {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &SearchError{Message: msg, Err: err}
}

// NormalizeCriteria drops a blank search text and trims a non-blank one.
func NormalizeCriteria(c models.SearchCriteria) models.SearchCriteria {
	if c.Text != nil {
		text := strings.TrimSpace(*c.Text)
		if text == "" {
			c.Text = nil
		} else {
			c.Text = &text
		}
	}
	if c.Amenity != nil && (*c.Amenity == "" || *c.Amenity == models.AmenityAll) {
		c.Amenity = nil
	}
	return c
}
