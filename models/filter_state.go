package models

import (
	"errors"
	"fmt"
	"strings"
)

// Amenity is the establishment category the server filters on.
type Amenity string

const (
	AmenityAll        Amenity = "all"
	AmenityRestaurant Amenity = "restaurant"
	AmenityCafe       Amenity = "cafe"
)

var ErrInvalidAmenity = errors.New("invalid amenity")
var ErrInvalidRating = errors.New("invalid minimum rating")

// RatingOptions are the minimum ratings a client may select, "any" first.
var RatingOptions = []float64{0, 3, 4, 4.5}

// ParseAmenity accepts "all", "restaurant" or "cafe" (case-insensitive). Empty means all.
func ParseAmenity(s string) (Amenity, error) {
	switch a := Amenity(strings.ToLower(strings.TrimSpace(s))); a {
	case "", AmenityAll:
		return AmenityAll, nil
	case AmenityRestaurant, AmenityCafe:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAmenity, s)
	}
}

// ValidateMinRating returns ErrInvalidRating unless r is one of RatingOptions.
func ValidateMinRating(r float64) error {
	for _, opt := range RatingOptions {
		if r == opt {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidRating, r)
}

// FilterState is an immutable snapshot of everything the user can filter on.
// Edits go through the With* methods, which return a new value.
type FilterState struct {
	SearchText  string  `json:"search_text"`
	Amenity     Amenity `json:"amenity"`
	MinRating   float64 `json:"min_rating"`
	PopularOnly bool    `json:"popular_only"`
	OpenNowOnly bool    `json:"open_now_only"`
}

// DefaultFilterState mirrors the home screen on first open.
func DefaultFilterState(openNowOnly bool) FilterState {
	return FilterState{Amenity: AmenityAll, OpenNowOnly: openNowOnly}
}

func (f FilterState) WithSearchText(text string) FilterState {
	f.SearchText = text
	return f
}

func (f FilterState) WithAmenity(a Amenity) FilterState {
	f.Amenity = a
	return f
}

func (f FilterState) WithMinRating(r float64) FilterState {
	f.MinRating = r
	return f
}

func (f FilterState) WithPopularOnly(on bool) FilterState {
	f.PopularOnly = on
	return f
}

func (f FilterState) WithOpenNowOnly(on bool) FilterState {
	f.OpenNowOnly = on
	return f
}

// ServerCriteriaEqual reports whether both states ask the backend the same question.
// Text is compared trimmed and an empty amenity means all. OpenNowOnly is
// evaluated locally and not compared.
func (f FilterState) ServerCriteriaEqual(o FilterState) bool {
	return strings.TrimSpace(f.SearchText) == strings.TrimSpace(o.SearchText) &&
		f.serverAmenity() == o.serverAmenity() &&
		f.MinRating == o.MinRating &&
		f.PopularOnly == o.PopularOnly
}

func (f FilterState) serverAmenity() Amenity {
	if f.Amenity == "" {
		return AmenityAll
	}
	return f.Amenity
}
