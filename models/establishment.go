package models

import (
	"fmt"
	"math"
)

// Establishment is one row of the get_establishments result set.
// Values are treated as read-only once received.
type Establishment struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Amenity        Amenity  `json:"amenity"`
	DistanceMeters float64  `json:"dist_meters"`
	AverageRating  float64  `json:"average_rating"`
	ReviewCount    int      `json:"review_count"`
	CuisineTags    []string `json:"cuisine_tags"`
	OpeningHours   *string  `json:"opening_hours"`
}

func (e *Establishment) ToString() string {
	return fmt.Sprintf("Establishment(id=%s, name=%s, amenity=%s, dist=%.0fm)",
		e.ID, e.Name, e.Amenity, e.DistanceMeters)
}

// Location is a WGS84 point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EstablishmentRecord is the stored form used by the redis backend and fixtures.
type EstablishmentRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Amenity       Amenity  `json:"amenity"`
	Location      Location `json:"location"`
	Phone         string   `json:"phone,omitempty"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	CuisineTags   []string `json:"cuisine_tags"`
	OpeningHours  *string  `json:"opening_hours"`
	Menu          Menu     `json:"menu,omitempty"`
	Reviews       []Review `json:"reviews,omitempty"`
}

// ToEstablishment projects the record into a search row at the given distance.
func (r *EstablishmentRecord) ToEstablishment(distanceMeters float64) Establishment {
	return Establishment{
		ID:             r.ID,
		Name:           r.Name,
		Amenity:        r.Amenity,
		DistanceMeters: distanceMeters,
		AverageRating:  r.AverageRating,
		ReviewCount:    r.ReviewCount,
		CuisineTags:    r.CuisineTags,
		OpeningHours:   r.OpeningHours,
	}
}

// ToDetails projects the record into the details payload at the given distance.
func (r *EstablishmentRecord) ToDetails(distanceMeters float64) EstablishmentDetails {
	return EstablishmentDetails{
		ID:             r.ID,
		Name:           r.Name,
		Amenity:        r.Amenity,
		DistanceMeters: distanceMeters,
		Location:       r.Location,
		Phone:          r.Phone,
		OpeningHours:   r.OpeningHours,
		Stats:          ReviewStats{Rating: r.AverageRating, Count: r.ReviewCount},
		Menu:           r.Menu,
		Reviews:        r.Reviews,
	}
}

// AddReview prepends a review and folds its rating into the running average.
func (r *EstablishmentRecord) AddReview(review Review) {
	total := r.AverageRating*float64(r.ReviewCount) + float64(review.Rating)
	r.ReviewCount++
	r.AverageRating = math.Round(total/float64(r.ReviewCount)*10) / 10
	r.Reviews = append([]Review{review}, r.Reviews...)
}
