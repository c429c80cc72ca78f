package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstablishmentRecord_AddReview(t *testing.T) {
	r := EstablishmentRecord{ID: "e1", AverageRating: 4, ReviewCount: 2, Reviews: []Review{{ID: "old"}}}

	r.AddReview(Review{ID: "new", Rating: 5})

	assert.Equal(t, 3, r.ReviewCount)
	assert.Equal(t, 4.3, r.AverageRating)
	assert.Equal(t, "new", r.Reviews[0].ID)
	assert.Equal(t, "old", r.Reviews[1].ID)
}

func TestEstablishmentRecord_FirstReview(t *testing.T) {
	r := EstablishmentRecord{ID: "e1"}

	r.AddReview(Review{ID: "first", Rating: 3})

	assert.Equal(t, 1, r.ReviewCount)
	assert.Equal(t, 3.0, r.AverageRating)
}

func TestEstablishmentRecord_Projections(t *testing.T) {
	hours := "24/7"
	r := EstablishmentRecord{
		ID: "e1", Name: "Mado", Amenity: AmenityCafe,
		Location:      Location{Latitude: 39.9, Longitude: 32.8},
		Phone:         "+903125551234",
		AverageRating: 4.2, ReviewCount: 17,
		CuisineTags:  []string{"dessert"},
		OpeningHours: &hours,
		Menu:         Menu{{Name: "Dondurma", Items: []MenuItem{{Name: "Sade", Price: 90}}}},
	}

	e := r.ToEstablishment(321)
	assert.Equal(t, Establishment{
		ID: "e1", Name: "Mado", Amenity: AmenityCafe, DistanceMeters: 321,
		AverageRating: 4.2, ReviewCount: 17, CuisineTags: []string{"dessert"}, OpeningHours: &hours,
	}, e)

	d := r.ToDetails(321)
	assert.Equal(t, ReviewStats{Rating: 4.2, Count: 17}, d.Stats)
	assert.Equal(t, r.Location, d.Location)
	assert.Equal(t, r.Menu, d.Menu)
	assert.Equal(t, 321.0, d.DistanceMeters)
}
