package models

// SearchCriteria is the fully resolved input of one remote search.
// Text and Amenity are nil when the dimension is not filtered.
type SearchCriteria struct {
	OriginLat      float64
	OriginLong     float64
	RadiusMeters   float64
	Text           *string
	Amenity        *Amenity
	MinRating      float64
	MinReviewCount int
	PageSize       int
	PageOffset     int // 0-based page index
}

// SearchRPCParams is the wire body of the get_establishments RPC.
type SearchRPCParams struct {
	UserLat        float64  `json:"user_lat"`
	UserLong       float64  `json:"user_long"`
	RadiusMeters   float64  `json:"radius_meters"`
	SearchText     *string  `json:"search_text"`
	FilterAmenity  *Amenity `json:"filter_amenity"`
	MinRating      float64  `json:"min_rating"`
	MinReviewCount int      `json:"min_review_count"`
	PageSize       int      `json:"page_size"`
	PageNumber     int      `json:"page_number"`
}

func (c SearchCriteria) ToRPCParams() SearchRPCParams {
	return SearchRPCParams{
		UserLat:        c.OriginLat,
		UserLong:       c.OriginLong,
		RadiusMeters:   c.RadiusMeters,
		SearchText:     c.Text,
		FilterAmenity:  c.Amenity,
		MinRating:      c.MinRating,
		MinReviewCount: c.MinReviewCount,
		PageSize:       c.PageSize,
		PageNumber:     c.PageOffset,
	}
}
