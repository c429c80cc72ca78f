package discovery

import (
	"strings"

	"discover-server/models"
)

// MatchesCriteria applies the server-side predicates of get_establishments to a
// single row. It is used by the backends that evaluate searches in-process.
func MatchesCriteria(e models.Establishment, c models.SearchCriteria) bool {
	if c.RadiusMeters > 0 && e.DistanceMeters > c.RadiusMeters {
		return false
	}
	if c.Amenity != nil && e.Amenity != *c.Amenity {
		return false
	}
	if e.AverageRating < c.MinRating {
		return false
	}
	if e.ReviewCount < c.MinReviewCount {
		return false
	}
	if c.Text != nil && !matchesText(e, *c.Text) {
		return false
	}
	return true
}

func matchesText(e models.Establishment, text string) bool {
	needle := strings.ToLower(text)
	if strings.Contains(strings.ToLower(e.Name), needle) {
		return true
	}
	for _, tag := range e.CuisineTags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// ApplyCriteria filters rows, keeping their order, and cuts out the requested page.
func ApplyCriteria(rows []models.Establishment, c models.SearchCriteria) []models.Establishment {
	out := make([]models.Establishment, 0, len(rows))
	for _, e := range rows {
		if MatchesCriteria(e, c) {
			out = append(out, e)
		}
	}
	if c.PageSize <= 0 {
		return out
	}
	start := c.PageOffset * c.PageSize
	if start >= len(out) {
		return []models.Establishment{}
	}
	end := start + c.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end]
}
