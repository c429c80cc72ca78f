package util

import (
	"fmt"
	"math"
)

// DistanceLabel renders meters as "850m" below a kilometre and "1.2km" above.
func DistanceLabel(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

// RatingLabel renders an average rating, "New" when nobody rated yet.
func RatingLabel(rating float64) string {
	if rating == 0 {
		return "New"
	}
	return fmt.Sprintf("%.1f", rating)
}
