// Package analytics turns raw ratings, promises and votes into the derived
// statistics shown throughout the product: average constituent rating,
// promise fulfillment rate and voting alignment. The calculators are pure
// functions of the data handed to them; the Service composes them over the
// storage port into the profile and comparison payloads.
package analytics

import (
	"math"

	"github.com/Techtees/civicpro/internal/models"
)

// RatingStats is the aggregate of a politician's approved ratings. A
// politician with no approved ratings reports {0, 0}, never null, so callers
// do not have to special-case "no data".
type RatingStats struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AggregateRatings computes the average and count over the Approved subset
// of the given ratings. Pending and Rejected ratings never contribute.
//
// The average is rounded half-up (away from zero) to one decimal place,
// matching round(x*10)/10: approved ratings [4.5, 4.0, 5.0, 3.5] average
// 4.25 and report 4.3, not the banker's-rounding 4.2.
func AggregateRatings(ratings []models.Rating) RatingStats {
	var sum float64
	var count int
	for _, r := range ratings {
		if r.Status != models.RatingApproved {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return RatingStats{}
	}
	return RatingStats{
		Average: roundToTenth(sum / float64(count)),
		Count:   count,
	}
}

// roundToTenth rounds half away from zero at the second decimal.
func roundToTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
