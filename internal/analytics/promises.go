package analytics

import (
	"math"

	"github.com/Techtees/civicpro/internal/models"
)

// FulfillmentStats buckets a politician's promises by status. Total is the
// sum of the three buckets; promises with an unrecognized status are counted
// in neither the buckets nor the total.
type FulfillmentStats struct {
	Fulfilled   int `json:"fulfilled"`
	InProgress  int `json:"inProgress"`
	Unfulfilled int `json:"unfulfilled"`
	Total       int `json:"total"`
}

// Rate is the integer fulfillment percentage, rounded. Zero promises yield a
// rate of 0.
func (s FulfillmentStats) Rate() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Fulfilled) / float64(s.Total) * 100))
}

// TallyPromises counts promises into fulfillment buckets. The second return
// is the number of promises skipped for carrying an unrecognized status;
// callers are expected to flag a non-zero skip count rather than drop it
// silently.
func TallyPromises(promises []models.Promise) (FulfillmentStats, int) {
	var stats FulfillmentStats
	var skipped int
	for _, p := range promises {
		switch p.Status {
		case models.PromiseFulfilled:
			stats.Fulfilled++
		case models.PromiseInProgress:
			stats.InProgress++
		case models.PromiseUnfulfilled:
			stats.Unfulfilled++
		default:
			skipped++
			continue
		}
		stats.Total++
	}
	return stats, skipped
}
