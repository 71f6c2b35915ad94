package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Techtees/civicpro/internal/models"
)

func promiseWithStatus(status models.PromiseStatus) models.Promise {
	return models.Promise{ID: models.NewID(), Status: status}
}

func TestTallyPromises(t *testing.T) {
	tests := []struct {
		name            string
		promises        []models.Promise
		expectedStats   FulfillmentStats
		expectedSkipped int
		expectedRate    int
	}{
		{
			name:            "no promises yields zero rate",
			promises:        nil,
			expectedStats:   FulfillmentStats{},
			expectedSkipped: 0,
			expectedRate:    0,
		},
		{
			name: "mixed statuses are counted and rated over the total",
			promises: []models.Promise{
				promiseWithStatus(models.PromiseFulfilled),
				promiseWithStatus(models.PromiseFulfilled),
				promiseWithStatus(models.PromiseInProgress),
				promiseWithStatus(models.PromiseInProgress),
				promiseWithStatus(models.PromiseUnfulfilled),
			},
			expectedStats:   FulfillmentStats{Fulfilled: 2, InProgress: 2, Unfulfilled: 1, Total: 5},
			expectedSkipped: 0,
			expectedRate:    40,
		},
		{
			name: "rate rounds to the nearest integer",
			promises: []models.Promise{
				promiseWithStatus(models.PromiseFulfilled),
				promiseWithStatus(models.PromiseInProgress),
				promiseWithStatus(models.PromiseUnfulfilled),
			},
			// 1/3 = 33.33...% rounds to 33.
			expectedStats:   FulfillmentStats{Fulfilled: 1, InProgress: 1, Unfulfilled: 1, Total: 3},
			expectedSkipped: 0,
			expectedRate:    33,
		},
		{
			name: "unrecognized statuses are skipped, not counted in the total",
			promises: []models.Promise{
				promiseWithStatus(models.PromiseFulfilled),
				promiseWithStatus("Abandoned"),
				promiseWithStatus(""),
			},
			expectedStats:   FulfillmentStats{Fulfilled: 1, Total: 1},
			expectedSkipped: 2,
			expectedRate:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, skipped := TallyPromises(tt.promises)

			assert.Equal(t, tt.expectedStats, stats)
			assert.Equal(t, tt.expectedSkipped, skipped)
			assert.Equal(t, tt.expectedRate, stats.Rate())
		})
	}
}
