package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Techtees/civicpro/internal/models"
)

// The whole suite runs against both implementations of the Store port.
func forEachStore(t *testing.T, run func(t *testing.T, store Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		run(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		store, err := OpenSQLite("")
		require.NoError(t, err)
		run(t, store)
	})
}

func newPolitician(name string) *models.Politician {
	now := time.Now()
	return &models.Politician{
		ID:        models.NewID(),
		Name:      name,
		Party:     models.PartyDemocratic,
		Parish:    "Kingston",
		Status:    "Current",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestStore_Users(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		user := models.NewUser("admin", "hash", true)

		require.NoError(t, store.CreateUser(ctx, user))

		byID, err := store.UserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, byID.Username)
		assert.True(t, byID.IsAdmin)

		byName, err := store.UserByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)

		_, err = store.UserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_PoliticianCRUD(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		p := newPolitician("Alice Grant")
		p.ManifestoPoints = []string{"roads", "schools"}
		require.NoError(t, store.CreatePolitician(ctx, p))

		got, err := store.Politician(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice Grant", got.Name)
		assert.Equal(t, []string{"roads", "schools"}, got.ManifestoPoints)

		got.Name = "Alice G. Grant"
		require.NoError(t, store.UpdatePolitician(ctx, got))
		updated, err := store.Politician(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice G. Grant", updated.Name)

		_, err = store.Politician(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)

		missing := newPolitician("Ghost")
		missing.ID = "ghost"
		assert.ErrorIs(t, store.UpdatePolitician(ctx, missing), ErrNotFound)
		assert.ErrorIs(t, store.DeletePolitician(ctx, "ghost"), ErrNotFound)
	})
}

func TestStore_PoliticiansOrderedByCreation(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		third := newPolitician("Third")
		third.CreatedAt = base.Add(2 * time.Minute)
		first := newPolitician("First")
		first.CreatedAt = base
		second := newPolitician("Second")
		second.CreatedAt = base.Add(time.Minute)

		for _, p := range []*models.Politician{third, first, second} {
			require.NoError(t, store.CreatePolitician(ctx, p))
		}

		listed, err := store.Politicians(ctx)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, "First", listed[0].Name)
		assert.Equal(t, "Second", listed[1].Name)
		assert.Equal(t, "Third", listed[2].Name)
	})
}

func TestStore_DeletePoliticianCascades(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		p := newPolitician("Bob Marsh")
		require.NoError(t, store.CreatePolitician(ctx, p))
		keep := newPolitician("Keeper")
		require.NoError(t, store.CreatePolitician(ctx, keep))

		bill := &models.Bill{ID: models.NewID(), Title: "Act", DateVoted: time.Now(), CreatedAt: time.Now()}
		require.NoError(t, store.CreateBill(ctx, bill))

		promise := &models.Promise{
			ID: models.NewID(), PoliticianID: p.ID, Title: "Promise",
			Status: models.PromiseInProgress, CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
		require.NoError(t, store.CreatePromise(ctx, promise))

		record := &models.VotingRecord{
			ID: models.NewID(), PoliticianID: p.ID, BillID: bill.ID,
			Vote: models.VoteFor, CreatedAt: time.Now(),
		}
		require.NoError(t, store.CreateVotingRecord(ctx, record))

		rating := &models.Rating{
			ID: models.NewID(), PoliticianID: p.ID, UserID: "u1", Rating: 4,
			Status: models.RatingPending, CreatedAt: time.Now(),
		}
		require.NoError(t, store.CreateRating(ctx, rating))

		keepRating := &models.Rating{
			ID: models.NewID(), PoliticianID: keep.ID, UserID: "u1", Rating: 3,
			Status: models.RatingPending, CreatedAt: time.Now(),
		}
		require.NoError(t, store.CreateRating(ctx, keepRating))

		require.NoError(t, store.DeletePolitician(ctx, p.ID))

		_, err := store.Politician(ctx, p.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		promises, err := store.PromisesByPolitician(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, promises)

		records, err := store.VotingRecordsByPolitician(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, records)

		ratings, err := store.RatingsByPolitician(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, ratings)

		// The bill and the other politician's data survive.
		_, err = store.Bill(ctx, bill.ID)
		require.NoError(t, err)
		kept, err := store.RatingsByPolitician(ctx, keep.ID)
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})
}

func TestStore_DuplicateRatingRejected(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		p := newPolitician("Cara Duke")
		require.NoError(t, store.CreatePolitician(ctx, p))

		first := &models.Rating{
			ID: models.NewID(), PoliticianID: p.ID, UserID: "user-1", Rating: 4,
			Status: models.RatingPending, CreatedAt: time.Now(),
		}
		require.NoError(t, store.CreateRating(ctx, first))

		second := &models.Rating{
			ID: models.NewID(), PoliticianID: p.ID, UserID: "user-1", Rating: 1,
			Status: models.RatingPending, CreatedAt: time.Now(),
		}
		assert.ErrorIs(t, store.CreateRating(ctx, second), ErrDuplicateRating)

		// One row for the pair, retrievable by (user, politician).
		found, err := store.RatingByUserAndPolitician(ctx, "user-1", p.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)

		ratings, err := store.RatingsByPolitician(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, ratings, 1)

		// Same user, different politician is fine.
		other := newPolitician("Dan Ellis")
		require.NoError(t, store.CreatePolitician(ctx, other))
		third := &models.Rating{
			ID: models.NewID(), PoliticianID: other.ID, UserID: "user-1", Rating: 5,
			Status: models.RatingPending, CreatedAt: time.Now(),
		}
		assert.NoError(t, store.CreateRating(ctx, third))
	})
}

func TestStore_RatingsByStatusAndUpdate(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		p := newPolitician("Eve Fox")
		require.NoError(t, store.CreatePolitician(ctx, p))

		rating := &models.Rating{
			ID: models.NewID(), PoliticianID: p.ID, UserID: "u1", Rating: 4,
			Status: models.RatingPending, CreatedAt: time.Now(),
		}
		require.NoError(t, store.CreateRating(ctx, rating))

		pending, err := store.RatingsByStatus(ctx, models.RatingPending)
		require.NoError(t, err)
		assert.Len(t, pending, 1)

		rating.Status = models.RatingApproved
		require.NoError(t, store.UpdateRating(ctx, rating))

		pending, err = store.RatingsByStatus(ctx, models.RatingPending)
		require.NoError(t, err)
		assert.Empty(t, pending)

		approved, err := store.RatingsByStatus(ctx, models.RatingApproved)
		require.NoError(t, err)
		require.Len(t, approved, 1)
		assert.Equal(t, rating.ID, approved[0].ID)
	})
}

func TestStore_AdminLogsNewestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		older := models.NewAdminLog("u1", "CREATE_POLITICIAN", map[string]any{"politicianId": "p1"})
		older.CreatedAt = base
		newer := models.NewAdminLog("u1", "APPROVE_RATING", map[string]any{"ratingId": "r1"})
		newer.CreatedAt = base.Add(time.Minute)

		require.NoError(t, store.AppendAdminLog(ctx, older))
		require.NoError(t, store.AppendAdminLog(ctx, newer))

		logs, err := store.AdminLogs(ctx)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "APPROVE_RATING", logs[0].Action)
		assert.Equal(t, "CREATE_POLITICIAN", logs[1].Action)
		assert.Equal(t, "p1", logs[1].Details["politicianId"])
	})
}
