// Package storage defines the entity-store port used by the rest of the
// application, with two interchangeable implementations: a gorm-backed store
// for real persistence and an in-memory store for tests and local
// development. The store is always passed explicitly; there is no ambient
// singleton.
package storage

import (
	"context"
	"errors"

	"github.com/Techtees/civicpro/internal/models"
)

var (
	// ErrNotFound is returned when an entity id does not resolve.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicateRating is returned when a (user, politician) pair already
	// holds a rating. The gorm store surfaces this from the unique index, so
	// the check-then-insert race between two submissions with the same user
	// id cannot produce a second row.
	ErrDuplicateRating = errors.New("storage: duplicate rating")
)

// Store is the persistence port. All list results come back in creation
// order (created_at, then id) so downstream computations are deterministic.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)

	// Politicians
	CreatePolitician(ctx context.Context, p *models.Politician) error
	Politician(ctx context.Context, id string) (*models.Politician, error)
	Politicians(ctx context.Context) ([]models.Politician, error)
	UpdatePolitician(ctx context.Context, p *models.Politician) error
	// DeletePolitician removes the politician and cascades to its promises,
	// voting records and ratings. Bills are independent and survive.
	DeletePolitician(ctx context.Context, id string) error

	// Promises
	CreatePromise(ctx context.Context, p *models.Promise) error
	Promise(ctx context.Context, id string) (*models.Promise, error)
	PromisesByPolitician(ctx context.Context, politicianID string) ([]models.Promise, error)
	UpdatePromise(ctx context.Context, p *models.Promise) error
	DeletePromise(ctx context.Context, id string) error

	// Bills
	CreateBill(ctx context.Context, b *models.Bill) error
	Bill(ctx context.Context, id string) (*models.Bill, error)
	Bills(ctx context.Context) ([]models.Bill, error)
	DeleteBill(ctx context.Context, id string) error

	// Voting records
	CreateVotingRecord(ctx context.Context, vr *models.VotingRecord) error
	VotingRecordsByPolitician(ctx context.Context, politicianID string) ([]models.VotingRecord, error)
	VotingRecordsByBill(ctx context.Context, billID string) ([]models.VotingRecord, error)
	DeleteVotingRecord(ctx context.Context, id string) error

	// Ratings
	CreateRating(ctx context.Context, r *models.Rating) error
	Rating(ctx context.Context, id string) (*models.Rating, error)
	RatingsByPolitician(ctx context.Context, politicianID string) ([]models.Rating, error)
	RatingsByStatus(ctx context.Context, status models.RatingStatus) ([]models.Rating, error)
	RatingByUserAndPolitician(ctx context.Context, userID, politicianID string) (*models.Rating, error)
	UpdateRating(ctx context.Context, r *models.Rating) error

	// Admin audit log (append-only)
	AppendAdminLog(ctx context.Context, entry *models.AdminLog) error
	AdminLogs(ctx context.Context) ([]models.AdminLog, error)
}
