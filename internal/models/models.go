package models

import (
	"time"

	"github.com/google/uuid"
)

// Party identifies a politician's party affiliation. The set is open so new
// parties can be added through data alone, but the well-known values are
// enumerated here.
type Party string

const (
	PartyDemocratic  Party = "Democratic"
	PartyRepublican  Party = "Republican"
	PartyIndependent Party = "Independent"
)

// PromiseStatus tracks how far along a campaign promise is.
type PromiseStatus string

const (
	PromiseFulfilled   PromiseStatus = "Fulfilled"
	PromiseInProgress  PromiseStatus = "InProgress"
	PromiseUnfulfilled PromiseStatus = "Unfulfilled"
)

// Valid reports whether the status is one of the three recognized values.
func (s PromiseStatus) Valid() bool {
	switch s {
	case PromiseFulfilled, PromiseInProgress, PromiseUnfulfilled:
		return true
	}
	return false
}

// Vote is a politician's recorded position on a bill.
type Vote string

const (
	VoteFor       Vote = "For"
	VoteAgainst   Vote = "Against"
	VoteAbstained Vote = "Abstained"
	VoteAbsent    Vote = "Absent"
)

// Valid reports whether the vote is one of the four recognized values.
func (v Vote) Valid() bool {
	switch v {
	case VoteFor, VoteAgainst, VoteAbstained, VoteAbsent:
		return true
	}
	return false
}

// RatingStatus is the moderation state of a constituent rating. Ratings are
// created Pending and move exactly once to Approved or Rejected.
type RatingStatus string

const (
	RatingPending  RatingStatus = "Pending"
	RatingApproved RatingStatus = "Approved"
	RatingRejected RatingStatus = "Rejected"
)

// MaxManifestoPoints caps the number of manifesto points per politician.
const MaxManifestoPoints = 5

// User is an account that can sign in. Only admin accounts can mutate data;
// rating submitters are identified by opaque ids and never stored here.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Politician is an elected official tracked by the system.
type Politician struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	Name            string     `json:"name" gorm:"not null"`
	Party           Party      `json:"party" gorm:"not null"`
	Parish          string     `json:"parish" gorm:"not null"`
	NumberOfVotes   int        `json:"numberOfVotes"`
	Status          string     `json:"status"`
	Bio             string     `json:"bio,omitempty"`
	FirstElected    *time.Time `json:"firstElected,omitempty"`
	ProfileImageURL string     `json:"profileImageUrl,omitempty"`
	ManifestoPoints []string   `json:"manifestoPoints" gorm:"serializer:json"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Promise is a campaign promise owned by a politician.
type Promise struct {
	ID              string        `json:"id" gorm:"primaryKey"`
	PoliticianID    string        `json:"politicianId" gorm:"index;not null"`
	Title           string        `json:"title" gorm:"not null"`
	Description     string        `json:"description"`
	Status          PromiseStatus `json:"status" gorm:"not null"`
	FulfillmentDate *time.Time    `json:"fulfillmentDate,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Bill is a piece of legislation. Bills are independent of politicians; many
// politicians may each hold one voting record against the same bill.
type Bill struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	DateVoted   time.Time `json:"dateVoted" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VotingRecord is one politician's vote on one bill.
type VotingRecord struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	PoliticianID string    `json:"politicianId" gorm:"index;not null"`
	BillID       string    `json:"billId" gorm:"index;not null"`
	Vote         Vote      `json:"vote" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Rating is a constituent's 0-5 rating of a politician. The composite unique
// index backs the one-rating-per-(user, politician) rule so that two
// concurrent submissions cannot both land; the second surfaces as a
// constraint violation that storage maps to ErrDuplicateRating.
type Rating struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	PoliticianID string       `json:"politicianId" gorm:"not null;uniqueIndex:idx_ratings_user_politician"`
	UserID       string       `json:"userId" gorm:"not null;uniqueIndex:idx_ratings_user_politician"`
	Rating       float64      `json:"rating" gorm:"not null"`
	Comment      string       `json:"comment,omitempty"`
	Status       RatingStatus `json:"status" gorm:"not null"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// AdminLog is an append-only audit record of an administrator action.
type AdminLog struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	UserID    string         `json:"userId" gorm:"index;not null"`
	Action    string         `json:"action" gorm:"not null"`
	Details   map[string]any `json:"details,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewID returns a fresh string id for any entity.
func NewID() string {
	return uuid.New().String()
}

// NewAnonymousUserID generates an opaque id for an unauthenticated rating
// submitter, of the shape "anon-<random>".
func NewAnonymousUserID() string {
	return "anon-" + uuid.New().String()
}

// NewUser creates a user with a generated id and the given credentials.
func NewUser(username, passwordHash string, isAdmin bool) *User {
	return &User{
		ID:           NewID(),
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}
}

// NewAdminLog creates an audit entry with a generated id.
func NewAdminLog(userID, action string, details map[string]any) *AdminLog {
	return &AdminLog{
		ID:        NewID(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
}
