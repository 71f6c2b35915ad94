package models

import (
	"fmt"
	"time"
)

// PoliticianInput is the payload for creating a politician.
type PoliticianInput struct {
	Name            string     `json:"name"`
	Party           Party      `json:"party"`
	Parish          string     `json:"parish"`
	NumberOfVotes   int        `json:"numberOfVotes"`
	Status          string     `json:"status"`
	Bio             string     `json:"bio"`
	FirstElected    *time.Time `json:"firstElected"`
	ProfileImageURL string     `json:"profileImageUrl"`
	ManifestoPoints []string   `json:"manifestoPoints"`
}

// Validate returns field-level problems, or nil when the input is acceptable.
func (in *PoliticianInput) Validate() map[string]string {
	problems := map[string]string{}
	if in.Name == "" {
		problems["name"] = "name is required"
	}
	if in.Party == "" {
		problems["party"] = "party is required"
	}
	if in.Parish == "" {
		problems["parish"] = "parish is required"
	}
	if in.NumberOfVotes < 0 {
		problems["numberOfVotes"] = "numberOfVotes must not be negative"
	}
	if len(in.ManifestoPoints) > MaxManifestoPoints {
		problems["manifestoPoints"] = fmt.Sprintf("at most %d manifesto points are allowed", MaxManifestoPoints)
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// Politician builds a new entity from the input with a generated id.
func (in *PoliticianInput) Politician() *Politician {
	now := time.Now()
	status := in.Status
	if status == "" {
		status = "Current"
	}
	return &Politician{
		ID:              NewID(),
		Name:            in.Name,
		Party:           in.Party,
		Parish:          in.Parish,
		NumberOfVotes:   in.NumberOfVotes,
		Status:          status,
		Bio:             in.Bio,
		FirstElected:    in.FirstElected,
		ProfileImageURL: in.ProfileImageURL,
		ManifestoPoints: in.ManifestoPoints,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// PoliticianPatch is a partial update for a politician. Nil fields are left
// untouched by Apply.
type PoliticianPatch struct {
	Name            *string    `json:"name"`
	Party           *Party     `json:"party"`
	Parish          *string    `json:"parish"`
	NumberOfVotes   *int       `json:"numberOfVotes"`
	Status          *string    `json:"status"`
	Bio             *string    `json:"bio"`
	FirstElected    *time.Time `json:"firstElected"`
	ProfileImageURL *string    `json:"profileImageUrl"`
	ManifestoPoints *[]string  `json:"manifestoPoints"`
}

// Validate returns field-level problems, or nil when the patch is acceptable.
func (p *PoliticianPatch) Validate() map[string]string {
	problems := map[string]string{}
	if p.Name != nil && *p.Name == "" {
		problems["name"] = "name must not be empty"
	}
	if p.Party != nil && *p.Party == "" {
		problems["party"] = "party must not be empty"
	}
	if p.Parish != nil && *p.Parish == "" {
		problems["parish"] = "parish must not be empty"
	}
	if p.NumberOfVotes != nil && *p.NumberOfVotes < 0 {
		problems["numberOfVotes"] = "numberOfVotes must not be negative"
	}
	if p.ManifestoPoints != nil && len(*p.ManifestoPoints) > MaxManifestoPoints {
		problems["manifestoPoints"] = fmt.Sprintf("at most %d manifesto points are allowed", MaxManifestoPoints)
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// Apply merges the patch into the politician and bumps UpdatedAt.
func (p *PoliticianPatch) Apply(pol *Politician) {
	if p.Name != nil {
		pol.Name = *p.Name
	}
	if p.Party != nil {
		pol.Party = *p.Party
	}
	if p.Parish != nil {
		pol.Parish = *p.Parish
	}
	if p.NumberOfVotes != nil {
		pol.NumberOfVotes = *p.NumberOfVotes
	}
	if p.Status != nil {
		pol.Status = *p.Status
	}
	if p.Bio != nil {
		pol.Bio = *p.Bio
	}
	if p.FirstElected != nil {
		pol.FirstElected = p.FirstElected
	}
	if p.ProfileImageURL != nil {
		pol.ProfileImageURL = *p.ProfileImageURL
	}
	if p.ManifestoPoints != nil {
		pol.ManifestoPoints = *p.ManifestoPoints
	}
	pol.UpdatedAt = time.Now()
}

// PromiseInput is the payload for creating a promise.
type PromiseInput struct {
	PoliticianID    string        `json:"politicianId"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Status          PromiseStatus `json:"status"`
	FulfillmentDate *time.Time    `json:"fulfillmentDate"`
}

// Validate returns field-level problems, or nil when the input is acceptable.
// An empty status is allowed and defaults to InProgress.
func (in *PromiseInput) Validate() map[string]string {
	problems := map[string]string{}
	if in.PoliticianID == "" {
		problems["politicianId"] = "politicianId is required"
	}
	if in.Title == "" {
		problems["title"] = "title is required"
	}
	if in.Status != "" && !in.Status.Valid() {
		problems["status"] = fmt.Sprintf("status must be one of %s, %s, %s", PromiseFulfilled, PromiseInProgress, PromiseUnfulfilled)
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// Promise builds a new entity from the input with a generated id.
func (in *PromiseInput) Promise() *Promise {
	now := time.Now()
	status := in.Status
	if status == "" {
		status = PromiseInProgress
	}
	return &Promise{
		ID:              NewID(),
		PoliticianID:    in.PoliticianID,
		Title:           in.Title,
		Description:     in.Description,
		Status:          status,
		FulfillmentDate: in.FulfillmentDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// PromisePatch is a partial update for a promise.
type PromisePatch struct {
	Title           *string        `json:"title"`
	Description     *string        `json:"description"`
	Status          *PromiseStatus `json:"status"`
	FulfillmentDate *time.Time     `json:"fulfillmentDate"`
}

// Validate returns field-level problems, or nil when the patch is acceptable.
func (p *PromisePatch) Validate() map[string]string {
	problems := map[string]string{}
	if p.Title != nil && *p.Title == "" {
		problems["title"] = "title must not be empty"
	}
	if p.Status != nil && !p.Status.Valid() {
		problems["status"] = fmt.Sprintf("status must be one of %s, %s, %s", PromiseFulfilled, PromiseInProgress, PromiseUnfulfilled)
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// Apply merges the patch into the promise and bumps UpdatedAt.
func (p *PromisePatch) Apply(pr *Promise) {
	if p.Title != nil {
		pr.Title = *p.Title
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.FulfillmentDate != nil {
		pr.FulfillmentDate = p.FulfillmentDate
	}
	pr.UpdatedAt = time.Now()
}

// BillInput is the payload for creating a bill.
type BillInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateVoted   time.Time `json:"dateVoted"`
}

// Validate returns field-level problems, or nil when the input is acceptable.
func (in *BillInput) Validate() map[string]string {
	problems := map[string]string{}
	if in.Title == "" {
		problems["title"] = "title is required"
	}
	if in.DateVoted.IsZero() {
		problems["dateVoted"] = "dateVoted is required"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// Bill builds a new entity from the input with a generated id.
func (in *BillInput) Bill() *Bill {
	return &Bill{
		ID:          NewID(),
		Title:       in.Title,
		Description: in.Description,
		DateVoted:   in.DateVoted,
		CreatedAt:   time.Now(),
	}
}

// VotingRecordInput is the payload for recording a politician's vote.
type VotingRecordInput struct {
	PoliticianID string `json:"politicianId"`
	BillID       string `json:"billId"`
	Vote         Vote   `json:"vote"`
}

// Validate returns field-level problems, or nil when the input is acceptable.
func (in *VotingRecordInput) Validate() map[string]string {
	problems := map[string]string{}
	if in.PoliticianID == "" {
		problems["politicianId"] = "politicianId is required"
	}
	if in.BillID == "" {
		problems["billId"] = "billId is required"
	}
	if !in.Vote.Valid() {
		problems["vote"] = fmt.Sprintf("vote must be one of %s, %s, %s, %s", VoteFor, VoteAgainst, VoteAbstained, VoteAbsent)
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// VotingRecord builds a new entity from the input with a generated id.
func (in *VotingRecordInput) VotingRecord() *VotingRecord {
	return &VotingRecord{
		ID:           NewID(),
		PoliticianID: in.PoliticianID,
		BillID:       in.BillID,
		Vote:         in.Vote,
		CreatedAt:    time.Now(),
	}
}

// RatingInput is the payload for submitting a rating. UserID is optional; an
// anonymous id is generated when it is empty. Any status supplied by the
// caller is ignored - new ratings always start Pending.
type RatingInput struct {
	PoliticianID string  `json:"politicianId"`
	UserID       string  `json:"userId"`
	Rating       float64 `json:"rating"`
	Comment      string  `json:"comment"`
}

// Validate returns field-level problems, or nil when the input is acceptable.
func (in *RatingInput) Validate() map[string]string {
	problems := map[string]string{}
	if in.PoliticianID == "" {
		problems["politicianId"] = "politicianId is required"
	}
	if in.Rating < 0 || in.Rating > 5 {
		problems["rating"] = "rating must be between 0 and 5"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}
