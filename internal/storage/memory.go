package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Techtees/civicpro/internal/models"
)

// MemoryStore is a mutex-guarded, map-backed Store used by tests and local
// development. It mirrors the gorm store's behavior, including creation-order
// listings and the one-rating-per-(user, politician) rule, which it enforces
// under the write lock.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	politicians   map[string]models.Politician
	promises      map[string]models.Promise
	bills         map[string]models.Bill
	votingRecords map[string]models.VotingRecord
	ratings       map[string]models.Rating
	adminLogs     []models.AdminLog
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]models.User),
		politicians:   make(map[string]models.Politician),
		promises:      make(map[string]models.Promise),
		bills:         make(map[string]models.Bill),
		votingRecords: make(map[string]models.VotingRecord),
		ratings:       make(map[string]models.Rating),
	}
}

func byCreation(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID < bID
}

// CreateUser inserts a user account.
func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

// UserByID fetches a user by id.
func (s *MemoryStore) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// UserByUsername fetches a user by username.
func (s *MemoryStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// CreatePolitician inserts a politician.
func (s *MemoryStore) CreatePolitician(_ context.Context, p *models.Politician) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.politicians[p.ID] = *p
	return nil
}

// Politician fetches a politician by id.
func (s *MemoryStore) Politician(_ context.Context, id string) (*models.Politician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.politicians[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Politicians lists all politicians in creation order.
func (s *MemoryStore) Politicians(_ context.Context) ([]models.Politician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Politician, 0, len(s.politicians))
	for _, p := range s.politicians {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// UpdatePolitician replaces the stored politician.
func (s *MemoryStore) UpdatePolitician(_ context.Context, p *models.Politician) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.politicians[p.ID]; !ok {
		return ErrNotFound
	}
	s.politicians[p.ID] = *p
	return nil
}

// DeletePolitician removes the politician and everything it owns.
func (s *MemoryStore) DeletePolitician(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.politicians[id]; !ok {
		return ErrNotFound
	}
	delete(s.politicians, id)
	for pid, p := range s.promises {
		if p.PoliticianID == id {
			delete(s.promises, pid)
		}
	}
	for vid, vr := range s.votingRecords {
		if vr.PoliticianID == id {
			delete(s.votingRecords, vid)
		}
	}
	for rid, r := range s.ratings {
		if r.PoliticianID == id {
			delete(s.ratings, rid)
		}
	}
	return nil
}

// CreatePromise inserts a promise.
func (s *MemoryStore) CreatePromise(_ context.Context, p *models.Promise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promises[p.ID] = *p
	return nil
}

// Promise fetches a promise by id.
func (s *MemoryStore) Promise(_ context.Context, id string) (*models.Promise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.promises[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// PromisesByPolitician lists a politician's promises in creation order.
func (s *MemoryStore) PromisesByPolitician(_ context.Context, politicianID string) ([]models.Promise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Promise{}
	for _, p := range s.promises {
		if p.PoliticianID == politicianID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// UpdatePromise replaces the stored promise.
func (s *MemoryStore) UpdatePromise(_ context.Context, p *models.Promise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promises[p.ID]; !ok {
		return ErrNotFound
	}
	s.promises[p.ID] = *p
	return nil
}

// DeletePromise removes a promise.
func (s *MemoryStore) DeletePromise(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promises[id]; !ok {
		return ErrNotFound
	}
	delete(s.promises, id)
	return nil
}

// CreateBill inserts a bill.
func (s *MemoryStore) CreateBill(_ context.Context, b *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[b.ID] = *b
	return nil
}

// Bill fetches a bill by id.
func (s *MemoryStore) Bill(_ context.Context, id string) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

// Bills lists all bills in creation order.
func (s *MemoryStore) Bills(_ context.Context) ([]models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// DeleteBill removes a bill and any voting records referencing it.
func (s *MemoryStore) DeleteBill(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[id]; !ok {
		return ErrNotFound
	}
	delete(s.bills, id)
	for vid, vr := range s.votingRecords {
		if vr.BillID == id {
			delete(s.votingRecords, vid)
		}
	}
	return nil
}

// CreateVotingRecord inserts a voting record.
func (s *MemoryStore) CreateVotingRecord(_ context.Context, vr *models.VotingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votingRecords[vr.ID] = *vr
	return nil
}

// VotingRecordsByPolitician lists a politician's voting records in creation order.
func (s *MemoryStore) VotingRecordsByPolitician(_ context.Context, politicianID string) ([]models.VotingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.VotingRecord{}
	for _, vr := range s.votingRecords {
		if vr.PoliticianID == politicianID {
			out = append(out, vr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// VotingRecordsByBill lists all voting records against a bill in creation order.
func (s *MemoryStore) VotingRecordsByBill(_ context.Context, billID string) ([]models.VotingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.VotingRecord{}
	for _, vr := range s.votingRecords {
		if vr.BillID == billID {
			out = append(out, vr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// DeleteVotingRecord removes a voting record.
func (s *MemoryStore) DeleteVotingRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.votingRecords[id]; !ok {
		return ErrNotFound
	}
	delete(s.votingRecords, id)
	return nil
}

// CreateRating inserts a rating, rejecting a second rating for the same
// (user, politician) pair. The check runs under the write lock, so the
// duplicate race is closed here just as the unique index closes it in the
// gorm store.
func (s *MemoryStore) CreateRating(_ context.Context, r *models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ratings {
		if existing.UserID == r.UserID && existing.PoliticianID == r.PoliticianID {
			return ErrDuplicateRating
		}
	}
	s.ratings[r.ID] = *r
	return nil
}

// Rating fetches a rating by id.
func (s *MemoryStore) Rating(_ context.Context, id string) (*models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

// RatingsByPolitician lists all of a politician's ratings in creation order.
func (s *MemoryStore) RatingsByPolitician(_ context.Context, politicianID string) ([]models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Rating{}
	for _, r := range s.ratings {
		if r.PoliticianID == politicianID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// RatingsByStatus lists ratings in a given moderation state.
func (s *MemoryStore) RatingsByStatus(_ context.Context, status models.RatingStatus) ([]models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Rating{}
	for _, r := range s.ratings {
		if r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// RatingByUserAndPolitician fetches the single rating a user holds for a
// politician, or ErrNotFound.
func (s *MemoryStore) RatingByUserAndPolitician(_ context.Context, userID, politicianID string) (*models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.ratings {
		if r.UserID == userID && r.PoliticianID == politicianID {
			rating := r
			return &rating, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateRating replaces the stored rating.
func (s *MemoryStore) UpdateRating(_ context.Context, r *models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ratings[r.ID]; !ok {
		return ErrNotFound
	}
	s.ratings[r.ID] = *r
	return nil
}

// AppendAdminLog inserts an audit entry.
func (s *MemoryStore) AppendAdminLog(_ context.Context, entry *models.AdminLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminLogs = append(s.adminLogs, *entry)
	return nil
}

// AdminLogs lists the audit trail, newest first.
func (s *MemoryStore) AdminLogs(_ context.Context) ([]models.AdminLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AdminLog, len(s.adminLogs))
	copy(out, s.adminLogs)
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID)
	})
	return out, nil
}
