package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Techtees/civicpro/internal/models"
	"github.com/Techtees/civicpro/internal/storage"
)

// ErrInsufficientComparisonTargets is returned when fewer than two distinct,
// existing politicians remain for a comparison request.
var ErrInsufficientComparisonTargets = errors.New("analytics: at least two valid politicians are required for comparison")

// ErrAlreadyModerated is returned when moderation is attempted on a rating
// that has already left the Pending state. Approved and Rejected are
// terminal.
var ErrAlreadyModerated = errors.New("analytics: rating has already been moderated")

// InvalidInputError reports field-level validation failures raised inside
// the service. It knows nothing about HTTP; the API layer maps it.
type InvalidInputError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Service composes the calculators over the storage port into the payloads
// the API serves. It holds no state beyond its collaborators and performs
// read-only computation except for rating submission and moderation.
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// NewService creates an analytics service over the given store.
func NewService(store storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// DirectoryEntry is a politician decorated with their aggregate rating for
// the public listing.
type DirectoryEntry struct {
	models.Politician
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
}

// Directory lists all politicians with their approved-rating aggregates.
func (s *Service) Directory(ctx context.Context) ([]DirectoryEntry, error) {
	politicians, err := s.store.Politicians(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list politicians: %w", err)
	}
	out := make([]DirectoryEntry, 0, len(politicians))
	for _, p := range politicians {
		stats, err := s.ratingStats(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, DirectoryEntry{
			Politician:  p,
			Rating:      stats.Average,
			RatingCount: stats.Count,
		})
	}
	return out, nil
}

func (s *Service) ratingStats(ctx context.Context, politicianID string) (RatingStats, error) {
	ratings, err := s.store.RatingsByPolitician(ctx, politicianID)
	if err != nil {
		return RatingStats{}, fmt.Errorf("failed to fetch ratings for politician %s: %w", politicianID, err)
	}
	return AggregateRatings(ratings), nil
}

// VotingRecordDetail is a voting record with its bill embedded.
type VotingRecordDetail struct {
	models.VotingRecord
	Bill *models.Bill `json:"bill"`
}

// Profile is the full public payload for one politician.
type Profile struct {
	Politician       *models.Politician   `json:"politician"`
	Promises         []models.Promise     `json:"promises"`
	VotingRecords    []VotingRecordDetail `json:"votingRecords"`
	RatingStats      RatingStats          `json:"ratingStats"`
	Ratings          []models.Rating      `json:"ratings"`
	FulfillmentStats FulfillmentStats     `json:"fulfillmentStats"`
	FulfillmentRate  int                  `json:"fulfillmentRate"`
}

// BuildProfile assembles a politician's profile: promises, voting records
// joined with bills, rating aggregates and the approved ratings themselves.
// Pending and Rejected ratings never appear in the payload. A missing
// politician is an error; empty sub-collections are not.
func (s *Service) BuildProfile(ctx context.Context, id string) (*Profile, error) {
	politician, err := s.store.Politician(ctx, id)
	if err != nil {
		return nil, err
	}

	promises, err := s.store.PromisesByPolitician(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch promises for politician %s: %w", id, err)
	}

	records, err := s.store.VotingRecordsByPolitician(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch voting records for politician %s: %w", id, err)
	}
	details := make([]VotingRecordDetail, 0, len(records))
	for _, record := range records {
		bill, err := s.store.Bill(ctx, record.BillID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to fetch bill %s: %w", record.BillID, err)
		}
		details = append(details, VotingRecordDetail{VotingRecord: record, Bill: bill})
	}

	ratings, err := s.store.RatingsByPolitician(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings for politician %s: %w", id, err)
	}
	approved := make([]models.Rating, 0, len(ratings))
	for _, r := range ratings {
		if r.Status == models.RatingApproved {
			approved = append(approved, r)
		}
	}

	stats, skipped := TallyPromises(promises)
	if skipped > 0 {
		s.logger.Warn("Promises with unrecognized status excluded from fulfillment stats",
			"politician_id", id, "skipped", skipped)
	}

	return &Profile{
		Politician:       politician,
		Promises:         promises,
		VotingRecords:    details,
		RatingStats:      AggregateRatings(ratings),
		Ratings:          approved,
		FulfillmentStats: stats,
		FulfillmentRate:  stats.Rate(),
	}, nil
}

// PoliticianBundle is the per-politician slice of a comparison payload. It
// carries aggregates only; individual review text is not exposed here.
type PoliticianBundle struct {
	Politician       *models.Politician    `json:"politician"`
	Promises         []models.Promise      `json:"promises"`
	VotingRecords    []models.VotingRecord `json:"votingRecords"`
	RatingStats      RatingStats           `json:"ratingStats"`
	FulfillmentStats FulfillmentStats      `json:"fulfillmentStats"`
	FulfillmentRate  int                   `json:"fulfillmentRate"`
}

// Comparison is the side-by-side payload for 2-3 politicians.
type Comparison struct {
	Politicians      []models.Politician `json:"politicians"`
	ComparisonData   []PoliticianBundle  `json:"comparisonData"`
	CommonBills      []BillComparison    `json:"commonBills"`
	OverallAlignment AlignmentPercent    `json:"overallAlignment"`
}

// BuildComparison assembles the comparison payload. Duplicate ids are
// deduplicated silently, keeping the first occurrence; ids that do not
// resolve are dropped. If fewer than two politicians remain the whole
// request fails with ErrInsufficientComparisonTargets.
func (s *Service) BuildComparison(ctx context.Context, ids []string) (*Comparison, error) {
	unique := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) < 2 {
		return nil, ErrInsufficientComparisonTargets
	}
	if len(unique) > 3 {
		return nil, &InvalidInputError{Fields: map[string]string{
			"ids": "at most three politicians can be compared",
		}}
	}

	var bundles []PoliticianBundle
	recordsByPolitician := map[string][]models.VotingRecord{}
	var resolvedIDs []string
	for _, id := range unique {
		politician, err := s.store.Politician(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Dropping unknown politician from comparison", "politician_id", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch politician %s: %w", id, err)
		}

		promises, err := s.store.PromisesByPolitician(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch promises for politician %s: %w", id, err)
		}
		records, err := s.store.VotingRecordsByPolitician(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch voting records for politician %s: %w", id, err)
		}
		ratingStats, err := s.ratingStats(ctx, id)
		if err != nil {
			return nil, err
		}

		stats, skipped := TallyPromises(promises)
		if skipped > 0 {
			s.logger.Warn("Promises with unrecognized status excluded from fulfillment stats",
				"politician_id", id, "skipped", skipped)
		}

		recordsByPolitician[id] = records
		resolvedIDs = append(resolvedIDs, id)
		bundles = append(bundles, PoliticianBundle{
			Politician:       politician,
			Promises:         promises,
			VotingRecords:    records,
			RatingStats:      ratingStats,
			FulfillmentStats: stats,
			FulfillmentRate:  stats.Rate(),
		})
	}
	if len(resolvedIDs) < 2 {
		return nil, ErrInsufficientComparisonTargets
	}

	bills := map[string]*models.Bill{}
	for _, records := range recordsByPolitician {
		for _, record := range records {
			if _, ok := bills[record.BillID]; ok {
				continue
			}
			bill, err := s.store.Bill(ctx, record.BillID)
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn("Voting record references missing bill", "bill_id", record.BillID)
				bills[record.BillID] = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to fetch bill %s: %w", record.BillID, err)
			}
			bills[record.BillID] = bill
		}
	}

	commonBills, overall := AlignVotes(resolvedIDs, recordsByPolitician, bills)

	politicians := make([]models.Politician, 0, len(bundles))
	for _, b := range bundles {
		politicians = append(politicians, *b.Politician)
	}
	return &Comparison{
		Politicians:      politicians,
		ComparisonData:   bundles,
		CommonBills:      commonBills,
		OverallAlignment: overall,
	}, nil
}

// SubmitRating runs the moderation gate's submission path: the rating must
// be in range, the politician must exist, and the (user, politician) pair
// must not already hold a rating. The created rating is always Pending no
// matter what the caller supplied. An empty user id gets an anonymous one.
func (s *Service) SubmitRating(ctx context.Context, in models.RatingInput) (*models.Rating, error) {
	if problems := in.Validate(); problems != nil {
		return nil, &InvalidInputError{Fields: problems}
	}
	if _, err := s.store.Politician(ctx, in.PoliticianID); err != nil {
		return nil, err
	}

	userID := in.UserID
	if userID == "" {
		userID = models.NewAnonymousUserID()
	}

	// Friendly pre-check; the store's unique index is what actually closes
	// the race between two concurrent submissions.
	if _, err := s.store.RatingByUserAndPolitician(ctx, userID, in.PoliticianID); err == nil {
		return nil, storage.ErrDuplicateRating
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing rating: %w", err)
	}

	rating := &models.Rating{
		ID:           models.NewID(),
		PoliticianID: in.PoliticianID,
		UserID:       userID,
		Rating:       in.Rating,
		Comment:      in.Comment,
		Status:       models.RatingPending,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateRating(ctx, rating); err != nil {
		return nil, err
	}
	s.logger.Info("Rating submitted for moderation",
		"rating_id", rating.ID, "politician_id", rating.PoliticianID)
	return rating, nil
}

// ModerateRating moves a Pending rating to Approved or Rejected. Both target
// states are terminal; moderating an already-moderated rating fails with
// ErrAlreadyModerated.
func (s *Service) ModerateRating(ctx context.Context, id string, status models.RatingStatus) (*models.Rating, error) {
	if status != models.RatingApproved && status != models.RatingRejected {
		return nil, &InvalidInputError{Fields: map[string]string{
			"status": fmt.Sprintf("status must be %s or %s", models.RatingApproved, models.RatingRejected),
		}}
	}
	rating, err := s.store.Rating(ctx, id)
	if err != nil {
		return nil, err
	}
	if rating.Status != models.RatingPending {
		return nil, ErrAlreadyModerated
	}
	rating.Status = status
	if err := s.store.UpdateRating(ctx, rating); err != nil {
		return nil, err
	}
	s.logger.Info("Rating moderated", "rating_id", id, "status", status)
	return rating, nil
}

// PendingRating is a rating awaiting moderation with its politician
// embedded for the admin queue.
type PendingRating struct {
	models.Rating
	Politician *models.Politician `json:"politician"`
}

// PendingRatings lists the moderation queue. Ratings whose politician has
// since disappeared are still listed, with a nil politician.
func (s *Service) PendingRatings(ctx context.Context) ([]PendingRating, error) {
	ratings, err := s.store.RatingsByStatus(ctx, models.RatingPending)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending ratings: %w", err)
	}
	out := make([]PendingRating, 0, len(ratings))
	for _, r := range ratings {
		politician, err := s.store.Politician(ctx, r.PoliticianID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to fetch politician %s: %w", r.PoliticianID, err)
		}
		out = append(out, PendingRating{Rating: r, Politician: politician})
	}
	return out, nil
}

// AdminStats summarizes the dataset for the admin dashboard.
type AdminStats struct {
	TotalPoliticians  int                  `json:"totalPoliticians"`
	TotalRatings      int                  `json:"totalRatings"`
	PendingRatings    int                  `json:"pendingRatings"`
	PartyDistribution map[models.Party]int `json:"partyDistribution"`
}

// Stats computes dashboard totals and the per-party distribution.
func (s *Service) Stats(ctx context.Context) (*AdminStats, error) {
	politicians, err := s.store.Politicians(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list politicians: %w", err)
	}
	distribution := map[models.Party]int{}
	for _, p := range politicians {
		distribution[p.Party]++
	}

	total := 0
	pending := 0
	for _, status := range []models.RatingStatus{models.RatingPending, models.RatingApproved, models.RatingRejected} {
		ratings, err := s.store.RatingsByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s ratings: %w", status, err)
		}
		total += len(ratings)
		if status == models.RatingPending {
			pending = len(ratings)
		}
	}

	return &AdminStats{
		TotalPoliticians:  len(politicians),
		TotalRatings:      total,
		PendingRatings:    pending,
		PartyDistribution: distribution,
	}, nil
}
