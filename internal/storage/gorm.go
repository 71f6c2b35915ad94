package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Techtees/civicpro/internal/models"
)

// GormStore is the persistent Store implementation. It runs against
// PostgreSQL in production and pure-Go SQLite for local development.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// OpenPostgres connects to PostgreSQL and migrates the schema.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	return newGormStore(db)
}

// OpenSQLite opens (or creates) a SQLite database under dataDir and migrates
// the schema. An empty dataDir yields an in-memory database.
func OpenSQLite(dataDir string) (*GormStore, error) {
	dsn := ":memory:"
	if dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "civicpro.db")
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if dataDir == "" {
		// Every pooled connection gets its own in-memory database, so the
		// pool must stay at one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return newGormStore(db)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}
}

func newGormStore(db *gorm.DB) (*GormStore, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Politician{},
		&models.Promise{},
		&models.Bill{},
		&models.VotingRecord{},
		&models.Rating{},
		&models.AdminLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	slog.Info("Database schema migrated")
	return &GormStore{db: db}, nil
}

// creationOrder keeps list results deterministic across drivers.
const creationOrder = "created_at ASC, id ASC"

func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return err
	}
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// CreateUser inserts a user account.
func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translateErr(s.db.WithContext(ctx).Create(user).Error)
}

// UserByID fetches a user by id.
func (s *GormStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// UserByUsername fetches a user by username.
func (s *GormStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// CreatePolitician inserts a politician.
func (s *GormStore) CreatePolitician(ctx context.Context, p *models.Politician) error {
	return translateErr(s.db.WithContext(ctx).Create(p).Error)
}

// Politician fetches a politician by id.
func (s *GormStore) Politician(ctx context.Context, id string) (*models.Politician, error) {
	var p models.Politician
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

// Politicians lists all politicians in creation order.
func (s *GormStore) Politicians(ctx context.Context) ([]models.Politician, error) {
	var out []models.Politician
	if err := s.db.WithContext(ctx).Order(creationOrder).Find(&out).Error; err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// UpdatePolitician saves the full politician row.
func (s *GormStore) UpdatePolitician(ctx context.Context, p *models.Politician) error {
	res := s.db.WithContext(ctx).Model(&models.Politician{}).Where("id = ?", p.ID).Select("*").Updates(p)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePolitician removes the politician and its owned promises, voting
// records and ratings in one transaction.
func (s *GormStore) DeletePolitician(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Politician{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.Promise{}, "politician_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.VotingRecord{}, "politician_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Rating{}, "politician_id = ?", id).Error
	})
}

// CreatePromise inserts a promise.
func (s *GormStore) CreatePromise(ctx context.Context, p *models.Promise) error {
	return translateErr(s.db.WithContext(ctx).Create(p).Error)
}

// Promise fetches a promise by id.
func (s *GormStore) Promise(ctx context.Context, id string) (*models.Promise, error) {
	var p models.Promise
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

// PromisesByPolitician lists a politician's promises in creation order.
func (s *GormStore) PromisesByPolitician(ctx context.Context, politicianID string) ([]models.Promise, error) {
	var out []models.Promise
	err := s.db.WithContext(ctx).Where("politician_id = ?", politicianID).Order(creationOrder).Find(&out).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// UpdatePromise saves the full promise row.
func (s *GormStore) UpdatePromise(ctx context.Context, p *models.Promise) error {
	res := s.db.WithContext(ctx).Model(&models.Promise{}).Where("id = ?", p.ID).Select("*").Updates(p)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePromise removes a promise.
func (s *GormStore) DeletePromise(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Promise{}, "id = ?", id)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateBill inserts a bill.
func (s *GormStore) CreateBill(ctx context.Context, b *models.Bill) error {
	return translateErr(s.db.WithContext(ctx).Create(b).Error)
}

// Bill fetches a bill by id.
func (s *GormStore) Bill(ctx context.Context, id string) (*models.Bill, error) {
	var b models.Bill
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &b, nil
}

// Bills lists all bills in creation order.
func (s *GormStore) Bills(ctx context.Context) ([]models.Bill, error) {
	var out []models.Bill
	if err := s.db.WithContext(ctx).Order(creationOrder).Find(&out).Error; err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// DeleteBill removes a bill and any voting records referencing it.
func (s *GormStore) DeleteBill(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Bill{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&models.VotingRecord{}, "bill_id = ?", id).Error
	})
}

// CreateVotingRecord inserts a voting record.
func (s *GormStore) CreateVotingRecord(ctx context.Context, vr *models.VotingRecord) error {
	return translateErr(s.db.WithContext(ctx).Create(vr).Error)
}

// VotingRecordsByPolitician lists a politician's voting records in creation order.
func (s *GormStore) VotingRecordsByPolitician(ctx context.Context, politicianID string) ([]models.VotingRecord, error) {
	var out []models.VotingRecord
	err := s.db.WithContext(ctx).Where("politician_id = ?", politicianID).Order(creationOrder).Find(&out).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// VotingRecordsByBill lists all voting records against a bill in creation order.
func (s *GormStore) VotingRecordsByBill(ctx context.Context, billID string) ([]models.VotingRecord, error) {
	var out []models.VotingRecord
	err := s.db.WithContext(ctx).Where("bill_id = ?", billID).Order(creationOrder).Find(&out).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// DeleteVotingRecord removes a voting record.
func (s *GormStore) DeleteVotingRecord(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.VotingRecord{}, "id = ?", id)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateRating inserts a rating. A second rating for the same (user,
// politician) pair trips the unique index and comes back as
// ErrDuplicateRating.
func (s *GormStore) CreateRating(ctx context.Context, r *models.Rating) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicateRating
		}
		return err
	}
	return nil
}

// Rating fetches a rating by id.
func (s *GormStore) Rating(ctx context.Context, id string) (*models.Rating, error) {
	var r models.Rating
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &r, nil
}

// RatingsByPolitician lists all of a politician's ratings regardless of
// moderation status. Callers that serve public payloads must filter.
func (s *GormStore) RatingsByPolitician(ctx context.Context, politicianID string) ([]models.Rating, error) {
	var out []models.Rating
	err := s.db.WithContext(ctx).Where("politician_id = ?", politicianID).Order(creationOrder).Find(&out).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// RatingsByStatus lists ratings in a given moderation state.
func (s *GormStore) RatingsByStatus(ctx context.Context, status models.RatingStatus) ([]models.Rating, error) {
	var out []models.Rating
	err := s.db.WithContext(ctx).Where("status = ?", status).Order(creationOrder).Find(&out).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// RatingByUserAndPolitician fetches the single rating a user holds for a
// politician, or ErrNotFound.
func (s *GormStore) RatingByUserAndPolitician(ctx context.Context, userID, politicianID string) (*models.Rating, error) {
	var r models.Rating
	err := s.db.WithContext(ctx).First(&r, "user_id = ? AND politician_id = ?", userID, politicianID).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &r, nil
}

// UpdateRating saves the full rating row.
func (s *GormStore) UpdateRating(ctx context.Context, r *models.Rating) error {
	res := s.db.WithContext(ctx).Model(&models.Rating{}).Where("id = ?", r.ID).Select("*").Updates(r)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendAdminLog inserts an audit entry.
func (s *GormStore) AppendAdminLog(ctx context.Context, entry *models.AdminLog) error {
	return translateErr(s.db.WithContext(ctx).Create(entry).Error)
}

// AdminLogs lists the audit trail, newest first.
func (s *GormStore) AdminLogs(ctx context.Context) ([]models.AdminLog, error) {
	var out []models.AdminLog
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}
