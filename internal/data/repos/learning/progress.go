package learning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

type ProgressRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.ProgressRecord, error)
	// CreateIfAbsent inserts a zeroed record unless one already exists for
	// the user. Returns the record now in the store and whether this call
	// created it. It never mutates an existing record.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, record *types.ProgressRecord) (*types.ProgressRecord, bool, error)
	AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
	SetStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID, streak int, lastActivityAt time.Time) error
	SetTopicsProgress(ctx context.Context, tx *gorm.DB, userID uuid.UUID, topics map[string]types.TopicProgress) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	repoLog := baseLog.With("repo", "ProgressRepo")
	return &progressRepo{db: db, log: repoLog}
}

func (pr *progressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.ProgressRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.ProgressRecord
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (pr *progressRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, record *types.ProgressRecord) (*types.ProgressRecord, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	// The unique index on user_id makes the insert a no-op when a record
	// already exists, so concurrent initializers cannot reset counters.
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(record)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return record, true, nil
	}

	existing, err := pr.GetByUserID(ctx, tx, record.UserID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (pr *progressRepo) AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ProgressRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"total_points":     gorm.Expr("total_points + ?", points),
			"last_activity_at": time.Now(),
		}).Error
}

func (pr *progressRepo) SetStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID, streak int, lastActivityAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ProgressRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"streak":           streak,
			"last_activity_at": lastActivityAt,
		}).Error
}

func (pr *progressRepo) SetTopicsProgress(ctx context.Context, tx *gorm.DB, userID uuid.UUID, topics map[string]types.TopicProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	rec := &types.ProgressRecord{}
	if err := rec.SetTopics(topics); err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Model(&types.ProgressRecord{}).
		Where("user_id = ?", userID).
		Update("topics_progress", rec.TopicsProgress).Error
}
