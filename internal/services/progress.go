package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	repolearning "github.com/finwise/finwise-backend/internal/data/repos/learning"
	types "github.com/finwise/finwise-backend/internal/domain"
	pkgerrors "github.com/finwise/finwise-backend/internal/pkg/errors"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

// ProgressService is the progress-record service: one record per user,
// created set-if-absent, mutated only additively. Creation is safe to call
// any number of times, concurrently, without resetting counters.
type ProgressService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, error)
	CreateIfAbsent(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, bool, error)
	AddPoints(ctx context.Context, userID uuid.UUID, points int) (*types.ProgressRecord, error)
	CompleteModule(ctx context.Context, userID uuid.UUID, topicID, moduleID string) (*types.ProgressRecord, error)
	MarkTopicCompleted(ctx context.Context, userID uuid.UUID, topicID string) (*types.ProgressRecord, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repolearning.ProgressRepo

	// initGroup collapses concurrent CreateIfAbsent calls for the same user
	// into one flight; the unique index on user_id is the durable guard.
	initGroup singleflight.Group
}

func NewProgressService(db *gorm.DB, log *logger.Logger, progressRepo repolearning.ProgressRepo) ProgressService {
	serviceLog := log.With("service", "ProgressService")
	return &progressService{db: db, log: serviceLog, progressRepo: progressRepo}
}

func (ps *progressService) Get(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, error) {
	rec, err := ps.progressRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("progress for user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	return rec, nil
}

func (ps *progressService) CreateIfAbsent(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, bool, error) {
	type initResult struct {
		rec     *types.ProgressRecord
		created bool
	}
	v, err, _ := ps.initGroup.Do(userID.String(), func() (any, error) {
		rec, created, err := ps.progressRepo.CreateIfAbsent(ctx, nil, &types.ProgressRecord{
			ID:     uuid.New(),
			UserID: userID,
		})
		if err != nil {
			return nil, err
		}
		return initResult{rec: rec, created: created}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("initialize progress: %w", err)
	}
	res := v.(initResult)
	if res.created {
		ps.log.Info("progress record created", "user_id", userID)
	}
	return res.rec, res.created, nil
}

func (ps *progressService) AddPoints(ctx context.Context, userID uuid.UUID, points int) (*types.ProgressRecord, error) {
	if points <= 0 {
		return nil, fmt.Errorf("points must be positive: %w", pkgerrors.ErrInvalidArgument)
	}
	if _, _, err := ps.CreateIfAbsent(ctx, userID); err != nil {
		return nil, err
	}
	if err := ps.progressRepo.AddPoints(ctx, nil, userID, points); err != nil {
		return nil, fmt.Errorf("add points: %w", err)
	}
	return ps.Get(ctx, userID)
}

func (ps *progressService) CompleteModule(ctx context.Context, userID uuid.UUID, topicID, moduleID string) (*types.ProgressRecord, error) {
	if topicID == "" || moduleID == "" {
		return nil, fmt.Errorf("topic and module required: %w", pkgerrors.ErrInvalidArgument)
	}
	if _, _, err := ps.CreateIfAbsent(ctx, userID); err != nil {
		return nil, err
	}

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := ps.progressRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("progress for user %s: %w", userID, pkgerrors.ErrNotFound)
		}
		topics, err := rec.Topics()
		if err != nil {
			return fmt.Errorf("decode topics progress: %w", err)
		}

		tp := topics[topicID]
		for _, m := range tp.CompletedModules {
			if m == moduleID {
				// Already recorded; retries must not double-apply.
				return nil
			}
		}
		tp.CompletedModules = append(tp.CompletedModules, moduleID)
		sort.Strings(tp.CompletedModules)
		topics[topicID] = tp

		return ps.progressRepo.SetTopicsProgress(ctx, tx, userID, topics)
	})
	if err != nil {
		return nil, fmt.Errorf("complete module: %w", err)
	}
	if err := ps.touchStreak(ctx, userID); err != nil {
		ps.log.Warn("streak update failed", "user_id", userID, "error", err)
	}
	return ps.Get(ctx, userID)
}

func (ps *progressService) MarkTopicCompleted(ctx context.Context, userID uuid.UUID, topicID string) (*types.ProgressRecord, error) {
	if topicID == "" {
		return nil, fmt.Errorf("topic required: %w", pkgerrors.ErrInvalidArgument)
	}
	if _, _, err := ps.CreateIfAbsent(ctx, userID); err != nil {
		return nil, err
	}

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := ps.progressRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("progress for user %s: %w", userID, pkgerrors.ErrNotFound)
		}
		topics, err := rec.Topics()
		if err != nil {
			return fmt.Errorf("decode topics progress: %w", err)
		}
		tp := topics[topicID]
		if tp.Completed {
			return nil
		}
		tp.Completed = true
		topics[topicID] = tp
		return ps.progressRepo.SetTopicsProgress(ctx, tx, userID, topics)
	})
	if err != nil {
		return nil, fmt.Errorf("mark topic completed: %w", err)
	}
	return ps.Get(ctx, userID)
}

// touchStreak bumps the daily streak: same-day activity keeps it, next-day
// activity extends it, a gap resets it to 1.
func (ps *progressService) touchStreak(ctx context.Context, userID uuid.UUID) error {
	rec, err := ps.progressRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	now := time.Now()
	streak := 1
	if rec.LastActivityAt != nil {
		last := *rec.LastActivityAt
		switch daysBetween(last, now) {
		case 0:
			streak = rec.Streak
			if streak == 0 {
				streak = 1
			}
		case 1:
			streak = rec.Streak + 1
		}
	}
	return ps.progressRepo.SetStreak(ctx, nil, userID, streak, now)
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	at := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bt := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bt.Sub(at).Hours() / 24)
}
