package progress

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	types "github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
	"github.com/finwise/finwise-backend/internal/session"
)

// RecordService is the remote progress-record service. services.ProgressService
// satisfies it.
type RecordService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, error)
	CreateIfAbsent(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, bool, error)
}

// Initializer guarantees every authenticated user has exactly one progress
// record. Creation is set-if-absent end to end: concurrent callers for the
// same user collapse into one remote call, and the remote side upserts, so
// an existing record is never reset.
type Initializer struct {
	log     *logger.Logger
	records RecordService

	group singleflight.Group

	mu      sync.Mutex
	ensured map[uuid.UUID]bool
}

func NewInitializer(log *logger.Logger, records RecordService) *Initializer {
	return &Initializer{
		log:     log.With("service", "ProgressInitializer"),
		records: records,
		ensured: make(map[uuid.UUID]bool),
	}
}

// Ensure returns the user's progress record, creating the zero-valued record
// if none exists. Safe to call repeatedly and concurrently.
func (in *Initializer) Ensure(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, error) {
	in.mu.Lock()
	done := in.ensured[userID]
	in.mu.Unlock()
	if done {
		return in.records.Get(ctx, userID)
	}

	v, err, _ := in.group.Do(userID.String(), func() (any, error) {
		record, created, err := in.records.CreateIfAbsent(ctx, userID)
		if err != nil {
			return nil, err
		}
		if created {
			in.log.Info("progress record created", "userID", userID)
		}
		in.mu.Lock()
		in.ensured[userID] = true
		in.mu.Unlock()
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.ProgressRecord), nil
}

// Watch ensures a record whenever the session becomes authenticated. The
// returned function stops watching. Failures are logged and retried on the
// next session change; they never block the session itself.
func (in *Initializer) Watch(ctx context.Context, store *session.Store) func() {
	return store.Subscribe(func(s session.Session) {
		if !s.IsAuthenticated || s.User == nil {
			return
		}
		if _, err := in.Ensure(ctx, s.User.ID); err != nil {
			in.log.Warn("progress ensure failed", "userID", s.User.ID, "error", err)
		}
	})
}
