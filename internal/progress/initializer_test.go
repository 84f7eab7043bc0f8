package progress

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	types "github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
	"github.com/finwise/finwise-backend/internal/session"
	"github.com/finwise/finwise-backend/internal/snapshot"
)

// fakeProgressRecords counts remote calls so tests can assert how many
// creations actually reach the service.
type fakeProgressRecords struct {
	mu          sync.Mutex
	records     map[uuid.UUID]*types.ProgressRecord
	createCalls int
	fail        error
}

func newFakeProgressRecords() *fakeProgressRecords {
	return &fakeProgressRecords{records: make(map[uuid.UUID]*types.ProgressRecord)}
}

func (f *fakeProgressRecords) Get(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	r, ok := f.records[userID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeProgressRecords) CreateIfAbsent(ctx context.Context, userID uuid.UUID) (*types.ProgressRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.fail != nil {
		return nil, false, f.fail
	}
	if existing, ok := f.records[userID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	r := &types.ProgressRecord{ID: uuid.New(), UserID: userID}
	f.records[userID] = r
	cp := *r
	return &cp, true, nil
}

func testLogger(t testing.TB) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestEnsureCreatesOnce(t *testing.T) {
	records := newFakeProgressRecords()
	in := NewInitializer(testLogger(t), records)
	userID := uuid.New()

	first, err := in.Ensure(context.Background(), userID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if first == nil || first.UserID != userID {
		t.Fatal("ensure must return the user's record")
	}

	second, err := in.Ensure(context.Background(), userID)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("repeated ensure must return the same record")
	}
	if records.createCalls != 1 {
		t.Fatalf("expected one remote create, got %d", records.createCalls)
	}
}

func TestEnsureNeverResetsExistingRecord(t *testing.T) {
	records := newFakeProgressRecords()
	userID := uuid.New()
	records.records[userID] = &types.ProgressRecord{
		ID:          uuid.New(),
		UserID:      userID,
		TotalPoints: 340,
		Streak:      7,
	}

	in := NewInitializer(testLogger(t), records)
	got, err := in.Ensure(context.Background(), userID)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got.TotalPoints != 340 || got.Streak != 7 {
		t.Fatalf("existing progress must be untouched, got points=%d streak=%d", got.TotalPoints, got.Streak)
	}
}

func TestConcurrentEnsureCollapsesToOneCreate(t *testing.T) {
	records := newFakeProgressRecords()
	in := NewInitializer(testLogger(t), records)
	userID := uuid.New()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := in.Ensure(context.Background(), userID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent ensure: %v", err)
	}
	if records.createCalls != 1 {
		t.Fatalf("%d concurrent callers must collapse to one create, got %d", n, records.createCalls)
	}
}

func TestEnsureRetriesAfterFailure(t *testing.T) {
	records := newFakeProgressRecords()
	records.fail = errors.New("backend down")
	in := NewInitializer(testLogger(t), records)
	userID := uuid.New()

	if _, err := in.Ensure(context.Background(), userID); err == nil {
		t.Fatal("expected failure to propagate")
	}

	records.fail = nil
	got, err := in.Ensure(context.Background(), userID)
	if err != nil {
		t.Fatalf("ensure after recovery: %v", err)
	}
	if got == nil {
		t.Fatal("recovery must create the record")
	}
}

// sessionUserRecords is the minimal user-record fake the session store needs.
type sessionUserRecords struct {
	user *types.User
}

func (f *sessionUserRecords) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	cp := *f.user
	return &cp, nil
}

func (f *sessionUserRecords) SetLearningStyle(ctx context.Context, userID uuid.UUID, style string) (*types.User, error) {
	return f.GetByID(ctx, userID)
}

func (f *sessionUserRecords) SetPreferredTopics(ctx context.Context, userID uuid.UUID, topics []string) (*types.User, error) {
	return f.GetByID(ctx, userID)
}

func (f *sessionUserRecords) SetKnowledgeLevel(ctx context.Context, userID uuid.UUID, level int) (*types.User, error) {
	return f.GetByID(ctx, userID)
}

func (f *sessionUserRecords) SetAge(ctx context.Context, userID uuid.UUID, age int) (*types.User, error) {
	return f.GetByID(ctx, userID)
}

func TestWatchEnsuresOnAuthentication(t *testing.T) {
	user := &types.User{ID: uuid.New(), Email: "w@finwise.dev", Role: types.RoleStudent}
	store := session.NewStore(testLogger(t), &sessionUserRecords{user: user}, snapshot.NewMemoryStore())

	records := newFakeProgressRecords()
	in := NewInitializer(testLogger(t), records)
	unwatch := in.Watch(context.Background(), store)
	defer unwatch()

	if records.createCalls != 0 {
		t.Fatal("no creation before authentication")
	}
	if err := store.Login(context.Background(), "tok", user); err != nil {
		t.Fatalf("login: %v", err)
	}
	if records.createCalls != 1 {
		t.Fatalf("authentication must ensure the record once, got %d", records.createCalls)
	}

	// Later session changes must not create again.
	if err := store.SetKnowledgeLevel(context.Background(), 1); err != nil {
		t.Fatalf("set knowledge level: %v", err)
	}
	if records.createCalls != 1 {
		t.Fatalf("ensure must stay idempotent, got %d creates", records.createCalls)
	}
}
