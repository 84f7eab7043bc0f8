package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finwise/finwise-backend/internal/data/repos/testutil"
	types "github.com/finwise/finwise-backend/internal/domain"
)

func TestCreateIfAbsentCreatesOnce(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewProgressRepo(tx, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "progress-create@finwise.dev")

	record, created, err := repo.CreateIfAbsent(ctx, nil, &types.ProgressRecord{ID: uuid.New(), UserID: u.ID})
	if err != nil {
		t.Fatalf("create if absent: %v", err)
	}
	if !created {
		t.Fatal("first call must create")
	}
	if record.TotalPoints != 0 || record.Streak != 0 {
		t.Fatalf("new record must be zeroed: %+v", record)
	}

	again, created, err := repo.CreateIfAbsent(ctx, nil, &types.ProgressRecord{ID: uuid.New(), UserID: u.ID})
	if err != nil {
		t.Fatalf("second create if absent: %v", err)
	}
	if created {
		t.Fatal("second call must not create")
	}
	if again.ID != record.ID {
		t.Fatalf("second call must return the original record: %s vs %s", again.ID, record.ID)
	}
}

func TestCreateIfAbsentNeverResetsProgress(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewProgressRepo(tx, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "progress-keep@finwise.dev")
	existing := testutil.SeedProgress(t, ctx, tx, u.ID)

	if err := repo.AddPoints(ctx, nil, u.ID, 120); err != nil {
		t.Fatalf("add points: %v", err)
	}

	record, created, err := repo.CreateIfAbsent(ctx, nil, &types.ProgressRecord{ID: uuid.New(), UserID: u.ID})
	if err != nil {
		t.Fatalf("create if absent: %v", err)
	}
	if created {
		t.Fatal("must not create over an existing record")
	}
	if record.ID != existing.ID || record.TotalPoints != 120 {
		t.Fatalf("existing progress must be untouched: %+v", record)
	}
}

func TestAddPointsAccumulates(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewProgressRepo(tx, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "points@finwise.dev")
	testutil.SeedProgress(t, ctx, tx, u.ID)

	if err := repo.AddPoints(ctx, nil, u.ID, 10); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := repo.AddPoints(ctx, nil, u.ID, 15); err != nil {
		t.Fatalf("add points: %v", err)
	}

	record, err := repo.GetByUserID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.TotalPoints != 25 {
		t.Fatalf("expected 25 points, got %d", record.TotalPoints)
	}
}

func TestGetByUserIDMissingIsNotAnError(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewProgressRepo(tx, testutil.Logger(t))

	record, err := repo.GetByUserID(ctx, nil, uuid.New())
	if err != nil {
		t.Fatalf("get of missing record must not error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func TestSetTopicsProgressRoundTrip(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewProgressRepo(tx, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "topics-progress@finwise.dev")
	testutil.SeedProgress(t, ctx, tx, u.ID)

	topics := map[string]types.TopicProgress{
		"budgeting": {Completed: false, CompletedModules: []string{"budgeting-101"}},
	}
	if err := repo.SetTopicsProgress(ctx, nil, u.ID, topics); err != nil {
		t.Fatalf("set topics progress: %v", err)
	}

	record, err := repo.GetByUserID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	decoded, err := record.Topics()
	if err != nil {
		t.Fatalf("decode topics: %v", err)
	}
	tp, ok := decoded["budgeting"]
	if !ok {
		t.Fatal("budgeting topic missing after round trip")
	}
	if tp.Completed || len(tp.CompletedModules) != 1 || tp.CompletedModules[0] != "budgeting-101" {
		t.Fatalf("unexpected topic progress: %+v", tp)
	}
}

func TestSetStreak(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewProgressRepo(tx, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "streak@finwise.dev")
	testutil.SeedProgress(t, ctx, tx, u.ID)

	now := time.Now().UTC()
	if err := repo.SetStreak(ctx, nil, u.ID, 4, now); err != nil {
		t.Fatalf("set streak: %v", err)
	}

	record, err := repo.GetByUserID(ctx, nil, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Streak != 4 {
		t.Fatalf("expected streak 4, got %d", record.Streak)
	}
	if record.LastActivityAt == nil {
		t.Fatal("last activity must be set")
	}
}
