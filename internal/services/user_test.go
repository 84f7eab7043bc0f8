package services

import (
	"context"
	"encoding/json"
	"testing"

	"gorm.io/gorm"

	repouser "github.com/finwise/finwise-backend/internal/data/repos/user"
	"github.com/finwise/finwise-backend/internal/data/repos/testutil"
	types "github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/pkg/ctxutil"
)

func newUserService(t *testing.T, tx *gorm.DB) UserService {
	t.Helper()
	log := testutil.Logger(t)
	return NewUserService(tx, log, repouser.NewUserRepo(tx, log))
}

func TestSetLearningStyleValidates(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newUserService(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "style@finwise.dev")

	updated, err := svc.SetLearningStyle(ctx, u.ID, types.LearningStyleVisual)
	if err != nil {
		t.Fatalf("set learning style: %v", err)
	}
	if updated.LearningStyle == nil || *updated.LearningStyle != types.LearningStyleVisual {
		t.Fatalf("style not set: %+v", updated.LearningStyle)
	}

	if _, err := svc.SetLearningStyle(ctx, u.ID, "telepathic"); err == nil {
		t.Fatal("expected unknown style to be rejected")
	}
}

func TestSetPreferredTopicsNormalizes(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newUserService(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "topics@finwise.dev")

	updated, err := svc.SetPreferredTopics(ctx, u.ID, []string{" Saving ", "budgeting", "saving", ""})
	if err != nil {
		t.Fatalf("set topics: %v", err)
	}
	var topics []string
	if err := json.Unmarshal(updated.PreferredTopics, &topics); err != nil {
		t.Fatalf("decode topics: %v", err)
	}
	if len(topics) != 2 || topics[0] != "budgeting" || topics[1] != "saving" {
		t.Fatalf("expected trimmed, deduplicated, sorted topics, got %v", topics)
	}

	if _, err := svc.SetPreferredTopics(ctx, u.ID, []string{"", "  "}); err == nil {
		t.Fatal("expected all-blank selection to be rejected")
	}
}

func TestSetKnowledgeLevelRejectsNegative(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newUserService(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "level@finwise.dev")

	if _, err := svc.SetKnowledgeLevel(ctx, u.ID, -1); err == nil {
		t.Fatal("expected negative level to be rejected")
	}
	updated, err := svc.SetKnowledgeLevel(ctx, u.ID, 0)
	if err != nil {
		t.Fatalf("set level: %v", err)
	}
	if updated.KnowledgeLevel == nil || *updated.KnowledgeLevel != 0 {
		t.Fatalf("level not set: %+v", updated.KnowledgeLevel)
	}
}

func TestSetAgeBoundsAndMinorFlag(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newUserService(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "setage@finwise.dev")

	for _, bad := range []int{0, -1, 121} {
		if _, err := svc.SetAge(ctx, u.ID, bad); err == nil {
			t.Fatalf("expected age %d to be rejected", bad)
		}
	}

	updated, err := svc.SetAge(ctx, u.ID, 17)
	if err != nil {
		t.Fatalf("set age: %v", err)
	}
	if updated.IsMinor == nil || !*updated.IsMinor {
		t.Fatal("17 must be flagged a minor")
	}

	updated, err = svc.SetAge(ctx, u.ID, 18)
	if err != nil {
		t.Fatalf("set age: %v", err)
	}
	if updated.IsMinor == nil || *updated.IsMinor {
		t.Fatal("18 must not be flagged a minor")
	}
}

func TestGetMeReadsRequestContext(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	svc := newUserService(t, tx)
	u := testutil.SeedUser(t, ctx, tx, "me@finwise.dev")

	authed := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: u.ID})
	me, err := svc.GetMe(authed)
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.ID != u.ID {
		t.Fatalf("wrong user: %s", me.ID)
	}

	if _, err := svc.GetMe(ctx); err == nil {
		t.Fatal("expected error without request data")
	}
}
