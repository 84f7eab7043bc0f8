package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finwise/finwise-backend/internal/data/repos/testutil"
	types "github.com/finwise/finwise-backend/internal/domain"
)

func seedToken(t *testing.T, ctx context.Context, repo UserTokenRepo, userID uuid.UUID) *types.UserToken {
	t.Helper()
	tok := &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  "access-" + uuid.NewString(),
		RefreshToken: "refresh-" + uuid.NewString(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if _, err := repo.Create(ctx, nil, []*types.UserToken{tok}); err != nil {
		t.Fatalf("create token: %v", err)
	}
	return tok
}

func TestTokenLookups(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewUserTokenRepo(tx, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "tokens@finwise.dev")
	tok := seedToken(t, ctx, repo, u.ID)

	byAccess, err := repo.GetByAccessTokens(ctx, nil, []string{tok.AccessToken})
	if err != nil {
		t.Fatalf("get by access: %v", err)
	}
	if len(byAccess) != 1 || byAccess[0].UserID != u.ID {
		t.Fatalf("unexpected access lookup: %+v", byAccess)
	}

	byRefresh, err := repo.GetByRefreshTokens(ctx, nil, []string{tok.RefreshToken})
	if err != nil {
		t.Fatalf("get by refresh: %v", err)
	}
	if len(byRefresh) != 1 || byRefresh[0].ID != tok.ID {
		t.Fatalf("unexpected refresh lookup: %+v", byRefresh)
	}

	byUser, err := repo.GetByUserIDs(ctx, nil, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(byUser) != 1 {
		t.Fatalf("expected 1 token for user, got %d", len(byUser))
	}
}

func TestFullDeleteByTokens(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewUserTokenRepo(tx, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "delete-token@finwise.dev")
	tok := seedToken(t, ctx, repo, u.ID)

	if err := repo.FullDeleteByTokens(ctx, nil, []*types.UserToken{tok}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := repo.GetByAccessTokens(ctx, nil, []string{tok.AccessToken})
	if err != nil {
		t.Fatalf("lookup after delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatal("token must be gone after delete")
	}
}

func TestFullDeleteByUserIDsClearsAllSessions(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewUserTokenRepo(tx, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "delete-user-tokens@finwise.dev")
	seedToken(t, ctx, repo, u.ID)
	seedToken(t, ctx, repo, u.ID)

	if err := repo.FullDeleteByUserIDs(ctx, nil, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("delete by user: %v", err)
	}

	remaining, err := repo.GetByUserIDs(ctx, nil, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("lookup after delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no tokens, got %d", len(remaining))
	}
}
