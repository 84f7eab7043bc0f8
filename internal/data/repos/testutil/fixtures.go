package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/finwise/finwise-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Role:     types.RoleStudent,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.ProgressRecord {
	tb.Helper()
	p := &types.ProgressRecord{
		ID:     uuid.New(),
		UserID: userID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}
