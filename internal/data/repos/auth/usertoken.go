package auth

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

type UserTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error)
	GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error)
	FullDeleteByTokens(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) error
	FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = utr.db
	}

	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (utr *userTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = utr.db
	}

	var results []*types.UserToken
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = utr.db
	}

	var results []*types.UserToken
	if len(accessTokens) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("access_token IN ?", accessTokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = utr.db
	}

	var results []*types.UserToken
	if len(refreshTokens) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("refresh_token IN ?", refreshTokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) FullDeleteByTokens(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) error {
	transaction := tx
	if transaction == nil {
		transaction = utr.db
	}

	if len(userTokens) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(userTokens))
	for _, t := range userTokens {
		if t != nil {
			ids = append(ids, t.ID)
		}
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = utr.db
	}

	if len(userIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("user_id IN ?", userIDs).
		Delete(&types.UserToken{}).Error
}
