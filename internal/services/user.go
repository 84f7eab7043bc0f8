package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	repouser "github.com/finwise/finwise-backend/internal/data/repos/user"
	types "github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/finwise/finwise-backend/internal/pkg/errors"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

const (
	AgeMin      = 1
	AgeMax      = 120
	adultAge    = 18
	maxTopicLen = 64
)

// UserService is the user-record service: the remote the mobile session
// store mirrors. Each Set* call updates exactly one onboarding field;
// fields are never cleared by later updates.
type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetMe(ctx context.Context) (*types.User, error)
	SetLearningStyle(ctx context.Context, userID uuid.UUID, style string) (*types.User, error)
	SetPreferredTopics(ctx context.Context, userID uuid.UUID, topics []string) (*types.User, error)
	SetKnowledgeLevel(ctx context.Context, userID uuid.UUID, level int) (*types.User, error)
	SetAge(ctx context.Context, userID uuid.UUID, age int) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repouser.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repouser.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	return users[0], nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context: %w", pkgerrors.ErrUnauthorized)
	}
	return us.GetByID(ctx, rd.UserID)
}

func (us *userService) SetLearningStyle(ctx context.Context, userID uuid.UUID, style string) (*types.User, error) {
	style = strings.ToLower(strings.TrimSpace(style))
	if !types.ValidLearningStyle(style) {
		return nil, fmt.Errorf("unknown learning style %q: %w", style, pkgerrors.ErrInvalidArgument)
	}
	if err := us.userRepo.UpdateLearningStyle(ctx, nil, userID, style); err != nil {
		return nil, fmt.Errorf("update learning style: %w", err)
	}
	return us.GetByID(ctx, userID)
}

func (us *userService) SetPreferredTopics(ctx context.Context, userID uuid.UUID, topics []string) (*types.User, error) {
	cleaned := normalizeTopics(topics)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("at least one topic is required: %w", pkgerrors.ErrInvalidArgument)
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("encode topics: %w", err)
	}
	if err := us.userRepo.UpdatePreferredTopics(ctx, nil, userID, datatypes.JSON(raw)); err != nil {
		return nil, fmt.Errorf("update preferred topics: %w", err)
	}
	return us.GetByID(ctx, userID)
}

func (us *userService) SetKnowledgeLevel(ctx context.Context, userID uuid.UUID, level int) (*types.User, error) {
	if level < 0 {
		return nil, fmt.Errorf("knowledge level must be non-negative: %w", pkgerrors.ErrInvalidArgument)
	}
	if err := us.userRepo.UpdateKnowledgeLevel(ctx, nil, userID, level); err != nil {
		return nil, fmt.Errorf("update knowledge level: %w", err)
	}
	return us.GetByID(ctx, userID)
}

func (us *userService) SetAge(ctx context.Context, userID uuid.UUID, age int) (*types.User, error) {
	if age < AgeMin || age > AgeMax {
		return nil, fmt.Errorf("age must be between %d and %d: %w", AgeMin, AgeMax, pkgerrors.ErrInvalidArgument)
	}
	isMinor := age < adultAge
	if err := us.userRepo.UpdateAge(ctx, nil, userID, age, isMinor); err != nil {
		return nil, fmt.Errorf("update age: %w", err)
	}
	return us.GetByID(ctx, userID)
}

// normalizeTopics trims, lowercases, dedupes and sorts so the stored set is
// stable regardless of input order.
func normalizeTopics(topics []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || len(t) > maxTopicLen {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
