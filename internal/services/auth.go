package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	repoauth "github.com/finwise/finwise-backend/internal/data/repos/auth"
	repouser "github.com/finwise/finwise-backend/internal/data/repos/user"
	types "github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/finwise/finwise-backend/internal/pkg/errors"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
	"github.com/finwise/finwise-backend/internal/platform/mail"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, email, password string) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	// LogoutUser deletes the current session's token row. Calling it with no
	// live session is a no-op, not an error.
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	SendVerificationEmail(ctx context.Context, userID uuid.UUID) error
	ConfirmVerification(ctx context.Context, userID uuid.UUID) error
	SendPasswordReset(ctx context.Context, email string) error
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repouser.UserRepo
	userTokenRepo repoauth.UserTokenRepo
	mailClient    mail.Client
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repouser.UserRepo,
	userTokenRepo repoauth.UserTokenRepo,
	mailClient mail.Client,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		mailClient:    mailClient,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, email, password string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email already in use: %w", pkgerrors.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Role:     types.RoleStudent,
	}
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := as.userRepo.Create(ctx, tx, []*types.User{user})
		return cErr
	}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password required: %w", pkgerrors.ErrInvalidArgument)
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One live session per user: expired or superseded tokens are removed
		// before a new one is issued.
		if dErr := as.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); dErr != nil {
			return fmt.Errorf("clear previous tokens: %w", dErr)
		}

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()

		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		_, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken})
		if cErr != nil {
			return fmt.Errorf("create user token: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", fmt.Errorf("no refresh token in request context: %w", pkgerrors.ErrUnauthorized)
	}

	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
		if ftErr != nil {
			return fmt.Errorf("fetch refresh token: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return fmt.Errorf("unknown refresh token: %w", pkgerrors.ErrUnauthorized)
		}
		existing := foundTokens[0]
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existing}); dErr != nil {
				return fmt.Errorf("delete expired token: %w", dErr)
			}
			return fmt.Errorf("refresh token expired: %w", pkgerrors.ErrUnauthorized)
		}

		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return fmt.Errorf("no user for refresh token: %w", pkgerrors.ErrUnauthorized)
		}
		user := users[0]

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()

		replacement := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&replacement}); cErr != nil {
			return fmt.Errorf("create replacement token: %w", cErr)
		}
		if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existing}); dErr != nil {
			return fmt.Errorf("remove rotated token: %w", dErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		// Already logged out.
		return nil
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
		if ftErr != nil {
			return fmt.Errorf("find token for logout: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, foundTokens); dErr != nil {
			return fmt.Errorf("delete token: %w", dErr)
		}
		return nil
	})
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}

	var refreshToken string
	foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if ftErr != nil {
		as.log.Warn("fetch user token by access token failed", "error", ftErr)
	} else if len(foundTokens) > 0 {
		refreshToken = foundTokens[0].RefreshToken
	}

	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: refreshToken,
		UserID:       userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) SendVerificationEmail(ctx context.Context, userID uuid.UUID) error {
	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	user := users[0]
	if user.Verified {
		return nil
	}
	return as.mailClient.Send(ctx, mail.SendEmailRequest{
		To:      []mail.EmailAddress{{Email: user.Email}},
		Subject: "Verify your email",
		Text:    "Confirm your email address to finish setting up your account.",
	})
}

func (as *authService) ConfirmVerification(ctx context.Context, userID uuid.UUID) error {
	return as.userRepo.UpdateVerified(ctx, nil, userID, true)
}

func (as *authService) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		// Do not reveal whether the address exists.
		as.log.Info("password reset requested for unknown email")
		return nil
	}
	return as.mailClient.Send(ctx, mail.SendEmailRequest{
		To:      []mail.EmailAddress{{Email: users[0].Email}},
		Subject: "Reset your password",
		Text:    "A password reset was requested for your account.",
	})
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email is required: %w", pkgerrors.ErrInvalidArgument)
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", pkgerrors.ErrInvalidArgument)
	}
	return nil
}
