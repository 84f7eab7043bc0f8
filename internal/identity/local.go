package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	types "github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/pkg/ctxutil"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
	"github.com/finwise/finwise-backend/internal/services"
)

// LocalProvider implements Provider on top of the auth and user services.
// It owns the device's current credential and publishes every auth state
// change onto its stream.
type LocalProvider struct {
	log         *logger.Logger
	stream      *Stream
	authService services.AuthService
	userService services.UserService

	mu      sync.Mutex
	current *Credential
}

func NewLocalProvider(log *logger.Logger, authService services.AuthService, userService services.UserService) *LocalProvider {
	return &LocalProvider{
		log:         log.With("service", "LocalIdentityProvider"),
		stream:      NewStream(log),
		authService: authService,
		userService: userService,
	}
}

func (p *LocalProvider) Subscribe(onChange func(Event)) Unsubscribe {
	return p.stream.Subscribe(onChange)
}

func (p *LocalProvider) Resume(ctx context.Context, storedToken string) {
	if storedToken == "" {
		p.publishSignedOut()
		return
	}

	authedCtx, err := p.authService.SetContextFromToken(ctx, storedToken)
	if err != nil {
		p.log.Info("stored token rejected, starting signed out", "error", err)
		p.publishSignedOut()
		return
	}
	rd := ctxutil.GetRequestData(authedCtx)
	if rd == nil || rd.UserID == uuid.Nil {
		p.publishSignedOut()
		return
	}
	// A parseable token whose server-side row is gone was revoked; the
	// row lookup is what fills in the refresh token.
	if rd.RefreshToken == "" {
		p.log.Info("stored token no longer active, starting signed out")
		p.publishSignedOut()
		return
	}

	user, err := p.userService.GetByID(ctx, rd.UserID)
	if err != nil {
		p.log.Warn("stored session user load failed, starting signed out", "error", err)
		p.publishSignedOut()
		return
	}

	p.mu.Lock()
	p.current = &Credential{UserID: user.ID, AccessToken: storedToken, RefreshToken: rd.RefreshToken}
	p.mu.Unlock()

	p.stream.Publish(Event{User: user, Token: storedToken})
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	accessToken, refreshToken, err := p.authService.LoginUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return p.adopt(ctx, accessToken, refreshToken)
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*Credential, error) {
	if _, err := p.authService.RegisterUser(ctx, email, password); err != nil {
		return nil, err
	}
	accessToken, refreshToken, err := p.authService.LoginUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return p.adopt(ctx, accessToken, refreshToken)
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.mu.Unlock()

	if current != nil {
		authedCtx := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
			TokenString:  current.AccessToken,
			RefreshToken: current.RefreshToken,
			UserID:       current.UserID,
		})
		if err := p.authService.LogoutUser(authedCtx); err != nil {
			// The local session still ends; the server-side token row will
			// age out via its expiry.
			p.log.Warn("remote logout failed", "error", err)
		}
	}

	p.publishSignedOut()
	return nil
}

func (p *LocalProvider) SendVerificationEmail(ctx context.Context, userID uuid.UUID) error {
	return p.authService.SendVerificationEmail(ctx, userID)
}

func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	return p.authService.SendPasswordReset(ctx, email)
}

// adopt records the credential as current, loads the profile and publishes
// the signed-in event.
func (p *LocalProvider) adopt(ctx context.Context, accessToken, refreshToken string) (*Credential, error) {
	authedCtx, err := p.authService.SetContextFromToken(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("adopt credential: %w", err)
	}
	rd := ctxutil.GetRequestData(authedCtx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("adopt credential: no user in token")
	}

	cred := &Credential{UserID: rd.UserID, AccessToken: accessToken, RefreshToken: refreshToken}
	p.mu.Lock()
	p.current = cred
	p.mu.Unlock()

	user, err := p.userService.GetByID(ctx, rd.UserID)
	if err != nil {
		// Degraded sign-in: the credential is valid even when the profile
		// fetch fails; subscribers receive a user with identity fields only.
		p.log.Warn("profile load failed after sign-in", "error", err)
		p.stream.Publish(Event{User: minimalUser(rd.UserID), Token: accessToken})
		return cred, nil
	}

	p.stream.Publish(Event{User: user, Token: accessToken})
	return cred, nil
}

func (p *LocalProvider) publishSignedOut() {
	p.stream.Publish(Event{})
}

func minimalUser(id uuid.UUID) *types.User {
	return &types.User{ID: id}
}
