package identity

import (
	"context"

	"github.com/google/uuid"

	types "github.com/finwise/finwise-backend/internal/domain"
)

// Event is one auth state change from the identity provider. A nil User
// means signed out. Token is the access token for the new session.
type Event struct {
	User  *types.User
	Token string
}

// Credential is the result of a successful sign-in or sign-up.
type Credential struct {
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
}

// Unsubscribe detaches a listener. Safe to call more than once.
type Unsubscribe func()

// Provider is the identity provider the session core consumes. Subscribe
// delivers every subsequent auth state change to onChange until the
// returned Unsubscribe is called.
type Provider interface {
	Subscribe(onChange func(Event)) Unsubscribe
	// Resume replays the stored session, if any, as the first event on the
	// stream. An empty or invalid token publishes a signed-out event, so
	// every subscriber observes exactly one initial event per cold start.
	Resume(ctx context.Context, storedToken string)
	SignIn(ctx context.Context, email, password string) (*Credential, error)
	SignUp(ctx context.Context, email, password string) (*Credential, error)
	SignOut(ctx context.Context) error
	SendVerificationEmail(ctx context.Context, userID uuid.UUID) error
	SendPasswordReset(ctx context.Context, email string) error
}
