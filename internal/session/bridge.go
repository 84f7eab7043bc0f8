package session

import "context"

// BridgeState is the reduced view the pre-migration screens consume. It is
// derived from the full session on every change.
type BridgeState struct {
	User            *Profile `json:"user,omitempty"`
	IsAuthenticated bool     `json:"is_authenticated"`
	Loading         bool     `json:"loading"`
}

// LegacyBridge adapts the session store to the old screens' narrower
// contract. It holds no authority of its own: it mirrors whatever the store
// publishes, and its Loading flag is simply "startup auth not resolved yet".
type LegacyBridge struct {
	store *Store
	nav   Navigator
	unsub func()
}

func NewLegacyBridge(store *Store, nav Navigator) *LegacyBridge {
	return &LegacyBridge{store: store, nav: nav}
}

// Mount starts mirroring the store into onChange, delivering the current
// state immediately. The returned function stops mirroring and is safe to
// call more than once.
func (b *LegacyBridge) Mount(onChange func(BridgeState)) func() {
	unsub := b.store.Subscribe(func(s Session) {
		onChange(b.project(s))
	})
	b.unsub = unsub
	onChange(b.State())
	return unsub
}

// Unmount stops mirroring. Calling it twice, or without a prior Mount, is
// harmless.
func (b *LegacyBridge) Unmount() {
	if b.unsub != nil {
		b.unsub()
	}
}

// State returns the current reduced view.
func (b *LegacyBridge) State() BridgeState {
	return b.project(b.store.Current())
}

func (b *LegacyBridge) project(s Session) BridgeState {
	return BridgeState{
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
		Loading:         !s.AutoLoginAttempted,
	}
}

// Login is intentionally inert. Sign-in flows through the identity provider,
// whose events reach the store; the old screens' direct login entry point
// must not create a second write path.
func (b *LegacyBridge) Login(ctx context.Context, email, password string) error {
	return nil
}

// Logout delegates to the store and is idempotent like it.
func (b *LegacyBridge) Logout(ctx context.Context) error {
	return b.store.Logout(ctx)
}

// ShouldRedirectToLogin reports whether an old screen should bounce to the
// login route. It stays false until the startup auth attempt has resolved,
// so a slow token restore never flashes the login screen.
func (b *LegacyBridge) ShouldRedirectToLogin() bool {
	s := b.store.Current()
	return s.AutoLoginAttempted && !s.IsAuthenticated
}

// RedirectIfLoggedOut applies ShouldRedirectToLogin to the navigator.
func (b *LegacyBridge) RedirectIfLoggedOut() {
	if b.ShouldRedirectToLogin() {
		b.nav.Replace("/login")
	}
}
