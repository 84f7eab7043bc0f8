package session

import (
	"context"
	"testing"

	"github.com/finwise/finwise-backend/internal/identity"
)

func TestBridgeLoadingUntilStartupResolves(t *testing.T) {
	store, _, _ := newTestStore(t)
	bridge := NewLegacyBridge(store, &recordingNavigator{})

	if state := bridge.State(); !state.Loading {
		t.Fatal("bridge must report loading before the startup auth attempt")
	}
	if bridge.ShouldRedirectToLogin() {
		t.Fatal("no redirect decision before the startup auth attempt resolves")
	}

	store.InitializeAuthListener(context.Background(), &fakeProvider{})

	if state := bridge.State(); state.Loading {
		t.Fatal("bridge must stop loading once the attempt resolves")
	}
	if !bridge.ShouldRedirectToLogin() {
		t.Fatal("a resolved signed-out session must redirect to login")
	}
}

func TestBridgeMirrorsSessionChanges(t *testing.T) {
	store, records, _ := newTestStore(t)
	u := testUser()
	records.put(u)
	bridge := NewLegacyBridge(store, &recordingNavigator{})

	var states []BridgeState
	unmount := bridge.Mount(func(s BridgeState) { states = append(states, s) })
	defer unmount()

	if len(states) != 1 {
		t.Fatalf("mount must deliver the current state immediately, got %d", len(states))
	}

	if err := store.Login(context.Background(), "tok", u); err != nil {
		t.Fatalf("login: %v", err)
	}
	last := states[len(states)-1]
	if !last.IsAuthenticated || last.User == nil {
		t.Fatal("bridge must mirror the authenticated session")
	}

	bridge.Unmount()
	bridge.Unmount()
	n := len(states)
	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(states) != n {
		t.Fatal("unmounted bridge must not receive changes")
	}
}

func TestBridgeLoginIsInert(t *testing.T) {
	store, _, _ := newTestStore(t)
	bridge := NewLegacyBridge(store, &recordingNavigator{})

	if err := bridge.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("inert login must not fail: %v", err)
	}
	if store.Current().IsAuthenticated {
		t.Fatal("the bridge login path must not mutate the session")
	}
}

func TestBridgeRedirectGatedOnAutoLogin(t *testing.T) {
	store, records, _ := newTestStore(t)
	u := testUser()
	records.put(u)
	nav := &recordingNavigator{}
	bridge := NewLegacyBridge(store, nav)

	bridge.RedirectIfLoggedOut()
	if len(nav.ops) != 0 {
		t.Fatal("must not redirect while the startup attempt is pending")
	}

	provider := &fakeProvider{token: "tok-live", user: u.ID}
	store.InitializeAuthListener(context.Background(), provider)
	provider.publish(identity.Event{User: minimalEventUser(u.ID), Token: "tok-live"})

	bridge.RedirectIfLoggedOut()
	if len(nav.ops) != 0 {
		t.Fatal("must not redirect while authenticated")
	}

	provider.publish(identity.Event{})
	bridge.RedirectIfLoggedOut()
	if got := nav.last(t); got != "replace /login" {
		t.Fatalf("signed out after the attempt must redirect, got %q", got)
	}
}
