// Command sessiondemo drives the mobile session core against in-process
// services: cold start restore, sign up, onboarding, the age prompt and
// logout, printing each session change as it happens.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/finwise/finwise-backend/internal/app"
	"github.com/finwise/finwise-backend/internal/identity"
	"github.com/finwise/finwise-backend/internal/progress"
	"github.com/finwise/finwise-backend/internal/session"
	"github.com/finwise/finwise-backend/internal/snapshot"
)

type printNavigator struct{}

func (printNavigator) Push(route string)    { fmt.Printf("nav: push %s\n", route) }
func (printNavigator) Replace(route string) { fmt.Printf("nav: replace %s\n", route) }
func (printNavigator) Back()                { fmt.Println("nav: back") }

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()
	ctx := context.Background()

	var snapshots snapshot.Store
	if snapshots, err = snapshot.NewRedisStore(a.Log); err != nil {
		a.Log.Warn("redis unavailable, using in-memory snapshots", "error", err)
		snapshots = snapshot.NewMemoryStore()
	}

	provider := identity.NewLocalProvider(a.Log, a.Services.Auth, a.Services.User)
	store := session.NewStore(a.Log, a.Services.User, snapshots)
	nav := printNavigator{}
	sequencer := session.NewSequencer(store, nav)
	bridge := session.NewLegacyBridge(store, nav)
	gate := session.NewAgeGate(store)
	initializer := progress.NewInitializer(a.Log, a.Services.Progress)

	unwatch := initializer.Watch(ctx, store)
	defer unwatch()
	unsubscribe := store.Subscribe(func(s session.Session) {
		fmt.Printf("session: authenticated=%v attempted=%v err=%q\n",
			s.IsAuthenticated, s.AutoLoginAttempted, s.Err)
	})
	defer unsubscribe()

	// Cold start: replay whatever token the last run persisted.
	stop := store.InitializeAuthListener(ctx, provider)
	defer stop()

	if store.Current().IsAuthenticated {
		fmt.Println("restored previous session")
		sequencer.Resume()
		return
	}
	bridge.RedirectIfLoggedOut()

	email := fmt.Sprintf("demo+%d@finwise.dev", os.Getpid())
	if _, err := provider.SignUp(ctx, email, "demo-password"); err != nil {
		fmt.Printf("sign up failed: %v\n", err)
		os.Exit(1)
	}

	if err := sequencer.SubmitLearningStyle(ctx, "visual"); err != nil {
		fmt.Printf("learning style: %v\n", err)
	}
	if err := sequencer.SubmitTopics(ctx, []string{"budgeting", "saving"}); err != nil {
		fmt.Printf("topics: %v\n", err)
	}
	if err := sequencer.SubmitKnowledgeLevel(ctx, 1); err != nil {
		fmt.Printf("knowledge level: %v\n", err)
	}

	if gate.Visible() {
		if err := gate.Submit(ctx, 23); err != nil {
			fmt.Printf("age: %v\n", err)
		}
	}

	if err := provider.SignOut(ctx); err != nil {
		fmt.Printf("sign out failed: %v\n", err)
	}
	if err := store.Logout(ctx); err != nil {
		fmt.Printf("logout: %v\n", err)
	}
}
