package session

import (
	"context"
	"testing"

	types "github.com/finwise/finwise-backend/internal/domain"
)

func onboardedUser() *types.User {
	u := testUser()
	style := types.LearningStyleVisual
	level := 1
	u.LearningStyle = &style
	u.KnowledgeLevel = &level
	u.PreferredTopics = []byte(`["budgeting"]`)
	return u
}

func TestAgeGateHiddenDuringOnboarding(t *testing.T) {
	store, records, _ := newTestStore(t)
	u := testUser()
	records.put(u)
	gate := NewAgeGate(store)

	if gate.Visible() {
		t.Fatal("gate must not show while signed out")
	}
	if err := store.Login(context.Background(), "tok", u); err != nil {
		t.Fatalf("login: %v", err)
	}
	if gate.Visible() {
		t.Fatal("gate must not show before onboarding completes")
	}
}

func TestAgeGateShowsForOnboardedUserWithoutAge(t *testing.T) {
	store, records, _ := newTestStore(t)
	u := onboardedUser()
	records.put(u)
	gate := NewAgeGate(store)

	if err := store.Login(context.Background(), "tok", u); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !gate.Visible() {
		t.Fatal("onboarded user without an age must see the gate")
	}

	if err := gate.Submit(context.Background(), 23); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gate.Visible() {
		t.Fatal("gate must close once an age is recorded")
	}
}

func TestAgeGateRejectsOutOfRangeWithoutRemoteCall(t *testing.T) {
	store, records, _ := newTestStore(t)
	u := onboardedUser()
	records.put(u)
	gate := NewAgeGate(store)
	if err := store.Login(context.Background(), "tok", u); err != nil {
		t.Fatalf("login: %v", err)
	}

	before := records.calls
	for _, age := range []int{0, -5, 121, 1000} {
		if err := gate.Submit(context.Background(), age); err == nil {
			t.Fatalf("age %d must be rejected", age)
		}
	}
	if records.calls != before {
		t.Fatal("invalid ages must be rejected before any remote call")
	}
	if !gate.Visible() {
		t.Fatal("rejected input must leave the gate open")
	}
}

func TestAgeGateSkipIsSessionLocal(t *testing.T) {
	store, records, snapshots := newTestStore(t)
	u := onboardedUser()
	records.put(u)
	gate := NewAgeGate(store)
	if err := store.Login(context.Background(), "tok", u); err != nil {
		t.Fatalf("login: %v", err)
	}

	gate.Skip()
	if gate.Visible() {
		t.Fatal("skip must hide the gate for this session")
	}
	if store.Current().User.Age != nil {
		t.Fatal("skip must not record an age")
	}

	// A new store over the same snapshot simulates the next cold start: the
	// dismissal is gone, the gate returns.
	restarted := NewStore(testLogger(t), records, snapshots)
	provider := &fakeProvider{token: "tok", user: u.ID}
	restarted.InitializeAuthListener(context.Background(), provider)
	if !restarted.Current().NeedsAgeInput() {
		t.Fatal("the skip must not survive a restart")
	}
}
