package session

import (
	"context"
	"fmt"

	pkgerrors "github.com/finwise/finwise-backend/internal/pkg/errors"
)

// Age bounds accepted by the gate. Values outside are rejected locally
// before any remote call.
const (
	AgeMin = 1
	AgeMax = 120
)

// AgeGate decides when to ask an onboarded, authenticated user for their
// age and records the answer. The prompt never appears during onboarding;
// it waits until the user reaches the main experience with age still unset.
type AgeGate struct {
	store *Store
}

func NewAgeGate(store *Store) *AgeGate {
	return &AgeGate{store: store}
}

// Visible reports whether the prompt should be showing right now.
func (g *AgeGate) Visible() bool {
	return g.store.Current().NeedsAgeInput()
}

// Submit validates and records the age. Once the age is set the prompt
// never returns, on this or any later session.
func (g *AgeGate) Submit(ctx context.Context, age int) error {
	if age < AgeMin || age > AgeMax {
		return fmt.Errorf("age must be between %d and %d: %w", AgeMin, AgeMax, pkgerrors.ErrInvalidArgument)
	}
	return g.store.UpdateUserAge(ctx, age)
}

// Skip dismisses the prompt for the rest of this session only. Age stays
// unset, so the prompt comes back on the next cold start.
func (g *AgeGate) Skip() {
	g.store.DismissAgePrompt()
}
