package session

import (
	"context"
	"fmt"

	pkgerrors "github.com/finwise/finwise-backend/internal/pkg/errors"
)

// Step is one screen of the onboarding flow.
type Step string

const (
	StepLearningStyle       Step = "learning_style"
	StepTopics              Step = "topics"
	StepKnowledgeAssessment Step = "knowledge_assessment"
	StepMain                Step = "main"
)

// Route returns the navigation target for the step.
func (s Step) Route() string {
	switch s {
	case StepLearningStyle:
		return "/onboarding/learning-style"
	case StepTopics:
		return "/onboarding/topics"
	case StepKnowledgeAssessment:
		return "/onboarding/knowledge-assessment"
	default:
		return "/main"
	}
}

// NextStep returns the first onboarding step the profile has not completed.
// The order is fixed: learning style, then topics, then the knowledge
// assessment. A nil profile starts at the beginning; a fully onboarded
// profile goes to the main experience.
func NextStep(p *Profile) Step {
	switch {
	case p == nil || p.LearningStyle == nil:
		return StepLearningStyle
	case len(p.PreferredTopics) == 0:
		return StepTopics
	case p.KnowledgeLevel == nil:
		return StepKnowledgeAssessment
	default:
		return StepMain
	}
}

// Sequencer advances a user through onboarding. Each Submit* method persists
// the answer through the store, then routes to whatever the updated profile
// still needs, so a user who quit halfway resumes at the right screen.
type Sequencer struct {
	store *Store
	nav   Navigator
}

func NewSequencer(store *Store, nav Navigator) *Sequencer {
	return &Sequencer{store: store, nav: nav}
}

// Resume routes to the next incomplete step for the current session.
func (sq *Sequencer) Resume() {
	sq.nav.Replace(NextStep(sq.store.Current().User).Route())
}

// SubmitLearningStyle records the chosen style and advances. On a persist
// failure the local choice is kept and the flow still advances; the error is
// returned for the screen to surface.
func (sq *Sequencer) SubmitLearningStyle(ctx context.Context, style string) error {
	err := sq.store.SetLearningStyle(ctx, style)
	sq.advance()
	return err
}

// SubmitTopics records the selected topics and advances. An empty selection
// is rejected without navigating.
func (sq *Sequencer) SubmitTopics(ctx context.Context, topics []string) error {
	if len(topics) == 0 {
		return fmt.Errorf("at least one topic is required: %w", pkgerrors.ErrInvalidArgument)
	}
	err := sq.store.SetPreferredTopics(ctx, topics)
	sq.advance()
	return err
}

// SubmitKnowledgeLevel records the assessment result and advances, normally
// into the main experience.
func (sq *Sequencer) SubmitKnowledgeLevel(ctx context.Context, level int) error {
	err := sq.store.SetKnowledgeLevel(ctx, level)
	sq.advance()
	return err
}

func (sq *Sequencer) advance() {
	next := NextStep(sq.store.Current().User)
	if next == StepMain {
		// Onboarding screens must not remain on the back stack once the
		// main experience is reached.
		sq.nav.Replace(next.Route())
		return
	}
	sq.nav.Push(next.Route())
}
