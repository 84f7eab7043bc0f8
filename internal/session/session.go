package session

import (
	"encoding/json"

	"github.com/google/uuid"

	types "github.com/finwise/finwise-backend/internal/domain"
)

// Profile is the client-side mirror of the remote user record.
type Profile struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Verified        bool      `json:"verified"`
	Role            string    `json:"role"`
	LearningStyle   *string   `json:"learning_style,omitempty"`
	PreferredTopics []string  `json:"preferred_topics,omitempty"`
	KnowledgeLevel  *int      `json:"knowledge_level,omitempty"`
	Age             *int      `json:"age,omitempty"`
	IsMinor         *bool     `json:"is_minor,omitempty"`
}

// Session is the process-wide auth state snapshot handed to subscribers.
// It is a value type: readers get copies and never observe partial writes.
type Session struct {
	User  *Profile `json:"user,omitempty"`
	Token string   `json:"token,omitempty"`

	// IsAuthenticated is true iff both User and Token are present.
	IsAuthenticated bool `json:"is_authenticated"`

	// AutoLoginAttempted latches true after the first identity event of the
	// process lifetime, successful or not. Until then the auth state is
	// unknown, not signed-out.
	AutoLoginAttempted bool `json:"auto_login_attempted"`

	// AgePromptDismissed is the one-shot dismissal of the age gate for this
	// session. It is never persisted: the prompt returns on the next cold
	// start while age is unset.
	AgePromptDismissed bool `json:"-"`

	// Err is the last failed operation's message, for observers; it never
	// blocks the session.
	Err string `json:"-"`
}

// IsOnboardingComplete reports whether all three onboarding steps are done:
// learning style chosen, at least one preferred topic, knowledge level set.
func (s Session) IsOnboardingComplete() bool {
	u := s.User
	if u == nil {
		return false
	}
	return u.LearningStyle != nil && len(u.PreferredTopics) > 0 && u.KnowledgeLevel != nil
}

// NeedsAgeInput reports whether the age gate should show: authenticated,
// onboarded, age unset, and not yet dismissed this session.
func (s Session) NeedsAgeInput() bool {
	if !s.IsAuthenticated || !s.IsOnboardingComplete() {
		return false
	}
	if s.AgePromptDismissed {
		return false
	}
	return s.User.Age == nil
}

// ProfileFromUser converts a remote user record into the client mirror.
func ProfileFromUser(u *types.User) (*Profile, error) {
	if u == nil {
		return nil, nil
	}
	p := &Profile{
		ID:             u.ID,
		Email:          u.Email,
		Verified:       u.Verified,
		Role:           u.Role,
		LearningStyle:  u.LearningStyle,
		KnowledgeLevel: u.KnowledgeLevel,
		Age:            u.Age,
		IsMinor:        u.IsMinor,
	}
	if len(u.PreferredTopics) > 0 {
		if err := json.Unmarshal(u.PreferredTopics, &p.PreferredTopics); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// clone returns a deep copy so subscriber snapshots cannot alias store state.
func (p *Profile) clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.PreferredTopics != nil {
		cp.PreferredTopics = append([]string(nil), p.PreferredTopics...)
	}
	return &cp
}
