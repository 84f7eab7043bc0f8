package domain

import (
	"github.com/finwise/finwise-backend/internal/domain/auth"
	"github.com/finwise/finwise-backend/internal/domain/learning"
	"github.com/finwise/finwise-backend/internal/domain/user"
)

// Flat aliases so callers can import one package as `types`.

type User = user.User
type UserToken = auth.UserToken
type ProgressRecord = learning.ProgressRecord
type TopicProgress = learning.TopicProgress

const (
	RoleStudent = user.RoleStudent
	RoleAdmin   = user.RoleAdmin

	LearningStyleVisual    = user.LearningStyleVisual
	LearningStylePractical = user.LearningStylePractical
)

var ValidLearningStyle = user.ValidLearningStyle
