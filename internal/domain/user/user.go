package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"

	LearningStyleVisual    = "visual"
	LearningStylePractical = "practical"
)

// User is the account record plus the onboarding profile fields the mobile
// client mirrors into its session. Onboarding fields are nullable until the
// corresponding step has been completed; they are never cleared by later
// partial updates.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Verified bool      `gorm:"not null;default:false;column:verified" json:"verified"`
	Role     string    `gorm:"not null;default:'student';column:role" json:"role"`

	// Onboarding profile. PreferredTopics holds a JSON string array.
	LearningStyle   *string        `gorm:"column:learning_style" json:"learning_style,omitempty"`
	PreferredTopics datatypes.JSON `gorm:"column:preferred_topics;type:jsonb" json:"preferred_topics,omitempty"`
	KnowledgeLevel  *int           `gorm:"column:knowledge_level" json:"knowledge_level,omitempty"`

	// Age gating. IsMinor is derived from Age at write time so reads never
	// need the raw age.
	Age     *int  `gorm:"column:age" json:"age,omitempty"`
	IsMinor *bool `gorm:"column:is_minor" json:"is_minor,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

// ValidLearningStyle reports whether s is one of the accepted styles.
func ValidLearningStyle(s string) bool {
	return s == LearningStyleVisual || s == LearningStylePractical
}
