package learning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/finwise/finwise-backend/internal/domain/user"
)

// TopicProgress is the per-topic slice of a progress record. Stored inside
// ProgressRecord.TopicsProgress as a topicID -> TopicProgress JSON object.
type TopicProgress struct {
	Completed        bool     `json:"completed"`
	CompletedModules []string `json:"completed_modules"`
}

// ProgressRecord is the per-user learning progress. Exactly one row exists
// per user; creation is set-if-absent and all later mutations are additive.
type ProgressRecord struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	TotalPoints int `gorm:"not null;default:0;column:total_points" json:"total_points"`
	Streak      int `gorm:"not null;default:0;column:streak" json:"streak"`

	// TopicsProgress holds a topicID -> TopicProgress object.
	TopicsProgress datatypes.JSON `gorm:"column:topics_progress;type:jsonb" json:"topics_progress,omitempty"`

	LastActivityAt *time.Time `gorm:"column:last_activity_at" json:"last_activity_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (ProgressRecord) TableName() string { return "progress_record" }

// Topics decodes TopicsProgress, treating an absent column as empty.
func (p *ProgressRecord) Topics() (map[string]TopicProgress, error) {
	out := map[string]TopicProgress{}
	if len(p.TopicsProgress) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(p.TopicsProgress, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetTopics encodes topics back into TopicsProgress.
func (p *ProgressRecord) SetTopics(topics map[string]TopicProgress) error {
	raw, err := json.Marshal(topics)
	if err != nil {
		return err
	}
	p.TopicsProgress = datatypes.JSON(raw)
	return nil
}
