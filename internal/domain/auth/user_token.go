package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finwise/finwise-backend/internal/domain/user"
)

// UserToken is one issued session: a signed access token plus the opaque
// refresh token that rotates it. Expiry applies to the refresh token; the
// access token carries its own expiry in its claims.
type UserToken struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"index;not null" json:"user_id"`
	User         *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AccessToken  string         `gorm:"uniqueIndex;not null;column:access_token" json:"access_token"`
	RefreshToken string         `gorm:"uniqueIndex;not null;column:refresh_token" json:"refresh_token"`
	ExpiresAt    time.Time      `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserToken) TableName() string { return "user_token" }
