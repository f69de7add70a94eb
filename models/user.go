package models

import (
	"time"

	"github.com/google/uuid"
)

// UserState represents the lifecycle state of a user
type UserState string

const (
	UserStateEnabled  UserState = "enabled"
	UserStateDisabled UserState = "disabled"
	UserStateLocked   UserState = "locked"
)

// SystemUserID is the reserved id of the internal system user.
const SystemUserID int64 = 1

// User represents a user able to authenticate against the gateway, either
// with credentials (browser session) or with an API key pair (signed
// requests).
type User struct {
	ID        int64     `json:"id" db:"id"`
	UUID      uuid.UUID `json:"uuid" db:"uuid"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"` // salted digest, never serialized
	Salt      string    `json:"-" db:"salt"`
	AccountID int64     `json:"account_id" db:"account_id"`
	APIKey    string    `json:"api_key,omitempty" db:"api_key"`
	SecretKey string    `json:"-" db:"secret_key"`
	Timezone  string    `json:"timezone,omitempty" db:"timezone"`
	State     UserState `json:"state" db:"state"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsEnabled returns true if the user may authenticate
func (u *User) IsEnabled() bool {
	return u.State == UserStateEnabled
}
