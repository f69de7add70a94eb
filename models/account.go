package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountType classifies an account's privilege level
type AccountType int16

const (
	AccountTypeNormal      AccountType = 0
	AccountTypeAdmin       AccountType = 1
	AccountTypeDomainAdmin AccountType = 2
)

// AccountState represents the lifecycle state of an account
type AccountState string

const (
	AccountStateEnabled  AccountState = "enabled"
	AccountStateDisabled AccountState = "disabled"
)

// SystemAccountID is the reserved id of the internal system account.
const SystemAccountID int64 = 1

// Account is the billing and authorization unit users belong to, scoped to
// a tenant domain.
type Account struct {
	ID        int64        `json:"id" db:"id"`
	UUID      uuid.UUID    `json:"uuid" db:"uuid"`
	Name      string       `json:"name" db:"name"`
	Type      AccountType  `json:"type" db:"type"`
	DomainID  int64        `json:"domain_id" db:"domain_id"`
	State     AccountState `json:"state" db:"state"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// IsEnabled returns true if the account may be used
func (a *Account) IsEnabled() bool {
	return a.State == AccountStateEnabled
}

// IsAdmin returns true for root-admin accounts
func (a *Account) IsAdmin() bool {
	return a.Type == AccountTypeAdmin
}
