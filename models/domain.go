package models

import (
	"time"

	"github.com/google/uuid"
)

// RootDomainID is the id of the root tenant domain ("/").
const RootDomainID int64 = 1

// Domain is a node in the hierarchical tenant tree. Path is the full
// slash-delimited location, e.g. "/root/sub/".
type Domain struct {
	ID        int64     `json:"id" db:"id"`
	UUID      uuid.UUID `json:"uuid" db:"uuid"`
	Name      string    `json:"name" db:"name"`
	Path      string    `json:"path" db:"path"`
	ParentID  int64     `json:"parent_id" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Domain model
func (Domain) TableName() string {
	return "domains"
}

// IsRoot returns true for the root domain
func (d *Domain) IsRoot() bool {
	return d.Path == "/"
}
