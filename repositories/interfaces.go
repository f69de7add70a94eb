package repositories

import (
	"context"

	"github.com/cloudgrid/api-gateway/models"
)

// UserRepository handles user lookups for both trust models: credential
// login (by username within a domain) and signed requests (by API key).
type UserRepository interface {
	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username within a domain
	GetByUsername(ctx context.Context, username string, domainID int64) (*models.User, error)

	// GetByAPIKey retrieves the user owning the given API key
	GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
}

// AccountRepository handles account lookups
type AccountRepository interface {
	// GetByID retrieves an account by id
	GetByID(ctx context.Context, id int64) (*models.Account, error)
}

// DomainRepository handles tenant domain lookups
type DomainRepository interface {
	// GetByID retrieves a domain by id
	GetByID(ctx context.Context, id int64) (*models.Domain, error)

	// GetByPath retrieves a domain by its full path, e.g. "/root/sub/"
	GetByPath(ctx context.Context, path string) (*models.Domain, error)
}
