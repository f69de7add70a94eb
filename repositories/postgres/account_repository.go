package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cloudgrid/api-gateway/models"
	"github.com/cloudgrid/api-gateway/repositories"
	"github.com/cloudgrid/api-gateway/services"
	"go.uber.org/zap"
)

// AccountRepository implements the repositories.AccountRepository interface
type AccountRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB, logger *zap.Logger) repositories.AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, uuid, name, type, domain_id, state, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.UUID,
		&account.Name,
		&account.Type,
		&account.DomainID,
		&account.State,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.NewDomainError(services.ErrorTypeNotFound, "account not found", nil)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
