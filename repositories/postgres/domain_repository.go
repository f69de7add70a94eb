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

// DomainRepository implements the repositories.DomainRepository interface
type DomainRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDomainRepository creates a new domain repository
func NewDomainRepository(db *DB, logger *zap.Logger) repositories.DomainRepository {
	return &DomainRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a domain by ID
func (r *DomainRepository) GetByID(ctx context.Context, id int64) (*models.Domain, error) {
	query := `
		SELECT id, uuid, name, path, parent_id, created_at
		FROM domains
		WHERE id = $1
	`
	return r.scanDomain(r.db.QueryRowContext(ctx, query, id))
}

// GetByPath retrieves a domain by its full path, e.g. "/root/sub/"
func (r *DomainRepository) GetByPath(ctx context.Context, path string) (*models.Domain, error) {
	query := `
		SELECT id, uuid, name, path, parent_id, created_at
		FROM domains
		WHERE path = $1
	`
	return r.scanDomain(r.db.QueryRowContext(ctx, query, path))
}

func (r *DomainRepository) scanDomain(row *sql.Row) (*models.Domain, error) {
	domain := &models.Domain{}
	err := row.Scan(
		&domain.ID,
		&domain.UUID,
		&domain.Name,
		&domain.Path,
		&domain.ParentID,
		&domain.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}
	return domain, nil
}
