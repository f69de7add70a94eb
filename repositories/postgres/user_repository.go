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

const userColumns = `u.id, u.uuid, u.username, u.password, u.salt, u.account_id,
	COALESCE(u.api_key, ''), COALESCE(u.secret_key, ''), COALESCE(u.timezone, ''),
	u.state, u.created_at, u.updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1`, userColumns)
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByUsername retrieves a user by username within a tenant domain
func (r *UserRepository) GetByUsername(ctx context.Context, username string, domainID int64) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		JOIN accounts a ON a.id = u.account_id
		WHERE u.username = $1 AND a.domain_id = $2
	`, userColumns)
	return r.scanUser(r.db.QueryRowContext(ctx, query, username, domainID))
}

// GetByAPIKey retrieves the user owning the given API key
func (r *UserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.api_key = $1`, userColumns)
	return r.scanUser(r.db.QueryRowContext(ctx, query, apiKey))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.UUID,
		&user.Username,
		&user.Password,
		&user.Salt,
		&user.AccountID,
		&user.APIKey,
		&user.SecretKey,
		&user.Timezone,
		&user.State,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
