package services

import (
	"context"
	"strconv"

	"github.com/cloudgrid/api-gateway/models"
	"github.com/cloudgrid/api-gateway/query"
	"github.com/cloudgrid/api-gateway/repositories"
	"github.com/cloudgrid/api-gateway/session"
	"go.uber.org/zap"
)

// Directory is the account directory backed by the user, account and
// domain repositories. Its LoginUser is the single place where a session's
// authenticated attributes are populated.
type Directory struct {
	users    repositories.UserRepository
	accounts repositories.AccountRepository
	domains  repositories.DomainRepository
	keys     *SessionKeys
	logger   *zap.Logger
}

// NewDirectory creates a directory over the given repositories.
func NewDirectory(
	users repositories.UserRepository,
	accounts repositories.AccountRepository,
	domains repositories.DomainRepository,
	keys *SessionKeys,
	logger *zap.Logger,
) *Directory {
	return &Directory{
		users:    users,
		accounts: accounts,
		domains:  domains,
		keys:     keys,
		logger:   logger,
	}
}

// GetSystemUser returns the internal system user.
func (d *Directory) GetSystemUser(ctx context.Context) (*models.User, error) {
	return d.users.GetByID(ctx, models.SystemUserID)
}

// GetSystemAccount returns the internal system account.
func (d *Directory) GetSystemAccount(ctx context.Context) (*models.Account, error) {
	return d.accounts.GetByID(ctx, models.SystemAccountID)
}

// FetchDomainID resolves a domain-id request parameter. The second return
// is false when the value does not name an existing domain.
func (d *Directory) FetchDomainID(ctx context.Context, id string) (int64, bool) {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	domain, err := d.domains.GetByID(ctx, parsed)
	if err != nil {
		d.logger.Debug("domain id lookup failed", zap.String("domainid", id), zap.Error(err))
		return 0, false
	}
	return domain.ID, true
}

// LoginUser validates credentials against the directory and, when they are
// valid, populates the session's authenticated attributes. Every rejection
// surfaces as ErrInvalidCredentials so callers cannot distinguish an
// unknown user from a bad password.
func (d *Directory) LoginUser(ctx context.Context, sess *session.Session, username, password string, domainID *int64, domainPath, remoteAddr string, extra query.Params) error {
	domID, err := d.resolveLoginDomain(ctx, domainID, domainPath)
	if err != nil {
		d.logger.Debug("login domain not found",
			zap.String("username", username),
			zap.String("domain_path", domainPath),
			zap.Error(err))
		return ErrInvalidCredentials
	}

	user, err := d.users.GetByUsername(ctx, username, domID)
	if err != nil {
		d.logger.Debug("login user lookup failed",
			zap.String("username", username),
			zap.Int64("domain_id", domID),
			zap.Error(err))
		return ErrInvalidCredentials
	}
	if !user.IsEnabled() {
		return ErrUserDisabled
	}
	if !CheckPassword(password, user.Salt, user.Password) {
		return ErrInvalidCredentials
	}

	account, err := d.accounts.GetByID(ctx, user.AccountID)
	if err != nil {
		d.logger.Error("account lookup failed for authenticated user",
			zap.Int64("user_id", user.ID),
			zap.Int64("account_id", user.AccountID),
			zap.Error(err))
		return ErrInvalidCredentials
	}
	if !account.IsEnabled() {
		return ErrAccountDisabled
	}

	sessionKey, err := d.keys.Issue(user.ID, sess.Token())
	if err != nil {
		d.logger.Error("session key issue failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return NewDomainError(ErrorTypeInternal, "unable to issue session key", err)
	}

	sess.SetAttribute(session.AttrUserID, user.ID)
	sess.SetAttribute(session.AttrUsername, user.Username)
	sess.SetAttribute(session.AttrAccount, account.Name)
	sess.SetAttribute(session.AttrAccountObj, account)
	sess.SetAttribute(session.AttrDomainID, account.DomainID)
	sess.SetAttribute(session.AttrType, int(account.Type))
	if timezone := pickTimezone(user, extra); timezone != "" {
		sess.SetAttribute(session.AttrTimezone, timezone)
	}
	sess.SetAttribute(session.AttrSessionKey, sessionKey)

	return nil
}

// LogoutUser records the logout. The gateway owns session teardown; there
// is nothing to roll back here, so failures are log-only.
func (d *Directory) LogoutUser(ctx context.Context, userID int64) {
	d.logger.Debug("logout recorded", zap.Int64("user_id", userID))
}

func (d *Directory) resolveLoginDomain(ctx context.Context, domainID *int64, domainPath string) (int64, error) {
	if domainID != nil {
		return *domainID, nil
	}
	domain, err := d.domains.GetByPath(ctx, domainPath)
	if err != nil {
		return 0, err
	}
	return domain.ID, nil
}

// pickTimezone prefers the user profile timezone, falling back to a
// timezone supplied with the login request.
func pickTimezone(user *models.User, extra query.Params) string {
	if user.Timezone != "" {
		return user.Timezone
	}
	return extra.Get(session.AttrTimezone)
}
