package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudgrid/api-gateway/query"
	"github.com/cloudgrid/api-gateway/utils"
	"go.uber.org/zap"
)

// Login request parameter names.
const (
	ParamUsername = "username"
	ParamPassword = "password"
	ParamDomainID = "domainid"
	ParamDomain   = "domain"
)

// AccountDirectory resolves identities and performs the actual credential
// check. It is the single point where a session's authenticated attributes
// are populated.
type AccountDirectory interface {
	// FetchDomainID resolves a domain-id request parameter to a domain id.
	// The second return is false when no such domain exists.
	FetchDomainID(ctx context.Context, id string) (int64, bool)

	// LoginUser validates credentials and, when they are valid, populates
	// the session's authenticated attributes as a side effect. domainID is
	// nil when the caller supplied a domain path instead.
	LoginUser(ctx context.Context, sess *Session, username, password string, domainID *int64, domainPath, remoteAddr string, extra query.Params) error

	// LogoutUser records the logout of the given user.
	LogoutUser(ctx context.Context, userID int64)
}

// Manager owns the login/logout state transitions of per-client sessions.
type Manager struct {
	store     *Store
	directory AccountDirectory
	logger    *zap.Logger
}

// NewManager creates a session manager backed by the given store and
// account directory.
func NewManager(store *Store, directory AccountDirectory, logger *zap.Logger) *Manager {
	return &Manager{
		store:     store,
		directory: directory,
		logger:    logger,
	}
}

type loginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Login authenticates the credentials carried in params and returns the
// freshly established session on success. A brand-new session is always
// created; any session the client presented is invalidated first. On
// failure no session survives and no attributes are set.
func (m *Manager) Login(ctx context.Context, current *Session, params query.Params, remoteAddr string) (*Session, error) {
	username := params.Get(ParamUsername)
	password := params.Get(ParamPassword)
	if err := utils.ValidateStruct(loginRequest{Username: username, Password: password}); err != nil {
		return nil, fmt.Errorf("missing credentials: %w", err)
	}

	domainID, domainPath := m.resolveDomain(ctx, params)

	// A login always starts from a clean session, even when the client
	// already holds one.
	m.store.Invalidate(current)
	sess := m.store.Create()

	var loginErr error
	sess.Exclusive(func() {
		loginErr = m.directory.LoginUser(ctx, sess, username, password, domainID, domainPath, remoteAddr, params)
	})
	if loginErr != nil {
		m.store.Invalidate(sess)
		m.logger.Debug("login rejected",
			zap.String("username", username),
			zap.String("remote_addr", remoteAddr),
			zap.Error(loginErr))
		return nil, loginErr
	}

	m.logger.Info("user logged in",
		zap.String("username", username),
		zap.String("remote_addr", remoteAddr))
	return sess, nil
}

// Logout ends the session. A nil session is an already-logged-out state,
// not an error; logout always succeeds.
func (m *Manager) Logout(ctx context.Context, sess *Session) {
	if sess == nil {
		return
	}
	sess.Exclusive(func() {
		if userID, ok := sess.UserID(); ok {
			m.directory.LogoutUser(ctx, userID)
			m.logger.Info("user logged out", zap.Int64("user_id", userID))
		}
		m.store.Invalidate(sess)
	})
}

// resolveDomain determines the tenant domain for a login attempt. A
// resolvable domain-id parameter wins; otherwise the domain-name parameter
// becomes a path of the form "/<name>/", defaulting to the root path "/".
func (m *Manager) resolveDomain(ctx context.Context, params query.Params) (*int64, string) {
	if idStr := params.Get(ParamDomainID); idStr != "" {
		if id, ok := m.directory.FetchDomainID(ctx, idStr); ok {
			return &id, ""
		}
		m.logger.Debug("domain id not resolvable, falling back to domain path",
			zap.String("domainid", idStr))
	}
	return nil, domainPath(params.Get(ParamDomain))
}

func domainPath(name string) string {
	if name == "" {
		return "/"
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	return name
}
