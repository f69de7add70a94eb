package session

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudgrid/api-gateway/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errBadCredentials = errors.New("invalid username or password")

// MockDirectory is a mock implementation of AccountDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FetchDomainID(ctx context.Context, id string) (int64, bool) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Bool(1)
}

func (m *MockDirectory) LoginUser(ctx context.Context, sess *Session, username, password string, domainID *int64, domainPath, remoteAddr string, extra query.Params) error {
	args := m.Called(ctx, sess, username, password, domainID, domainPath, remoteAddr, extra)
	return args.Error(0)
}

func (m *MockDirectory) LogoutUser(ctx context.Context, userID int64) {
	m.Called(ctx, userID)
}

func loginParams() query.Params {
	return query.Params{
		ParamUsername: {"TEST"},
		ParamPassword: {"TEST-PWD"},
		ParamDomainID: {"42"},
		ParamDomain:   {"TEST-DOMAIN"},
	}
}

func TestLoginUnresolvableDomainIDFallsBackToPath(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	directory.On("FetchDomainID", mock.Anything, "42").Return(int64(0), false)
	directory.On("LoginUser", mock.Anything, mock.Anything, "TEST", "TEST-PWD",
		(*int64)(nil), "/TEST-DOMAIN/", "127.0.0.1", mock.Anything).
		Run(func(args mock.Arguments) {
			sess := args.Get(1).(*Session)
			sess.SetAttribute(AttrUserID, int64(1))
		}).
		Return(nil)

	sess, err := manager.Login(context.Background(), nil, loginParams(), "127.0.0.1")

	require.NoError(t, err)
	require.NotNil(t, sess)
	userID, ok := sess.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(1), userID)
	directory.AssertExpectations(t)
}

func TestLoginResolvableDomainIDWins(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	directory.On("FetchDomainID", mock.Anything, "42").Return(int64(42), true)
	directory.On("LoginUser", mock.Anything, mock.Anything, "TEST", "TEST-PWD",
		mock.MatchedBy(func(id *int64) bool { return id != nil && *id == 42 }),
		"", "127.0.0.1", mock.Anything).
		Return(nil)

	_, err := manager.Login(context.Background(), nil, loginParams(), "127.0.0.1")

	require.NoError(t, err)
	directory.AssertExpectations(t)
}

func TestLoginDefaultDomainIsRootPath(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	directory.On("LoginUser", mock.Anything, mock.Anything, "TEST", "TEST-PWD",
		(*int64)(nil), "/", "10.0.0.5", mock.Anything).
		Return(nil)

	params := query.Params{
		ParamUsername: {"TEST"},
		ParamPassword: {"TEST-PWD"},
	}
	_, err := manager.Login(context.Background(), nil, params, "10.0.0.5")

	require.NoError(t, err)
	directory.AssertExpectations(t)
}

func TestLoginForcesFreshSession(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	stale := store.Create()
	stale.SetAttribute("leftover", "value")

	directory.On("FetchDomainID", mock.Anything, "42").Return(int64(0), false)
	directory.On("LoginUser", mock.Anything, mock.Anything, "TEST", "TEST-PWD",
		(*int64)(nil), "/TEST-DOMAIN/", "127.0.0.1", mock.Anything).
		Return(nil)

	sess, err := manager.Login(context.Background(), stale, loginParams(), "127.0.0.1")

	require.NoError(t, err)
	assert.NotEqual(t, stale.Token(), sess.Token())
	assert.Nil(t, store.Lookup(stale.Token()))
	assert.Nil(t, sess.Attribute("leftover"))
	assert.Equal(t, 1, store.Len())
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	directory.On("FetchDomainID", mock.Anything, "42").Return(int64(0), false)
	directory.On("LoginUser", mock.Anything, mock.Anything, "TEST", "TEST-PWD",
		(*int64)(nil), "/TEST-DOMAIN/", "127.0.0.1", mock.Anything).
		Return(errBadCredentials)

	sess, err := manager.Login(context.Background(), nil, loginParams(), "127.0.0.1")

	assert.ErrorIs(t, err, errBadCredentials)
	assert.Nil(t, sess)
	assert.Equal(t, 0, store.Len())
}

func TestLoginMissingCredentialsNeverReachesDirectory(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	params := query.Params{ParamUsername: {"TEST"}}
	sess, err := manager.Login(context.Background(), nil, params, "127.0.0.1")

	assert.Error(t, err)
	assert.Nil(t, sess)
	directory.AssertNotCalled(t, "LoginUser",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogoutInvalidatesSessionAndRecordsOnce(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	sess := store.Create()
	sess.SetAttribute(AttrUserID, int64(1))

	directory.On("LogoutUser", mock.Anything, int64(1)).Once()

	manager.Logout(context.Background(), sess)

	assert.Nil(t, store.Lookup(sess.Token()))
	assert.Empty(t, sess.AttributeNames())
	directory.AssertExpectations(t)
}

func TestLogoutAnonymousSessionSkipsDirectory(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	sess := store.Create()
	manager.Logout(context.Background(), sess)

	assert.Nil(t, store.Lookup(sess.Token()))
	directory.AssertNotCalled(t, "LogoutUser", mock.Anything, mock.Anything)
}

func TestLogoutNilSessionIsNoOp(t *testing.T) {
	directory := new(MockDirectory)
	store := NewStore(zap.NewNop())
	manager := NewManager(store, directory, zap.NewNop())

	assert.NotPanics(t, func() { manager.Logout(context.Background(), nil) })
	directory.AssertNotCalled(t, "LogoutUser", mock.Anything, mock.Anything)
}

func TestDomainPathNormalization(t *testing.T) {
	cases := map[string]string{
		"":             "/",
		"TEST-DOMAIN":  "/TEST-DOMAIN/",
		"/sub":         "/sub/",
		"sub/":         "/sub/",
		"/root/child/": "/root/child/",
	}
	for name, want := range cases {
		assert.Equal(t, want, domainPath(name), "domainPath(%q)", name)
	}
}
