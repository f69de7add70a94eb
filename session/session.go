package session

import "sync"

// Well-known session attribute names populated on a successful login.
const (
	AttrUserID     = "userid"
	AttrUsername   = "username"
	AttrAccount    = "account"
	AttrAccountObj = "accountobj"
	AttrDomainID   = "domainid"
	AttrType       = "type"
	AttrTimezone   = "timezone"
	AttrSessionKey = "sessionkey"
)

// Session is the server-held state for one client, identified by an opaque
// token. It holds named attributes in insertion order; before login and
// after logout the attribute set is empty.
//
// Attribute reads and writes are individually safe for concurrent use. The
// login/logout transition as a whole is serialized through the mutation
// lock, see Exclusive.
type Session struct {
	token string

	opMu sync.Mutex // serializes login/logout transitions per token

	mu    sync.RWMutex
	names []string
	attrs map[string]any
}

func newSession(token string) *Session {
	return &Session{
		token: token,
		attrs: make(map[string]any),
	}
}

// Token returns the opaque token identifying this session.
func (s *Session) Token() string {
	return s.token
}

// SetAttribute stores value under name, keeping first-set insertion order.
func (s *Session) SetAttribute(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attrs[name]; !ok {
		s.names = append(s.names, name)
	}
	s.attrs[name] = value
}

// Attribute returns the value stored under name, or nil when absent.
func (s *Session) Attribute(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attrs[name]
}

// AttributeNames returns the attribute names in insertion order.
func (s *Session) AttributeNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// UserID returns the authenticated user id attribute, and whether the
// session carries one.
func (s *Session) UserID() (int64, bool) {
	id, ok := s.Attribute(AttrUserID).(int64)
	return id, ok
}

// Exclusive runs fn while holding the session's mutation lock. Concurrent
// login/logout requests carrying the same token must never observe a
// half-updated attribute set.
func (s *Session) Exclusive(fn func()) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	fn()
}

// clear removes every attribute.
func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = nil
	s.attrs = make(map[string]any)
}
