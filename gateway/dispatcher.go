package gateway

import (
	"bytes"
	"context"
	"crypto/subtle"
	"net"
	"net/http"

	"github.com/cloudgrid/api-gateway/models"
	"github.com/cloudgrid/api-gateway/query"
	"github.com/cloudgrid/api-gateway/response"
	"github.com/cloudgrid/api-gateway/session"
	"go.uber.org/zap"
)

// Request parameter and command names owned by the gateway itself.
const (
	ParamCommand    = "command"
	ParamResponse   = "response"
	ParamSessionKey = "sessionkey"

	CommandLogin  = "login"
	CommandLogout = "logout"
)

// SessionCookieName carries the opaque session token.
const SessionCookieName = "sessionid"

// RequestVerifier validates a stateless signed request. A false return
// covers both "invalid" and "cannot verify"; there is no error path.
type RequestVerifier interface {
	Verify(ctx context.Context, params query.Params, contextUserID int64) bool
}

// CommandDispatcher executes one authenticated command, writing its own
// payload into out and returning the HTTP status to emit (0 means OK). The
// gateway never inspects or alters the payload.
type CommandDispatcher interface {
	Handle(ctx context.Context, params query.Params, remoteAddr string, out *bytes.Buffer) int
}

// SessionKeyValidator checks the signature and expiry of a session key
// presented with a session-authenticated command.
type SessionKeyValidator interface {
	Validate(key string) error
}

// SystemDirectory resolves the internal system identity that login and
// logout processing runs under.
type SystemDirectory interface {
	GetSystemUser(ctx context.Context) (*models.User, error)
	GetSystemAccount(ctx context.Context) (*models.Account, error)
}

// Dispatcher is the top-level request orchestrator: decode, classify,
// authenticate, delegate. Whatever happens inside, it always emits an HTTP
// status and a non-empty body.
type Dispatcher struct {
	sessions  *session.Manager
	store     *session.Store
	verifier  RequestVerifier
	commands  CommandDispatcher
	keys      SessionKeyValidator
	directory SystemDirectory
	logger    *zap.Logger
}

// NewDispatcher wires the dispatcher's collaborators explicitly; there are
// no ambient singletons to reach for.
func NewDispatcher(
	sessions *session.Manager,
	store *session.Store,
	verifier RequestVerifier,
	commands CommandDispatcher,
	keys SessionKeyValidator,
	directory SystemDirectory,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		sessions:  sessions,
		store:     store,
		verifier:  verifier,
		commands:  commands,
		keys:      keys,
		directory: directory,
		logger:    logger,
	}
}

// Process handles one inbound API request end to end.
func (d *Dispatcher) Process(w http.ResponseWriter, r *http.Request) {
	reply := newReplyWriter(w)
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("panic while processing api request",
				zap.Any("panic", p),
				zap.String("path", r.URL.Path))
			reply.write(http.StatusInternalServerError,
				response.RenderError(response.FormatJSON, http.StatusInternalServerError, "internal error"),
				response.ContentType(response.FormatJSON))
		}
	}()

	_ = r.ParseForm()
	params := query.Decode(r.URL.RawQuery)
	params.Merge(r.PostForm)

	format := params.Get(ParamResponse)
	addr := remoteAddr(r)
	sess := d.sessionFor(r)

	switch params.Get(ParamCommand) {
	case CommandLogin:
		d.processLogin(r.Context(), reply, sess, params, format, addr)
	case CommandLogout:
		d.processLogout(r.Context(), reply, sess, format)
	default:
		d.processCommand(r.Context(), reply, sess, params, format, addr)
	}
}

func (d *Dispatcher) processLogin(ctx context.Context, reply *replyWriter, current *session.Session, params query.Params, format, addr string) {
	ctx = d.systemContext(ctx)

	sess, err := d.sessions.Login(ctx, current, params, addr)
	if err != nil {
		reply.expireSessionCookie()
		reply.write(http.StatusUnauthorized,
			response.RenderError(format, http.StatusUnauthorized, "failed to authenticate user, check username and password"),
			response.ContentType(format))
		return
	}

	body, err := response.RenderLoginSuccess(sess, format)
	if err != nil {
		d.logger.Error("login response rendering failed", zap.Error(err))
		d.sessions.Logout(ctx, sess)
		reply.expireSessionCookie()
		reply.write(http.StatusInternalServerError,
			response.RenderError(format, http.StatusInternalServerError, "internal error"),
			response.ContentType(format))
		return
	}

	reply.setSessionCookie(sess.Token())
	reply.write(http.StatusOK, body, response.ContentType(format))
}

// processLogout always succeeds: a missing session is an already-logged-out
// state, not an error.
func (d *Dispatcher) processLogout(ctx context.Context, reply *replyWriter, sess *session.Session, format string) {
	ctx = d.systemContext(ctx)
	d.sessions.Logout(ctx, sess)
	reply.expireSessionCookie()
	reply.write(http.StatusOK, response.RenderSuccess(format, "logoutresponse"), response.ContentType(format))
}

func (d *Dispatcher) processCommand(ctx context.Context, reply *replyWriter, sess *session.Session, params query.Params, format, addr string) {
	contextUserID := int64(0)
	if sess != nil {
		userID, ok := sess.UserID()
		if ok {
			// A session-authenticated command must present the session key
			// issued at login. A mismatch burns the session.
			if !d.checkSessionKey(sess, params.Get(ParamSessionKey)) {
				d.store.Invalidate(sess)
				reply.expireSessionCookie()
				reply.write(http.StatusUnauthorized,
					response.RenderError(format, http.StatusUnauthorized, "unable to verify user credentials"),
					response.ContentType(format))
				return
			}
			contextUserID = userID
		}
	}

	if !d.verifier.Verify(ctx, params, contextUserID) {
		reply.write(http.StatusUnauthorized,
			response.RenderError(format, http.StatusUnauthorized, "unable to verify user credentials and/or request signature"),
			response.ContentType(format))
		return
	}

	var out bytes.Buffer
	status := d.commands.Handle(ctx, params, addr, &out)
	if status == 0 {
		status = http.StatusOK
	}
	body := out.Bytes()
	if len(body) == 0 {
		body = response.RenderSuccess(format, "commandresponse")
	}
	reply.write(status, body, response.ContentType(format))
}

func (d *Dispatcher) checkSessionKey(sess *session.Session, presented string) bool {
	stored, _ := sess.Attribute(session.AttrSessionKey).(string)
	if presented == "" || stored == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) != 1 {
		return false
	}
	return d.keys.Validate(presented) == nil
}

// systemContext registers the internal system identity for login/logout
// processing. Lookup failures downgrade to an anonymous context instead of
// failing the request.
func (d *Dispatcher) systemContext(ctx context.Context) context.Context {
	user, err := d.directory.GetSystemUser(ctx)
	if err != nil {
		d.logger.Warn("system user lookup failed", zap.Error(err))
		return ctx
	}
	account, err := d.directory.GetSystemAccount(ctx)
	if err != nil {
		d.logger.Warn("system account lookup failed", zap.Error(err))
		return ctx
	}
	return WithCallContext(ctx, &CallContext{User: user, Account: account})
}

func (d *Dispatcher) sessionFor(r *http.Request) *session.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	return d.store.Lookup(cookie.Value)
}

func remoteAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// replyWriter guarantees exactly one status/body pair reaches the client,
// even when a panic fires after a reply was already written.
type replyWriter struct {
	w     http.ResponseWriter
	wrote bool
}

func newReplyWriter(w http.ResponseWriter) *replyWriter {
	return &replyWriter{w: w}
}

func (rw *replyWriter) write(status int, body []byte, contentType string) {
	if rw.wrote {
		return
	}
	rw.wrote = true
	rw.w.Header().Set("Content-Type", contentType)
	rw.w.WriteHeader(status)
	_, _ = rw.w.Write(body)
}

func (rw *replyWriter) setSessionCookie(token string) {
	http.SetCookie(rw.w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (rw *replyWriter) expireSessionCookie() {
	http.SetCookie(rw.w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
