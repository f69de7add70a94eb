package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/cloudgrid/api-gateway/query"
	"go.uber.org/zap"
)

// CommandHandler executes one named command, writing its payload into out
// and returning the HTTP status to emit (0 means OK).
type CommandHandler func(ctx context.Context, params query.Params, out *bytes.Buffer) int

// CommandRegistry dispatches authenticated commands to registered
// handlers. It owns the response payload and status of every command it
// runs; the gateway passes both through untouched.
type CommandRegistry struct {
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[string]CommandHandler
}

// NewCommandRegistry creates an empty command registry.
func NewCommandRegistry(logger *zap.Logger) *CommandRegistry {
	return &CommandRegistry{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// Register installs a handler under a command name, replacing any previous
// one.
func (r *CommandRegistry) Register(name string, handler CommandHandler) {
	r.mu.Lock()
	r.handlers[name] = handler
	r.mu.Unlock()
	r.logger.Debug("command registered", zap.String("command", name))
}

// Handle executes the command named in params. Unknown commands produce
// their own error body and status; they are not the gateway's concern.
func (r *CommandRegistry) Handle(ctx context.Context, params query.Params, remoteAddr string, out *bytes.Buffer) int {
	name := params.Get("command")

	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("unknown command",
			zap.String("command", name),
			zap.String("remote_addr", remoteAddr))
		fmt.Fprintf(out, `{"errorresponse":{"errorcode":%d,"errortext":"The given command does not exist"}}`, http.StatusBadRequest)
		return http.StatusBadRequest
	}

	status := handler(ctx, params, out)
	if status == 0 {
		status = http.StatusOK
	}
	r.logger.Debug("command handled",
		zap.String("command", name),
		zap.String("remote_addr", remoteAddr),
		zap.Int("status", status))
	return status
}
