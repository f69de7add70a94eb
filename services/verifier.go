package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"sort"
	"strings"
	"time"

	"github.com/cloudgrid/api-gateway/query"
	"github.com/cloudgrid/api-gateway/repositories"
	"go.uber.org/zap"
)

// Request signature parameter names.
const (
	ParamAPIKey           = "apikey"
	ParamSignature        = "signature"
	ParamSignatureVersion = "signatureversion"
	ParamExpires          = "expires"
)

// signatureVersionExpiring marks requests carrying an expiry timestamp.
const signatureVersionExpiring = "3"

// SignatureVerifier validates stateless signed requests: an HMAC-SHA1
// digest over the canonicalized parameters, keyed by the secret of the API
// key named in the request. Every failure mode, including lookup errors,
// is a plain reject.
type SignatureVerifier struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewSignatureVerifier creates a verifier resolving secrets through the
// user repository.
func NewSignatureVerifier(users repositories.UserRepository, logger *zap.Logger) *SignatureVerifier {
	return &SignatureVerifier{
		users:  users,
		logger: logger,
	}
}

// Verify checks the request signature. contextUserID is the id of an
// already session-authenticated caller, or zero for anonymous requests; it
// is informational for audit logging only.
func (v *SignatureVerifier) Verify(ctx context.Context, params query.Params, contextUserID int64) bool {
	apiKey := params.Get(ParamAPIKey)
	signature := params.Get(ParamSignature)
	if apiKey == "" || signature == "" {
		return false
	}

	if params.Get(ParamSignatureVersion) == signatureVersionExpiring {
		expires, err := time.Parse(time.RFC3339, params.Get(ParamExpires))
		if err != nil || time.Now().After(expires) {
			v.logger.Debug("signed request expired or carries bad expiry",
				zap.String("apikey", apiKey),
				zap.String("expires", params.Get(ParamExpires)))
			return false
		}
	}

	user, err := v.users.GetByAPIKey(ctx, apiKey)
	if err != nil {
		v.logger.Debug("api key lookup failed", zap.String("apikey", apiKey), zap.Error(err))
		return false
	}
	if !user.IsEnabled() || user.SecretKey == "" {
		return false
	}

	expected := computeSignature(params, user.SecretKey)
	ok := subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
	if !ok {
		v.logger.Debug("request signature mismatch",
			zap.String("apikey", apiKey),
			zap.Int64("context_user_id", contextUserID))
	}
	return ok
}

// computeSignature builds the canonical "name=value" string, lowercased and
// sorted by name, and signs it with HMAC-SHA1.
func computeSignature(params query.Params, secret string) string {
	pairs := make([]string, 0, len(params))
	for name, values := range params {
		if name == ParamSignature || len(values) == 0 {
			continue
		}
		pairs = append(pairs, strings.ToLower(name+"="+values[0]))
	}
	sort.Strings(pairs)

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
