package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// AdminKeyHeader carries the admin API key.
const AdminKeyHeader = "X-Admin-Key"

// HashKey returns the hex HMAC-SHA256 of key under pepper. Configuration
// stores this hash, never the key.
func HashKey(key, pepper string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// AdminAuth guards admin routes with a single API key.
type AdminAuth struct {
	hash   []byte
	pepper []byte
}

// NewAdminAuth creates an AdminAuth from the hex hash produced by HashKey.
// An empty hash disables authentication and returns nil.
func NewAdminAuth(keyHash, pepper string) (*AdminAuth, error) {
	if keyHash == "" {
		return nil, nil
	}
	hash, err := hex.DecodeString(keyHash)
	if err != nil {
		return nil, errors.Wrap(err, "decode admin key hash")
	}
	if len(hash) != sha256.Size {
		return nil, errors.Errorf("admin key hash: want %d bytes, got %d", sha256.Size, len(hash))
	}
	return &AdminAuth{hash: hash, pepper: []byte(pepper)}, nil
}

// Verify reports whether key matches the configured hash. The comparison
// takes constant time.
func (a *AdminAuth) Verify(key string) bool {
	if key == "" {
		return false
	}
	mac := hmac.New(sha256.New, a.pepper)
	mac.Write([]byte(key))
	return subtle.ConstantTimeCompare(mac.Sum(nil), a.hash) == 1
}

// Require rejects requests without a valid X-Admin-Key with 401. A nil
// AdminAuth lets every request through.
func (a *AdminAuth) Require(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Verify(r.Header.Get(AdminKeyHeader)) {
			zctx.From(r.Context()).Info("Admin request rejected",
				zap.String("path", r.URL.Path),
			)
			writeFailure(w, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
