// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header and flags replays. A scan request retried with the same key by the same client must
// return the first scan id instead of paying for a second scan; the handler
// decides how to serve the replay, this middleware only detects it.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyOptions configures key validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts the key alphabet; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Routes limits the validator to "METHOD /full/route" entries; empty
	// means every route.
	Routes []string
}

// IdempotencyLookup reports whether a non-expired result exists for
// (clientID, key). The route scope is bound by the caller. Errors are
// treated as "no replay".
type IdempotencyLookup func(ctx context.Context, clientID, key string, now time.Time) (bool, error)

// IdempotencyValidator runs ahead of the rate limiter. Outside opts.Routes,
// or without the header, it does nothing. A malformed key is rejected with
// 400. A key with a live record exempts the request from rate limiting;
// the handler serves the replay.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	scoped := make(map[string]bool, len(opts.Routes))
	for _, r := range opts.Routes {
		scoped[r] = true
	}

	return func(c *gin.Context) {
		if len(scoped) > 0 && !scoped[c.Request.Method+" "+c.FullPath()] {
			c.Next()
			return
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			if exists, err := lookup(c.Request.Context(), ClientID(c), key, time.Now().UTC()); err == nil && exists {
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
