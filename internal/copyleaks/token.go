package copyleaks

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// RefreshMargin is how long before its expiry a token stops being used.
const RefreshMargin = 5 * time.Minute

// loginTimeout bounds a shared login, which outlives the caller that started it.
const loginTimeout = 30 * time.Second

const tokenKey = "access_token"

// AccessToken is the bearer credential returned by the login endpoint.
type AccessToken struct {
	AccessToken string    `json:"access_token"`
	Issued      time.Time `json:".issued"`
	Expires     time.Time `json:".expires"`
}

// Valid reports whether the token is usable at now.
func (t *AccessToken) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Add(RefreshMargin).Before(t.Expires)
}

// TokenSource hands out a bearer token that is valid right now.
type TokenSource interface {
	ValidToken(ctx context.Context) (string, error)
}

// LoginFunc obtains a fresh token from the provider.
type LoginFunc func(ctx context.Context) (*AccessToken, error)

// TokenCache holds at most one token per process. The cache entry expires
// RefreshMargin before the token does; a token that fails verification is
// replaced by a new login. Concurrent callers that all miss share a single
// login, which is not cancelled when the caller that started it gives up.
type TokenCache struct {
	store  *gocache.Cache
	group  singleflight.Group
	login  LoginFunc
	now    func() time.Time
	logins atomic.Int64
}

// NewTokenCache returns a TokenCache that logs in through login.
func NewTokenCache(login LoginFunc) *TokenCache {
	return &TokenCache{
		store: gocache.New(gocache.NoExpiration, 10*time.Minute),
		login: login,
		now:   time.Now,
	}
}

// ValidToken returns the cached token if it still verifies, otherwise logs in.
func (c *TokenCache) ValidToken(ctx context.Context) (string, error) {
	if v, ok := c.store.Get(tokenKey); ok {
		if tok := v.(*AccessToken); tok.Valid(c.now()) {
			return tok.AccessToken, nil
		}
	}

	ch := c.group.DoChan(tokenKey, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loginTimeout)
		defer cancel()
		tok, err := c.login(lctx)
		if err != nil {
			return nil, err
		}
		c.logins.Add(1)
		loginsTotal.Inc()
		if ttl := tok.Expires.Sub(c.now()) - RefreshMargin; ttl > 0 {
			c.store.Set(tokenKey, tok, ttl)
		} else {
			c.store.Delete(tokenKey)
		}
		return tok, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(*AccessToken).AccessToken, nil
	}
}

// Invalidate drops the cached token, e.g. after the provider answered 401.
func (c *TokenCache) Invalidate() { c.store.Delete(tokenKey) }

// Logins returns how many successful logins this cache has performed.
func (c *TokenCache) Logins() int64 { return c.logins.Load() }
