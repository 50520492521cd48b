package copyleaks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAccessToken_Valid(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		tok  *AccessToken
		want bool
	}{
		{"nil", nil, false},
		{"empty", &AccessToken{Expires: now.Add(time.Hour)}, false},
		{"fresh", &AccessToken{AccessToken: "t", Expires: now.Add(time.Hour)}, true},
		{"inside margin", &AccessToken{AccessToken: "t", Expires: now.Add(4 * time.Minute)}, false},
		{"expired", &AccessToken{AccessToken: "t", Expires: now.Add(-time.Minute)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tok.Valid(now); got != tc.want {
				t.Fatalf("Valid() = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestTokenCache_ValidTokenReused(t *testing.T) {
	var calls atomic.Int32
	tc := NewTokenCache(func(context.Context) (*AccessToken, error) {
		calls.Add(1)
		return &AccessToken{AccessToken: "tok", Expires: time.Now().Add(time.Hour)}, nil
	})

	for i := 0; i < 3; i++ {
		got, err := tc.ValidToken(context.Background())
		if err != nil || got != "tok" {
			t.Fatalf("ValidToken = %q, %v", got, err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("still-valid token should not trigger logins; logins = %d", calls.Load())
	}
	if tc.Logins() != 1 {
		t.Fatalf("Logins() = %d; want 1", tc.Logins())
	}
}

func TestTokenCache_ExpiringTokenLogsInEachSequentialCall(t *testing.T) {
	var calls atomic.Int32
	tc := NewTokenCache(func(context.Context) (*AccessToken, error) {
		calls.Add(1)
		// Inside the refresh margin: never cached.
		return &AccessToken{AccessToken: "short", Expires: time.Now().Add(time.Minute)}, nil
	})

	for i := 1; i <= 2; i++ {
		if _, err := tc.ValidToken(context.Background()); err != nil {
			t.Fatalf("ValidToken: %v", err)
		}
		if int(calls.Load()) != i {
			t.Fatalf("after call %d logins = %d; want %d", i, calls.Load(), i)
		}
	}
}

func TestTokenCache_ExpiredByClockTriggersLogin(t *testing.T) {
	var calls atomic.Int32
	tc := NewTokenCache(func(context.Context) (*AccessToken, error) {
		calls.Add(1)
		return &AccessToken{AccessToken: "tok", Expires: time.Now().Add(time.Hour)}, nil
	})
	if _, err := tc.ValidToken(context.Background()); err != nil {
		t.Fatalf("ValidToken: %v", err)
	}
	// Move the verification clock past the token's expiry.
	tc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := tc.ValidToken(context.Background()); err != nil {
		t.Fatalf("ValidToken: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("logins = %d; want 2", calls.Load())
	}
}

func TestTokenCache_ConcurrentMissesShareOneLogin(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	tc := NewTokenCache(func(context.Context) (*AccessToken, error) {
		calls.Add(1)
		<-release
		return &AccessToken{AccessToken: "tok", Expires: time.Now().Add(time.Hour)}, nil
	})

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tc.ValidToken(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("ValidToken: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("concurrent misses should collapse into one login; got %d", calls.Load())
	}
}

func TestTokenCache_LoginErrorAndInvalidate(t *testing.T) {
	fail := true
	tc := NewTokenCache(func(context.Context) (*AccessToken, error) {
		if fail {
			return nil, ErrMissingCredentials
		}
		return &AccessToken{AccessToken: "tok", Expires: time.Now().Add(time.Hour)}, nil
	})
	if _, err := tc.ValidToken(context.Background()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	fail = false
	if _, err := tc.ValidToken(context.Background()); err != nil {
		t.Fatalf("ValidToken: %v", err)
	}
	tc.Invalidate()
	if _, err := tc.ValidToken(context.Background()); err != nil {
		t.Fatalf("ValidToken after Invalidate: %v", err)
	}
	if tc.Logins() != 2 {
		t.Fatalf("Logins() = %d; want 2", tc.Logins())
	}
}

func TestTokenCache_SharedLoginSurvivesFirstCallerCancel(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	tc := NewTokenCache(func(ctx context.Context) (*AccessToken, error) {
		calls.Add(1)
		close(started)
		select {
		case <-release:
			return &AccessToken{AccessToken: "tok", Expires: time.Now().Add(time.Hour)}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := tc.ValidToken(firstCtx)
		firstErr <- err
	}()
	<-started

	type result struct {
		tok string
		err error
	}
	second := make(chan result, 1)
	go func() {
		tok, err := tc.ValidToken(context.Background())
		second <- result{tok, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("first caller err = %v; want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first caller did not return after cancel")
	}

	close(release)
	select {
	case r := <-second:
		if r.err != nil || r.tok != "tok" {
			t.Fatalf("waiter got %q, %v", r.tok, r.err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter did not get a token")
	}
	if calls.Load() != 1 {
		t.Fatalf("logins = %d; want 1", calls.Load())
	}
}
