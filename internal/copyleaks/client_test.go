package copyleaks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) ValidToken(context.Context) (string, error) { return string(s), nil }

// fakeProvider records the calls made against it.
type fakeProvider struct {
	mu       sync.Mutex
	logins   int
	submits  map[string]submitRequest
	exports  map[string]exportRequest
	authSeen []string
	status   int // forced status for submit/export when non-zero
}

func (fp *fakeProvider) loginCount() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.logins
}

func (fp *fakeProvider) setStatus(code int) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.status = code
}

func (fp *fakeProvider) submission(scanID string) (submitRequest, bool) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	s, ok := fp.submits[scanID]
	return s, ok
}

func (fp *fakeProvider) export(path string) (exportRequest, bool) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	e, ok := fp.exports[path]
	return e, ok
}

func (fp *fakeProvider) firstAuth() string {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if len(fp.authSeen) == 0 {
		return ""
	}
	return fp.authSeen[0]
}

func newFakeProvider(t *testing.T) (*fakeProvider, *httptest.Server) {
	t.Helper()
	fp := &fakeProvider{submits: map[string]submitRequest{}, exports: map[string]exportRequest{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var in loginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "dev@example.com" || in.Key != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fp.mu.Lock()
		fp.logins++
		fp.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			".issued":      time.Now().UTC().Format(time.RFC3339Nano),
			".expires":     time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339Nano),
		})
	})
	mux.HandleFunc("/v3/scans/submit/file/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		fp.mu.Lock()
		defer fp.mu.Unlock()
		fp.authSeen = append(fp.authSeen, r.Header.Get("Authorization"))
		if fp.status != 0 {
			w.WriteHeader(fp.status)
			_, _ = w.Write([]byte("nope"))
			return
		}
		var in submitRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		fp.submits[strings.TrimPrefix(r.URL.Path, "/v3/scans/submit/file/")] = in
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/v3/downloads/", func(w http.ResponseWriter, r *http.Request) {
		fp.mu.Lock()
		defer fp.mu.Unlock()
		if fp.status != 0 {
			w.WriteHeader(fp.status)
			return
		}
		var in exportRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		fp.exports[r.URL.Path] = in
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fp, srv
}

func newTestClient(srv *httptest.Server, sandbox bool, opts ...Option) *Client {
	cfg := Config{
		APIURL:      srv.URL + "/v3/",
		LoginURL:    srv.URL + "/login",
		Email:       "dev@example.com",
		APIKey:      "secret",
		WebhookBase: "https://app.test/api/v1/",
		Sandbox:     sandbox,
		Expiration:  1,
	}
	return New(cfg, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
}

func TestScan_RejectsShortTextWithoutNetwork(t *testing.T) {
	fp, srv := newFakeProvider(t)
	c := newTestClient(srv, true)
	for _, in := range []string{"", "a", "é"} {
		if _, err := c.Scan(context.Background(), in); !errors.Is(err, ErrTextTooShort) {
			t.Fatalf("Scan(%q) err = %v; want ErrTextTooShort", in, err)
		}
	}
	if fp.loginCount() != 0 || fp.firstAuth() != "" {
		t.Fatalf("no provider traffic expected")
	}
}

func TestScan_SubmitsPayload(t *testing.T) {
	fp, srv := newFakeProvider(t)
	c := newTestClient(srv, true)

	scanID, err := c.Scan(context.Background(), "ab")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	got, ok := fp.submission(scanID)
	if !ok {
		t.Fatalf("no submission recorded for %s", scanID)
	}
	if dec, _ := base64.StdEncoding.DecodeString(got.Base64); string(dec) != "ab" {
		t.Fatalf("base64 content = %q", dec)
	}
	if got.Filename != scanID+".txt" {
		t.Fatalf("filename = %q", got.Filename)
	}
	p := got.Properties
	if !p.Sandbox || p.Expiration != 1 {
		t.Fatalf("unexpected properties: %+v", p)
	}
	if p.Filters.MinorChangesEnabled || p.Filters.RelatedMeaningEnabled || !p.Filters.SafeSearch || p.Filters.SensitivityLevel != 1 {
		t.Fatalf("unexpected filters: %+v", p.Filters)
	}
	wantHook := "https://app.test/api/v1/webhooks/scans/" + scanID + "/{STATUS}"
	if p.Webhooks.Status != wantHook {
		t.Fatalf("status webhook = %q; want %q", p.Webhooks.Status, wantHook)
	}
	if auth := fp.firstAuth(); auth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q", auth)
	}
}

func TestScan_TokenReusedAcrossCalls(t *testing.T) {
	fp, srv := newFakeProvider(t)
	c := newTestClient(srv, false)
	var last string
	for i := 0; i < 3; i++ {
		id, err := c.Scan(context.Background(), "hello world")
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		last = id
	}
	if n := fp.loginCount(); n != 1 {
		t.Fatalf("logins = %d; want 1", n)
	}
	if sub, _ := fp.submission(last); sub.Properties.Sandbox {
		t.Fatalf("public deployment must not use sandbox")
	}
}

func TestScan_MissingCredentials(t *testing.T) {
	_, srv := newFakeProvider(t)
	c := New(Config{APIURL: srv.URL + "/v3", LoginURL: srv.URL + "/login"}, WithHTTPClient(srv.Client()))
	if _, err := c.Scan(context.Background(), "hello"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestScan_ProviderErrorSurfaced(t *testing.T) {
	fp, srv := newFakeProvider(t)
	fp.setStatus(http.StatusBadRequest)
	c := newTestClient(srv, true, WithTokenSource(staticToken("t")))

	_, err := c.Scan(context.Background(), "hello")
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != http.StatusBadRequest || pe.Op != "submit" || pe.Body != "nope" {
		t.Fatalf("expected submit ProviderError(400), got %v", err)
	}
}

func TestScan_UnauthorizedInvalidatesCachedToken(t *testing.T) {
	fp, srv := newFakeProvider(t)
	c := newTestClient(srv, true)
	if _, err := c.Scan(context.Background(), "hello"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	fp.setStatus(http.StatusUnauthorized)
	if _, err := c.Scan(context.Background(), "hello"); err == nil {
		t.Fatalf("expected 401 error")
	}
	fp.setStatus(0)
	if _, err := c.Scan(context.Background(), "hello"); err != nil {
		t.Fatalf("Scan after 401: %v", err)
	}
	if n := fp.loginCount(); n != 2 {
		t.Fatalf("a 401 should force a new login; logins = %d", n)
	}
}

func TestGetDetailedResults_Payload(t *testing.T) {
	fp, srv := newFakeProvider(t)
	c := newTestClient(srv, true, WithTokenSource(staticToken("t")))

	exportID, err := c.GetDetailedResults(context.Background(), "scan-1", "res-9")
	if err != nil {
		t.Fatalf("GetDetailedResults: %v", err)
	}
	got, ok := fp.export("/v3/downloads/scan-1/export/" + exportID)
	if !ok {
		t.Fatalf("export not recorded for %s", exportID)
	}
	if len(got.Results) != 1 || got.Results[0].ID != "res-9" || got.Results[0].Verb != "POST" ||
		got.Results[0].Endpoint != "https://app.test/api/v1/webhooks/exports/scan-1/res-9" {
		t.Fatalf("unexpected results: %+v", got.Results)
	}
	noop := "https://app.test/api/v1/webhooks/noop"
	if got.CompletionWebhook != noop || got.CrawledVersion.Endpoint != noop || got.CrawledVersion.Verb != "POST" {
		t.Fatalf("unexpected dummy endpoints: %+v", got)
	}
}

func TestProviderError_Error(t *testing.T) {
	if (&ProviderError{Op: "login", StatusCode: 500}).Error() != "copyleaks login: status 500" {
		t.Fatalf("unexpected message")
	}
	if !(&ProviderError{StatusCode: 401}).Unauthorized() {
		t.Fatalf("401 should be unauthorized")
	}
}
