package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/latency-workshop-app/internal/reconcile"
)

// Header names shared with the server.
const (
	headerClientID       = "X-Client-ID"
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotency-Replayed"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server answered %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server answered %d", e.StatusCode)
}

// clientIDTransport stamps every request with the caller identity, which
// the server keys rate limits and idempotency on.
type clientIDTransport struct {
	id   string
	base http.RoundTripper
}

func (t clientIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.id == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set(headerClientID, t.id)
	return t.base.RoundTrip(req)
}

// API calls the scan endpoints of the server.
type API struct {
	base     string
	clientID string
	http     *http.Client
	dialer   *websocket.Dialer
}

// NewAPI returns an API for the server rooted at base. hc is wrapped so
// every request carries clientID; it is also what stream.Client should use.
func NewAPI(base, clientID string, hc *http.Client) *API {
	if hc == nil {
		hc = &http.Client{}
	}
	rt := hc.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	wrapped := *hc
	wrapped.Transport = clientIDTransport{id: clientID, base: rt}
	return &API{
		base:     strings.TrimRight(base, "/"),
		clientID: clientID,
		http:     &wrapped,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// HTTPClient is the client every API call goes through.
func (a *API) HTTPClient() *http.Client { return a.http }

// CheckResult is the answer to a scan request.
type CheckResult struct {
	ScanID   string
	Replayed bool // served from an earlier request with the same key
}

// RequestCheck submits text for a plagiarism scan. A non-empty key makes the
// call safe to retry: the server answers a repeat with the first scan id.
func (a *API) RequestCheck(ctx context.Context, text, key string) (CheckResult, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return CheckResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/plagiarism-checks", bytes.NewReader(body))
	if err != nil {
		return CheckResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key != "" {
		req.Header.Set(headerIdempotencyKey, key)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return CheckResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CheckResult{}, decodeAPIError(resp)
	}
	var out struct {
		ScanID string `json:"scanId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CheckResult{}, fmt.Errorf("decode scan response: %w", err)
	}
	if out.ScanID == "" {
		return CheckResult{}, errors.New("server returned no scan id")
	}
	return CheckResult{ScanID: out.ScanID, Replayed: resp.Header.Get(headerReplayed) == "true"}, nil
}

// Snapshot fetches the current view of scanID.
func (a *API) Snapshot(ctx context.Context, scanID string) (reconcile.View, error) {
	var v reconcile.View
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/scans/"+url.PathEscape(scanID), nil)
	if err != nil {
		return v, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.http.Do(req)
	if err != nil {
		return v, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return v, decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("decode scan view: %w", err)
	}
	return v, nil
}

// Watch follows scanID over the WebSocket route, calling onView for every
// view, and returns the last one. The server ends the watch when the view is
// terminal or its wait runs out; the returned view tells which.
func (a *API) Watch(ctx context.Context, scanID string, onView func(reconcile.View)) (reconcile.View, error) {
	var last reconcile.View

	u, err := wsURL(a.base + "/scans/" + url.PathEscape(scanID) + "/ws")
	if err != nil {
		return last, err
	}
	h := http.Header{}
	if a.clientID != "" {
		h.Set(headerClientID, a.clientID)
	}
	conn, resp, err := a.dialer.DialContext(ctx, u, h)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return last, decodeAPIError(resp)
		}
		return last, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var v reconcile.View
		if err := conn.ReadJSON(&v); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return last, nil
			}
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			return last, fmt.Errorf("watch %s: %w", scanID, err)
		}
		log.Debug().Str("scan_id", scanID).Str("status", v.Status).Bool("terminal", v.Terminal).Msg("view")
		last = v
		if onView != nil {
			onView(v)
		}
	}
}

func wsURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if resp.Body == nil {
		return apiErr
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var env struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &env) == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
	}
	return apiErr
}
