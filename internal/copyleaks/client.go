// Package copyleaks talks to the Copyleaks plagiarism API: it submits texts
// for scanning, asks for detailed result exports and manages the bearer
// token both calls need.
//
// Results never come back on the submitting request. The provider calls the
// status webhook when a scan finishes and the export webhook when a requested
// export is ready; see the payload types in webhook.go.
package copyleaks

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MinTextLength is the shortest text, in characters, that Scan accepts.
const MinTextLength = 2

// StatusPlaceholder is substituted by the provider with the scan status
// ("completed", "error", "creditsChecked", "indexed") when it calls back.
const StatusPlaceholder = "{STATUS}"

// Config configures a Client.
type Config struct {
	APIURL      string // e.g. https://api.copyleaks.com/v3
	LoginURL    string // e.g. https://id.copyleaks.com/v3/account/login/api
	Email       string
	APIKey      string
	WebhookBase string // absolute URL prefix the webhook routes are mounted under
	Sandbox     bool   // local deployments scan in sandbox mode
	Expiration  int    // hours the provider keeps the scan
}

// Client is a Copyleaks API client. Create one with New.
type Client struct {
	cfg    Config
	http   *http.Client
	tokens TokenSource
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource replaces the default TokenCache.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New returns a Client. Unless WithTokenSource is given, tokens come from a
// TokenCache that logs in with cfg.Email and cfg.APIKey.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Expiration < 1 {
		cfg.Expiration = 1
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.WebhookBase = strings.TrimRight(cfg.WebhookBase, "/")
	c := &Client{cfg: cfg, http: http.DefaultClient}
	for _, o := range opts {
		o(c)
	}
	if c.tokens == nil {
		c.tokens = NewTokenCache(c.Login)
	}
	return c
}

// StatusWebhookURL is the status callback registered for scanID.
func (c *Client) StatusWebhookURL(scanID string) string {
	return c.cfg.WebhookBase + "/webhooks/scans/" + scanID + "/" + StatusPlaceholder
}

// ExportWebhookURL is the export callback registered for one result.
func (c *Client) ExportWebhookURL(scanID, resultID string) string {
	return c.cfg.WebhookBase + "/webhooks/exports/" + scanID + "/" + resultID
}

// NoopWebhookURL receives the callbacks the export API requires but this
// application ignores.
func (c *Client) NoopWebhookURL() string {
	return c.cfg.WebhookBase + "/webhooks/noop"
}

type loginRequest struct {
	Email string `json:"email"`
	Key   string `json:"key"`
}

// Login exchanges the configured email and API key for a token.
func (c *Client) Login(ctx context.Context) (*AccessToken, error) {
	if strings.TrimSpace(c.cfg.Email) == "" || strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, ErrMissingCredentials
	}
	var tok AccessToken
	if err := c.do(ctx, "login", http.MethodPost, c.cfg.LoginURL, "", loginRequest{Email: c.cfg.Email, Key: c.cfg.APIKey}, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, &ProviderError{Op: "login", StatusCode: http.StatusOK, Body: "empty access_token"}
	}
	return &tok, nil
}

type submitFilters struct {
	MinorChangesEnabled   bool `json:"minorChangesEnabled"`
	RelatedMeaningEnabled bool `json:"relatedMeaningEnabled"`
	SafeSearch            bool `json:"safeSearch"`
	SensitivityLevel      int  `json:"sensitivityLevel"`
}

type submitWebhooks struct {
	Status string `json:"status"`
}

type submitProperties struct {
	Sandbox    bool           `json:"sandbox"`
	Filters    submitFilters  `json:"filters"`
	Expiration int            `json:"expiration"`
	Webhooks   submitWebhooks `json:"webhooks"`
}

type submitRequest struct {
	Base64     string           `json:"base64"`
	Filename   string           `json:"filename"`
	Properties submitProperties `json:"properties"`
}

// Scan submits text for a plagiarism scan and returns the scan id the
// webhooks will be keyed by. The id is generated here so the status webhook
// URL can carry it. Failures are logged and returned; there is no retry.
func (c *Client) Scan(ctx context.Context, text string) (string, error) {
	if utf8.RuneCountInString(text) < MinTextLength {
		return "", ErrTextTooShort
	}
	scanID := uuid.NewString()

	ctx, span := otel.Tracer("copyleaks/Client").Start(ctx, "Scan",
		trace.WithAttributes(attribute.String("scan.id", scanID), attribute.Bool("scan.sandbox", c.cfg.Sandbox)))
	defer span.End()

	body := submitRequest{
		Base64:   base64.StdEncoding.EncodeToString([]byte(text)),
		Filename: scanID + ".txt",
		Properties: submitProperties{
			Sandbox: c.cfg.Sandbox,
			Filters: submitFilters{
				MinorChangesEnabled:   false,
				RelatedMeaningEnabled: false,
				SafeSearch:            true,
				SensitivityLevel:      1,
			},
			Expiration: c.cfg.Expiration,
			Webhooks:   submitWebhooks{Status: c.StatusWebhookURL(scanID)},
		},
	}
	url := c.cfg.APIURL + "/scans/submit/file/" + scanID
	if err := c.authorized(ctx, "submit", http.MethodPut, url, body, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		log.Error().Err(err).Str("scan_id", scanID).Msg("copyleaks submit failed")
		return "", err
	}
	return scanID, nil
}

type exportResult struct {
	ID       string `json:"id"`
	Verb     string `json:"verb"`
	Endpoint string `json:"endpoint"`
}

type exportEndpoint struct {
	Endpoint string `json:"endpoint"`
	Verb     string `json:"verb"`
}

type exportRequest struct {
	CompletionWebhook string         `json:"completionWebhook"`
	Results           []exportResult `json:"results"`
	CrawledVersion    exportEndpoint `json:"crawledVersion"`
}

// GetDetailedResults asks the provider to export the character offsets of
// resultID to the export webhook. It returns the new export id.
func (c *Client) GetDetailedResults(ctx context.Context, scanID, resultID string) (string, error) {
	exportID := uuid.NewString()

	ctx, span := otel.Tracer("copyleaks/Client").Start(ctx, "GetDetailedResults",
		trace.WithAttributes(
			attribute.String("scan.id", scanID),
			attribute.String("result.id", resultID),
			attribute.String("export.id", exportID),
		))
	defer span.End()

	body := exportRequest{
		CompletionWebhook: c.NoopWebhookURL(),
		Results: []exportResult{{
			ID:       resultID,
			Verb:     http.MethodPost,
			Endpoint: c.ExportWebhookURL(scanID, resultID),
		}},
		CrawledVersion: exportEndpoint{Endpoint: c.NoopWebhookURL(), Verb: http.MethodPost},
	}
	url := c.cfg.APIURL + "/downloads/" + scanID + "/export/" + exportID
	if err := c.authorized(ctx, "export", http.MethodPost, url, body, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "export failed")
		log.Error().Err(err).Str("scan_id", scanID).Str("result_id", resultID).Msg("copyleaks export failed")
		return "", err
	}
	return exportID, nil
}

// authorized performs a call with a bearer token. A 401 drops the cached
// token so the next call logs in again.
func (c *Client) authorized(ctx context.Context, op, method, url string, in, out any) error {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return err
	}
	err = c.do(ctx, op, method, url, token, in, out)
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Unauthorized() {
		if tc, ok := c.tokens.(interface{ Invalidate() }); ok {
			tc.Invalidate()
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, op, method, url, token string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		callsTotal.WithLabelValues(op, "transport_error").Inc()
		return fmt.Errorf("copyleaks %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		callsTotal.WithLabelValues(op, "rejected").Inc()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return &ProviderError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	callsTotal.WithLabelValues(op, "ok").Inc()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("copyleaks %s: decode response: %w", op, err)
	}
	return nil
}
