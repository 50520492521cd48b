package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GenerationIDHeader carries the id of the generation being streamed.
const GenerationIDHeader = "X-Generation-ID"

// GenerationRequest is the body of POST /generations. Prompt wins when set;
// otherwise the server builds the prompt from Topic and Audience.
type GenerationRequest struct {
	Prompt   string `json:"prompt,omitempty"`
	Topic    string `json:"topic,omitempty"`
	Audience string `json:"audience,omitempty"`
}

// StreamError reports a non-2xx answer to the initial generation request.
type StreamError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("generation request failed: %s: %s", e.Status, e.Message)
	}
	return "generation request failed: " + e.Status
}

// Result is what Generate returns once the stream has ended.
type Result struct {
	GenerationID string
	Final        Update
}

// Client opens generation streams against the server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the API rooted at baseURL
// (e.g. "http://localhost:8080/api/v1"). A nil hc uses http.DefaultClient.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Generate posts req and drives a Consumer over the chunked response,
// calling onUpdate as drafts arrive. A non-2xx status aborts at once with a
// *StreamError. There is no retry.
func (c *Client) Generate(ctx context.Context, req GenerationRequest, onUpdate func(Update)) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StreamError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(resp.Body),
		}
	}

	final, err := NewConsumer(onUpdate).Consume(ctx, resp.Body)
	if err != nil {
		return nil, err
	}
	return &Result{GenerationID: resp.Header.Get(GenerationIDHeader), Final: final}, nil
}

// errorMessage pulls "message" out of a JSON error envelope, if any.
func errorMessage(r io.Reader) string {
	var env struct {
		Message string `json:"message"`
	}
	b, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	if json.Unmarshal(b, &env) == nil {
		return env.Message
	}
	return ""
}
