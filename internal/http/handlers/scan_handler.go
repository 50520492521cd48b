// Scan HTTP handlers.
//
// This file exposes the client side of the plagiarism workflow:
//   - POST /plagiarism-checks          (submit a text, returns its scan id)
//   - GET  /scans/{scanId}             (current view)
//   - GET  /scans/{scanId}/events      (views as server-sent events)
//   - GET  /scans/{scanId}/ws          (views over a WebSocket)
//
// Results reach the server through the webhooks; the streaming endpoints
// push a fresh view each time one lands and close once the view is terminal.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tbourn/latency-workshop-app/internal/copyleaks"
	"github.com/tbourn/latency-workshop-app/internal/http/middleware"
	"github.com/tbourn/latency-workshop-app/internal/reconcile"
)

// HeaderIdempotencyReplayed marks a response served from an earlier request
// with the same Idempotency-Key.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// PlagiarismCheckRequest is the JSON payload for requesting a scan.
type PlagiarismCheckRequest struct {
	Text string `json:"text" binding:"required" example:"Tide pools are rocky pockets the sea leaves behind."`
}

// PlagiarismCheckResponse carries the id the scan's results are keyed by.
type PlagiarismCheckResponse struct {
	ScanID string `json:"scanId" example:"4b1f0d6e-2c55-4c1b-9d63-0f7b1b3c8e21"`
}

// RequestPlagiarismCheck godoc
// @ID          requestPlagiarismCheck
// @Summary     Request a plagiarism scan
// @Description Submits the text to the plagiarism provider. Results arrive later through the webhooks; follow them on /scans/{scanId}. With an Idempotency-Key, a retry returns the original scan id.
// @Tags        Scans
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Replay-safe retry key"  example(draft-2-attempt)
// @Param       X-Client-ID      header  string  false "Caller identity for rate limits and idempotency"
// @Param       body             body    handlers.PlagiarismCheckRequest  true  "Text to scan"
//
// @Success     201  {object}  handlers.PlagiarismCheckResponse
// @Header      201  {string}  Idempotency-Replayed  "true when served from an earlier request"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Provider credentials missing"
// @Failure     502  {object}  handlers.ErrorResponse  "Provider failed"
// @Router      /plagiarism-checks [post]
func (h *Handlers) RequestPlagiarismCheck(c *gin.Context) {
	var req PlagiarismCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	scanID, replay, err := h.scanSvc.Request(c.Request.Context(), middleware.ClientID(c), key, req.Text)
	switch {
	case errors.Is(err, copyleaks.ErrTextTooShort):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text too short to scan")
		return
	case errors.Is(err, copyleaks.ErrMissingCredentials):
		fail(c, http.StatusInternalServerError, ErrCodeScanFailed, "plagiarism provider credentials are not configured")
		return
	case err != nil:
		middleware.LoggerFrom(c).Warn().Err(err).Msg("scan request failed")
		fail(c, http.StatusBadGateway, ErrCodeScanFailed, "plagiarism provider rejected the scan")
		return
	}
	if replay {
		c.Header(HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, PlagiarismCheckResponse{ScanID: scanID})
}

// scanID validates the :scanId path param, answering 400 when it is not a UUID.
func scanID(c *gin.Context) (string, bool) {
	id := c.Param("scanId")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "scan id must be a UUID")
		return "", false
	}
	return id, true
}

// GetScan godoc
// @ID          getScan
// @Summary     Get the current view of a scan
// @Description Returns the matched-word percentage once the scan completed and the highlighted text once offsets were exported.
// @Tags        Scans
// @Produce     json
//
// @Param       scanId  path  string  true  "Scan ID (UUID)"  format(uuid)
//
// @Success     200  {object} reconcile.View
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Scan not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /scans/{scanId} [get]
func (h *Handlers) GetScan(c *gin.Context) {
	id, valid := scanID(c)
	if !valid {
		return
	}
	v, err := h.watcher.Snapshot(c.Request.Context(), id)
	switch {
	case errors.Is(err, reconcile.ErrScanNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "scan not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load scan")
		return
	}
	ok(c, http.StatusOK, v)
}

// StreamScanEvents godoc
// @ID          streamScanEvents
// @Summary     Follow a scan (server-sent events)
// @Description Sends a "view" event for the current record and after every webhook, then an "end" event once the view is terminal or the watch times out.
// @Tags        Scans
// @Produce     text/event-stream
//
// @Param       scanId  path  string  true  "Scan ID (UUID)"  format(uuid)
//
// @Success     200  {object} reconcile.View "event: view"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     503  {object} handlers.ErrorResponse "Event broker unavailable"
// @Router      /scans/{scanId}/events [get]
func (h *Handlers) StreamScanEvents(c *gin.Context) {
	id, valid := scanID(c)
	if !valid {
		return
	}
	views, err := h.watcher.Watch(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "scan events unavailable")
		return
	}

	ticker := time.NewTicker(h.hb)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Stream(func(w io.Writer) bool {
		select {
		case v, open := <-views:
			if !open {
				c.SSEvent("end", gin.H{"scan_id": id})
				return false
			}
			c.SSEvent("view", v)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
}

// ScanWebSocket godoc
// @ID          scanWebSocket
// @Summary     Follow a scan (WebSocket)
// @Description Upgrades to a WebSocket and sends each view as a JSON text message. The server closes with 1000 once the view is terminal or the watch times out.
// @Tags        Scans
//
// @Param       scanId  path  string  true  "Scan ID (UUID)"  format(uuid)
//
// @Success     101  {object} reconcile.View "text message"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /scans/{scanId}/ws [get]
func (h *Handlers) ScanWebSocket(c *gin.Context) {
	id, valid := scanID(c)
	if !valid {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		middleware.LoggerFrom(c).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	// The server's read timeout was meant for the handshake, not the session.
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Nothing is expected from the client; reading only notices it leaving.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	views, err := h.watcher.Watch(ctx, id)
	if err != nil {
		closeWS(conn, websocket.CloseInternalServerErr, "scan events unavailable")
		return
	}
	for v := range views {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(v); err != nil {
			cancel()
			for range views {
			}
			return
		}
	}
	closeWS(conn, websocket.CloseNormalClosure, "watch ended")
}

func closeWS(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
