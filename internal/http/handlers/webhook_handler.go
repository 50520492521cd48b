// Webhook HTTP handlers.
//
// The plagiarism provider calls these routes; they are unauthenticated and
// must acknowledge quickly:
//   - POST /webhooks/scans/{scanId}/{status}       (scan status)
//   - POST /webhooks/exports/{scanId}/{resultId}   (exported match offsets)
//   - POST /webhooks/noop                          (callbacks nobody reads)
//
// Both receivers overwrite disjoint columns of the scan record, so
// redeliveries and out-of-order deliveries are harmless.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/latency-workshop-app/internal/copyleaks"
	"github.com/tbourn/latency-workshop-app/internal/http/middleware"
	"github.com/tbourn/latency-workshop-app/internal/services"
)

// WebhookAck is the body returned to the provider.
type WebhookAck struct {
	Message string `json:"message" example:"Scan complete"`
}

// ScanStatusWebhook godoc
// @ID          scanStatusWebhook
// @Summary     Scan status callback
// @Description Called by the plagiarism provider when a scan changes status. For "completed" the internet result with the fewest matched words is recorded and, when non-zero, its offsets are requested.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       scanId  path  string  true  "Scan ID"
// @Param       status  path  string  true  "Provider status"  Enums(completed, error, creditsChecked, indexed)
// @Param       body    body  copyleaks.StatusPayload  true  "Status payload"
//
// @Success     200  {object} handlers.WebhookAck
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /webhooks/scans/{scanId}/{status} [post]
func (h *Handlers) ScanStatusWebhook(c *gin.Context) {
	var payload copyleaks.StatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.scanSvc.HandleStatus(c.Request.Context(), c.Param("scanId"), c.Param("status"), payload)
	switch {
	case errors.Is(err, services.ErrUnknownStatus):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown scan status")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeWebhookFailed, "could not record scan status")
		return
	}
	ok(c, http.StatusOK, WebhookAck{Message: "Scan complete"})
}

// ExportWebhook godoc
// @ID          exportWebhook
// @Summary     Result export callback
// @Description Called by the plagiarism provider with the character offsets of one result. Offsets for an unknown scan are dropped.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       scanId    path  string  true  "Scan ID"
// @Param       resultId  path  string  true  "Result ID"
// @Param       body      body  copyleaks.ExportPayload  true  "Export payload"
//
// @Success     200  {object} handlers.WebhookAck
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /webhooks/exports/{scanId}/{resultId} [post]
func (h *Handlers) ExportWebhook(c *gin.Context) {
	var payload copyleaks.ExportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	stored, err := h.scanSvc.HandleExport(c.Request.Context(), c.Param("scanId"), c.Param("resultId"), payload)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeWebhookFailed, "could not store results")
		return
	}
	middleware.LoggerFrom(c).Debug().Bool("stored", stored).Msg("export webhook handled")
	ok(c, http.StatusOK, WebhookAck{Message: "Result exported successfully"})
}

// NoopWebhook godoc
// @ID          noopWebhook
// @Summary     Ignored provider callback
// @Description Accepts and discards callbacks the export API requires but nothing reads.
// @Tags        Webhooks
//
// @Success     204  {string} string "No Content"
// @Router      /webhooks/noop [post]
func (h *Handlers) NoopWebhook(c *gin.Context) {
	_, _ = io.Copy(io.Discard, c.Request.Body)
	noContent(c)
}
