// Generation HTTP handlers.
//
// This file exposes the draft generation endpoints:
//   - POST /generations          (stream a new generation as plain text)
//   - GET  /generations          (history, paginated, ETag support)
//   - GET  /generations/{id}     (one generation with its drafts)
//   - PUT  /drafts/{id}          (store the user's revision of a draft)
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/latency-workshop-app/internal/domain"
	"github.com/tbourn/latency-workshop-app/internal/http/middleware"
	"github.com/tbourn/latency-workshop-app/internal/services"
	"github.com/tbourn/latency-workshop-app/internal/stream"
)

// GenerateRequest is the JSON payload for starting a generation. Prompt
// wins when set; otherwise the prompt is built from Topic and Audience.
type GenerateRequest struct {
	Prompt   string `json:"prompt"   example:"Write three short paragraphs about tide pools."`
	Topic    string `json:"topic"    example:"tide pools"`
	Audience string `json:"audience" example:"Student"`
}

// ReviseDraftRequest is the JSON payload for revising a draft.
type ReviseDraftRequest struct {
	Text string `json:"text" binding:"required" example:"My own take on tide pools."`
}

// ListGenerationsResponse wraps a page of generations and pagination information.
type ListGenerationsResponse struct {
	Generations []domain.Generation `json:"generations"`
	Pagination  Pagination          `json:"pagination"`
}

// streamWriter forwards generated bytes to the client, flushing each write.
// Headers go out with the first byte so a generator failing before that can
// still be answered with a JSON error.
type streamWriter struct {
	c       *gin.Context
	id      string
	started bool
}

func (w *streamWriter) start() {
	w.started = true
	h := w.c.Writer.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set(stream.GenerationIDHeader, w.id)
	w.c.Status(http.StatusOK)
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if !w.started {
		w.start()
	}
	n, err := w.c.Writer.Write(p)
	if err != nil {
		return n, err
	}
	w.c.Writer.Flush()
	return n, nil
}

// CreateGeneration godoc
// @ID          createGeneration
// @Summary     Generate three drafts (streamed)
// @Description Streams the completion as text/plain chunks while it is generated. The drafts are persisted once the stream ends. The generation id is returned in X-Generation-ID.
// @Tags        Generations
// @Accept      json
// @Produce     plain
//
// @Param       body  body  handlers.GenerateRequest  true  "Prompt or topic"
//
// @Success     200  {string}  string  "Chunked draft text"
// @Header      200  {string}  X-Generation-ID  "Id of the stored generation"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     502  {object}  handlers.ErrorResponse  "Completion provider failed"
// @Router      /generations [post]
func (h *Handlers) CreateGeneration(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	prompt, err := h.genSvc.Prompt(services.GenerationInput{
		Prompt:   req.Prompt,
		Topic:    req.Topic,
		Audience: req.Audience,
	})
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	id := uuid.NewString()
	w := &streamWriter{c: c, id: id}
	if _, err := h.genSvc.Generate(c.Request.Context(), id, prompt, req.Topic, w); err != nil {
		if !w.started {
			fail(c, http.StatusBadGateway, ErrCodeGenerationFailed, "completion provider failed")
			return
		}
		// Headers are gone; all that is left is cutting the stream.
		middleware.LoggerFrom(c).Error().Err(err).Str("generation_id", id).Msg("generation stream cut")
		c.Abort()
		return
	}
	if !w.started {
		w.start()
		c.Writer.WriteHeaderNow()
	}
}

// ListGenerations godoc
// @ID          listGenerations
// @Summary     List generations (paginated)
// @Description Returns a page of generations, newest first, with their drafts. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Generations
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"generations:3:1714560000\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListGenerationsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /generations [get]
func (h *Handlers) ListGenerations(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.genSvc.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"generations:%d:%d:%d:%d"`, count, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.genSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list generations")
		return
	}
	ok(c, http.StatusOK, ListGenerationsResponse{
		Generations: items,
		Pagination:  newPagination(page, pageSize, total),
	})
}

// GetGeneration godoc
// @ID          getGeneration
// @Summary     Get a generation
// @Tags        Generations
// @Produce     json
//
// @Param       id  path  string  true  "Generation ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Generation
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Generation not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /generations/{id} [get]
func (h *Handlers) GetGeneration(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "generation id must be a UUID")
		return
	}
	g, err := h.genSvc.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrGenerationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "generation not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load generation")
		return
	}
	ok(c, http.StatusOK, g)
}

// ReviseDraft godoc
// @ID          reviseDraft
// @Summary     Revise a draft
// @Description Stores the user's edit of a draft. The generated text is kept alongside it.
// @Tags        Generations
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                       true  "Draft ID (UUID)"  format(uuid)
// @Param       body  body  handlers.ReviseDraftRequest  true  "Revised text"
//
// @Success     200  {object} domain.Draft
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Draft not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /drafts/{id} [put]
func (h *Handlers) ReviseDraft(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "draft id must be a UUID")
		return
	}
	var req ReviseDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	d, err := h.genSvc.ReviseDraft(c.Request.Context(), id, req.Text)
	switch {
	case errors.Is(err, services.ErrEmptyRevision), errors.Is(err, services.ErrPromptTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrDraftNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "draft not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "could not store revision")
		return
	}
	ok(c, http.StatusOK, d)
}
