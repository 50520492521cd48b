// Package handlers exposes the HTTP API: draft generation and history,
// plagiarism scan requests, live scan views and the provider webhooks.
//
// Handlers are transport-thin: they validate input, call application
// services and translate results into HTTP responses.
package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tbourn/latency-workshop-app/internal/copyleaks"
	"github.com/tbourn/latency-workshop-app/internal/domain"
	"github.com/tbourn/latency-workshop-app/internal/reconcile"
	"github.com/tbourn/latency-workshop-app/internal/services"
	"github.com/tbourn/latency-workshop-app/internal/utils"
)

//
// Service contracts (context-aware)
//

// GenerationService validates prompts, streams generations and serves the
// generation history. *services.GenerationService implements it.
type GenerationService interface {
	Prompt(in services.GenerationInput) (string, error)
	Generate(ctx context.Context, id, prompt, topic string, w io.Writer) (*domain.Generation, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Generation, int64, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
	Get(ctx context.Context, id string) (*domain.Generation, error)
	ReviseDraft(ctx context.Context, draftID, text string) (*domain.Draft, error)
}

// ScanService submits scans and absorbs the provider webhooks.
// *services.ScanService implements it.
type ScanService interface {
	Request(ctx context.Context, clientID, idemKey, text string) (scanID string, replay bool, err error)
	HandleStatus(ctx context.Context, scanID, status string, payload copyleaks.StatusPayload) error
	HandleExport(ctx context.Context, scanID, resultID string, payload copyleaks.ExportPayload) (bool, error)
}

// ScanWatcher serves scan views. *reconcile.Reconciler implements it.
type ScanWatcher interface {
	Snapshot(ctx context.Context, scanID string) (reconcile.View, error)
	Watch(ctx context.Context, scanID string) (<-chan reconcile.View, error)
}

//
// Handler wiring
//

// Options tunes the streaming endpoints.
type Options struct {
	// AllowedOrigins lists browser origins allowed to open the scan
	// WebSocket. Requests without an Origin header (CLI) are always allowed;
	// "*" allows any origin.
	AllowedOrigins []string
	// Heartbeat is the SSE keep-alive interval; <= 0 means 15s.
	Heartbeat time.Duration
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	genSvc   GenerationService
	scanSvc  ScanService
	watcher  ScanWatcher
	upgrader websocket.Upgrader
	hb       time.Duration
}

// New constructs Handlers bound to the given services.
func New(genSvc GenerationService, scanSvc ScanService, watcher ScanWatcher, opts Options) *Handlers {
	hb := opts.Heartbeat
	if hb <= 0 {
		hb = 15 * time.Second
	}
	return &Handlers{
		genSvc:  genSvc,
		scanSvc: scanSvc,
		watcher: watcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		hb: hb,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination reads page and page_size from the query, bounded to
// sane limits. Unparsable values fall back to the defaults.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), utils.DefaultPage),
		utils.AtoiDefault(c.Query("page_size"), utils.DefaultPageSize),
	)
}
