// Package services – ScanService
//
// This file implements ScanService, the application side of the plagiarism
// workflow. It submits texts for scanning and records a placeholder for each
// scan, and it handles the two provider callbacks: the status webhook (which
// stores the matched word count and asks for an export when there are
// matches) and the export webhook (which stores the character offsets).
// After every store write a scan event is published so watchers re-read.
//
// Both webhook handlers write disjoint columns and never read first, so
// they are safe under redelivery and in either order.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/latency-workshop-app/internal/copyleaks"
	"github.com/tbourn/latency-workshop-app/internal/domain"
	"github.com/tbourn/latency-workshop-app/internal/pubsub"
	"github.com/tbourn/latency-workshop-app/internal/repo"
)

// ScanRoute is the idempotency scope of scan requests.
const ScanRoute = "POST /plagiarism-checks"

// Scanner submits scans and requests result exports.
// *copyleaks.Client implements it.
type Scanner interface {
	Scan(ctx context.Context, text string) (string, error)
	GetDetailedResults(ctx context.Context, scanID, resultID string) (string, error)
}

// ScanService coordinates scan submission and the provider webhooks.
type ScanService struct {
	DB      *gorm.DB
	Scanner Scanner
	Broker  pubsub.Broker

	// IdempotencyTTL is how long a replayed Idempotency-Key returns the
	// original scan id.
	IdempotencyTTL time.Duration
}

var knownStatuses = map[string]bool{
	domain.ScanCompleted:      true,
	domain.ScanError:          true,
	domain.ScanCreditsChecked: true,
	domain.ScanIndexed:        true,
}

// Request submits text for scanning and returns its scan id. With a
// non-empty idemKey, a repeat of the same key by the same client returns the
// first scan id and replay=true without submitting again.
func (s *ScanService) Request(ctx context.Context, clientID, idemKey, text string) (scanID string, replay bool, err error) {
	tr := otel.Tracer("services/ScanService")
	ctx, span := tr.Start(ctx, "Request", trace.WithAttributes(attribute.Bool("idempotent", idemKey != "")))
	defer span.End()

	if idemKey != "" {
		rec, err := repo.GetIdempotency(ctx, s.DB, clientID, ScanRoute, idemKey, time.Now().UTC())
		if err == nil {
			scansRequestedTotal.WithLabelValues("replayed").Inc()
			span.SetAttributes(attribute.String("scan.id", rec.ResourceID))
			return rec.ResourceID, true, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Msg("idempotency lookup failed")
		}
	}

	scanID, err = s.Scanner.Scan(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
		scansRequestedTotal.WithLabelValues("rejected").Inc()
		return "", false, err
	}
	span.SetAttributes(attribute.String("scan.id", scanID))

	if err := repo.CreateScanPlaceholder(ctx, s.DB, scanID, text); err != nil {
		return "", false, err
	}
	// Watchers that subscribed before the placeholder existed need a nudge.
	s.publish(ctx, pubsub.ScanEvent{ScanID: scanID, Kind: pubsub.KindStatus, Status: domain.ScanPending})

	if idemKey != "" {
		_, err := repo.CreateIdempotency(ctx, s.DB, clientID, ScanRoute, idemKey, scanID, 201, s.IdempotencyTTL)
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			// A concurrent request with the same key stored first; its scan
			// id is the one every retry of this key gets.
			rec, gerr := repo.GetIdempotency(ctx, s.DB, clientID, ScanRoute, idemKey, time.Now().UTC())
			if gerr == nil {
				log.Warn().Str("scan_id", scanID).Str("winner", rec.ResourceID).Msg("duplicate scan submitted for idempotency key")
				scansRequestedTotal.WithLabelValues("replayed").Inc()
				span.SetAttributes(attribute.String("scan.id", rec.ResourceID))
				return rec.ResourceID, true, nil
			}
			log.Warn().Err(gerr).Str("scan_id", scanID).Msg("idempotency re-read failed")
		case err != nil:
			log.Warn().Err(err).Str("scan_id", scanID).Msg("store idempotency key failed")
		}
	}
	scansRequestedTotal.WithLabelValues("submitted").Inc()
	return scanID, false, nil
}

// HandleStatus processes a status webhook. For "completed" the internet
// result with the fewest matched words is selected (none means zero); a
// non-zero count triggers an export of that result. The export request
// failing does not stop the count from being stored.
func (s *ScanService) HandleStatus(ctx context.Context, scanID, status string, payload copyleaks.StatusPayload) error {
	tr := otel.Tracer("services/ScanService")
	ctx, span := tr.Start(ctx, "HandleStatus",
		trace.WithAttributes(
			attribute.String("scan.id", scanID),
			attribute.String("scan.status", status),
		),
	)
	defer span.End()

	if !knownStatuses[status] {
		return ErrUnknownStatus
	}
	webhooksReceivedTotal.WithLabelValues("status", status).Inc()

	var matched *int
	if status == domain.ScanCompleted {
		n := 0
		res, ok := payload.SelectedResult()
		if ok {
			n = res.MatchedWords
		} else {
			log.Debug().Str("scan_id", scanID).Msg("status webhook without internet results")
		}
		matched = &n
		span.SetAttributes(attribute.Int("scan.matched_words", n))

		if n > 0 {
			if _, err := s.Scanner.GetDetailedResults(ctx, scanID, res.ID); err != nil {
				span.RecordError(err)
			}
		}
	}

	if err := repo.UpsertScanStatus(ctx, s.DB, scanID, status, matched); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return err
	}
	s.publish(ctx, pubsub.ScanEvent{ScanID: scanID, Kind: pubsub.KindStatus, Status: status})
	return nil
}

// HandleExport processes an export webhook. The offsets are stored only if
// the scan exists; stored reports whether anything was written.
func (s *ScanService) HandleExport(ctx context.Context, scanID, resultID string, payload copyleaks.ExportPayload) (stored bool, err error) {
	tr := otel.Tracer("services/ScanService")
	ctx, span := tr.Start(ctx, "HandleExport",
		trace.WithAttributes(
			attribute.String("scan.id", scanID),
			attribute.String("result.id", resultID),
		),
	)
	defer span.End()

	cmp := payload.Text.Comparison
	if cmp == nil {
		webhooksReceivedTotal.WithLabelValues("export", "empty").Inc()
		log.Debug().Str("scan_id", scanID).Msg("export webhook without comparison")
		return false, nil
	}
	if err := cmp.Identical.Source.Chars.Validate(); err != nil {
		log.Warn().Err(err).Str("scan_id", scanID).Msg("export offsets inconsistent")
	}

	stored, err = repo.SetScanResults(ctx, s.DB, scanID, cmp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return false, err
	}
	if !stored {
		webhooksReceivedTotal.WithLabelValues("export", "unknown_scan").Inc()
		log.Debug().Str("scan_id", scanID).Msg("export webhook for unknown scan")
		return false, nil
	}
	webhooksReceivedTotal.WithLabelValues("export", "stored").Inc()
	s.publish(ctx, pubsub.ScanEvent{ScanID: scanID, Kind: pubsub.KindExport})
	return true, nil
}

// publish is best effort: watchers also re-read on their next event and
// give up after their maximum wait.
func (s *ScanService) publish(ctx context.Context, ev pubsub.ScanEvent) {
	if s.Broker == nil {
		return
	}
	if err := pubsub.PublishScanEvent(ctx, s.Broker, ev); err != nil {
		log.Warn().Err(err).Str("scan_id", ev.ScanID).Msg("publish scan event failed")
	}
}
