// Package reconcile turns the shared scan record into what a user sees: the
// matched-word percentage and, once offsets arrive, the highlighted text.
//
// A watch subscribes to the scan's subject before its first read, so a
// webhook landing in between is never missed, and re-reads the record on
// every event. It ends when the caller goes away, when the view is terminal
// or after the configured maximum wait.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/latency-workshop-app/internal/pubsub"
	"github.com/tbourn/latency-workshop-app/internal/repo"
)

// ErrScanNotFound is returned by Snapshot for an unknown scan id.
var ErrScanNotFound = errors.New("scan not found")

// Reconciler serves scan views.
type Reconciler struct {
	db      *gorm.DB
	broker  pubsub.Broker
	maxWait time.Duration
}

// New returns a Reconciler. maxWait <= 0 leaves watches bounded only by
// their context and the record reaching a terminal state.
func New(db *gorm.DB, broker pubsub.Broker, maxWait time.Duration) *Reconciler {
	return &Reconciler{db: db, broker: broker, maxWait: maxWait}
}

// Snapshot returns the current view of scanID.
func (r *Reconciler) Snapshot(ctx context.Context, scanID string) (View, error) {
	ctx, span := otel.Tracer("reconcile/Reconciler").Start(ctx, "Snapshot",
		trace.WithAttributes(attribute.String("scan.id", scanID)))
	defer span.End()

	rec, err := repo.GetScan(ctx, r.db, scanID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return View{}, ErrScanNotFound
		}
		return View{}, err
	}
	return Build(rec), nil
}

// Watch streams views of scanID. A view is sent for the current record, if
// one exists, and after every event while the record exists. The channel is
// closed when the watch ends; the last view sent before a terminal close has
// Terminal set.
func (r *Reconciler) Watch(ctx context.Context, scanID string) (<-chan View, error) {
	var cancel context.CancelFunc
	if r.maxWait > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.maxWait)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	// Events only say "re-read"; one pending signal is enough.
	changed := make(chan struct{}, 1)
	sub, err := r.broker.Subscribe(ctx, pubsub.ScanSubject(scanID), func(*pubsub.Message) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan View, 1)
	watchesActive.Inc()
	go func() {
		reason := "cancelled"
		defer func() {
			if reason == "cancelled" && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				reason = "timeout"
			}
			_ = sub.Unsubscribe()
			cancel()
			close(out)
			watchesActive.Dec()
			watchesEnded.WithLabelValues(reason).Inc()
			log.Debug().Str("scan_id", scanID).Str("reason", reason).Msg("scan watch ended")
		}()

		// emit reports whether the watch is over.
		emit := func() bool {
			rec, err := repo.GetScan(ctx, r.db, scanID)
			if err != nil {
				if !errors.Is(err, repo.ErrNotFound) && ctx.Err() == nil {
					log.Warn().Err(err).Str("scan_id", scanID).Msg("scan watch read failed")
				}
				return false
			}
			v := Build(rec)
			select {
			case out <- v:
			case <-ctx.Done():
				return true
			}
			if v.Terminal {
				reason = "terminal"
				return true
			}
			return false
		}

		if emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				if emit() {
					return
				}
			}
		}
	}()
	return out, nil
}
