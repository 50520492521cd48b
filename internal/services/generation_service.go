// Package services – GenerationService
//
// This file implements GenerationService, which owns the lifecycle of a
// generation: it validates or builds the prompt, streams the completion to
// the caller while feeding the same bytes to a server-side stream.Consumer,
// and persists the three finalized drafts atomically. It also serves the
// generation history and stores user revisions of drafts.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/latency-workshop-app/internal/domain"
	"github.com/tbourn/latency-workshop-app/internal/llm"
	"github.com/tbourn/latency-workshop-app/internal/repo"
	"github.com/tbourn/latency-workshop-app/internal/stream"
	"github.com/tbourn/latency-workshop-app/internal/utils"
)

// GenerationInput is a request to generate drafts. Prompt wins when set;
// otherwise the prompt is built from Topic and Audience.
type GenerationInput struct {
	Prompt   string
	Topic    string
	Audience string
}

// GenerationService coordinates draft generation and the generation history.
type GenerationService struct {
	DB        *gorm.DB
	Generator llm.Generator

	// MaxPromptRunes caps prompts and revisions; <= 0 disables the check.
	MaxPromptRunes int
}

// Prompt validates in and returns the prompt to send to the generator.
func (s *GenerationService) Prompt(in GenerationInput) (string, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" && strings.TrimSpace(in.Topic) != "" {
		prompt = llm.BuildPrompt(in.Topic, in.Audience)
	}
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(prompt) > s.MaxPromptRunes {
		return "", ErrPromptTooLong
	}
	return prompt, nil
}

// Generate streams the completion for prompt into w and, once the stream
// ends, persists the generation under id with one draft per non-empty
// segment. Nothing is persisted when the generator or w fails.
func (s *GenerationService) Generate(ctx context.Context, id, prompt, topic string, w io.Writer) (*domain.Generation, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("generation.id", id),
			attribute.String("generator", s.Generator.Name()),
		),
	)
	defer span.End()

	consumer := stream.NewConsumer(nil)
	if err := s.Generator.Stream(ctx, prompt, io.MultiWriter(w, consumer)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		generationsTotal.WithLabelValues("provider_error").Inc()
		return nil, err
	}
	final := consumer.Finish()

	now := time.Now().UTC()
	g := &domain.Generation{
		ID:        id,
		Prompt:    prompt,
		Topic:     strings.TrimSpace(topic),
		RawText:   final.Buffer,
		Model:     s.Generator.Name(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, text := range final.Segments {
		if text == "" {
			continue
		}
		g.Drafts = append(g.Drafts, domain.Draft{
			ID:        uuid.NewString(),
			Position:  i + 1,
			Text:      text,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	span.SetAttributes(attribute.Int("drafts", len(g.Drafts)))

	// The client may hang up right after the last chunk; the drafts are
	// still worth keeping.
	persistCtx := context.WithoutCancel(ctx)
	err := s.DB.WithContext(persistCtx).Transaction(func(tx *gorm.DB) error {
		return repo.CreateGeneration(persistCtx, tx, g)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		generationsTotal.WithLabelValues("persist_error").Inc()
		log.Error().Err(err).Str("generation_id", id).Msg("persist generation failed")
		return nil, err
	}
	generationsTotal.WithLabelValues("ok").Inc()
	return g, nil
}

// ListPage returns a page of generations, newest first, and the total count.
func (s *GenerationService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Generation, int64, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	page, pageSize = utils.ClampPage(page, pageSize)
	offset := utils.Offset(page, pageSize)

	total, err := repo.CountGenerations(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Generation{}, 0, nil
	}
	items, err := repo.ListGenerationsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// Stats returns the generation count and latest update time, for ETags.
func (s *GenerationService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.GenerationsStats(ctx, s.DB)
}

// Get returns one generation with its drafts.
func (s *GenerationService) Get(ctx context.Context, id string) (*domain.Generation, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("generation.id", id)))
	defer span.End()

	g, err := repo.GetGeneration(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrGenerationNotFound
	}
	return g, err
}

// ReviseDraft stores text as the user's revision of draftID. The generated
// text is kept; the owning generation's updated_at is bumped.
func (s *GenerationService) ReviseDraft(ctx context.Context, draftID, text string) (*domain.Draft, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "ReviseDraft", trace.WithAttributes(attribute.String("draft.id", draftID)))
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyRevision
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(text) > s.MaxPromptRunes {
		return nil, ErrPromptTooLong
	}

	var out *domain.Draft
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateDraftRevision(ctx, tx, draftID, text); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrDraftNotFound
			}
			return err
		}
		d, err := repo.GetDraft(ctx, tx, draftID)
		if err != nil {
			return err
		}
		if err := repo.TouchGeneration(ctx, tx, d.GenerationID); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
