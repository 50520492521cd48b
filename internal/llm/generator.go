// Package llm produces the raw draft text for a prompt, streamed as it is
// generated.
package llm

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/latency-workshop-app/internal/config"
)

// Generator streams a completion for prompt into w, one Write per delta.
// It returns once the completion is done, the context ends or a write
// fails.
type Generator interface {
	Name() string
	Stream(ctx context.Context, prompt string, w io.Writer) error
}

// New picks the generator for cfg: the OpenAI API when a key is configured,
// the canned generator otherwise.
func New(cfg config.OpenAIConfig) Generator {
	if cfg.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set; using canned drafts")
		return NewCanned()
	}
	g, err := NewOpenAI(Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
	if err != nil {
		log.Error().Err(err).Msg("openai generator unavailable; using canned drafts")
		return NewCanned()
	}
	return g
}
