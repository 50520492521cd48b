package llm

import (
	"context"
	"io"
	"time"
)

const cannedText = `1. Latency is a feature. Stream the first word early and users stay with you. #webdev #ux

2. Nobody waits for a spinner. Show partial results, fill in the rest as it lands. #performance #streaming

3. Webhooks beat polling. Let the provider call you back and push the update to the page. #api #async`

// Canned replays a fixed three-post answer in small chunks so the streaming
// path can be exercised without an API key.
type Canned struct {
	Text      string
	ChunkSize int
	Delay     time.Duration
}

// NewCanned returns a Canned generator with the built-in text.
func NewCanned() *Canned {
	return &Canned{Text: cannedText, ChunkSize: 12, Delay: 30 * time.Millisecond}
}

func (g *Canned) Name() string { return "canned" }

// Stream writes Text in ChunkSize byte slices. Chunks may split multi-byte
// characters, the same as a real network stream.
func (g *Canned) Stream(ctx context.Context, _ string, w io.Writer) error {
	size := g.ChunkSize
	if size <= 0 {
		size = len(g.Text)
	}
	b := []byte(g.Text)
	for i := 0; i < len(b); i += size {
		if i > 0 && g.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(g.Delay):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		end := i + size
		if end > len(b) {
			end = len(b)
		}
		if _, err := w.Write(b[i:end]); err != nil {
			return err
		}
	}
	return nil
}
