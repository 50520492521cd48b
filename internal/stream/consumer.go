// Package stream consumes a chunked completion stream and keeps a live,
// parsed view of the three drafts while the text is still arriving.
//
// A Consumer moves through three states:
//
//	AwaitingFirstMarker -> Streaming -> Finalized
//
// Bytes are decoded as UTF-8 with a carry buffer, so a multi-byte character
// split across two chunks is decoded once both halves are in. Updates are
// only emitted after the first "1." marker has appeared; from then on every
// chunk produces one. Finish emits the single final update that downstream
// code uses to start the plagiarism workflow.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tbourn/latency-workshop-app/internal/segment"
)

// State is the position of a Consumer in its lifecycle.
type State int

const (
	AwaitingFirstMarker State = iota
	Streaming
	Finalized
)

func (s State) String() string {
	switch s {
	case AwaitingFirstMarker:
		return "awaiting_first_marker"
	case Streaming:
		return "streaming"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrFinalized is returned by Write after Finish has been called.
var ErrFinalized = errors.New("stream: consumer finalized")

// Update is one view of the stream handed to the update callback.
type Update struct {
	Buffer   string
	Segments [segment.Count]string
	Final    bool
}

// Consumer accumulates stream bytes and parses them into drafts.
// It implements io.Writer so it can sit behind an io.TeeReader or
// io.MultiWriter. The zero value is not usable; call NewConsumer.
type Consumer struct {
	mu       sync.Mutex
	state    State
	dec      transform.Transformer
	carry    []byte
	buf      strings.Builder
	final    Update
	onUpdate func(Update)
}

// NewConsumer returns a Consumer that calls onUpdate for every update.
// onUpdate may be nil. It is called synchronously from Write and Finish.
func NewConsumer(onUpdate func(Update)) *Consumer {
	return &Consumer{
		state:    AwaitingFirstMarker,
		dec:      unicode.UTF8.NewDecoder(),
		onUpdate: onUpdate,
	}
}

// State returns the current state.
func (c *Consumer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Buffer returns the decoded text accumulated so far.
func (c *Consumer) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Write decodes p, appends it to the buffer and, once the gate is open,
// emits an update. It never returns a short write.
func (c *Consumer) Write(p []byte) (int, error) {
	c.mu.Lock()
	if c.state == Finalized {
		c.mu.Unlock()
		return 0, ErrFinalized
	}
	c.buf.WriteString(c.decode(p, false))

	if c.state == AwaitingFirstMarker && segment.HasFirstMarker(c.buf.String()) {
		c.state = Streaming
	}
	if c.state != Streaming {
		c.mu.Unlock()
		return len(p), nil
	}
	u := c.snapshot(false)
	c.mu.Unlock()

	c.emit(u)
	return len(p), nil
}

// Finish flushes the decoder, parses the buffer one last time and moves to
// Finalized. The first call emits the final update; later calls return the
// same update without emitting again.
func (c *Consumer) Finish() Update {
	c.mu.Lock()
	if c.state == Finalized {
		u := c.final
		c.mu.Unlock()
		return u
	}
	c.buf.WriteString(c.decode(nil, true))
	c.state = Finalized
	c.final = c.snapshot(true)
	u := c.final
	c.mu.Unlock()

	c.emit(u)
	return u
}

// Consume reads r until EOF, writing every chunk to the consumer, then
// finalizes. A read error or context cancellation stops the loop and is
// returned without finalizing.
func (c *Consumer) Consume(ctx context.Context, r io.Reader) (Update, error) {
	chunk := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return Update{}, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			if _, werr := c.Write(chunk[:n]); werr != nil {
				return Update{}, werr
			}
		}
		if errors.Is(err, io.EOF) {
			return c.Finish(), nil
		}
		if err != nil {
			return Update{}, fmt.Errorf("stream read: %w", err)
		}
	}
}

// decode must be called with mu held.
func (c *Consumer) decode(p []byte, atEOF bool) string {
	src := p
	if len(c.carry) > 0 {
		src = append(c.carry, p...)
	}
	if len(src) == 0 {
		return ""
	}
	// Every invalid byte may become a 3-byte U+FFFD.
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	nDst, nSrc, err := c.dec.Transform(dst, src, atEOF)
	if errors.Is(err, transform.ErrShortSrc) {
		c.carry = append([]byte(nil), src[nSrc:]...)
	} else {
		c.carry = nil
	}
	return string(dst[:nDst])
}

// snapshot must be called with mu held.
func (c *Consumer) snapshot(final bool) Update {
	buf := c.buf.String()
	segs, _ := segment.Parse(buf)
	return Update{Buffer: buf, Segments: segs, Final: final}
}

func (c *Consumer) emit(u Update) {
	if c.onUpdate != nil {
		c.onUpdate(u)
	}
}
