package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/latency-workshop-app/internal/stream"
)

func newGenerateCmd(o *options) *cobra.Command {
	var (
		audience string
		prompt   string
		noCheck  bool
	)
	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Stream three drafts for a topic, then check each for plagiarism",
		Long: `generate asks the server for three numbered drafts about the topic and
redraws them while the completion streams in. Once the stream ends, every
non-empty draft is submitted for a plagiarism scan and the results are
printed as the provider reports back.

Example:
  workshop generate "tide pools"
  workshop generate "tide pools" --audience Teacher --no-check
  workshop generate x --prompt "Write three haiku about rain, numbered 1. 2. 3."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(args[0])
			if topic == "" && strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("topic must not be empty")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()

			api := o.api()
			out := cmd.OutOrStdout()
			th := o.theme(out)
			board := newDraftBoard(out, th)
			res, err := stream.NewClient(o.server, api.HTTPClient()).Generate(ctx, stream.GenerationRequest{
				Prompt:   prompt,
				Topic:    topic,
				Audience: audience,
			}, board.Draw)
			if err != nil {
				return err
			}
			log.Debug().Str("generation_id", res.GenerationID).Msg("generation finished")
			if note := missingDrafts(res.Final.Segments); note != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), note)
			}

			items := draftChecks(res)
			if noCheck || len(items) == 0 {
				return nil
			}
			io.WriteString(out, "Checking drafts for plagiarism…\n\n")
			return runChecks(ctx, api, out, items, th)
		},
	}
	cmd.Flags().StringVar(&audience, "audience", "Student", "who the drafts are written for")
	cmd.Flags().StringVar(&prompt, "prompt", "", "send this prompt instead of building one from the topic")
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "skip the plagiarism checks")
	return cmd
}

// draftChecks turns the non-empty final drafts into scan requests. Keys are
// derived from the generation id so a rerun of the same generation replays
// the earlier scans.
func draftChecks(res *stream.Result) []checkItem {
	base := res.GenerationID
	if base == "" {
		base = uuid.NewString()
	}
	var items []checkItem
	for i, text := range res.Final.Segments {
		if strings.TrimSpace(text) == "" {
			continue
		}
		items = append(items, checkItem{
			label: fmt.Sprintf("Draft %d", i+1),
			text:  text,
			key:   fmt.Sprintf("%s-draft-%d", base, i+1),
		})
	}
	return items
}
