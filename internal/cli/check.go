package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/latency-workshop-app/internal/reconcile"
	"github.com/tbourn/latency-workshop-app/internal/segment"
)

// checkItem is one text to scan. key, when set, makes the request
// replay-safe.
type checkItem struct {
	label string
	text  string
	key   string
}

// runChecks requests and follows a scan per item concurrently. Each item
// prints its own result block; a failing item does not stop the others.
// The first failure is returned once all are done.
func runChecks(ctx context.Context, api *API, w io.Writer, items []checkItem, th theme) error {
	out := &lockedWriter{w: w}
	var g errgroup.Group
	g.SetLimit(segment.Count)
	for _, it := range items {
		g.Go(func() error {
			v, err := checkOne(ctx, api, it)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", it.label, err)
				return fmt.Errorf("%s: %w", it.label, err)
			}
			io.WriteString(out, formatView(it.label, v, th))
			return nil
		})
	}
	return g.Wait()
}

func checkOne(ctx context.Context, api *API, it checkItem) (reconcile.View, error) {
	res, err := api.RequestCheck(ctx, it.text, it.key)
	if err != nil {
		return reconcile.View{}, err
	}
	log.Debug().
		Str("label", it.label).
		Str("scan_id", res.ScanID).
		Bool("replayed", res.Replayed).
		Msg("scan requested")
	return api.Watch(ctx, res.ScanID, nil)
}

func newCheckCmd(o *options) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "check <text>",
		Short: "Check one text for plagiarism and print the result",
		Long: `check submits the text for a plagiarism scan, follows the scan until the
provider has reported back and prints the matched share with the matched
passages highlighted.

Example:
  workshop check "Tide pools are rocky pockets the sea leaves behind."
  workshop check --key retry-1 "$(cat draft.txt)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(args[0])
			if text == "" {
				return fmt.Errorf("text must not be empty")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()
			out := cmd.OutOrStdout()
			return runChecks(ctx, o.api(), out, []checkItem{{label: "Text", text: text, key: key}}, o.theme(out))
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Idempotency-Key; repeating a key returns the first scan")
	return cmd
}

func newWatchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <scanId>",
		Short: "Follow an existing scan until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()

			api := o.api()
			v, err := api.Snapshot(ctx, args[0])
			if err != nil {
				return err
			}
			if !v.Terminal {
				progress := cmd.ErrOrStderr()
				fmt.Fprintln(progress, args[0]+": "+summary(v))
				last, err := api.Watch(ctx, args[0], func(v reconcile.View) {
					if !v.Terminal {
						fmt.Fprintln(progress, args[0]+": "+summary(v))
					}
				})
				if err != nil {
					return err
				}
				if last.ScanID != "" {
					v = last
				}
			}
			out := cmd.OutOrStdout()
			io.WriteString(out, formatView("Scan "+v.ScanID, v, o.theme(out)))
			return nil
		},
	}
}
