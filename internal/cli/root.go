// Package cli implements the workshop terminal client. It plays the part of
// the browser UI: it streams drafts from the server, redraws them as they
// arrive and then follows the plagiarism scan of each draft.
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tbourn/latency-workshop-app/internal/sysutil"
)

// version is stamped at build time with -ldflags.
var version = "dev"

// options are resolved from flags, WORKSHOP_* variables and the config
// file, in that order of precedence.
type options struct {
	cfgFile  string
	server   string
	clientID string
	timeout  time.Duration
	color    string
	plain    bool
	verbose  bool
}

// Execute runs the workshop command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Each call has its own viper instance
// so commands can be built and run repeatedly in tests.
func NewRootCmd() *cobra.Command {
	o := &options{}
	v := viper.New()

	root := &cobra.Command{
		Use:   "workshop",
		Short: "Terminal client for the latency workshop API",
		Long: `workshop streams three drafts for a topic from the latency workshop server,
redrawing them while the completion arrives, and then checks each draft for
plagiarism, printing the matched share and the highlighted passages.

Configuration comes from flags, WORKSHOP_* environment variables and an
optional YAML file ($HOME/.workshop/config.yaml), in that order. Colors and
live redraws are used only when the output is a terminal; --color overrides
the choice and --plain turns both off.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load(v, cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (default: $HOME/.workshop/config.yaml)")
	pf.String("server", "http://localhost:8080/api/v1", "API base URL")
	pf.String("client-id", "", "identity sent as X-Client-ID (default: user@host)")
	pf.Duration("timeout", 5*time.Minute, "overall timeout for one command")
	pf.String("color", colorAuto, "colors: auto (when the output is a terminal), always or never")
	pf.Bool("plain", false, "no colors and no live redraws, same as --color never")
	pf.BoolP("verbose", "v", false, "debug logging on stderr")
	_ = v.BindPFlags(pf)

	root.AddCommand(
		newGenerateCmd(o),
		newCheckCmd(o),
		newWatchCmd(o),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "workshop "+version)
			},
		},
	)
	return root
}

func (o *options) load(v *viper.Viper, cmd *cobra.Command) error {
	if o.cfgFile != "" {
		v.SetConfigFile(o.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".workshop"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("WORKSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if o.cfgFile != "" || !errors.As(err, &nf) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	o.server = strings.TrimRight(strings.TrimSpace(v.GetString("server")), "/")
	if o.server == "" {
		return errors.New("server URL must not be empty")
	}
	o.clientID = strings.TrimSpace(sysutil.FirstNonEmpty(v.GetString("client-id"), defaultClientID()))
	o.timeout = v.GetDuration("timeout")
	if o.timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	o.plain = v.GetBool("plain")
	o.color = strings.ToLower(strings.TrimSpace(v.GetString("color")))
	switch o.color {
	case colorAuto, colorAlways, colorNever:
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", o.color)
	}
	if o.plain {
		o.color = colorNever
	}
	o.verbose = v.GetBool("verbose")

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	stderr := cmd.ErrOrStderr()
	sysutil.SetupLogger(stderr, "workshop", level, o.color != colorNever && isTerminal(stderr))
	return nil
}

// theme styles output written to w.
func (o *options) theme(w io.Writer) theme {
	return newTheme(w, o.color)
}

func (o *options) api() *API {
	return NewAPI(o.server, o.clientID, &http.Client{})
}

func defaultClientID() string {
	host, _ := os.Hostname()
	user := sysutil.FirstNonEmpty(os.Getenv("USER"), os.Getenv("USERNAME"))
	switch {
	case user != "" && host != "":
		return user + "@" + host
	default:
		return sysutil.FirstNonEmpty(host, user, "workshop")
	}
}
