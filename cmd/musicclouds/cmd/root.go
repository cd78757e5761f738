// Package cmd implements the musicclouds CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/musicclouds/web/config"
	"github.com/musicclouds/web/internal/adapters/backend"
	"github.com/musicclouds/web/internal/adapters/localstore"
	"github.com/musicclouds/web/internal/bootstrap"
	"github.com/musicclouds/web/internal/observability/statsd"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	okFmt   = color.New(color.FgGreen).SprintFunc()
	warnFmt = color.New(color.FgYellow).SprintFunc()
	errFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
)

// errNotSignedIn is returned by commands that need an active session.
var errNotSignedIn = errors.New("not signed in; run 'musicclouds login' first")

type options struct {
	output      string
	storePath   string
	backendURL  string
	verbose     bool
	noColor     bool
	metricsDump bool
}

// app carries the collaborators shared by every command. Tests replace the
// backend and store with fakes.
type app struct {
	opts   options
	cfg    config.AppConfig
	logger *slog.Logger

	metrics *statsd.Recorder
	store   ports.CredentialStore
	auth    ports.AuthAPI
	users   ports.UsersAPI
	clock   ports.Clock
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd(&app{}).ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "musicclouds",
		Short: "Music-Clouds account CLI",
		Long: `musicclouds signs in to the Music-Clouds user service and keeps the
issued credential on disk, so later commands act as the signed-in user.

It shares session rules with the web client: expired credentials are
cleared, admin screens require the ADMIN role, and route decisions can be
checked offline with 'musicclouds route check'.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "completion" || cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !a.opts.metricsDump || a.metrics == nil {
				return nil
			}
			return dumpMetrics(cmd.ErrOrStderr(), a.cfg.Observability.Metrics.Prefix, a.metrics.Samples())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.output, "output", "o", "table", "Output format: table, json, yaml")
	flags.StringVar(&a.opts.storePath, "store", "", "Credential file (default: $XDG_CONFIG_HOME/musicclouds/access_token)")
	flags.StringVar(&a.opts.backendURL, "backend", "", "User service base URL (default: $BACKEND_BASE_URL)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Log session activity to stderr")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&a.opts.metricsDump, "metrics-dump", false, "Print the session metrics emitted by the command to stderr")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newStatusCmd(a),
		newRouteCmd(a),
		newNavCmd(a),
		newUsersCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	switch a.opts.output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q (valid options: table, json, yaml)", a.opts.output)
	}
	if a.opts.noColor {
		color.NoColor = true
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if a.opts.backendURL != "" {
		cfg.Backend.BaseURL = strings.TrimSuffix(strings.TrimSpace(a.opts.backendURL), "/")
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.opts.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if a.metrics == nil {
		a.metrics = &statsd.Recorder{}
	}
	if a.store == nil {
		path := a.opts.storePath
		if path == "" {
			path = localstore.DefaultFilePath()
		}
		a.store = localstore.NewFileStore(path)
	}
	return nil
}

// backend builds the user-service client on first use.
func (a *app) backend() error {
	if a.auth != nil && a.users != nil {
		return nil
	}
	client, err := backend.NewClient(backend.Options{
		BaseURL:   a.cfg.Backend.BaseURL,
		TokenPath: a.cfg.Backend.TokenPath,
		Timeout:   a.cfg.Backend.Timeout,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	if a.auth == nil {
		a.auth = client
	}
	if a.users == nil {
		a.users = client
	}
	return nil
}

// session returns a manager over the CLI's credential file with the stored session restored.
func (a *app) session(ctx context.Context) *service.SessionManager {
	m := service.NewSessionManager(service.SessionOptions{
		Store:   a.store,
		Auth:    a.auth,
		Clock:   a.clock,
		Logger:  a.logger,
		Metrics: a.metrics,
		Policy: service.SessionPolicy{
			PurgeMalformed:   a.cfg.Credentials.PurgeMalformed,
			AllowNonExpiring: a.cfg.Credentials.AllowNonExpiring,
		},
	})
	m.Restore(ctx)
	return m
}

// activeCredential returns the stored credential when the session is active.
// Expired credentials are cleared by IsActive before this returns.
func (a *app) activeCredential(ctx context.Context, m *service.SessionManager) (string, bool) {
	if !m.IsActive(ctx) {
		return "", false
	}
	return m.Credential(ctx)
}

// render writes data as JSON or YAML, or calls table for the default format.
func (a *app) render(w io.Writer, data any, table func(w io.Writer) error) error {
	switch a.opts.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if err := table(tw); err != nil {
			return err
		}
		return tw.Flush()
	}
}

// dumpMetrics prints samples in the line format the web service sends to StatsD.
func dumpMetrics(w io.Writer, prefix string, samples []statsd.Sample) error {
	lines, err := statsd.NewClient(statsd.Config{Prefix: prefix})
	if err != nil {
		return err
	}
	for _, s := range samples {
		value := strconv.FormatFloat(s.Value, 'f', -1, 64)
		if _, err := fmt.Fprintln(w, lines.Line(s.Name, value, s.Kind, s.Tags)); err != nil {
			return err
		}
	}
	return nil
}

// validationError joins field messages in a stable order.
func validationError(errs map[string]string) error {
	msgs := make([]string, 0, len(errs))
	for _, msg := range errs {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, " "))
}

// Fail prints err the way every command reports failures.
func Fail(w io.Writer, err error) {
	fmt.Fprintln(w, errFmt("Error:"), err)
}
