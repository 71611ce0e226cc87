package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	goAset "github.com/mansetdig/goAset"
	"github.com/mansetdig/goAset/session"
	"github.com/spf13/cobra"
)

// errNoSession is returned by commands that need a session when none is
// stored and no credentials were supplied.
var errNoSession = errors.New("not logged in: run 'goaset login' or pass --username and --password")

type app struct {
	out, errOut io.Writer

	redisAddr string
	tabID     string
	baseURL   string
	username  string
	password  string
	verbose   bool

	m       *goAset.Manager
	store   session.Store
	tab     string
	release func()
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "goaset",
		Short: "Log in to the asset-lending service and browse its catalog.",
		Long: `goaset runs the asset-lending client session from a terminal.

With --redis the session is kept in Redis under a tab id, so later commands
given the same --tab reuse it. Without --redis the session lasts one command.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&a.redisAddr, "redis", "", "redis address for the session store")
	f.StringVar(&a.tabID, "tab", "", "tab id of an existing session (with --redis)")
	f.StringVar(&a.baseURL, "base-url", "", "backend base URL (overrides GOASET_BACKEND_BASE_URL)")
	f.StringVarP(&a.username, "username", "u", "", "username (or GOASET_USERNAME)")
	f.StringVarP(&a.password, "password", "p", "", "password (or GOASET_PASSWORD)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log session activity to stderr")

	root.AddCommand(
		newLoginCmd(a),
		newStatusCmd(a),
		newMenuCmd(a),
		newAssetsCmd(a),
		newRefreshCmd(a),
		newLogoutCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	cfg, err := goAset.LoadConfig()
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.Backend.BaseURL = a.baseURL
	}
	if a.username == "" {
		a.username = os.Getenv("GOASET_USERNAME")
	}
	if a.password == "" {
		a.password = os.Getenv("GOASET_PASSWORD")
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	store, tab, release, err := openStore(cmd.Context(), a.redisAddr, a.tabID, cfg.Session)
	if err != nil {
		return err
	}

	b := goAset.New().
		WithConfig(cfg).
		WithStore(store).
		WithLogger(logger)
	if a.verbose {
		b = b.WithEventSink(goAset.NewSlogSink(logger))
	}
	m, err := b.Build()
	if err != nil {
		release()
		return err
	}

	a.m, a.store, a.tab, a.release = m, store, tab, release
	return nil
}

func (a *app) close() {
	if a.m != nil {
		a.m.Teardown()
		a.m = nil
	}
	if a.release != nil {
		a.release()
		a.release = nil
	}
}

// ensureSession restores the stored session or, failing that, logs in with
// the supplied credentials.
func (a *app) ensureSession(ctx context.Context) error {
	if a.m.Bootstrap(ctx) == goAset.StateAuthenticated {
		return nil
	}
	if a.username == "" || a.password == "" {
		return errNoSession
	}
	_, err := a.m.Login(ctx, a.username, a.password)
	return err
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
