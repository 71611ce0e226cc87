package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	goAset "github.com/mansetdig/goAset"
	"github.com/mansetdig/goAset/catalog"
	"github.com/mansetdig/goAset/jwt"
	"github.com/mansetdig/goAset/session"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "login",
		Short:   "Log in and store the session",
		Example: "  goaset --redis localhost:6379 login -u alice -p secret",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.username == "" || a.password == "" {
				return errors.New("login needs --username and --password")
			}
			res, err := a.m.Login(cmd.Context(), a.username, a.password)
			if err != nil {
				var authErr *goAset.AuthError
				if errors.As(err, &authErr) {
					return errors.New(authErr.Message)
				}
				return err
			}
			a.printf("logged in as %s (%s)\n", subjectOr(res.Subject, a.username), res.Role)
			if a.tab != "" {
				a.printf("tab: %s\n", a.tab)
			}
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session state and role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			state := a.m.Bootstrap(ctx)
			a.printf("state: %s\n", state)
			if state == goAset.StateAuthenticated {
				a.printf("role: %s\n", a.m.Role(ctx))
				if cred, err := a.m.Credential(ctx); err == nil {
					if exp, ok := jwt.ExpiresAt(cred); ok {
						a.printf("expires: %s\n", exp.UTC().Format(time.RFC3339))
					}
				}
			}
			snap, err := session.Snapshot(ctx, a.store)
			if err != nil {
				return fmt.Errorf("read session: %w", err)
			}
			if snap.RefreshToken != "" {
				a.printf("refresh: stored\n")
			} else {
				a.printf("refresh: none\n")
			}
			if a.tab != "" {
				a.printf("tab: %s\n", a.tab)
			}
			return nil
		},
	}
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List the navigation entries visible to the session role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureSession(ctx); err != nil {
				return err
			}
			for _, e := range a.m.VisibleMenu(ctx) {
				a.printf("%-12s %s\n", e.Icon, e.Label)
			}
			return nil
		},
	}
}

func newAssetsCmd(a *app) *cobra.Command {
	var (
		search string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List catalog assets a page at a time",
		Example: `  goaset assets --search drill
  goaset assets --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureSession(ctx); err != nil {
				return err
			}

			logger := slog.New(slog.DiscardHandler)
			if a.verbose {
				logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			view := catalog.NewView(catalog.New(a.m, a.m.Backend(), logger))
			if err := view.Reload(ctx); err != nil {
				if errors.Is(err, catalog.ErrSessionExpired) {
					return catalog.ErrSessionExpired
				}
				return fmt.Errorf("load assets: %w", err)
			}
			view.SetSearch(search)
			view.SetPage(page)

			p := view.Current()
			if len(p.Items) == 0 {
				a.printf("no assets\n")
			}
			for _, item := range p.Items {
				a.printf("%-10s %-30s %d\n", item.ID, item.Name, item.Stock)
			}
			a.printf("page %d of %d\n", p.Number, p.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name filter")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh credential for a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureSession(ctx); err != nil {
				return err
			}
			if !a.m.Refresh(ctx) {
				return errors.New("refresh failed")
			}
			a.printf("refreshed\n")
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.m.Bootstrap(ctx)
			if err := a.m.Logout(ctx); err != nil {
				return err
			}
			a.printf("logged out\n")
			return nil
		},
	}
}

func subjectOr(subject, fallback string) string {
	if subject != "" {
		return subject
	}
	return fallback
}
