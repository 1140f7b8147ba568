package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fasttrack/internal/bootstrap"
	fastingdto "fasttrack/internal/modules/fasting/dto"
	"fasttrack/internal/platform/config"
	apperrors "fasttrack/internal/platform/errors"
	"fasttrack/internal/platform/prefs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "fasttrack",
		Short:         "Intermittent fasting tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", config.DefaultDataDir, "directory for the local cache, credentials and journal")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newRunCmd(&dataDir))
	root.AddCommand(newStartCmd(&dataDir))
	root.AddCommand(newStopCmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newProtocolCmd(&dataDir))
	root.AddCommand(newAddCmd(&dataDir))
	root.AddCommand(newHistoryCmd(&dataDir))
	root.AddCommand(newDeleteCmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir))
	root.AddCommand(newCalendarCmd(&dataDir))
	root.AddCommand(newAuthCmd(&dataDir))
	root.AddCommand(newMigrateCmd(&dataDir))
	root.AddCommand(newSyncCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	root.AddCommand(newMCPCmd(&dataDir))
	return root
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// withHydratedApp restores fasting state for the stored identity, runs fn and closes the app.
func withHydratedApp(dataDir string, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := loadApp(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	ctx := context.Background()
	if err := app.Hydrate(ctx); err != nil {
		return fmt.Errorf("restore fasting state: %w", err)
	}
	return fn(ctx, app)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the fasting dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx, stop := signalContext()
			defer stop()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newRunCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Keep the timer and sync running in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx, stop := signalContext()
			defer stop()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "running, press ctrl+c to stop")
			return app.FastingCLI.Run(ctx)
		},
	}
}

func newStartCmd(dataDir *string) *cobra.Command {
	var protocol string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a fast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.FastingCLI.Start(ctx, protocol)
				if err != nil {
					return err
				}
				// One-shot processes exit before the sync driver's first push lands.
				if _, err := app.FastingCLI.Sync(ctx); err != nil && !errors.Is(err, apperrors.ErrUnauthenticated) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote sync failed: %v\n", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "started %s fast %s at %s, target %.0fh\n",
					out.Protocol, out.ID, out.StartTime.Local().Format("15:04"), out.TargetHours)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&protocol, "protocol", "", "protocol to use: 16:8|18:6|20:4")
	return cmd
}

func newStopCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running fast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.FastingCLI.Stop(ctx)
				if err != nil && out.Session.ID == "" {
					return err
				}
				printSession(cmd.OutOrStdout(), "stopped", out.Session)
				if out.JournalPath != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "journal: %s\n", out.JournalPath)
				}
				if err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
				return nil
			})
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current fast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.FastingCLI.Status(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if st.Notice != "" {
					_, _ = fmt.Fprintln(w, st.Notice)
				}
				if st.Finished != nil {
					printSession(w, "completed", *st.Finished)
				}
				mode := "anonymous"
				if st.Identified {
					mode = "signed in"
				}
				if st.Active == nil {
					_, _ = fmt.Fprintf(w, "idle  protocol=%s  %s\n", st.Protocol, mode)
					return nil
				}
				_, _ = fmt.Fprintf(w, "fasting %s since %s (%s)\n", st.Active.Protocol,
					st.Active.StartTime.Local().Format("Mon 15:04"), humanize.Time(st.Active.StartTime))
				_, _ = fmt.Fprintf(w, "elapsed %s  remaining %s  %.1f%%  %s\n",
					clock(st.Progress.Elapsed), clock(st.Progress.Remaining), st.Progress.Percent, mode)
				return nil
			})
		},
	}
}

func newProtocolCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "protocol <16:8|18:6|20:4>",
		Short: "Select the protocol for the next fast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.FastingCLI.SelectProtocol(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "protocol set to %s\n", args[0])
				return nil
			})
		},
	}
}

func newAddCmd(dataDir *string) *cobra.Command {
	var protocol, duration string
	var completed bool
	var actual float64
	cmd := &cobra.Command{
		Use:   "add <start>",
		Short: "Record a past fast",
		Long:  "Record a past fast. The start accepts 2006-01-02 15:04 or natural language such as \"yesterday at 8pm\".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := fastingdto.ManualInput{
				Protocol:  protocol,
				StartText: strings.Join(args, " "),
				Completed: completed,
				Duration:  duration,
			}
			if cmd.Flags().Changed("actual") {
				input.ActualHours = &actual
			}
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.FastingCLI.AddManual(ctx, input)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), "added", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&protocol, "protocol", "", "protocol of the fast (defaults to the selected one)")
	cmd.Flags().StringVar(&duration, "duration", "", "actual length as HH:MM")
	cmd.Flags().Float64Var(&actual, "actual", 0, "actual length in hours")
	cmd.Flags().BoolVar(&completed, "done", false, "mark the fast as completed")
	return cmd
}

func newHistoryCmd(dataDir *string) *cobra.Command {
	var rangeValue, status string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past fasts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				records, err := app.InsightsCLI.History(ctx, rangeValue, status)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no fasts")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, r := range records {
					mark := "incomplete"
					if r.Completed {
						mark = "completed"
					}
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Start.Local().Format("2006-01-02 15:04"),
						r.Protocol, r.DurationLabel, mark, humanize.Time(r.Start))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&rangeValue, "range", "all", "week|month|all")
	cmd.Flags().StringVar(&status, "status", "all", "all|completed|incomplete")
	return cmd
}

func newDeleteCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a fast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.FastingCLI.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newStatsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show fasting statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.InsightsCLI.Stats(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "total:      %d\n", s.Total)
				_, _ = fmt.Fprintf(w, "completed:  %d (%.0f%%)\n", s.Completed, s.CompletionRate)
				_, _ = fmt.Fprintf(w, "this week:  %d\n", s.ThisWeek)
				_, _ = fmt.Fprintf(w, "this month: %d\n", s.ThisMonth)
				_, _ = fmt.Fprintf(w, "average:    %s\n", s.AverageLabel)
				_, _ = fmt.Fprintf(w, "streak:     %d days\n", s.CurrentStreak)
				return nil
			})
		},
	}
}

func newCalendarCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month of fasting days",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var year int
			var month time.Month
			if len(args) == 1 {
				at, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("month must look like 2025-04: %w", apperrors.ErrInvalidInput)
				}
				year, month = at.Year(), at.Month()
			}
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.InsightsCLI.Month(ctx, year, month)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s %d\n Su Mo Tu We Th Fr Sa\n", out.Month, out.Year)
				col := 0
				if len(out.Days) > 0 {
					col = int(out.Days[0].Date.Weekday())
				}
				_, _ = fmt.Fprint(w, strings.Repeat("   ", col))
				for _, d := range out.Days {
					_, _ = fmt.Fprintf(w, "%2d%s", d.Date.Day(), dayMark(d.Status))
					col++
					if col == 7 {
						_, _ = fmt.Fprintln(w)
						col = 0
					}
				}
				if col != 0 {
					_, _ = fmt.Fprintln(w)
				}
				_, _ = fmt.Fprintf(w, "%d of %d completed (%.0f%%), %d fasting days\n",
					out.Completed, out.Total, out.CompletionRate, out.FastingDays)
				_, _ = fmt.Fprintln(w, "+ completed  - incomplete  ~ mixed")
				return nil
			})
		},
	}
}

func dayMark(status string) string {
	switch status {
	case "completed":
		return "+"
	case "incomplete":
		return "-"
	case "mixed":
		return "~"
	}
	return " "
}

func newAuthCmd(dataDir *string) *cobra.Command {
	auth := &cobra.Command{Use: "auth", Short: "Manage the signed-in identity"}

	var userID, email, token string
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and move local history to the records service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()
			identity, err := app.IdentityCLI.Login(ctx, userID, email, token)
			if err != nil {
				return err
			}
			if app.Config.RemoteURL == "" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: no remote_url configured, history stays local")
			}
			// Hydrating under the new identity migrates anonymous records.
			if err := app.Hydrate(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", identity.UserID)
			return nil
		},
	}
	login.Flags().StringVar(&userID, "user", "", "user id")
	login.Flags().StringVar(&email, "email", "", "account email")
	login.Flags().StringVar(&token, "token", "", "bearer token for the records service")
	_ = login.MarkFlagRequired("user")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Sign out; new fasts are kept on this device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.IdentityCLI.Logout(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			identity, err := app.IdentityCLI.WhoAmI(context.Background())
			if err != nil {
				return err
			}
			if !identity.Present() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "anonymous")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", identity.UserID, identity.Email)
			return nil
		},
	}

	auth.AddCommand(login, logout, whoami)
	return auth
}

func newMigrateCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Retry moving local records to the records service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.FastingCLI.Migrate(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrated %d, failed %d\n", out.Migrated, out.Failed)
				return nil
			})
		},
	}
}

func newSyncCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the running fast to the records service now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.FastingCLI.Sync(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "synced %s as %s\n", out.SessionID, out.RemoteID)
				return nil
			})
		},
	}
}

func newExportCmd(dataDir *string) *cobra.Command {
	var initTemplate bool
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every finished fast to the markdown journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(*dataDir)
			if err != nil {
				return err
			}
			if dir != "" {
				abs, err := config.ExpandPath(dir)
				if err != nil {
					return err
				}
				store := prefs.NewStore(cfg.PrefsPath)
				p := store.Load()
				p.ExportDir = abs
				if err := store.Save(p); err != nil {
					return err
				}
			}
			if initTemplate {
				path, err := bootstrap.DefaultTemplate(cfg)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "template: %s\n", path)
			}
			return withHydratedApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.FastingCLI.Export(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d fasts to %s\n", len(out.Paths), app.Config.JournalDir)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&initTemplate, "init-template", false, "write the default journal template first")
	cmd.Flags().StringVar(&dir, "dir", "", "journal directory to use from now on")
	return cmd
}

func newMCPCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve fasting tools over MCP on stdio",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx, stop := signalContext()
			defer stop()
			wait := app.RunBackground(ctx)
			defer func() {
				stop()
				wait()
			}()
			return app.MCP.Serve()
		},
	}
}

func printSession(w io.Writer, verb string, s fastingdto.SessionOutput) {
	actual := "-"
	if s.ActualHours != nil {
		actual = fmt.Sprintf("%.1fh", *s.ActualHours)
	}
	result := "incomplete"
	if s.Completed {
		result = "completed"
	}
	_, _ = fmt.Fprintf(w, "%s %s fast %s from %s, %s of %.0fh, %s\n",
		verb, s.Protocol, s.ID, s.StartTime.Local().Format("2006-01-02 15:04"), actual, s.TargetHours, result)
}

func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}
