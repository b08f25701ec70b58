package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/io"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/session"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the upload history and usage counters of a session",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyAddCommand())
	cmd.AddCommand(c.historyRemoveCommand())
	cmd.AddCommand(c.historyInsightCommand())
	cmd.AddCommand(c.historyStatsCommand())

	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List uploaded datasets, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				st, _, err := e.sessions.LoadOrCreate(ctx, e.sessionID)
				if err != nil {
					return err
				}
				if len(st.Uploads) == 0 {
					printInfo("No uploads in session %s", e.sessionID)
					printNextStep("Add one", appName+" history add data.csv")
					return nil
				}
				fmt.Println(renderTable([]string{"ID", "File", "Rows", "Columns", "Size", "Uploaded"}, uploadRows(st.Uploads), map[int]bool{2: true, 3: true}))
				return nil
			})
		},
	}
}

func (c *CLI) historyAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add [file]",
		Short: "Import a dataset and record it in the upload history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				d, err := io.ImportFile(args[0])
				if err != nil {
					return err
				}

				var up session.Upload
				if _, err := e.sessions.Update(ctx, e.sessionID, func(st *session.State) error {
					up = st.RecordUpload(d)
					return nil
				}); err != nil {
					return err
				}
				if err := e.sessions.SaveDataset(ctx, e.sessionID, up.ID, d); err != nil {
					return err
				}
				_ = notify.Safe(e.external(), e.logger).Notify(ctx, notify.UploadRecorded(up.Name, up.Rows, up.Columns, up.SizeKB))

				printSuccess("Recorded %s", StyleHighlight.Render(up.Name))
				printDetail("id %s", up.ID)
				printDatasetStats(up.Rows, up.Columns, up.SizeKB)
				return nil
			})
		},
	}
}

func (c *CLI) historyRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"remove"},
		Short:   "Remove an upload from the history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return c.withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				if _, err := e.sessions.Update(ctx, e.sessionID, func(st *session.State) error {
					if !st.DeleteUpload(id) {
						return errors.New(errors.ErrCodeUploadNotFound, "upload %q not found", id)
					}
					return nil
				}); err != nil {
					return err
				}
				if err := e.sessions.DeleteDataset(ctx, e.sessionID, id); err != nil {
					e.logger.Warn("delete upload rows", "upload", id, "error", err)
				}
				printSuccess("Removed %s", id)
				return nil
			})
		},
	}
}

func (c *CLI) historyInsightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insight [name] [description]",
		Short: "Record an analysis note about a dataset",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := ""
			if len(args) == 2 {
				description = args[1]
			}
			return c.withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				if err := e.tracker().Notify(ctx, notify.InsightLogged(args[0], description)); err != nil {
					return err
				}
				printSuccess("Recorded insight for %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}

func (c *CLI) historyStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counters and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				stats, err := e.statsSource().Stats(ctx)
				if err != nil {
					return err
				}
				printStats(stats)
				return nil
			})
		},
	}
}

// withEnv opens the command environment, runs fn and closes it.
func (c *CLI) withEnv(ctx context.Context, fn func(context.Context, *env) error) error {
	e, err := c.openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close(ctx)
	return fn(ctx, e)
}

func uploadRows(uploads []session.Upload) [][]string {
	rows := make([][]string, len(uploads))
	for i, u := range uploads {
		rows[i] = []string{
			u.ID,
			u.Name,
			fmt.Sprint(u.Rows),
			fmt.Sprint(u.Columns),
			fmt.Sprintf("%.1f KB", u.SizeKB),
			formatRelativeTime(u.UploadDate),
		}
	}
	return rows
}

func printStats(s notify.Stats) {
	printKeyValue("Files", StyleNumber.Render(fmt.Sprint(s.TotalFiles)))
	printKeyValue("Charts", StyleNumber.Render(fmt.Sprint(s.ChartsCreated)))
	printKeyValue("AI insights", StyleNumber.Render(fmt.Sprint(s.AIInsights)))
	if len(s.RecentActivity) == 0 {
		return
	}
	printNewline()
	fmt.Println(StyleTitle.Render("Recent activity"))
	for _, e := range s.RecentActivity {
		printDetail("%-10s %-30s %s", e.Action, truncate(e.Name, 30), formatRelativeTime(e.At))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-1]) + "…"
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
