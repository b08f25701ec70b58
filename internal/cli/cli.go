// Package cli implements the chartdeck command-line interface.
//
// The commands turn spreadsheet files into charts: inspect a dataset, build
// and export a chart, explore one interactively in the terminal, or serve
// the same pipeline over HTTP. Usage events are recorded in a session (the
// "local" session unless --session is given) so that history and dashboard
// statistics survive between runs.
//
// # Commands
//
//   - inspect: show columns, numeric columns, default axes and a preview
//   - chart: build a chart and write PNG, PDF or JSON artifacts
//   - explore: interactive terminal view (tab cycles kind, x/y cycle axes)
//   - serve: HTTP API
//   - history: upload history, insights and dashboard counters
//   - convert: import a spreadsheet and write dataset JSON
//   - config: print the effective configuration
//   - store: manage the local session store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline and store hook events. Loggers are passed through
// context.Context.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/buildinfo"
	"github.com/matzehuels/chartdeck/pkg/observability"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "chartdeck"

	// defaultSession is the session CLI usage is recorded in.
	defaultSession = "local"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	sessionID  string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		sessionID: defaultSession,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Chartdeck turns spreadsheets into charts",
		Long:          `Chartdeck is a CLI tool for turning tabular data (JSON, CSV, TSV, XLSX) into bar, line, doughnut and scatter charts, exported as PNG, PDF or JSON.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				observability.NewLogHooks(c.Logger).Register()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/chartdeck/config.toml)")
	root.PersistentFlags().StringVar(&c.sessionID, "session", defaultSession, "session that records usage history")

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.chartCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	return strings.Split(s, ",")
}
