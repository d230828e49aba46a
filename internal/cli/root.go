package cli

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/format"
	"taskdeck/internal/metadata"
	"taskdeck/internal/notify"
	"taskdeck/internal/store"
	"taskdeck/internal/tui"
	"taskdeck/internal/workbench"
)

type App struct {
	APIURL   string
	Format   string
	Pretty   bool
	LogFile  string
	LogLevel string

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskdeck",
		Short:        "Terminal client for the taskdeck task API (TUI + CLI)",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskdeck

  # Run the API locally with sample data
  taskdeck serve --seed

  # Scriptable commands
  taskdeck tasks list --view today
  taskdeck tasks add "Pay rent" --due 2024-02-01 --priority high
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.resolve(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "API base URL (default from config or TASKDECK_API_URL)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKDECK_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Log file for the TUI (default from config or TASKDECK_LOG_FILE)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newTagsCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// resolve layers flags over the loaded config (which already applied env).
func (app *App) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("api") {
		cfg.APIURL = strings.TrimSpace(app.APIURL)
	}
	if flags.Changed("log-file") {
		cfg.LogFile = strings.TrimSpace(app.LogFile)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.TrimSpace(app.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch app.Format {
	case "json", "text":
	default:
		return format.UnknownFormatError{Format: app.Format}
	}
	app.cfg = cfg
	return nil
}

func (app *App) logger() *slog.Logger {
	return config.NewStderrLogger(app.cfg.LogLevel)
}

func (app *App) client(log *slog.Logger) *api.Client {
	return api.New(app.cfg.APIURL,
		api.WithLoadTimeout(app.cfg.LoadTimeout),
		api.WithRequestTimeout(app.cfg.RequestTimeout),
		api.WithLogger(log),
	)
}

func runTUI(cmd *cobra.Command, app *App) error {
	if !isTerminal(cmd.InOrStdin()) || !isTerminal(cmd.OutOrStdout()) {
		return notTerminalError{}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := app.cfg

	log, closer := config.OpenLogFile(cfg.LogFile, cfg.LogLevel)
	defer closer.Close()
	log.Info("start", "api", cfg.APIURL)

	client := app.client(log)
	metaOpts := []metadata.Option{metadata.WithPalette(cfg.TagPalette), metadata.WithLogger(log)}
	opts := tui.Options{Logger: log}

	// The cache is optional: without it the TUI still runs, minus offline names.
	db, err := store.Open(ctx, cfg.CachePath)
	if err != nil {
		log.Warn("open cache", "path", cfg.CachePath, "err", err)
	} else {
		defer db.Close()
		metaOpts = append(metaOpts, metadata.WithFallback(db))
		opts.UIState = db
	}

	notes := notify.New()
	defer notes.Close()
	wb := workbench.New(client,
		workbench.WithNotifier(notes),
		workbench.WithMetadata(metadata.New(client, metaOpts...)),
		workbench.WithLogger(log),
		workbench.WithDefaultView(cfg.DefaultView),
	)
	return tui.Run(ctx, wb, opts)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}
