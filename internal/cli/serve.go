package cli

import (
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/format"
	"taskdeck/internal/server"
	"taskdeck/internal/store"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		addr string
		db   string
		seed bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference REST backend (SQLite)",
		Example: strings.TrimSpace(`
# Serve on the configured address with sample data on first run
taskdeck serve --seed

# Throwaway in-memory backend on another port
taskdeck serve --addr 127.0.0.1:8001 --db :memory: --seed
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := app.logger()
			if !cmd.Flags().Changed("addr") {
				addr = app.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("db") {
				db = app.cfg.Server.DBPath
			}

			st, err := store.Open(ctx, db)
			if err != nil {
				return err
			}
			defer st.Close()

			seeded := 0
			if seed {
				if seeded, err = server.Seed(ctx, st, time.Now()); err != nil {
					return err
				}
				log.Info("seeded", "tasks", seeded)
			}

			srv, err := server.New(st, server.Config{Addr: addr, Logger: log})
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", srv.Addr())
			if err != nil {
				return err
			}
			_ = writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"addr": ln.Addr().String(), "db": db, "seeded": seeded},
			})
			return srv.Serve(ctx, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, TASKDECK_SERVER_ADDR)")
	cmd.Flags().StringVar(&db, "db", "", "SQLite database path or :memory: (default from config, TASKDECK_DB_PATH)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Insert sample tasks when the database is empty")
	return cmd
}
