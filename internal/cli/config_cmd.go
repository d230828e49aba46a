package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"taskdeck/internal/config"
	"taskdeck/internal/format"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config (defaults, file, env and flags applied) as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := yaml.Marshal(app.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Path()
			if err != nil {
				return err
			}
			_, statErr := os.Stat(p)
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"path": p, "exists": statErr == nil}})
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective config to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Path()
			if err != nil {
				return err
			}
			if _, err := os.Stat(p); err == nil && !force {
				return errors.New("config already exists at " + p + " (use --force to overwrite)")
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(app.cfg); err != nil {
				return err
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"path": p, "written": true}})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (a .bak copy is kept)")
	cmd.AddCommand(initCmd)

	return cmd
}
