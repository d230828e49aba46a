package cli

import (
	"context"

	"github.com/spf13/cobra"

	"taskdeck/internal/format"
	"taskdeck/internal/metadata"
	"taskdeck/internal/model"
)

func (r nameRow) String() string { return r.Name }

// loadMetadata returns a refreshed cache, so duplicate checks see the server's names.
func (app *App) loadMetadata(ctx context.Context) (*metadata.Cache, error) {
	log := app.logger()
	meta := metadata.New(app.client(log), metadata.WithLogger(log), metadata.WithPalette(app.cfg.TagPalette))
	if err := meta.Refresh(ctx); err != nil {
		return nil, userError{err}
	}
	return meta, nil
}

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show built-in and custom lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := app.loadMetadata(cmd.Context())
			if err != nil {
				return err
			}
			rows := nameTable{}
			for _, name := range meta.AllLists() {
				rows = append(rows, nameRow{Name: name, Builtin: model.IsBuiltinList(name)})
			}
			return writeOut(cmd, app, format.Envelope{Data: rows})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a custom list (names are lowercased)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := app.loadMetadata(cmd.Context())
			if err != nil {
				return err
			}
			name, err := meta.CreateList(cmd.Context(), args[0])
			if err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: nameRow{Name: name}})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a custom list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := app.loadMetadata(cmd.Context())
			if err != nil {
				return err
			}
			name := model.NormalizeListName(args[0])
			if err := meta.DeleteList(cmd.Context(), name); err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: deleted{Kind: "list", ID: name}})
		},
	})
	return cmd
}

func newTagsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show tags with their display colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := app.loadMetadata(cmd.Context())
			if err != nil {
				return err
			}
			rows := nameTable{}
			for _, name := range meta.Tags() {
				rows = append(rows, nameRow{Name: name, Color: meta.TagColor(name)})
			}
			return writeOut(cmd, app, format.Envelope{Data: rows})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag (case-sensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := app.loadMetadata(cmd.Context())
			if err != nil {
				return err
			}
			name, err := meta.CreateTag(cmd.Context(), args[0])
			if err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: nameRow{Name: name, Color: meta.TagColor(name)}})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a tag",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := app.loadMetadata(cmd.Context())
			if err != nil {
				return err
			}
			if err := meta.DeleteTag(cmd.Context(), args[0]); err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: deleted{Kind: "tag", ID: args[0]}})
		},
	})
	return cmd
}
