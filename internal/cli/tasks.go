package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/format"
	"taskdeck/internal/metadata"
	"taskdeck/internal/model"
	"taskdeck/internal/selection"
	"taskdeck/internal/viewfilter"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksCountsCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDoneCmd(app))
	cmd.AddCommand(newTasksRmCmd(app))
	cmd.AddCommand(newTasksParseCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		view   string
		search string
		tag    string
		sortBy string
		order  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks through the same view/search/tag/sort pipeline as the TUI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := listParams(view, search, tag, sortBy, order)
			if err != nil {
				return err
			}
			tasks, err := app.client(app.logger()).ListTasks(cmd.Context())
			if err != nil {
				return userError{err}
			}
			visible := viewfilter.Apply(tasks, p, time.Now())
			if visible == nil {
				visible = []model.Task{}
			}
			return writeOut(cmd, app, format.Envelope{
				Data: taskTable(visible),
				Meta: map[string]any{"count": len(visible), "total": len(tasks)},
			})
		},
	}
	cmd.Flags().StringVar(&view, "view", "", "today|upcoming|calendar or a list name (default: all tasks)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive title/description search")
	cmd.Flags().StringVar(&tag, "tag", "", "Only tasks carrying this tag")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by priority|status (default: server order)")
	cmd.Flags().StringVar(&order, "order", string(viewfilter.Asc), "Sort order (asc|desc)")
	return cmd
}

func listParams(view, search, tag, sortBy, order string) (viewfilter.Params, error) {
	p := viewfilter.Params{
		View:  strings.TrimSpace(view),
		Query: search,
		Order: viewfilter.SortOrder(order),
	}
	if !viewfilter.IsReservedView(p.View) {
		p.View = model.NormalizeListName(p.View)
	}
	if tag = strings.TrimSpace(tag); tag != "" {
		p.Tag = model.Some(tag)
	}
	switch f := viewfilter.SortField(sortBy); f {
	case viewfilter.SortNone, viewfilter.SortPriority, viewfilter.SortStatus:
		p.SortBy = f
	default:
		return p, invalidFlagError{flag: "sort", value: sortBy, want: "priority or status"}
	}
	switch p.Order {
	case viewfilter.Asc, viewfilter.Desc:
	default:
		return p, invalidFlagError{flag: "order", value: order, want: "asc or desc"}
	}
	return p, nil
}

func newTasksCountsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show the sidebar bucket counts (today, upcoming, every list)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := app.logger()
			client := app.client(log)
			tasks, err := client.ListTasks(ctx)
			if err != nil {
				return userError{err}
			}
			meta := metadata.New(client, metadata.WithLogger(log))
			if err := meta.Refresh(ctx); err != nil {
				return userError{err}
			}
			lists := meta.AllLists()
			counts := viewfilter.CountBuckets(tasks, lists, time.Now())
			return writeOut(cmd, app, format.Envelope{Data: newCountsTable(counts, lists)})
		},
	}
}

type taskFlags struct {
	description string
	status      string
	priority    string
	due         string
	list        string
	tags        []string
	subtasks    []string
}

func (f *taskFlags) register(cmd *cobra.Command, withSubtasks bool) {
	cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&f.status, "status", "", "todo|in-progress|done")
	cmd.Flags().StringVar(&f.priority, "priority", "", "low|medium|high")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD, empty clears on update)")
	cmd.Flags().StringVar(&f.list, "list", "", "List name (empty clears on update)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tag (repeatable; replaces all tags on update)")
	if withSubtasks {
		cmd.Flags().StringArrayVar(&f.subtasks, "subtask", nil, "Subtask title (repeatable)")
	}
}

// apply copies every flag the user set onto the draft.
func (f *taskFlags) apply(cmd *cobra.Command, d *selection.Draft) error {
	changed := cmd.Flags().Changed
	if changed("description") {
		d.Description = f.description
	}
	if changed("status") {
		s := model.Status(strings.TrimSpace(f.status))
		if !s.Valid() {
			return invalidFlagError{flag: "status", value: f.status, want: "todo, in-progress or done"}
		}
		d.Status = s
	}
	if changed("priority") {
		p := model.Priority(strings.TrimSpace(f.priority))
		if !p.Valid() {
			return invalidFlagError{flag: "priority", value: f.priority, want: "low, medium or high"}
		}
		d.Priority = p
	}
	if changed("due") {
		d.DueDate = strings.TrimSpace(f.due)
	}
	if changed("list") {
		d.List = model.OptString(model.NormalizeListName(f.list))
	}
	if changed("tag") {
		d.Tags = nil
		for _, t := range f.tags {
			if t = strings.TrimSpace(t); t != "" {
				d.Tags = append(d.Tags, t)
			}
		}
	}
	for _, s := range f.subtasks {
		d.AddSubtask(s)
	}
	return nil
}

func newTasksAddCmd(app *App) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := selection.NewDraft(model.None[string]())
			d.Title = strings.Join(args, " ")
			if err := f.apply(cmd, &d); err != nil {
				return err
			}
			body, err := d.CreateBody()
			if err != nil {
				return userError{err}
			}
			task, err := app.client(app.logger()).CreateTask(cmd.Context(), body)
			if err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: taskDetail(task)})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.client(app.logger()).GetTask(cmd.Context(), args[0])
			if err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: taskDetail(task)})
		},
	}
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var (
		f     taskFlags
		title string
	)
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change task fields; only fields that differ are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := app.client(app.logger())
			base, err := client.GetTask(ctx, args[0])
			if err != nil {
				return userError{err}
			}
			d := selection.DraftFromTask(base)
			if cmd.Flags().Changed("title") {
				d.Title = title
			}
			if err := f.apply(cmd, &d); err != nil {
				return err
			}
			body, err := d.UpdateBody(base)
			if err != nil {
				return userError{err}
			}
			if body.IsEmpty() {
				return writeOut(cmd, app, format.Envelope{Data: taskDetail(base), Meta: map[string]any{"changed": []string{}}})
			}
			task, err := client.UpdateTask(ctx, base.ID, body)
			if err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: taskDetail(task), Meta: map[string]any{"changed": body.Fields()}})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	f.register(cmd, false)
	return cmd
}

func newTasksDoneCmd(app *App) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task done (or back to todo with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := model.StatusDone
			if undo {
				st = model.StatusTodo
			}
			task, err := app.client(app.logger()).UpdateTask(cmd.Context(), args[0], model.TaskUpdate{Status: &st})
			if err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: taskDetail(task)})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Reopen the task instead")
	return cmd
}

type deleted struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (d deleted) String() string { return "deleted " + d.Kind + " " + d.ID }

func newTasksRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client(app.logger()).DeleteTask(cmd.Context(), args[0]); err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: deleted{Kind: "task", ID: args[0]}})
		},
	}
}

func newTasksParseCmd(app *App) *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "parse <text...>",
		Short: "Parse a natural-language task description (optionally create it)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := app.client(app.logger())
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return invalidFlagError{flag: "text", value: text, want: "a task description"}
			}
			parsed, err := client.ParseNaturalLanguage(ctx, text)
			if err != nil {
				return userError{err}
			}
			if !create {
				return writeOut(cmd, app, format.Envelope{Data: parsed})
			}
			d := selection.NewDraft(model.None[string]())
			d.ApplyParsed(parsed)
			body, err := d.CreateBody()
			if err != nil {
				return userError{err}
			}
			task, err := client.CreateTask(ctx, body)
			if err != nil {
				return userError{err}
			}
			return writeOut(cmd, app, format.Envelope{Data: taskDetail(task)})
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Create the parsed task")
	return cmd
}
