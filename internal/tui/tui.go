package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/store"
	"taskdeck/internal/workbench"
)

// UIStateStore persists the view selection between runs. *store.DB satisfies it.
type UIStateStore interface {
	LoadUIState(ctx context.Context) (store.UIState, error)
	SaveUIState(ctx context.Context, st store.UIState) error
}

type Options struct {
	UIState UIStateStore
	Logger  *slog.Logger
}

func Run(ctx context.Context, wb *workbench.Workbench, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, wb, opts)
	feed, stop := newToastFeed(wb.Notifier())
	defer stop()
	m.feed = feed

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok {
		fm.saveUIState()
	}
	return err
}
