package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/notify"
)

type toastsMsg []notify.Notification

// toastFeed bridges hub callbacks into the Bubble Tea loop. Only the latest
// snapshot matters, so the channel holds one and older ones are replaced.
type toastFeed struct {
	ch chan []notify.Notification
}

func newToastFeed(h *notify.Hub) (*toastFeed, func()) {
	f := &toastFeed{ch: make(chan []notify.Notification, 1)}
	stop := h.Subscribe(func(snap []notify.Notification) {
		for {
			select {
			case f.ch <- snap:
				return
			default:
				select {
				case <-f.ch:
				default:
				}
			}
		}
	})
	return f, stop
}

func (f *toastFeed) wait() tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg { return toastsMsg(<-f.ch) }
}

func renderToasts(toasts []notify.Notification, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	if width > 60 {
		width = 60
	}
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		st := lipgloss.NewStyle().Padding(0, 1).Width(width).Foreground(colorToastFg)
		switch t.Severity {
		case notify.Error:
			st = st.Background(colorDanger)
		case notify.Success:
			st = st.Background(colorSuccess)
		default:
			st = st.Background(colorAccent)
		}
		lines = append(lines, st.Render(t.Message))
	}
	return strings.Join(lines, "\n")
}
