// Package format writes command results for scripts (json) and people (text).
package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Envelope is the shape of every json result: data plus optional meta.
type Envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Tabular is implemented by results with a table rendering in text mode.
type Tabular interface {
	Columns() []string
	Rows() [][]string
}

type UnknownFormatError struct {
	Format string
}

func (e UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format: %s (want json or text)", e.Format)
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		return WriteText(w, v)
	default:
		return UnknownFormatError{Format: format}
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteText renders tables for Tabular data, Stringers and strings as-is,
// and falls back to indented json for anything else.
func WriteText(w io.Writer, v any) error {
	if env, ok := v.(Envelope); ok {
		v = env.Data
	}
	switch t := v.(type) {
	case Tabular:
		rows := t.Rows()
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "(none)")
			return err
		}
		_, err := fmt.Fprintln(w, renderTable(t.Columns(), rows))
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, t.String())
		return err
	case string:
		_, err := fmt.Fprintln(w, t)
		return err
	}
	return WriteJSON(w, v, true)
}

func renderTable(cols []string, rows [][]string) string {
	cell := lipgloss.NewStyle().PaddingRight(2)
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			return cell
		}).
		Headers(cols...).
		Rows(rows...).
		String()
}
