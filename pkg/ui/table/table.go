// Package table renders tabular data for terminal and markdown surfaces.
// Data sources implement the TableData interface; the terminal renderer
// is backed by lipgloss and the markdown renderer emits pipe tables for
// chat platforms.
package table

import (
	"fmt"
	"os"
	"strings"
	"time"

	// Packages
	lipgloss "github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TableData is the interface that data sources implement to be rendered
// as a table.
type TableData interface {
	// Header returns the column header labels.
	Header() []string

	// Len returns the number of rows.
	Len() int

	// Row returns the cell values for row i, converted to strings via
	// FormatCell. Return nil to skip a row. Wrap a value in Bold to
	// render it emphasised, or in Status to colour it by health.
	Row(i int) []any
}

// Bold wraps a cell value so it renders emphasised.
type Bold struct{ Value any }

// Status wraps a cell value holding a service status so it renders
// coloured, green for healthy, yellow for degraded, red otherwise.
type Status struct{ Value any }

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	boldStyle     = lipgloss.NewStyle().Bold(true)
	cellStyle     = lipgloss.NewStyle()
	borderStyle   = lipgloss.NewStyle().Faint(true)
	healthyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	downStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render renders the table data as a string suitable for terminal
// output. When the natural width exceeds the terminal, the table is
// re-rendered constrained to the terminal width with wrapping.
func Render(data TableData) string {
	t := lgtable.New().
		Headers(data.Header()...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i := range data.Len() {
		row := data.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatCell(v)
		}
		t.Row(cells...)
	}

	result := t.Render()
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && lipgloss.Width(result) > w {
		result = t.Width(w).Render()
	}
	return result
}

// RenderMarkdown renders the table data as a markdown pipe table, for
// surfaces that render markdown rather than ANSI. Cell text is escaped
// so embedded pipes and newlines cannot break the table.
func RenderMarkdown(data TableData) string {
	header := data.Header()
	if len(header) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("|")
	for _, h := range header {
		buf.WriteString(" ")
		buf.WriteString(h)
		buf.WriteString(" |")
	}
	buf.WriteString("\n|")
	for range header {
		buf.WriteString("---|")
	}
	for i := range data.Len() {
		row := data.Row(i)
		if row == nil {
			continue
		}
		buf.WriteString("\n|")
		for j := range header {
			buf.WriteString(" ")
			if j < len(row) {
				buf.WriteString(markdownCell(row[j]))
			} else {
				buf.WriteString("-")
			}
			buf.WriteString(" |")
		}
	}
	return buf.String()
}

// FormatCell converts a cell value to a styled display string.
func FormatCell(v any) string {
	switch val := v.(type) {
	case Bold:
		return boldStyle.Render(FormatCell(val.Value))
	case Status:
		return statusStyle(plainCell(val.Value)).Render(plainCell(val.Value))
	default:
		return plainCell(v)
	}
}

// Truncate shortens s to at most max runes, collapsing newlines and
// appending an ellipsis when truncated.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max && max > 0 {
		return string(r[:max-1]) + "…"
	}
	return s
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// plainCell converts a value to an unstyled display string, with "-"
// standing in for empty or zero values.
func plainCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case Bold:
		return plainCell(val.Value)
	case Status:
		return plainCell(val.Value)
	case string:
		if val == "" {
			return "-"
		}
		return val
	case time.Time:
		if val.IsZero() {
			return "-"
		}
		return val.Format("2006-01-02 15:04")
	case float64:
		return fmt.Sprintf("%.2f", val)
	case int:
		if val == 0 {
			return "-"
		}
		return fmt.Sprint(val)
	case uint:
		if val == 0 {
			return "-"
		}
		return fmt.Sprint(val)
	default:
		if s := fmt.Sprint(val); s != "" {
			return s
		}
		return "-"
	}
}

// markdownCell converts a cell value to an escaped markdown cell string.
func markdownCell(v any) string {
	if b, ok := v.(Bold); ok {
		if inner := markdownCell(b.Value); inner != "-" {
			return "**" + inner + "**"
		}
		return "-"
	}
	s := plainCell(v)
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// statusStyle maps a status string to its colour.
func statusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "healthy", "ok", "up":
		return healthyStyle
	case "degraded", "warning":
		return degradedStyle
	default:
		return downStyle
	}
}
