package democlient

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tanjirantu/mcp-mongodb/internal/docschema"
	"github.com/tanjirantu/mcp-mongodb/internal/schema"
)

var printer = message.NewPrinter(language.English)

// Color scheme
var (
	indigo = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	red    = lipgloss.AdaptiveColor{Light: "#FE5F86", Dark: "#FE5F86"}
	gray   = lipgloss.AdaptiveColor{Light: "#9E9E9E", Dark: "#BDBDBD"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(indigo).
			Bold(true).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(indigo).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(gray)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(gray)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Error renders a failure line.
func Error(s string) string {
	return errorStyle.Render(s)
}

// RenderProperties renders a listed collection's property sketch, given as
// the JSON text carried in the resource's _meta.properties.
func RenderProperties(collection, propsJSON string) (string, error) {
	props := map[string]string{}
	if propsJSON != "" {
		if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
			return "", fmt.Errorf("decoding properties of %s: %w", collection, err)
		}
	}
	if len(props) == 0 {
		return mutedStyle.Render(collection + ": empty collection"), nil
	}

	fields := make([]string, 0, len(props))
	for f := range props {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	t := newTable("Field", "Type")
	for _, f := range fields {
		t.Row(f, props[f])
	}
	return collection + "\n" + t.Render(), nil
}

// RenderSchema renders schema summary entries in the order given.
func RenderSchema(text string) (string, error) {
	var entries []schema.Entry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return "", fmt.Errorf("decoding schema: %w", err)
	}
	t := newTable("Field", "Types", "Count")
	for _, e := range entries {
		t.Row(e.Field, strings.Join(e.Types, ", "), printer.Sprintf("%d", e.Count))
	}
	return t.Render(), nil
}

// RenderFieldStats renders the nested field table of a tool output.
func RenderFieldStats(stats []docschema.FieldStat) string {
	if len(stats) == 0 {
		return mutedStyle.Render("no documents")
	}
	t := newTable("Path", "Type", "Present", "Distinct", "Format", "Examples")
	for _, s := range stats {
		format := s.Format
		if len(s.EnumValues) > 0 {
			format += ": " + strings.Join(s.EnumValues, ", ")
		}
		t.Row(
			s.Path,
			s.Type,
			printer.Sprintf("%.0f%%", s.Frequency*100),
			printer.Sprintf("%d", s.DistinctCount),
			format,
			formatExamples(s.Examples),
		)
	}
	return t.Render()
}

func formatExamples(examples []any) string {
	parts := make([]string, 0, len(examples))
	for _, e := range examples {
		b, err := json.Marshal(e)
		if err != nil {
			parts = append(parts, fmt.Sprint(e))
			continue
		}
		parts = append(parts, string(b))
	}
	return strings.Join(parts, ", ")
}
