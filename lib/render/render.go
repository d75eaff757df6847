// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/machinery/lib/job"
	"github.com/bureau-foundation/machinery/lib/machine"
)

// ColorMode selects whether a Renderer emits ANSI colour.
type ColorMode int

const (
	// ColorAuto colours output when the writer is a colour-capable
	// terminal.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 100

// Renderer formats output for one writer.
type Renderer struct {
	lip   *lipgloss.Renderer
	theme Theme
	width int
	color bool
}

// New returns a Renderer for out. width is the wrapping width; zero
// means DefaultWidth.
func New(out io.Writer, mode ColorMode, width int) *Renderer {
	var lip *lipgloss.Renderer
	switch mode {
	case ColorAlways:
		lip = lipgloss.NewRenderer(out, termenv.WithProfile(termenv.ANSI256))
		lip.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		lip = lipgloss.NewRenderer(out, termenv.WithProfile(termenv.Ascii))
		lip.SetColorProfile(termenv.Ascii)
	default:
		lip = lipgloss.NewRenderer(out)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{
		lip:   lip,
		theme: DefaultTheme,
		width: width,
		color: lip.ColorProfile() != termenv.Ascii,
	}
}

// Color reports whether output is coloured.
func (r *Renderer) Color() bool {
	return r.color
}

// Width returns the wrapping width.
func (r *Renderer) Width() int {
	return r.width
}

func (r *Renderer) style() lipgloss.Style {
	return r.lip.NewStyle()
}

// Bold renders s in the header colour.
func (r *Renderer) Bold(s string) string {
	return r.style().Bold(true).Foreground(r.theme.HeaderForeground).Render(s)
}

// Faint renders s de-emphasized.
func (r *Renderer) Faint(s string) string {
	return r.style().Foreground(r.theme.FaintText).Render(s)
}

// State renders a machine state in its colour.
func (r *Renderer) State(state machine.State) string {
	return r.style().Foreground(r.theme.StateColor(state)).Render(string(state))
}

// Status renders a job status in its colour.
func (r *Renderer) Status(status job.Status) string {
	return r.style().Foreground(r.theme.StatusColor(status)).Render(string(status))
}

// Table aligns rows under headers, two spaces between columns. Cells
// may already contain ANSI styling. When the table is wider than the
// renderer, the last column is truncated.
func (r *Renderer) Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = ansi.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := ansi.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var out strings.Builder
	styledHeaders := make([]string, len(headers))
	for i, header := range headers {
		styledHeaders[i] = r.Bold(header)
	}
	r.writeRow(&out, styledHeaders, widths)
	for _, row := range rows {
		r.writeRow(&out, row, widths)
	}
	return out.String()
}

func (r *Renderer) writeRow(out *strings.Builder, cells []string, widths []int) {
	var line strings.Builder
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i < len(widths)-1 {
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", width-ansi.StringWidth(cell)+2))
		} else {
			line.WriteString(cell)
		}
	}
	out.WriteString(ansi.Truncate(strings.TrimRight(line.String(), " "), r.width, "…"))
	out.WriteString("\n")
}

// JSON renders v as indented JSON, highlighted when colour is on.
func (r *Renderer) JSON(v any) (string, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}
	if !r.color {
		return buffer.String(), nil
	}
	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, buffer.String(), "json", "terminal256", "monokai"); err != nil {
		return buffer.String(), nil
	}
	return highlighted.String(), nil
}

// KeyValues renders pairs as an aligned "key  value" block.
func (r *Renderer) KeyValues(pairs [][2]string) string {
	width := 0
	for _, pair := range pairs {
		if w := ansi.StringWidth(pair[0]); w > width {
			width = w
		}
	}
	var out strings.Builder
	for _, pair := range pairs {
		out.WriteString(r.Faint(pair[0]))
		out.WriteString(strings.Repeat(" ", width-ansi.StringWidth(pair[0])+2))
		out.WriteString(pair[1])
		out.WriteString("\n")
	}
	return out.String()
}
