// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdownParser = sync.OnceValue(func() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
})

// Markdown renders markdown source for the terminal, wrapped to the
// renderer's width. Soft line breaks reflow.
func (r *Renderer) Markdown(source string) string {
	if source == "" {
		return ""
	}
	src := []byte(source)
	document := markdownParser().Parser().Parse(text.NewReader(src))

	walker := &markdownWalker{renderer: r, source: src}
	ast.Walk(document, walker.walk)
	return strings.TrimRight(walker.output.String(), "\n") + "\n"
}

type markdownWalker struct {
	renderer *Renderer
	source   []byte

	output strings.Builder
	inline strings.Builder

	// indent is the continuation prefix of nested list items; bullet
	// replaces it for the first line of an item.
	indent  string
	bullet  string
	indents []string
	lists   []listState
	bold   int
	italic int
}

type listState struct {
	ordered bool
	counter int
}

func (w *markdownWalker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	r := w.renderer
	switch node := node.(type) {
	case *ast.Heading:
		if entering {
			w.inline.Reset()
		} else {
			heading := ansi.Strip(w.inline.String())
			w.inline.Reset()
			w.blankLine()
			w.output.WriteString(r.Bold(heading) + "\n\n")
		}

	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			w.inline.Reset()
		} else {
			w.flush()
			if len(w.lists) == 0 {
				w.output.WriteString("\n")
			}
		}

	case *ast.List:
		if entering {
			w.lists = append(w.lists, listState{ordered: node.IsOrdered(), counter: node.Start})
		} else {
			w.lists = w.lists[:len(w.lists)-1]
			if len(w.lists) == 0 {
				w.output.WriteString("\n")
			}
		}

	case *ast.ListItem:
		if entering {
			top := &w.lists[len(w.lists)-1]
			marker := "• "
			if top.ordered {
				marker = fmt.Sprintf("%d. ", top.counter)
				top.counter++
			}
			w.indents = append(w.indents, w.indent)
			w.bullet = w.indent + marker
			w.indent += strings.Repeat(" ", ansi.StringWidth(marker))
		} else {
			w.indent = w.indents[len(w.indents)-1]
			w.indents = w.indents[:len(w.indents)-1]
			w.bullet = ""
		}

	case *ast.FencedCodeBlock:
		if entering {
			w.codeBlock(node)
			return ast.WalkSkipChildren, nil
		}

	case *ast.ThematicBreak:
		if entering {
			w.blankLine()
			w.output.WriteString(r.Faint(strings.Repeat("─", r.width)) + "\n\n")
		}

	case *ast.Text:
		if entering {
			w.inline.WriteString(w.styled(string(node.Segment.Value(w.source))))
			if node.SoftLineBreak() {
				w.inline.WriteString(" ")
			}
			if node.HardLineBreak() {
				w.inline.WriteString("\n")
			}
		}

	case *ast.String:
		if entering {
			w.inline.WriteString(w.styled(string(node.Value)))
		}

	case *ast.CodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				if t, ok := child.(*ast.Text); ok {
					code.Write(t.Segment.Value(w.source))
				}
			}
			w.inline.WriteString(r.style().Foreground(r.theme.Pending).Render(code.String()))
			return ast.WalkSkipChildren, nil
		}

	case *ast.Emphasis:
		counter := &w.italic
		if node.Level >= 2 {
			counter = &w.bold
		}
		if entering {
			*counter++
		} else {
			*counter--
		}

	case *ast.Link:
		if !entering {
			w.inline.WriteString(" " + r.Faint("("+string(node.Destination)+")"))
		}

	case *ast.AutoLink:
		if entering {
			w.inline.WriteString(r.Faint(string(node.URL(w.source))))
		}
	}
	return ast.WalkContinue, nil
}

func (w *markdownWalker) styled(s string) string {
	style := w.renderer.style().Foreground(w.renderer.theme.NormalText)
	if w.bold > 0 {
		style = style.Bold(true)
	}
	if w.italic > 0 {
		style = style.Italic(true)
	}
	return style.Render(s)
}

// flush wraps the pending inline text and writes it with list
// prefixes.
func (w *markdownWalker) flush() {
	content := w.inline.String()
	w.inline.Reset()
	if content == "" {
		return
	}
	width := w.renderer.width - ansi.StringWidth(w.indent)
	if width < 20 {
		width = 20
	}
	for i, line := range strings.Split(ansi.Wrap(content, width, " ,.;-"), "\n") {
		prefix := w.indent
		if i == 0 && w.bullet != "" {
			prefix = w.bullet
			w.bullet = ""
		}
		w.output.WriteString(prefix + line + "\n")
	}
}

func (w *markdownWalker) codeBlock(node *ast.FencedCodeBlock) {
	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(w.source))
	}
	body := code.String()
	if w.renderer.color {
		if language := string(node.Language(w.source)); language != "" {
			var highlighted strings.Builder
			if err := quick.Highlight(&highlighted, body, language, "terminal256", "monokai"); err == nil {
				body = highlighted.String()
			}
		}
	}
	w.blankLine()
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		w.output.WriteString(w.indent + "    " + line + "\n")
	}
	w.output.WriteString("\n")
}

func (w *markdownWalker) blankLine() {
	current := w.output.String()
	if current == "" || strings.HasSuffix(current, "\n\n") {
		return
	}
	if strings.HasSuffix(current, "\n") {
		w.output.WriteString("\n")
	} else {
		w.output.WriteString("\n\n")
	}
}
