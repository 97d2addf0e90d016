package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// OutlineHeadings extracts the markdown headings from an instructions
// document, one "##-style indent + title" string per heading, in document
// order.
func OutlineHeadings(markdown string) []string {
	source := []byte(markdown)
	parser := goldmark.New().Parser()
	root := parser.Parse(text.NewReader(source))

	var headings []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var title strings.Builder
		for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				title.Write(t.Segment.Value(source))
			}
		}
		indent := strings.Repeat("  ", heading.Level-1)
		headings = append(headings, indent+strings.TrimSpace(title.String()))
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// PrintInstructions writes the heading outline followed by the full text.
func PrintInstructions(w io.Writer, instructions string) {
	if strings.TrimSpace(instructions) == "" {
		fmt.Fprintln(w, "No instructions recorded.")
		return
	}

	headings := OutlineHeadings(instructions)
	if len(headings) > 0 {
		fmt.Fprintln(w, "Outline:")
		for _, h := range headings {
			fmt.Fprintf(w, "  %s\n", h)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, instructions)
	if !strings.HasSuffix(instructions, "\n") {
		fmt.Fprintln(w)
	}
}
