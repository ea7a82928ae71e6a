// Package testcase extracts end-to-end compiler test cases from Markdown.
//
// A test case starts at a heading "Test: <name>" and collects the fenced
// code blocks that follow it until the next test heading:
//
//	## Test: subtraction
//	```minic
//	let a = 5 - 2; print(a);
//	```
//	```ir
//	sub i8 5, 2
//	```
//
// The minic fence holds the program. Every other fence is an assertion
// whose meaning is up to the test that runs the case.
package testcase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// SourceFence is the fence language of the program under test.
const SourceFence = "minic"

// Kind is an assertion fence language.
type Kind string

const (
	// KindStdin supplies host input, one line per input() call.
	KindStdin Kind = "stdin"

	// KindIR lists lines the emitted module must contain.
	KindIR Kind = "ir"

	// KindSymbols is the exact symbol table printed after the run.
	KindSymbols Kind = "symbols"

	// KindError is a substring of the first compile error. Without it
	// the case must compile cleanly.
	KindError Kind = "error"

	// KindLeaves is the concatenated leaf sequence of the lowering tree.
	KindLeaves Kind = "leaves"
)

var kinds = map[Kind]bool{KindStdin: true, KindIR: true, KindSymbols: true, KindError: true, KindLeaves: true}

// Assertion is one fenced block.
type Assertion struct {
	Kind    Kind
	Content string
	Line    int
}

// TestCase is one "Test:" section.
type TestCase struct {
	Name       string
	Source     string
	Line       int
	Assertions []Assertion
}

// Get returns the first assertion of the given kind.
func (tc TestCase) Get(kind Kind) (Assertion, bool) {
	for _, a := range tc.Assertions {
		if a.Kind == kind {
			return a, true
		}
	}
	return Assertion{}, false
}

// Extract parses markdown and returns its test cases in document order.
func Extract(markdown []byte) ([]TestCase, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []TestCase
	var cur *TestCase
	flush := func() error {
		if cur == nil {
			return nil
		}
		if cur.Source == "" {
			return fmt.Errorf("line %d: test %q has no %s fence", cur.Line, cur.Name, SourceFence)
		}
		cases = append(cases, *cur)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := plainText(n, markdown)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			cur = &TestCase{Name: strings.TrimPrefix(heading, "Test: "), Line: lineOf(n, markdown)}

		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)
			if cur == nil {
				if lang != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test", line, lang)
				}
				return ast.WalkContinue, nil
			}
			content := blockContent(n, markdown)
			switch {
			case lang == SourceFence:
				if cur.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: test %q has more than one %s fence", line, cur.Name, SourceFence)
				}
				cur.Source = content
			case kinds[Kind(lang)]:
				cur.Assertions = append(cur.Assertions, Assertion{Kind: Kind(lang), Content: content, Line: line})
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, lang, cur.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func plainText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// lineOf returns the 1-based line of the node's first content line, or 0
// when the node has none.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 0
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
