package syntax

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/parser"
)

func treeOf(t *testing.T, source string) *diag.Node {
	t.Helper()
	prog, errs := parser.Parse(source, "test.mc")
	be.Equal(t, len(errs), 0)
	return Tree(prog)
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestTree_LeavesReconstructSource(t *testing.T) {
	tests := []string{
		"let a = 5 - 2; let b = 5; print(a);",
		"int x = (1 + 2) * 3; flt y = 2.5; print(y); print();",
		"if (1 < 2) { print(1); } else { print(0); }",
		"while (x > 0) { x = x - 1; if (x == 3) { break; } continue; }",
		"function f() { print(sumi(1, 2)); } f(); let v = not 0;",
		"let s = input(7); INT Q = 1 and 0 || !1;",
	}
	for _, source := range tests {
		t.Run(source, func(t *testing.T) {
			root := treeOf(t, source)
			be.Equal(t, strings.Join(root.Leaves(), ""), squash(source))
		})
	}
}

func TestTree_Sequence(t *testing.T) {
	root := treeOf(t, "let a = 5 - 2; let b = 5; print(a);")
	want := `main
  program
    statement_full
      statement
        declaration
          let
          IDENTIFIER
            a
          =
          expression
            expression
              const
                INTEGER
                  5
            -
            expression
              const
                INTEGER
                  2
      ;
    program
      statement_full
        statement
          declaration
            let
            IDENTIFIER
              b
            =
            expression
              const
                INTEGER
                  5
        ;
      program
        statement_full
          statement
            print
              print
              (
              expression
                IDENTIFIER
                  a
              )
          ;
`
	be.Equal(t, root.String(), want)
}

func TestTree_IfElse(t *testing.T) {
	root := treeOf(t, "if (1 < 2) { print(1); } else { print(0); }")
	full := root.Find("statement_full")
	labels := make([]string, len(full.Children))
	for i, child := range full.Children {
		labels[i] = child.Label
	}
	be.Equal(t, labels, []string{"if", "(", "expression", ")", "{", "block", "}", "else", "{", "block", "}"})
}

func TestTree_FunctionBodyWalked(t *testing.T) {
	root := treeOf(t, "function f() { print(1); }")
	full := root.Find("statement_full")
	be.Equal(t, full.Children[1].Label, "IDENTIFIER")
	be.Equal(t, full.Children[1].Children[0].Label, "f")
	be.True(t, full.Find("print") != nil)
}

func TestTree_BlockChain(t *testing.T) {
	root := treeOf(t, "while (1) { print(1); print(2); }")
	outer := root.Find("block")
	be.Equal(t, outer.Children[0].Label, "statement_full")
	be.Equal(t, outer.Children[1].Label, "block")
	be.Equal(t, len(outer.Children[1].Children), 1)
}
