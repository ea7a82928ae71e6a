package compiler

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/samber/do"

	"github.com/hassan/minic/internal/config"
	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/ir"
	"github.com/hassan/minic/internal/semantic"
	"github.com/hassan/minic/internal/testcase"
)

func newCompiler(t *testing.T, stdin string) (*Compiler, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	var out bytes.Buffer
	host := semantic.NewConsole(strings.NewReader(stdin), io.Discard)
	return New(cfg, host, &out, io.Discard), &out
}

func TestFixtures(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	be.Err(t, err, nil)
	be.True(t, len(files) > 0)

	for _, file := range files {
		data, err := os.ReadFile(file)
		be.Err(t, err, nil)
		cases, err := testcase.Extract(data)
		be.Err(t, err, nil)

		for _, tc := range cases {
			t.Run(filepath.Base(file)+"/"+tc.Name, func(t *testing.T) {
				runFixture(t, tc)
			})
		}
	}
}

func runFixture(t *testing.T, tc testcase.TestCase) {
	stdin, _ := tc.Get(testcase.KindStdin)
	c, _ := newCompiler(t, stdin.Content+"\n")
	r := c.Compile(tc.Source, "test.mc")

	if want, ok := tc.Get(testcase.KindError); ok {
		be.True(t, r.Failed())
		be.Err(t, r.Errors[0], want.Content)
	} else {
		be.Equal(t, r.Errors, []error(nil))
		be.Equal(t, ir.Verify(r.Context.Module), []error(nil))
	}

	for _, a := range tc.Assertions {
		switch a.Kind {
		case testcase.KindIR:
			module := r.Context.String()
			for _, line := range strings.Split(a.Content, "\n") {
				if !strings.Contains(module, line) {
					t.Errorf("line %d: module does not contain %q\n%s", a.Line, line, module)
				}
			}
		case testcase.KindSymbols:
			var buf bytes.Buffer
			PrintSymbols(&buf, r.State)
			got := strings.ReplaceAll(buf.String(), "\t|\t", " | ")
			be.Equal(t, got, a.Content+"\n")
		case testcase.KindLeaves:
			be.Equal(t, strings.Join(r.SemanticTree.Leaves(), ""), a.Content)
		}
	}
}

func TestCompile_GrammarErrorsSkipPasses(t *testing.T) {
	c, _ := newCompiler(t, "")
	r := c.Compile("int = 4; print(;", "test.mc")

	be.Equal(t, len(r.Errors), 2)
	be.True(t, r.Program == nil)
	be.True(t, r.SyntaxTree.IsLeaf())
	be.True(t, r.SemanticTree.IsLeaf())
	be.True(t, strings.Contains(r.Context.String(), "define i32 @main()"))
}

func TestCompile_TreesAgreeWithoutCalls(t *testing.T) {
	c, _ := newCompiler(t, "")
	r := c.Compile("int x = 1; while (x < 3) { x = x + 1; } if (x) { print(x); }", "test.mc")
	be.Equal(t, r.Errors, []error(nil))
	be.Equal(t, r.SemanticTree.String(), r.SyntaxTree.String())
}

func TestCompile_RunIDs(t *testing.T) {
	c, _ := newCompiler(t, "")
	first := c.Compile("print(1);", "test.mc")
	second := c.Compile("print(1);", "test.mc")
	be.Equal(t, len(first.RunID), 36)
	be.True(t, first.RunID != second.RunID)
}

func TestCompile_Tokens(t *testing.T) {
	c, _ := newCompiler(t, "")
	r := c.Compile("print(1);", "test.mc")
	be.Equal(t, len(r.Tokens), 6)
	be.Equal(t, r.Tokens[0].Lexeme, "print")
}

func TestCompile_SourceFilename(t *testing.T) {
	c, _ := newCompiler(t, "")
	r := c.Compile("print(1);", "prog.mc")
	be.True(t, strings.Contains(r.Context.String(), `source_filename = "prog.mc"`))

	cfg := config.Default()
	cfg.Codegen.SourceFilename = "fixed"
	cfg.Codegen.Entry = "start"
	r = New(cfg, nil, io.Discard, io.Discard).Compile("print(1);", "prog.mc")
	text := r.Context.String()
	be.True(t, strings.Contains(text, `source_filename = "fixed"`))
	be.True(t, strings.Contains(text, "define i32 @start()"))
}

func TestRun_Success(t *testing.T) {
	c, out := newCompiler(t, "")
	r, err := c.Run("let a = 5 - 2; let b = 5; print(a);", "test.mc")
	be.Err(t, err, nil)
	be.True(t, !r.Failed())

	console := out.String()
	be.True(t, strings.HasPrefix(console, "LET(let) at test.mc:1:1\n"))
	be.True(t, strings.Contains(console, "Compile log:\n"))
	be.True(t, strings.Contains(console, "Compile complete without errors\n"))
	be.True(t, strings.HasSuffix(console, "Name\t|\tType\t|\tFunction\na\t|\tINT\t|\tmain\nb\t|\tINT\t|\tmain\n"))

	cfg := c.Config()
	for _, tt := range []struct {
		path string
		pass string
	}{
		{cfg.SyntaxTreePath(), SyntaxPass},
		{cfg.SemanticTreePath(), SemanticPass},
	} {
		data, err := os.ReadFile(tt.path)
		be.Err(t, err, nil)
		var artifact diag.Artifact
		be.Err(t, json.Unmarshal(data, &artifact), nil)
		be.Equal(t, artifact.Run, r.RunID)
		be.Equal(t, artifact.Pass, tt.pass)
		be.Equal(t, artifact.Tree.Label, "main")
	}

	module, err := os.ReadFile(cfg.IRPath())
	be.Err(t, err, nil)
	be.Equal(t, string(module), r.Context.String())
}

func TestRun_FailureStillFlushes(t *testing.T) {
	c, out := newCompiler(t, "")
	r, err := c.Run("int x = 1; while (x) { y = 2; }", "test.mc")
	be.Err(t, err, nil)
	be.True(t, r.Failed())

	console := out.String()
	be.True(t, strings.Contains(console, "test.mc:1:24: LogicError: Unknown name: <y> is not defined\n"))
	be.True(t, strings.Contains(console, "Compile complete with errors!\n"))
	be.True(t, strings.HasSuffix(console, "x\t|\tINT\t|\tmain\n"))

	module, err := os.ReadFile(c.Config().IRPath())
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(module), "unreachable"))
}

// brokenHost panics on every read.
type brokenHost struct{}

func (brokenHost) Input(string) (string, error) { panic("console gone") }

func TestRun_PanicKeepsPartialTree(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	c := New(cfg, brokenHost{}, &out, io.Discard)

	r, err := c.Run("int x = 5;\nprint(1);\nlet v = input();", "test.mc")
	be.Err(t, err, nil)
	be.Err(t, r.Errors[0], "SemanticAnalyzer: internal error: console gone")
	be.Equal(t, strings.Join(r.SemanticTree.Leaves(), ""), "intx=5;print(1);letv=input()")
	be.True(t, strings.Contains(out.String(), "Compile complete with errors!\n"))

	data, err := os.ReadFile(cfg.SemanticTreePath())
	be.Err(t, err, nil)
	var artifact diag.Artifact
	be.Err(t, json.Unmarshal(data, &artifact), nil)
	be.Equal(t, strings.Join(artifact.Tree.Leaves(), ""), "intx=5;print(1);letv=input()")

	module, err := os.ReadFile(cfg.IRPath())
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(module), "unreachable"))
}

func TestRun_NoTokenTrace(t *testing.T) {
	c, out := newCompiler(t, "")
	c.cfg.Trace.Tokens = false
	_, err := c.Run("print(1);", "test.mc")
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out.String(), "Compile log:\n"))
}

func TestRun_ArtifactError(t *testing.T) {
	c, out := newCompiler(t, "")
	blocker := filepath.Join(t.TempDir(), "file")
	be.Err(t, os.WriteFile(blocker, nil, 0o644), nil)
	c.cfg.Output.Dir = blocker

	_, err := c.Run("print(1);", "test.mc")
	be.Err(t, err, "create output directory")
	be.True(t, strings.Contains(out.String(), "Compile complete without errors"))
}

func TestGuard(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	err := guard(logger, "Pass", func() error { panic("boom") })
	be.Err(t, err, "Pass: internal error: boom")
	be.True(t, strings.Contains(logs.String(), "Pass panicked: boom"))

	be.Err(t, guard(logger, "Pass", func() error { return nil }), nil)
}

func TestProvide(t *testing.T) {
	var out bytes.Buffer
	i := do.New()
	do.ProvideValue(i, config.Default())
	do.ProvideValue(i, Stdio{In: strings.NewReader(""), Out: &out, Err: io.Discard})
	Provide(i)

	c := do.MustInvoke[*Compiler](i)
	be.Equal(t, c.Config(), config.Default())

	r := c.Compile("print(1);", "test.mc")
	be.True(t, !r.Failed())
}
