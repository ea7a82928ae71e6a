// Package compiler runs one compilation end to end: tokens, parse, the
// diagnostic-only pass, the lowering pass, artifacts and the console
// summary.
package compiler

import (
	"fmt"
	"io"
	"log"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/hassan/minic/internal/codegen"
	"github.com/hassan/minic/internal/config"
	"github.com/hassan/minic/internal/diag"
	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/parser"
	"github.com/hassan/minic/internal/parser/ast"
	"github.com/hassan/minic/internal/semantic"
	"github.com/hassan/minic/internal/symtab"
	"github.com/hassan/minic/internal/syntax"
)

// Pass names used in artifacts and logs.
const (
	SyntaxPass   = "SyntaxAnalyzer"
	SemanticPass = "SemanticAnalyzer"
)

// Compiler compiles minic sources with a fixed configuration.
type Compiler struct {
	cfg  config.Config
	host semantic.Host

	// out receives the user-facing console output; logs go to logw.
	out  io.Writer
	logw io.Writer
}

// New returns a compiler. host serves input() during lowering.
func New(cfg config.Config, host semantic.Host, out, logw io.Writer) *Compiler {
	return &Compiler{cfg: cfg, host: host, out: out, logw: logw}
}

// Config returns the compiler's settings.
func (c *Compiler) Config() config.Config { return c.cfg }

// Result is everything one run produced. After a failed run the trees
// and the module are partial.
type Result struct {
	RunID    string
	Filename string
	Tokens   []lexer.Token
	Program  *ast.Program

	SyntaxTree   *diag.Node
	SemanticTree *diag.Node

	Context *codegen.Context
	State   *symtab.State

	// Errors holds grammar errors, or the single error that stopped
	// lowering, followed by any module verification errors.
	Errors []error
}

// Failed reports whether the run produced any error.
func (r *Result) Failed() bool { return len(r.Errors) > 0 }

// Compile runs both passes over source. It writes nothing; see Run.
func (c *Compiler) Compile(source, filename string) *Result {
	r := &Result{
		RunID:        uuid.New().String(),
		Filename:     filename,
		SyntaxTree:   diag.New(syntax.Root),
		SemanticTree: diag.New(syntax.Root),
		State:        symtab.New(),
	}
	logger := c.logger(r.RunID)
	logger.Printf("compiling %s", filename)

	// Lexical errors resurface from the parser; the token dump keeps
	// whatever was scanned before them.
	r.Tokens, _ = lexer.New(source, filename).Tokenize()

	r.Context = codegen.New(codegen.Options{
		SourceFilename: c.sourceFilename(filename),
		Entry:          c.cfg.Codegen.Entry,
	})

	prog, errs := parser.Parse(source, filename)
	if len(errs) > 0 {
		logger.Printf("%d grammar error(s), skipping both passes", len(errs))
		r.Errors = errs
		r.Context.Finish(true)
		return r
	}
	r.Program = prog

	err := guard(logger, SyntaxPass, func() error {
		r.SyntaxTree = syntax.Tree(prog)
		return nil
	})
	if err != nil {
		r.Errors = append(r.Errors, err)
	}

	err = guard(logger, SemanticPass, func() error {
		return semantic.New(r.Context, r.State, c.host).Lower(prog, r.SemanticTree)
	})
	if err != nil {
		r.Errors = append(r.Errors, err)
	}

	r.Errors = append(r.Errors, r.Context.Finish(r.Failed())...)
	logger.Printf("finished with %d error(s)", len(r.Errors))
	return r
}

func (c *Compiler) sourceFilename(filename string) string {
	if c.cfg.Codegen.SourceFilename != "" {
		return c.cfg.Codegen.SourceFilename
	}
	return filename
}

func (c *Compiler) logger(runID string) *log.Logger {
	return log.New(c.logw, "minic["+runID+"] ", log.LstdFlags|log.Lmsgprefix)
}

// guard runs one pass and turns a panic into an error, logging the stack.
func guard(logger *log.Logger, pass string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("%s panicked: %v\n%s", pass, r, debug.Stack())
			err = fmt.Errorf("%s: internal error: %v", pass, r)
		}
	}()
	return fn()
}

// Run compiles source, prints the token dump and the compile log, writes
// the artifacts and prints the summary and symbol table. Compile errors
// are part of the result; the returned error is set only when an
// artifact cannot be written.
func (c *Compiler) Run(source, filename string) (*Result, error) {
	if c.cfg.Trace.Tokens {
		tokens, _ := lexer.New(source, filename).Tokenize()
		PrintTokens(c.out, tokens)
	}

	fmt.Fprintln(c.out, "Compile log:")
	r := c.Compile(source, filename)
	for _, err := range r.Errors {
		fmt.Fprintln(c.out, err)
	}

	werr := c.WriteArtifacts(r)
	if werr != nil {
		c.logger(r.RunID).Printf("writing artifacts: %v", werr)
	}

	PrintSummary(c.out, r)
	PrintSymbols(c.out, r.State)
	return r, werr
}
