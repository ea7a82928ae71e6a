package compiler

import (
	"errors"
	"fmt"
	"os"

	"github.com/hassan/minic/internal/diag"
)

// WriteArtifacts writes both diagnostic trees and the module to the
// configured paths. All three are attempted even when one fails.
func (c *Compiler) WriteArtifacts(r *Result) error {
	if err := os.MkdirAll(c.cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var errs []error
	for _, a := range []struct {
		path string
		pass string
		tree *diag.Node
	}{
		{c.cfg.SyntaxTreePath(), SyntaxPass, r.SyntaxTree},
		{c.cfg.SemanticTreePath(), SemanticPass, r.SemanticTree},
	} {
		err := diag.WriteFile(a.path, diag.Artifact{Run: r.RunID, Pass: a.pass, Tree: a.tree})
		if err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", a.path, err))
		}
	}

	if err := os.WriteFile(c.cfg.IRPath(), []byte(r.Context.String()), 0o644); err != nil {
		errs = append(errs, fmt.Errorf("write %s: %w", c.cfg.IRPath(), err))
	}
	return errors.Join(errs...)
}
