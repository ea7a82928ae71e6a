package compiler

import (
	"io"

	"github.com/samber/do"

	"github.com/hassan/minic/internal/config"
	"github.com/hassan/minic/internal/semantic"
)

// Stdio is the console a compiler talks to.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Provide registers the host console and the compiler with the
// injector. The injector must already provide config.Config and Stdio.
func Provide(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (semantic.Host, error) {
		stdio := do.MustInvoke[Stdio](i)
		return semantic.NewConsole(stdio.In, stdio.Out), nil
	})
	do.Provide(i, func(i *do.Injector) (*Compiler, error) {
		cfg := do.MustInvoke[config.Config](i)
		stdio := do.MustInvoke[Stdio](i)
		host := do.MustInvoke[semantic.Host](i)
		return New(cfg, host, stdio.Out, stdio.Err), nil
	})
}
