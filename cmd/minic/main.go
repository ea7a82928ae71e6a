// Command minic compiles a minic source file to LLVM IR.
//
//	minic [-config file.toml] [-out dir] [-entry name] [-tokens=false] <source-file>
//
// It writes SyntaxAnalyzer.json, SemanticAnalyzer.json and output.ll and
// prints a summary line and the symbol table. A program with compile
// errors still exits 0; the summary line says whether it compiled.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/samber/do"

	"github.com/hassan/minic/internal/compiler"
	"github.com/hassan/minic/internal/config"
)

func main() {
	fs := flag.NewFlagSet("minic", flag.ContinueOnError)
	flags := config.BindFlags(fs)
	printConfig := fs.Bool("print-config", false, "print the effective configuration and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <source-file>\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	cfg, err := flags.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if *printConfig {
		data, err := cfg.Encode()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding configuration: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	filename := fs.Arg(0)

	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, compiler.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	compiler.Provide(injector)

	c := do.MustInvoke[*compiler.Compiler](injector)
	if _, err := c.Run(string(source), filename); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}
