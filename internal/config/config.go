// Package config loads compiler settings: built-in defaults, overlaid by
// an optional TOML file, overlaid by command-line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/hassan/minic/internal/codegen"
)

// Config is the full set of compiler settings.
type Config struct {
	Output  Output  `toml:"output"`
	Trace   Trace   `toml:"trace"`
	Codegen Codegen `toml:"codegen"`
}

// Output names the artifacts written after a run.
type Output struct {
	Dir          string `toml:"dir"`
	SyntaxTree   string `toml:"syntax_tree"`
	SemanticTree string `toml:"semantic_tree"`
	IR           string `toml:"ir"`
}

// Trace controls console diagnostics.
type Trace struct {
	// Tokens prints every token before parsing.
	Tokens bool `toml:"tokens"`
}

// Codegen shapes the emitted module.
type Codegen struct {
	// SourceFilename is recorded in the module header. Empty means the
	// name of the compiled file.
	SourceFilename string `toml:"source_filename"`
	Entry          string `toml:"entry"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Output: Output{
			Dir:          ".",
			SyntaxTree:   "SyntaxAnalyzer.json",
			SemanticTree: "SemanticAnalyzer.json",
			IR:           "output.ll",
		},
		Trace: Trace{Tokens: true},
		Codegen: Codegen{
			Entry: "main",
		},
	}
}

// Parse overlays TOML data on the defaults. Keys absent from data keep
// their default values; unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Load reads the TOML file at path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Encode renders the settings as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports settings that would make a run impossible.
func (c Config) Validate() error {
	var errs []error
	for _, field := range []struct{ key, value string }{
		{"output.syntax_tree", c.Output.SyntaxTree},
		{"output.semantic_tree", c.Output.SemanticTree},
		{"output.ir", c.Output.IR},
		{"codegen.entry", c.Codegen.Entry},
	} {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", field.key))
		}
	}
	if codegen.Reserved(c.Codegen.Entry) {
		errs = append(errs, fmt.Errorf("codegen.entry %q is already defined in every module", c.Codegen.Entry))
	}
	return errors.Join(errs...)
}

// SyntaxTreePath is where the diagnostic-only tree is written.
func (c Config) SyntaxTreePath() string {
	return filepath.Join(c.Output.Dir, c.Output.SyntaxTree)
}

// SemanticTreePath is where the lowering pass tree is written.
func (c Config) SemanticTreePath() string {
	return filepath.Join(c.Output.Dir, c.Output.SemanticTree)
}

// IRPath is where the LLVM module is written.
func (c Config) IRPath() string {
	return filepath.Join(c.Output.Dir, c.Output.IR)
}

// Flags binds the command-line overrides.
type Flags struct {
	fs     *flag.FlagSet
	path   *string
	dir    *string
	entry  *string
	tokens *bool
}

// BindFlags registers -config, -out, -entry and -tokens on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	def := Default()
	return &Flags{
		fs:     fs,
		path:   fs.String("config", "", "path to a TOML configuration file"),
		dir:    fs.String("out", def.Output.Dir, "directory for output artifacts"),
		entry:  fs.String("entry", def.Codegen.Entry, "name of the generated entry routine"),
		tokens: fs.Bool("tokens", def.Trace.Tokens, "print the token stream"),
	}
}

// Load reads the configured file and applies every flag that was set
// explicitly. Call it after fs.Parse.
func (f *Flags) Load() (Config, error) {
	cfg, err := Load(*f.path)
	if err != nil {
		return Config{}, err
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "out":
			cfg.Output.Dir = *f.dir
		case "entry":
			cfg.Codegen.Entry = *f.entry
		case "tokens":
			cfg.Trace.Tokens = *f.tokens
		}
	})
	return cfg, cfg.Validate()
}
