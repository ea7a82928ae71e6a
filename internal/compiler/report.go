package compiler

import (
	"fmt"
	"io"

	"github.com/hassan/minic/internal/lexer"
	"github.com/hassan/minic/internal/symtab"
)

// PrintTokens writes one token per line.
func PrintTokens(w io.Writer, tokens []lexer.Token) {
	for _, tok := range tokens {
		fmt.Fprintln(w, tok)
	}
}

// PrintSummary writes the line callers inspect to learn whether the run
// succeeded.
func PrintSummary(w io.Writer, r *Result) {
	if r.Failed() {
		fmt.Fprintln(w, "Compile complete with errors!")
		return
	}
	fmt.Fprintln(w, "Compile complete without errors")
}

// PrintSymbols writes the symbol table: variables with their declared
// tag and owning routine, then functions.
func PrintSymbols(w io.Writer, state *symtab.State) {
	fmt.Fprintln(w, "Name\t|\tType\t|\tFunction")
	for _, sym := range state.Symbols() {
		fmt.Fprintf(w, "%s\t|\t%s\t|\t%s\n", sym.Name, sym.Type, sym.Owner)
	}
}
