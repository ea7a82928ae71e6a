package semantic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Host serves input expressions during compilation.
type Host interface {
	// Input shows prompt, when non-empty, and returns one line of input
	// without its line terminator.
	Input(prompt string) (string, error)
}

// Console is a Host over a reader and a writer, normally stdin and
// stdout.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole returns a console reading from r and prompting on w.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{in: bufio.NewReader(r), out: w}
}

func (c *Console) Input(prompt string) (string, error) {
	if prompt != "" {
		if _, err := fmt.Fprint(c.out, prompt); err != nil {
			return "", err
		}
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
