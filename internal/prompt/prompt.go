package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter is the interactive surface of the tool. Implementations answer
// yes/no questions and read free-form lines (e.g., an alternate file path).
// Tests inject canned input instead of a real terminal.
type Prompter interface {
	// Confirm asks a yes/no question; only "y"/"Y" counts as yes.
	Confirm(question string) bool
	// Line asks a question and returns the trimmed response line.
	Line(question string) string
}

// Console prompts on a reader/writer pair, normally os.Stdin/os.Stdout.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Confirm(question string) bool {
	ans := c.Line(question + " (y/n): ")
	return strings.EqualFold(ans, "y")
}

func (c *Console) Line(question string) string {
	fmt.Fprint(c.out, question)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		// EOF with nothing read: treat as a decline/empty answer.
		return ""
	}
	return strings.TrimSpace(line)
}

// Out exposes the writer so callers can print context (date listings,
// rejection reports) next to the questions they precede.
func (c *Console) Out() io.Writer {
	return c.out
}

// assumeYes wraps a Prompter and answers every Confirm affirmatively,
// for -yes / ADJCAL_YES runs. Line still delegates: a scripted run that
// hits a retry prompt should not invent file paths.
type assumeYes struct {
	Prompter
}

func AssumeYes(p Prompter) Prompter {
	return assumeYes{Prompter: p}
}

func (assumeYes) Confirm(string) bool { return true }
