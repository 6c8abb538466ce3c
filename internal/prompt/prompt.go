// Package prompt provides the blocking terminal prompts the billing flow
// uses to confirm actions and collect missing values.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter is the interactive surface the pipeline depends on. Tests
// substitute a scripted implementation.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(question string) (bool, error)
	// Ask asks for a free-form value.
	Ask(question string) (string, error)
	// AskInt asks for an integer between min and max inclusive,
	// re-asking until it gets one.
	AskInt(question string, min, max int) (int, error)
}

// Terminal prompts on an io.Writer and reads answers from an io.Reader,
// typically stdout and stdin.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(t.out, "%s [y/n] ", question)
		answer, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (t *Terminal) Ask(question string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", question)
	return t.readLine()
}

func (t *Terminal) AskInt(question string, min, max int) (int, error) {
	for {
		fmt.Fprintf(t.out, "%s [%d-%d]: ", question, min, max)
		answer, err := t.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= min && n <= max {
			return n, nil
		}
	}
}
