package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// User-input rejection errors. Bad input aborts rather than being corrected.
var (
	ErrInvalidBoolInput = errors.New("invalid input: please enter y or n")
	ErrInvalidDateInput = errors.New("invalid date: expected YYYY-MM-DD")
)

const dateLayout = "2006-01-02"

// Prompter reads interactive user input. Secrets are read masked when the
// input is a terminal.
type Prompter struct {
	raw io.Reader
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		raw: in,
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ReadLine prints the prompt and reads one trimmed line.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ReadBool prints the prompt and parses a y/n answer.
func (p *Prompter) ReadBool(prompt string) (bool, error) {
	line, err := p.ReadLine(prompt)
	if err != nil {
		return false, err
	}
	return ParseBool(line)
}

// ReadDate prints the prompt and parses a YYYY-MM-DD date.
func (p *Prompter) ReadDate(prompt string) (time.Time, error) {
	line, err := p.ReadLine(prompt)
	if err != nil {
		return time.Time{}, err
	}
	return ParseDate(line)
}

// ReadSecret prints the prompt and reads a line without echoing it when the
// input is a terminal. Piped input falls back to a plain line read.
func (p *Prompter) ReadSecret(prompt string) (string, error) {
	if f, ok := p.raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return p.ReadLine(prompt)
}

// ParseBool interprets an affirmative/negative answer. Anything other than
// the recognized yes/no spellings is rejected.
func ParseBool(s string) (bool, error) {
	switch s {
	case "YES", "Yes", "Y", "y":
		return true, nil
	case "NO", "No", "N", "n":
		return false, nil
	}
	return false, ErrInvalidBoolInput
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateInput, s)
	}
	return t, nil
}
