package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
)

// Terminal is used by every prompt of this package. It can be replaced to
// prompt somewhere else than stdin/stderr.
var Terminal = TerminalOn(os.Stdin, os.Stderr)

// TerminalOn creates terminals which read from stdin and write to stdout.
func TerminalOn(stdin io.ReadCloser, stdout io.Writer) func() (*readline.Instance, error) {
	return func() (*readline.Instance, error) {
		return readline.NewEx(&readline.Config{
			Stdin:  stdin,
			Stdout: stdout,
		})
	}
}

type settable interface {
	IsZero() bool
	Set(string) error
}

func RequestContentIfRequiredFromTerminal(of settable, promptName string, canBeEmpty, isPassword bool) error {
	if !of.IsZero() {
		return nil
	}

	l, err := Terminal()
	if err != nil {
		return fmt.Errorf("cannot read from terminal for prompt %q: %w", promptName, err)
	}
	defer func() {
		_ = l.Close()
	}()

	prompt := fmt.Sprintf("Enter %s: ", promptName)
	l.SetPrompt(prompt)
	l.ResetHistory()
	for of.IsZero() {
		var line string
		if isPassword {
			var b []byte
			b, err = l.ReadPassword(prompt)
			line = string(b)
		} else {
			line, err = l.Readline()
		}
		if err != nil {
			return fmt.Errorf("cannot read from terminal for prompt %q: %w", promptName, err)
		}
		if err := of.Set(strings.TrimSpace(line)); err != nil {
			log.WithError(err).
				Error("Illegal input. Please try again.")
		}
		if canBeEmpty && of.IsZero() {
			return nil
		}
	}
	return nil
}

func RequestStringContentIfRequiredFromTerminal(of *string, promptName string, canBeEmpty, isPassword bool) error {
	buf := rawString(*of)
	if err := RequestContentIfRequiredFromTerminal(&buf, promptName, canBeEmpty, isPassword); err != nil {
		return err
	}
	*of = string(buf)
	return nil
}

// RequestChoiceFromTerminal asks until one of the given options (or an
// unambiguous prefix of it) was entered and returns this option.
func RequestChoiceFromTerminal(question string, options ...string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options for prompt %q", question)
	}

	l, err := Terminal()
	if err != nil {
		return "", fmt.Errorf("cannot read from terminal for prompt %q: %w", question, err)
	}
	defer func() {
		_ = l.Close()
	}()

	l.SetPrompt(fmt.Sprintf("%s [%s]: ", question, strings.Join(options, "/")))
	for {
		line, err := l.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return "", fmt.Errorf("prompt %q aborted: %w", question, err)
		}
		if err != nil {
			return "", fmt.Errorf("cannot read from terminal for prompt %q: %w", question, err)
		}
		if v, ok := choose(line, options); ok {
			return v, nil
		}
		_, _ = fmt.Fprintf(l.Stderr(), "Please answer with one of: %s\n", strings.Join(options, ", "))
	}
}

func choose(line string, options []string) (string, bool) {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return "", false
	}
	var candidate string
	for _, option := range options {
		if strings.ToLower(option) == line {
			return option, true
		}
		if strings.HasPrefix(strings.ToLower(option), line) {
			if candidate != "" {
				return "", false
			}
			candidate = option
		}
	}
	return candidate, candidate != ""
}

type rawString []byte

func (v rawString) IsZero() bool {
	return len(v) == 0
}

func (v *rawString) Set(s string) error {
	*v = rawString(s)
	return nil
}
