// Package console provides narration and recognition channels for a
// terminal: narrations are printed, typed lines are taken as spoken input.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
	"golang.org/x/text/language"

	"github.com/blaubaer/voice-navigator/pkg/narration"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
)

const (
	promptListening = "listening> "
	promptIdle      = "(not listening) "
)

// LineReader is satisfied by *readline.Instance.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

type prompter interface {
	SetPrompt(string)
	Refresh()
}

type line struct {
	text string
	err  error
}

// Open creates a console bound to the terminal.
func Open(conf Configuration, locale language.Tag) (*Console, error) {
	return OpenOn(conf, locale, os.Stdin, os.Stdout)
}

// OpenOn creates a console reading from stdin and writing to stdout.
func OpenOn(conf Configuration, locale language.Tag, stdin io.ReadCloser, stdout io.Writer) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptIdle,
		Stdin:           stdin,
		Stdout:          stdout,
		HistoryLimit:    -1,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open console: %w", err)
	}
	return New(conf, locale, rl.Stdout(), rl), nil
}

func New(conf Configuration, locale language.Tag, out io.Writer, in LineReader) *Console {
	result := &Console{
		conf:   conf,
		locale: locale,
		out:    out,
		in:     in,
		lines:  make(chan line),
		done:   make(chan struct{}),
	}
	go result.read()
	return result
}

// Console implements both narration.Channel and recognition.Channel.
type Console struct {
	conf   Configuration
	locale language.Tag
	out    io.Writer
	in     LineReader

	lines     chan line
	capturing atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	outMutex  sync.Mutex
}

func (this *Console) Speak(ctx context.Context, u narration.Utterance) error {
	this.println("speaking: " + u.Text)

	d := this.durationOf(u.Text)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		this.println("(interrupted)")
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-this.done:
		return io.ErrClosedPipe
	}
}

func (this *Console) durationOf(text string) time.Duration {
	if this.conf.WordsPerMinute == 0 {
		return 0
	}
	words := len(strings.Fields(text))
	return time.Duration(words) * time.Minute / time.Duration(this.conf.WordsPerMinute)
}

func (this *Console) Voices() []narration.Voice {
	return []narration.Voice{{Name: "console", Locale: this.locale}}
}

// Capture returns the next line typed while it waits. An empty line counts
// as no speech.
func (this *Console) Capture(ctx context.Context) (string, error) {
	this.capturing.Store(true)
	this.setPrompt(promptListening)
	defer func() {
		this.capturing.Store(false)
		this.setPrompt(promptIdle)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-this.done:
		return "", recognition.ErrCapabilityUnavailable
	case l := <-this.lines:
		if l.err != nil {
			return "", l.err
		}
		if strings.TrimSpace(l.text) == "" {
			return "", recognition.ErrNoSpeech
		}
		return l.text, nil
	}
}

func (this *Console) Close() error {
	var err error
	this.closeOnce.Do(func() {
		close(this.done)
		err = this.in.Close()
	})
	return err
}

func (this *Console) read() {
	for {
		text, err := this.in.Readline()
		var l line
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			l.err = fmt.Errorf("%w: input closed", recognition.ErrCapabilityUnavailable)
		case err != nil:
			l.err = fmt.Errorf("%w: %v", recognition.ErrCapabilityUnavailable, err)
		default:
			l.text = text
		}

		if l.err != nil {
			// Delivered to whoever captures next.
			select {
			case this.lines <- l:
			case <-this.done:
			}
			return
		}

		if !this.capturing.Load() {
			log.With("input", text).
				Debug("Ignoring input while not listening.")
			continue
		}
		select {
		case this.lines <- l:
		case <-this.done:
			return
		}
	}
}

func (this *Console) println(text string) {
	this.outMutex.Lock()
	defer this.outMutex.Unlock()
	_, _ = fmt.Fprintln(this.out, text)
}

func (this *Console) setPrompt(v string) {
	if p, ok := this.in.(prompter); ok {
		p.SetPrompt(v)
		p.Refresh()
	}
}
