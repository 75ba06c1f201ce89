package console

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/blaubaer/voice-navigator/pkg/narration"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
)

func TestConsole_Speak_prints(t *testing.T) {
	out := &syncBuffer{}
	instance := New(Configuration{}, language.English, out, newFakeReader())
	defer func() { _ = instance.Close() }()

	require.NoError(t, instance.Speak(context.Background(), narration.Utterance{Text: "Hello there."}))

	assert.Equal(t, "speaking: Hello there.\n", out.String())
	assert.Equal(t, []narration.Voice{{Name: "console", Locale: language.English}}, instance.Voices())
}

func TestConsole_Speak_cancellable(t *testing.T) {
	out := &syncBuffer{}
	instance := New(Configuration{WordsPerMinute: 1}, language.English, out, newFakeReader())
	defer func() { _ = instance.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := instance.Speak(ctx, narration.Utterance{Text: "This would take minutes."})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, out.String(), "(interrupted)")
}

func TestConsole_durationOf(t *testing.T) {
	instance := &Console{conf: Configuration{WordsPerMinute: 120}}

	assert.Equal(t, 2*time.Second, instance.durationOf("one two three four"))
	assert.Equal(t, time.Duration(0), (&Console{}).durationOf("one two"))
}

func TestConsole_Capture(t *testing.T) {
	reader := newFakeReader()
	instance := New(Configuration{}, language.English, io.Discard, reader)
	defer func() { _ = instance.Close() }()

	result := capture(instance, context.Background())
	reader.awaitPrompt(t, promptListening)
	reader.lines <- "open housing"
	r := <-result
	require.NoError(t, r.err)
	assert.Equal(t, "open housing", r.text)

	result = capture(instance, context.Background())
	reader.awaitPrompt(t, promptListening)
	reader.lines <- "   "
	r = <-result
	assert.ErrorIs(t, r.err, recognition.ErrNoSpeech)

	ctx, cancel := context.WithCancel(context.Background())
	result = capture(instance, ctx)
	reader.awaitPrompt(t, promptListening)
	cancel()
	r = <-result
	assert.ErrorIs(t, r.err, context.Canceled)

	result = capture(instance, context.Background())
	reader.awaitPrompt(t, promptListening)
	close(reader.lines)
	r = <-result
	assert.ErrorIs(t, r.err, recognition.ErrCapabilityUnavailable)
}

type captured struct {
	text string
	err  error
}

func capture(instance *Console, ctx context.Context) chan captured {
	result := make(chan captured, 1)
	go func() {
		text, err := instance.Capture(ctx)
		result <- captured{text, err}
	}()
	return result
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		lines:   make(chan string),
		prompts: make(chan string, 100),
		closed:  make(chan struct{}),
	}
}

type fakeReader struct {
	lines     chan string
	prompts   chan string
	closed    chan struct{}
	closeOnce sync.Once
}

func (this *fakeReader) Readline() (string, error) {
	select {
	case v, ok := <-this.lines:
		if !ok {
			return "", io.EOF
		}
		return v, nil
	case <-this.closed:
		return "", io.EOF
	}
}

func (this *fakeReader) Close() error {
	this.closeOnce.Do(func() { close(this.closed) })
	return nil
}

func (this *fakeReader) SetPrompt(v string) {
	this.prompts <- v
}

func (this *fakeReader) Refresh() {}

func (this *fakeReader) awaitPrompt(t *testing.T, expected string) {
	for {
		select {
		case v := <-this.prompts:
			if v == expected {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout while waiting for prompt %q", expected)
		}
	}
}

type syncBuffer struct {
	buf   bytes.Buffer
	mutex sync.Mutex
}

func (this *syncBuffer) Write(p []byte) (int, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.buf.Write(p)
}

func (this *syncBuffer) String() string {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.buf.String()
}
