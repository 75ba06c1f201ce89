// Package narration speaks texts through a text-to-speech channel, one
// utterance at a time.
package narration

import (
	"context"
	"errors"
	"sync"

	log "github.com/echocat/slf4g"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/blaubaer/voice-navigator/pkg/accessibility"
)

// Executor runs the given function on the thread owning the caller's
// state. Completion callbacks are delivered through it.
type Executor func(func())

func Immediate(fn func()) {
	fn()
}

func NewEngine(channel Channel, store *accessibility.Store, locale language.Tag, executor Executor) *Engine {
	if executor == nil {
		executor = Immediate
	}
	return &Engine{
		channel:  channel,
		store:    store,
		locale:   locale,
		executor: executor,
	}
}

type Engine struct {
	channel  Channel
	store    *accessibility.Store
	locale   language.Tag
	executor Executor

	current *utterance
	mutex   sync.Mutex
}

type utterance struct {
	Utterance
	cancel     context.CancelFunc
	onComplete func()
}

// Speak cancels whatever is currently spoken and starts the given text.
// onComplete is called exactly once after the text was spoken or failed;
// it is never called if the utterance is superseded or cancelled. Nothing
// happens if voice is disabled or the text is empty; ok reports that.
func (this *Engine) Speak(text string, onComplete func()) (id uuid.UUID, ok bool) {
	if text == "" || !this.store.VoiceEnabled() {
		return uuid.Nil, false
	}

	ctx, cancel := context.WithCancel(context.Background())
	u := &utterance{
		Utterance: Utterance{
			Id:     uuid.New(),
			Text:   text,
			Locale: this.locale,
			Voice:  SelectVoice(this.channel.Voices(), this.locale),
		},
		cancel:     cancel,
		onComplete: onComplete,
	}

	this.mutex.Lock()
	if previous := this.current; previous != nil {
		previous.cancel()
		log.With("utterance", previous.Id).
			Trace("Utterance superseded.")
	}
	this.current = u
	this.mutex.Unlock()

	if !this.store.SetSpeaking(true) {
		// Voice was disabled in the meantime.
		this.drop(u)
		return uuid.Nil, false
	}

	log.With("utterance", u.Id).
		With("voice", u.Voice).
		With("text", text).
		Debug("Speaking...")

	go func() {
		err := this.channel.Speak(ctx, u.Utterance)
		this.executor(func() {
			this.complete(u, err)
		})
	}()

	return u.Id, true
}

// Cancel stops the current utterance without calling its completion.
func (this *Engine) Cancel() {
	this.mutex.Lock()
	u := this.current
	this.current = nil
	this.mutex.Unlock()

	if u != nil {
		u.cancel()
		log.With("utterance", u.Id).
			Debug("Utterance cancelled.")
	}
	this.store.SetSpeaking(false)
}

func (this *Engine) Speaking() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.current != nil
}

func (this *Engine) complete(u *utterance, err error) {
	this.mutex.Lock()
	if this.current != u {
		this.mutex.Unlock()
		log.With("utterance", u.Id).
			Trace("Ignoring completion of stale utterance.")
		return
	}
	this.current = nil
	this.mutex.Unlock()

	u.cancel()
	this.store.SetSpeaking(false)

	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).
			With("utterance", u.Id).
			Warn("Cannot speak utterance.")
	}
	if v := u.onComplete; v != nil {
		v()
	}
}

func (this *Engine) drop(u *utterance) {
	this.mutex.Lock()
	if this.current == u {
		this.current = nil
	}
	this.mutex.Unlock()
	u.cancel()
}
