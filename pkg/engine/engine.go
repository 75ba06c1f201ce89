// Package engine coordinates scanning, narration, recognition and command
// dispatch as one finite state machine driven by a single event loop.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/google/uuid"

	"github.com/blaubaer/voice-navigator/pkg/accessibility"
	"github.com/blaubaer/voice-navigator/pkg/command"
	"github.com/blaubaer/voice-navigator/pkg/narration"
	"github.com/blaubaer/voice-navigator/pkg/navigation"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
	"github.com/blaubaer/voice-navigator/pkg/scanner"
)

// Navigator is the navigation service the engine reads screens from.
type Navigator interface {
	Routes() navigation.Routes
	Current() navigation.Destination
	Title(id string) string
	Navigate(id string) error
	Back() error
	CanGoBack() bool
	OnChange(navigation.Listener) (unregister func())
}

type Status struct {
	State        State     `json:"state"`
	Session      uuid.UUID `json:"session"`
	Cursor       int       `json:"cursor"`
	Items        int       `json:"items"`
	EndAnnounced bool      `json:"endAnnounced"`
	Destination  string    `json:"destination,omitempty"`
}

func New(conf Configuration, store *accessibility.Store, navigator Navigator, tts narration.Channel, stt recognition.Channel) (*Engine, error) {
	table := conf.Commands.Merge(command.DefaultTable())
	if len(table.Navigation) == 0 {
		table.Navigation = command.NavigationFor(navigator.Routes())
	}
	if err := table.Validate(navigator.Routes()); err != nil {
		return nil, fmt.Errorf("cannot use command table: %w", err)
	}

	result := &Engine{
		conf:      conf,
		store:     store,
		navigator: navigator,
		scanner:   scanner.New(conf.Scanner),
		table:     table,
		queue:     newQueue(),
		done:      make(chan struct{}),
	}
	result.narrator = narration.NewEngine(tts, store, conf.Locale.Tag, result.post)
	result.recognizer = recognition.NewLoop(stt, store, conf.Recognition, result.post, result.process, result.onRecognitionUnavailable)
	return result, nil
}

type Engine struct {
	conf       Configuration
	store      *accessibility.Store
	navigator  Navigator
	scanner    *scanner.Scanner
	narrator   *narration.Engine
	recognizer *recognition.Loop
	table      command.Table

	queue *queue
	done  chan struct{}
	ctx   context.Context

	// generation is increased whenever pending continuations become stale:
	// a new scan, a navigation or voice being switched off.
	generation atomic.Uint64

	// Everything below is only touched by the event loop.
	state        State
	session      *scanner.Session
	endAnnounced bool
}

// Run executes the event loop until the given context is done.
func (this *Engine) Run(ctx context.Context) error {
	this.ctx = ctx
	defer close(this.done)

	unregisterStore := this.store.OnChange(this.onStoreChange)
	defer unregisterStore()
	unregisterNavigator := this.navigator.OnChange(this.onDestinationChange)
	defer unregisterNavigator()

	this.post(func() {
		if this.store.VoiceEnabled() {
			this.scheduleScan()
		}
	})

	for {
		select {
		case <-ctx.Done():
			this.shutdown()
			return nil
		case <-this.queue.signal:
			for {
				fn, ok := this.queue.pop()
				if !ok {
					break
				}
				fn()
			}
		}
	}
}

// Status returns a snapshot of the engine, taken on the event loop.
func (this *Engine) Status() Status {
	result := make(chan Status, 1)
	this.post(func() {
		result <- this.status()
	})
	select {
	case v := <-result:
		return v
	case <-this.done:
		return Status{}
	}
}

// Table returns the command table in use.
func (this *Engine) Table() command.Table {
	return this.table
}

func (this *Engine) status() Status {
	result := Status{
		State:        this.state,
		EndAnnounced: this.endAnnounced,
	}
	if s := this.session; s != nil {
		result.Session = s.Id
		result.Cursor = s.Cursor()
		result.Items = s.Len()
	}
	if d := this.navigator.Current(); !d.IsZero() {
		result.Destination = d.Route.Id
	}
	return result
}

func (this *Engine) post(fn func()) {
	this.queue.push(fn)
}

// guard wraps the given continuation so it only runs if nothing superseded
// it in the meantime and voice is still enabled.
func (this *Engine) guard(fn func()) func() {
	generation := this.generation.Load()
	return func() {
		if generation != this.generation.Load() || !this.store.VoiceEnabled() {
			log.With("generation", generation).
				Trace("Ignoring stale continuation.")
			return
		}
		fn()
	}
}

func (this *Engine) after(d time.Duration, fn func()) {
	guarded := this.guard(fn)
	time.AfterFunc(d, func() {
		this.post(guarded)
	})
}

// speak narrates the given text and continues with next once it was spoken.
func (this *Engine) speak(text string, next func()) {
	var onComplete func()
	if next != nil {
		onComplete = this.guard(next)
	}
	this.store.StopListening()
	this.narrator.Speak(text, onComplete)
}

func (this *Engine) speakThenListen(text string) {
	this.speak(text, this.awaitInput)
}

func (this *Engine) setState(v State) {
	if this.state == v {
		return
	}
	log.With("from", this.state).
		With("to", v).
		Debug("Engine state changed.")
	this.state = v
}

// supersede invalidates every pending continuation and stops narration and
// listening.
func (this *Engine) supersede() {
	this.generation.Add(1)
	this.narrator.Cancel()
	this.store.StopListening()
}

// onStoreChange is called synchronously by the store, possibly outside the
// event loop.
func (this *Engine) onStoreChange(previous, current accessibility.Snapshot) {
	switch {
	case previous.VoiceEnabled && !current.VoiceEnabled:
		this.generation.Add(1)
		this.narrator.Cancel()
		this.post(this.reset)
	case !previous.VoiceEnabled && current.VoiceEnabled:
		this.post(func() {
			if this.store.VoiceEnabled() {
				this.scheduleScan()
			}
		})
	}
}

func (this *Engine) onDestinationChange(navigation.Destination) {
	this.post(func() {
		if this.store.VoiceEnabled() {
			this.scheduleScan()
		}
	})
}

func (this *Engine) reset() {
	if this.store.VoiceEnabled() {
		return
	}
	if s := this.session; s != nil {
		s.ClearFocus()
	}
	this.session = nil
	this.endAnnounced = false
	this.setState(StateIdle)
}

func (this *Engine) shutdown() {
	this.generation.Add(1)
	this.narrator.Cancel()
	this.store.StopListening()
	this.recognizer.Close()
	if s := this.session; s != nil {
		s.ClearFocus()
	}
	this.setState(StateIdle)
}
