// Package recognition keeps a speech-to-text capture running while the
// accessibility state asks for listening.
package recognition

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/accessibility"
)

type Handler func(transcript string)

type Executor func(func())

// UnavailableHandler is called once the channel reported that capturing is
// not possible.
type UnavailableHandler func(cause error)

func NewLoop(channel Channel, store *accessibility.Store, conf Configuration, executor Executor, handler Handler, unavailable UnavailableHandler) *Loop {
	if executor == nil {
		executor = func(fn func()) { fn() }
	}
	result := &Loop{
		channel:  channel,
		store:    store,
		conf:     conf,
		executor: executor,
		handler:  handler,

		unavailable: unavailable,
	}
	result.unregister = store.OnChange(result.onStoreChange)
	return result
}

type Loop struct {
	channel  Channel
	store    *accessibility.Store
	conf     Configuration
	executor Executor
	handler  Handler

	unavailable UnavailableHandler
	unregister  func()
	generation  uint64
	cancel      context.CancelFunc
	timer       *time.Timer
	disabled    bool
	closed      bool
	mutex       sync.Mutex
}

func (this *Loop) desired(s accessibility.Snapshot) bool {
	return s.VoiceEnabled && s.Listening && !s.Speaking
}

// Sync starts or stops capturing depending on the current accessibility
// state.
func (this *Loop) Sync() {
	snapshot := this.store.Snapshot()

	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.closed || this.disabled || !this.desired(snapshot) {
		this.stop()
		return
	}
	if this.cancel != nil || this.timer != nil {
		return
	}
	this.start()
}

// Available reports false once the channel reported that capturing is not
// possible. It becomes true again after voice was switched off and on.
func (this *Loop) Available() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return !this.disabled
}

func (this *Loop) Capturing() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.cancel != nil
}

func (this *Loop) Close() {
	this.mutex.Lock()
	this.closed = true
	this.stop()
	this.mutex.Unlock()

	this.unregister()
}

func (this *Loop) onStoreChange(previous, current accessibility.Snapshot) {
	if previous.VoiceEnabled && !current.VoiceEnabled {
		this.mutex.Lock()
		this.disabled = false
		this.mutex.Unlock()
	}
	this.Sync()
}

func (this *Loop) start() {
	this.generation++
	generation := this.generation
	ctx, cancel := context.WithCancel(context.Background())
	this.cancel = cancel

	log.With("generation", generation).
		Trace("Capture started.")

	go func() {
		transcript, err := this.channel.Capture(ctx)
		this.executor(func() {
			this.captured(generation, transcript, err)
		})
	}()
}

func (this *Loop) stop() {
	if this.cancel != nil {
		this.cancel()
		this.cancel = nil
		this.generation++
		log.Trace("Capture stopped.")
	}
	if this.timer != nil {
		this.timer.Stop()
		this.timer = nil
	}
}

func (this *Loop) captured(generation uint64, transcript string, err error) {
	this.mutex.Lock()
	if generation != this.generation {
		this.mutex.Unlock()
		log.With("generation", generation).
			Trace("Ignoring result of stale capture.")
		return
	}
	this.cancel()
	this.cancel = nil

	if IsUnavailable(err) {
		this.disabled = true
		this.mutex.Unlock()
		log.WithError(err).
			Warn("Speech recognition is not available; voice commands are disabled. Narration continues.")
		if v := this.unavailable; v != nil {
			v(err)
		}
		return
	}
	this.mutex.Unlock()

	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, ErrNoSpeech), err == nil && transcript == "":
		log.Debug("No speech detected.")
	case err != nil:
		log.WithError(err).
			Warn("Capture failed; retrying.")
	default:
		log.With("transcript", transcript).
			Debug("Transcript received.")
		if v := this.handler; v != nil {
			v(transcript)
		}
	}

	this.scheduleRestart()
}

func (this *Loop) scheduleRestart() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.closed || this.disabled || this.cancel != nil || this.timer != nil {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(this.conf.RestartDelay, func() {
		this.executor(func() {
			this.mutex.Lock()
			if this.timer != timer {
				this.mutex.Unlock()
				return
			}
			this.timer = nil
			this.mutex.Unlock()
			this.Sync()
		})
	})
	this.timer = timer
}
