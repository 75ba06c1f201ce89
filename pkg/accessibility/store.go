// Package accessibility holds the process wide accessibility state: if the
// voice assistant is enabled, if it currently listens or speaks, and if the
// sign language overlay is shown.
//
// All mutations go through the named transition methods of Store. The store
// guarantees that listening and speaking are never true at the same time.
package accessibility

import (
	"context"
	"fmt"
	"slices"
	"sync"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/preferences"
	"github.com/blaubaer/voice-navigator/pkg/signal"
)

type Snapshot struct {
	VoiceEnabled       bool
	SignOverlayEnabled bool
	Listening          bool
	Speaking           bool
}

func (this Snapshot) State() signal.State {
	switch {
	case !this.VoiceEnabled:
		return signal.StateOff
	case this.Speaking:
		return signal.StateSpeaking
	case this.Listening:
		return signal.StateListening
	default:
		return signal.StateIdle
	}
}

func (this Snapshot) Preferences() preferences.Preferences {
	return preferences.Preferences{
		VoiceEnabled:       this.VoiceEnabled,
		SignOverlayEnabled: this.SignOverlayEnabled,
	}
}

func (this Snapshot) validate() error {
	if this.Listening && this.Speaking {
		return fmt.Errorf("listening and speaking at the same time")
	}
	if !this.VoiceEnabled && (this.Listening || this.Speaking) {
		return fmt.Errorf("listening or speaking while voice is disabled")
	}
	return nil
}

// Listener is called synchronously after every effective change.
type Listener func(previous, current Snapshot)

func NewStore(persistence preferences.Store) *Store {
	return &Store{
		persistence: persistence,
		listeners:   make(map[uint64]Listener),
	}
}

type Store struct {
	persistence preferences.Store

	current      Snapshot
	consentAsked bool
	chosen       bool

	listeners      map[uint64]Listener
	listenerOrder  []uint64
	nextListenerId uint64

	mutex sync.Mutex
}

// Load restores the persisted preferences. The chosen flag reports if the
// user ever made an explicit choice.
func (this *Store) Load(ctx context.Context) (chosen bool, err error) {
	if this.persistence == nil {
		return false, nil
	}
	prefs, chosen, err := preferences.Load(ctx, this.persistence)
	if err != nil {
		return false, fmt.Errorf("cannot load accessibility preferences: %w", err)
	}
	this.transition(func(s *Snapshot) {
		s.VoiceEnabled = prefs.VoiceEnabled
		s.SignOverlayEnabled = prefs.SignOverlayEnabled
		s.Listening = false
		s.Speaking = false
	})
	this.mutex.Lock()
	this.chosen = chosen
	this.mutex.Unlock()
	return chosen, nil
}

func (this *Store) Snapshot() Snapshot {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.current
}

func (this *Store) State() signal.State {
	return this.Snapshot().State()
}

func (this *Store) VoiceEnabled() bool {
	return this.Snapshot().VoiceEnabled
}

func (this *Store) Listening() bool {
	return this.Snapshot().Listening
}

func (this *Store) Speaking() bool {
	return this.Snapshot().Speaking
}

func (this *Store) SignOverlayEnabled() bool {
	return this.Snapshot().SignOverlayEnabled
}

// SetVoiceEnabled switches the voice assistant. Disabling it clears
// listening and speaking immediately; listeners see that before this method
// returns. The new value is persisted if it changed or if no choice was
// persisted before.
func (this *Store) SetVoiceEnabled(ctx context.Context, v bool) error {
	changed := this.transition(func(s *Snapshot) {
		s.VoiceEnabled = v
		if !v {
			s.Listening = false
			s.Speaking = false
		}
	})
	if !changed && this.Chosen() {
		return nil
	}
	return this.persist(ctx)
}

// Chosen reports if the preferences were persisted at least once.
func (this *Store) Chosen() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.chosen
}

func (this *Store) SetSignOverlayEnabled(ctx context.Context, v bool) error {
	if !this.transition(func(s *Snapshot) {
		s.SignOverlayEnabled = v
	}) {
		return nil
	}
	return this.persist(ctx)
}

// StartListening is only effective while voice is enabled and nothing is
// spoken. It reports if listening is active afterward.
func (this *Store) StartListening() bool {
	var result bool
	this.transition(func(s *Snapshot) {
		if s.VoiceEnabled && !s.Speaking {
			s.Listening = true
		}
		result = s.Listening
	})
	return result
}

func (this *Store) StopListening() {
	this.transition(func(s *Snapshot) {
		s.Listening = false
	})
}

// SetSpeaking marks the begin or end of a narration. Speaking always stops
// listening first. It reports if speaking is active afterward.
func (this *Store) SetSpeaking(v bool) bool {
	var result bool
	this.transition(func(s *Snapshot) {
		if v && s.VoiceEnabled {
			s.Listening = false
			s.Speaking = true
		} else {
			s.Speaking = false
		}
		result = s.Speaking
	})
	return result
}

func (this *Store) ConsentAsked() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.consentAsked
}

// MarkConsentAsked reports true only for the first call of this run.
func (this *Store) MarkConsentAsked() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.consentAsked {
		return false
	}
	this.consentAsked = true
	return true
}

// OnChange registers the given listener. The returned function removes it
// again.
func (this *Store) OnChange(l Listener) (unregister func()) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	id := this.nextListenerId
	this.nextListenerId++
	this.listeners[id] = l
	this.listenerOrder = append(this.listenerOrder, id)

	return func() {
		this.mutex.Lock()
		defer this.mutex.Unlock()
		delete(this.listeners, id)
		this.listenerOrder = slices.DeleteFunc(this.listenerOrder, func(candidate uint64) bool {
			return candidate == id
		})
	}
}

func (this *Store) transition(mutator func(*Snapshot)) (changed bool) {
	this.mutex.Lock()
	previous := this.current
	next := previous
	mutator(&next)
	if err := next.validate(); err != nil {
		this.mutex.Unlock()
		panic(fmt.Errorf("illegal accessibility state transition from %+v to %+v: %w", previous, next, err))
	}
	if next == previous {
		this.mutex.Unlock()
		return false
	}
	this.current = next
	listeners := make([]Listener, 0, len(this.listeners))
	for _, id := range this.listenerOrder {
		if l, ok := this.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	this.mutex.Unlock()

	log.With("from", previous.State()).
		With("to", next.State()).
		With("signOverlay", next.SignOverlayEnabled).
		Trace("Accessibility state changed.")

	for _, l := range listeners {
		l(previous, next)
	}
	return true
}

func (this *Store) persist(ctx context.Context) error {
	if this.persistence == nil {
		return nil
	}
	if err := this.Snapshot().Preferences().Save(ctx, this.persistence); err != nil {
		return fmt.Errorf("cannot persist accessibility preferences: %w", err)
	}
	this.mutex.Lock()
	this.chosen = true
	this.mutex.Unlock()
	return nil
}
