// Package level reports the microphone level in a few frequency bands for
// visual feedback. It never influences what the assistant does.
package level

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/accessibility"
	"github.com/blaubaer/voice-navigator/pkg/audio"
)

type Mode uint8

const (
	ModeOff Mode = iota
	ModeIdle
	ModeMicrophone
	ModeSynthetic
	ModeStatic
)

func (this Mode) String() string {
	switch this {
	case ModeOff:
		return "off"
	case ModeIdle:
		return "idle"
	case ModeMicrophone:
		return "microphone"
	case ModeSynthetic:
		return "synthetic"
	case ModeStatic:
		return "static"
	default:
		return fmt.Sprintf("illegal-level-mode-%d", this)
	}
}

func (this Mode) MarshalText() ([]byte, error) {
	return []byte(this.String()), nil
}

type Frame struct {
	Mode   Mode      `json:"mode"`
	Levels Levels    `json:"levels"`
	At     time.Time `json:"at"`
}

func (this Frame) String() string {
	parts := make([]string, len(this.Levels))
	for i, v := range this.Levels {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%v[%s]", this.Mode, strings.Join(parts, " "))
}

type Listener func(Frame)

// Source opens the raw microphone stream.
type Source interface {
	Open(handler audio.SamplesHandler) (audio.Stream, error)
}

func NewMonitor(conf Configuration, source Source, store *accessibility.Store) *Monitor {
	if conf.Bands == 0 {
		conf.Bands = 5
	}
	if conf.Window == 0 {
		conf.Window = 2048
	}
	if conf.FrameInterval <= 0 {
		conf.FrameInterval = time.Second / 30
	}
	return &Monitor{
		conf:      conf,
		source:    source,
		store:     store,
		samples:   newRing(int(conf.Window)),
		listeners: make(map[uint64]Listener),
	}
}

type Monitor struct {
	conf   Configuration
	source Source
	store  *accessibility.Store

	samples *ring
	stream  audio.Stream
	// denied is set once opening the microphone failed. It is reset when
	// voice is switched off.
	denied  bool
	started time.Time

	listeners      map[uint64]Listener
	listenerOrder  []uint64
	nextListenerId uint64
	mutex          sync.Mutex
}

// Run publishes a frame every frame interval until the context is done.
func (this *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(this.conf.FrameInterval)
	defer ticker.Stop()
	defer this.release()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			this.publish(this.Tick(now))
		}
	}
}

// Tick computes the frame for the given point in time according to the
// current accessibility state, opening or releasing the microphone as
// needed.
func (this *Monitor) Tick(now time.Time) Frame {
	snapshot := this.store.Snapshot()
	bands := int(this.conf.Bands)

	switch {
	case !snapshot.VoiceEnabled:
		this.release()
		this.denied = false
		return Frame{ModeOff, make(Levels, bands), now}
	case snapshot.Speaking:
		this.release()
		if this.started.IsZero() {
			this.started = now
		}
		return Frame{ModeSynthetic, pulse(bands, now.Sub(this.started).Seconds()), now}
	case snapshot.Listening:
		this.started = time.Time{}
		if !this.acquire() {
			return Frame{ModeStatic, static(bands), now}
		}
		levels := computeLevels(this.samples.Latest(int(this.conf.Window)), this.stream.SampleRate(), bands)
		return Frame{ModeMicrophone, levels, now}
	default:
		this.release()
		this.started = time.Time{}
		return Frame{ModeIdle, make(Levels, bands), now}
	}
}

func (this *Monitor) acquire() bool {
	if stream := this.stream; stream != nil {
		select {
		case <-stream.Done():
			log.Info("Microphone stream ended unexpectedly; showing a static level instead.")
			this.release()
			this.denied = true
			return false
		default:
			return true
		}
	}
	if this.denied || this.source == nil {
		return false
	}
	stream, err := this.source.Open(this.samples.Write)
	if err != nil {
		this.denied = true
		log.WithError(err).
			Info("Cannot access the microphone; showing a static level instead.")
		return false
	}
	this.samples.Clear()
	this.stream = stream
	log.Debug("Microphone level monitoring started.")
	return true
}

func (this *Monitor) release() {
	if this.stream == nil {
		return
	}
	if err := this.stream.Close(); err != nil {
		log.WithError(err).
			Warn("Cannot close microphone stream.")
	}
	this.stream = nil
	log.Debug("Microphone level monitoring stopped.")
}

func (this *Monitor) Subscribe(l Listener) (unsubscribe func()) {
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

func (this *Monitor) publish(frame Frame) {
	this.mutex.Lock()
	listeners := make([]Listener, 0, len(this.listeners))
	for _, id := range this.listenerOrder {
		if l, ok := this.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	this.mutex.Unlock()

	for _, l := range listeners {
		l(frame)
	}
}
