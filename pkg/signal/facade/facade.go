package facade

import (
	"fmt"
	"sync"

	"github.com/blaubaer/voice-navigator/pkg/signal"
	"github.com/blaubaer/voice-navigator/pkg/signal/homeassistant"
	"github.com/blaubaer/voice-navigator/pkg/signal/hue"
	"github.com/blaubaer/voice-navigator/pkg/signal/systray"
)

// Facade holds the configured signal. Without one every operation is a
// no-op.
type Facade struct {
	signal.Signal

	// Systray is used if the configured type is signal.TypeSystray.
	Systray *systray.Systray

	lock sync.RWMutex
}

func (this *Facade) Ensure(c signal.Context) error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Ensure(c)
	}
	return nil
}

func (this *Facade) Update() error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Update()
	}
	return nil
}

func (this *Facade) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Signal != nil {
		return nil
	}

	switch conf.Type {
	case signal.TypeNone:
	case signal.TypeHue:
		var buf hue.Hue
		if err := buf.Initialize(&conf.Hue, saveConfFunc); err != nil {
			return fmt.Errorf("cannot initialize hue signal: %w", err)
		}
		this.Signal = &buf
	case signal.TypeHomeAssistant:
		var buf homeassistant.Homeassistant
		if err := buf.Initialize(&conf.HomeAssistant, saveConfFunc); err != nil {
			return fmt.Errorf("cannot initialize Home Assistant signal: %w", err)
		}
		this.Signal = &buf
	case signal.TypeSystray:
		if this.Systray == nil {
			return fmt.Errorf("signal %v is not available in this mode", conf.Type)
		}
		if err := this.Systray.Initialize(); err != nil {
			return fmt.Errorf("cannot initialize systray signal: %w", err)
		}
		this.Signal = this.Systray
	default:
		return fmt.Errorf("unsupported signal type: %v", conf.Type)
	}

	return nil
}

func (this *Facade) Dispose() error {
	this.lock.Lock()
	defer this.lock.Unlock()

	defer func() {
		this.Signal = nil
	}()

	if v := this.Signal; v != nil {
		return v.Dispose()
	}
	return nil
}

func (this *Facade) GetType() signal.Type {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.GetType()
	}
	return signal.TypeNone
}
