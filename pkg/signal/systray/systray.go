package systray

import (
	"errors"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/blaubaer/voice-navigator/pkg/signal"
)

// Systray reflects the voice assistant with the icon and tooltip of the
// tray entry. It requires a running systray loop.
type Systray struct {
	IconOff       []byte
	IconOn        []byte
	IconListening []byte
	IconSpeaking  []byte

	// Apply is used to change the tray entry; nil means the real systray.
	Apply func(icon []byte, tooltip string)

	last  string
	mutex sync.Mutex
}

func (this *Systray) Initialize() error {
	if len(this.IconOff) == 0 {
		return errors.New("IconOff is empty")
	}
	if len(this.IconOn) == 0 {
		return errors.New("IconOn is empty")
	}
	if this.Apply == nil {
		this.Apply = func(icon []byte, tooltip string) {
			systray.SetIcon(icon)
			systray.SetTooltip(tooltip)
		}
	}
	return nil
}

func (this *Systray) Dispose() error {
	return nil
}

func (this *Systray) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.Apply == nil {
		return errors.New("systray signal not initialized")
	}

	state := ctx.State()
	tooltip := state.Title()
	if page := ctx.Page(); page != "" && state.IsOn() {
		tooltip = fmt.Sprintf("%s\nPage: %s", tooltip, page)
	}
	if tooltip == this.last {
		return nil
	}

	this.Apply(this.icon(state), tooltip)
	this.last = tooltip
	return nil
}

func (this *Systray) icon(state signal.State) []byte {
	switch state {
	case signal.StateOff:
		return this.IconOff
	case signal.StateListening:
		if len(this.IconListening) > 0 {
			return this.IconListening
		}
	case signal.StateSpeaking:
		if len(this.IconSpeaking) > 0 {
			return this.IconSpeaking
		}
	}
	return this.IconOn
}

func (this *Systray) Update() error {
	return nil
}

func (this *Systray) GetType() signal.Type {
	return signal.TypeSystray
}
