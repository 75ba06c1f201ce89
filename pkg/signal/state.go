package signal

import (
	"fmt"
	"strings"
)

// State is the status of the voice assistant as exposed to indicators.
type State uint8

const (
	StateOff       = State(0)
	StateIdle      = State(1)
	StateListening = State(2)
	StateSpeaking  = State(3)
)

var (
	AllStates = States{
		StateOff,
		StateIdle,
		StateListening,
		StateSpeaking,
	}
)

func (this *State) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "off", "0", "false", "no":
		*this = StateOff
		return nil
	case "idle", "on", "1", "true", "yes":
		*this = StateIdle
		return nil
	case "listening":
		*this = StateListening
		return nil
	case "speaking":
		*this = StateSpeaking
		return nil
	default:
		return fmt.Errorf("illegal-signal-state: %s", plain)
	}
}

func (this State) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-signal-state-%d", this)
	}
	return string(v)
}

// Title is the human readable status text of the toggle control.
func (this State) Title() string {
	switch this {
	case StateOff:
		return "Voice assistant off"
	case StateIdle:
		return "Voice assistant on"
	case StateListening:
		return "Listening..."
	case StateSpeaking:
		return "Speaking..."
	default:
		return this.String()
	}
}

func (this State) IsOn() bool {
	return this != StateOff
}

func (this State) MarshalText() (text []byte, err error) {
	switch this {
	case StateOff:
		return []byte("off"), nil
	case StateIdle:
		return []byte("idle"), nil
	case StateListening:
		return []byte("listening"), nil
	case StateSpeaking:
		return []byte("speaking"), nil
	default:
		return nil, fmt.Errorf("illegal signal state: %d", this)
	}
}

func (this *State) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type States []State

func (this States) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this States) String() string {
	return strings.Join(this.Strings(), ",")
}
