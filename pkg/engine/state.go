package engine

import (
	"fmt"
	"strings"
)

type State uint8

const (
	StateIdle State = iota
	StateScanning
	StateAnnouncing
	StateReadingItem
	StateAwaitingInput
	StateNavigating
	StateEndOfContent
)

var AllStates = States{
	StateIdle,
	StateScanning,
	StateAnnouncing,
	StateReadingItem,
	StateAwaitingInput,
	StateNavigating,
	StateEndOfContent,
}

func (this State) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-engine-state-%d", this)
	}
	return string(v)
}

func (this State) MarshalText() (text []byte, err error) {
	switch this {
	case StateIdle:
		return []byte("idle"), nil
	case StateScanning:
		return []byte("scanning"), nil
	case StateAnnouncing:
		return []byte("announcing"), nil
	case StateReadingItem:
		return []byte("readingItem"), nil
	case StateAwaitingInput:
		return []byte("awaitingInput"), nil
	case StateNavigating:
		return []byte("navigating"), nil
	case StateEndOfContent:
		return []byte("endOfContent"), nil
	default:
		return nil, fmt.Errorf("illegal-engine-state: %d", this)
	}
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
	return strings.Join(this.Strings(), ", ")
}
