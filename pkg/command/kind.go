package command

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindTurnOff
	KindNavigate
	KindNext
	KindActivate
	KindAuthenticate
	KindBack
	KindRestart
	KindToggle
	KindStop
	KindFreeText
)

var AllKinds = Kinds{
	KindUnknown,
	KindTurnOff,
	KindNavigate,
	KindNext,
	KindActivate,
	KindAuthenticate,
	KindBack,
	KindRestart,
	KindToggle,
	KindStop,
	KindFreeText,
}

func (this Kind) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-command-kind-%d", this)
	}
	return string(v)
}

func (this Kind) MarshalText() (text []byte, err error) {
	switch this {
	case KindUnknown:
		return []byte("unknown"), nil
	case KindTurnOff:
		return []byte("turnOff"), nil
	case KindNavigate:
		return []byte("navigate"), nil
	case KindNext:
		return []byte("next"), nil
	case KindActivate:
		return []byte("activate"), nil
	case KindAuthenticate:
		return []byte("authenticate"), nil
	case KindBack:
		return []byte("back"), nil
	case KindRestart:
		return []byte("restart"), nil
	case KindToggle:
		return []byte("toggle"), nil
	case KindStop:
		return []byte("stop"), nil
	case KindFreeText:
		return []byte("freeText"), nil
	default:
		return nil, fmt.Errorf("illegal-command-kind: %d", this)
	}
}

type Kinds []Kind

func (this Kinds) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Kinds) String() string {
	return strings.Join(this.Strings(), ", ")
}
