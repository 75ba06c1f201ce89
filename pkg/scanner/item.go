package scanner

import (
	"fmt"
	"strings"

	"github.com/blaubaer/voice-navigator/pkg/screen"
)

type Kind uint8

const (
	KindText      = Kind(0)
	KindHeading   = Kind(1)
	KindTextField = Kind(2)
	KindPassword  = Kind(3)
	KindCheckbox  = Kind(4)
	KindDate      = Kind(5)
	KindSelect    = Kind(6)
	KindSubmit    = Kind(7)
	KindButton    = Kind(8)
	KindLink      = Kind(9)
)

func (this Kind) String() string {
	switch this {
	case KindText:
		return "text"
	case KindHeading:
		return "heading"
	case KindTextField:
		return "textField"
	case KindPassword:
		return "password"
	case KindCheckbox:
		return "checkbox"
	case KindDate:
		return "date"
	case KindSelect:
		return "select"
	case KindSubmit:
		return "submit"
	case KindButton:
		return "button"
	case KindLink:
		return "link"
	default:
		return fmt.Sprintf("illegal-kind-%d", this)
	}
}

// IsInteractive reports if items of this kind can be acted upon.
func (this Kind) IsInteractive() bool {
	return this != KindText && this != KindHeading
}

// AcceptsSpeech reports if a transcript may be entered into items of this
// kind. Passwords never do.
func (this Kind) AcceptsSpeech() bool {
	return this == KindTextField
}

// Item is one narratable piece of a screen.
type Item struct {
	Ref         *screen.Element
	Description string
	Kind        Kind
	// Label is the inferred name of interactive items.
	Label string
}

func (this Item) IsInteractive() bool {
	return this.Kind.IsInteractive()
}

func (this Item) String() string {
	return fmt.Sprintf("%v: %s", this.Kind, this.Description)
}

type Items []Item

func (this Items) Descriptions() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.Description
	}
	return result
}

func (this Items) String() string {
	return strings.Join(this.Descriptions(), " | ")
}
