package screen

import "fmt"

type EventType uint8

const (
	EventInput  = EventType(0)
	EventChange = EventType(1)
	EventClick  = EventType(2)
	EventSubmit = EventType(3)
)

func (this EventType) String() string {
	switch this {
	case EventInput:
		return "input"
	case EventChange:
		return "change"
	case EventClick:
		return "click"
	case EventSubmit:
		return "submit"
	default:
		return fmt.Sprintf("illegal-event-type-%d", this)
	}
}

type Event struct {
	Type   EventType
	Target *Element
}

func (this Event) String() string {
	return fmt.Sprintf("%v on %v", this.Type, this.Target)
}

type Listener func(Event)
