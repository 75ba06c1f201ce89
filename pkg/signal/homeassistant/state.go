package homeassistant

import (
	"time"

	"github.com/blaubaer/voice-navigator/pkg/signal"
)

type stateGetResponse struct {
	EntityId    string         `json:"entity_id"`
	State       signal.State   `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
}

func (this *stateGetResponse) page() string {
	if this.Attributes == nil {
		return ""
	}
	v, _ := this.Attributes[attrPage].(string)
	return v
}

type statePostRequest struct {
	State      signal.State   `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

const (
	attrPage         = "page"
	attrFriendlyName = "friendly_name"
	attrIcon         = "icon"
	attrTitle        = "title"
)

type state struct {
	timestamp time.Time
	state     signal.State
	page      string
}

func (this *state) isEqualTo(o *state) bool {
	return this.state == o.state &&
		this.page == o.page
}

func icon(s signal.State) string {
	switch s {
	case signal.StateListening:
		return "mdi:microphone"
	case signal.StateSpeaking:
		return "mdi:account-voice"
	case signal.StateOff:
		return "mdi:microphone-off"
	default:
		return "mdi:microphone-message"
	}
}
