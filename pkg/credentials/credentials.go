package credentials

import (
	"encoding/json"
)

const appName = "github.com/blaubaer/voice-navigator"

// Credentials are the secrets the status signals need to reach their
// targets.
type Credentials struct {
	HueBridge string `json:"hueBridge,omitempty"`
	HueUser   string `json:"hueUser,omitempty"`

	HomeAssistantServer string `json:"homeAssistantServer,omitempty"`
	HomeAssistantToken  string `json:"homeAssistantToken,omitempty"`
}

func (this *Credentials) IsZero() bool {
	return this.IsHueZero() && this.IsHomeAssistantZero()
}

func (this *Credentials) IsHueZero() bool {
	return this.HueBridge == "" || this.HueUser == ""
}

func (this *Credentials) IsHomeAssistantZero() bool {
	return this.HomeAssistantServer == "" || this.HomeAssistantToken == ""
}

// Merge fills every empty field of this instance from the given one.
func (this *Credentials) Merge(with Credentials) {
	if this.HueBridge == "" {
		this.HueBridge = with.HueBridge
	}
	if this.HueUser == "" {
		this.HueUser = with.HueUser
	}
	if this.HomeAssistantServer == "" {
		this.HomeAssistantServer = with.HomeAssistantServer
	}
	if this.HomeAssistantToken == "" {
		this.HomeAssistantToken = with.HomeAssistantToken
	}
}

func (this Credentials) MarshalBinary() (data []byte, err error) {
	return json.Marshal(this)
}

func (this *Credentials) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, this)
}
