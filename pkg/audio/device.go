package audio

import (
	"fmt"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

type Device struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Index uint32 `json:"index"`
}

func (this Device) String() string {
	return fmt.Sprintf("[%d] %s", this.Index, this.Name)
}

func (this Device) IsZero() bool {
	return this.Id == ""
}

type Devices []Device

func (this Devices) IsZero() bool {
	return len(this) <= 0
}

func (this Devices) HasContent() bool {
	return !this.IsZero()
}

// Find returns the first device whose name matches the given expression.
// An empty expression matches nothing.
func (this Devices) Find(name common.Regexp) (Device, bool) {
	if name.IsZero() {
		return Device{}, false
	}
	for _, v := range this {
		if name.MatchString(v.Name) {
			return v, true
		}
	}
	return Device{}, false
}
