package homeassistant

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		EntityId:         fmt.Sprintf("sensor.%s_voice_navigator", computerId),
		DeadZoneInterval: time.Second * 60,
		Timeout:          time.Second * 10,
	}
}

var forbiddenComputerIdChars = regexp.MustCompile("[^a-z0-9_]")

func normalizeEntityIdPrefix(id string) string {
	id = strings.ToLower(id)
	id = strings.TrimSpace(id)
	id = strings.ReplaceAll(id, "-", "_")
	id = strings.ReplaceAll(id, ".", "_")
	id = forbiddenComputerIdChars.ReplaceAllString(id, "_")
	return id
}

var computerId = func() string {
	if result, err := os.Hostname(); err == nil {
		return normalizeEntityIdPrefix(result)
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("cannot generate entity id: %v", err))
	}

	return hex.EncodeToString(buf)
}()

type Configuration struct {
	Server   string `yaml:"server,omitempty"`
	Token    string `yaml:"token,omitempty"`
	EntityId string `yaml:"entityId"`

	DeadZoneInterval time.Duration `yaml:"deadZoneInterval,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal.homeAssistant.server", "URL of the Home Assistant instance.").
		Envar("VN_SIGNAL_HOME_ASSISTANT_SERVER").
		StringVar(&this.Server)
	using.Flag("signal.homeAssistant.token", "Long life token to access the Home Assistant instance.").
		Envar("VN_SIGNAL_HOME_ASSISTANT_TOKEN").
		StringVar(&this.Token)
	using.Flag("signal.homeAssistant.entityId", "Entity ID which will reflect the state of the voice assistant.").
		Envar("VN_SIGNAL_HOME_ASSISTANT_ENTITY_ID").
		StringVar(&this.EntityId)
	using.Flag("signal.homeAssistant.deadZoneInterval", "Duration for how long a local state is used to compare to. To prevent too often checks of the remote system, as this is the source of truth.").
		Envar("VN_SIGNAL_HOME_ASSISTANT_DEAD_ZONE_INTERVAL").
		DurationVar(&this.DeadZoneInterval)
	using.Flag("signal.homeAssistant.timeout", "Timeout of every request against Home Assistant.").
		Envar("VN_SIGNAL_HOME_ASSISTANT_TIMEOUT").
		DurationVar(&this.Timeout)
}
