package app

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blaubaer/voice-navigator/pkg/audio"
	"github.com/blaubaer/voice-navigator/pkg/common"
	"github.com/blaubaer/voice-navigator/pkg/engine"
	"github.com/blaubaer/voice-navigator/pkg/level"
	"github.com/blaubaer/voice-navigator/pkg/navigation"
	"github.com/blaubaer/voice-navigator/pkg/signal/facade"
)

const appDirectoryName = "voice-navigator"

func NewConfiguration() Configuration {
	return Configuration{
		RefreshInterval: 5 * time.Minute,
		Consent:         ConsentAsk,

		Channel: NewChannelConfiguration(),
		Preferences: PreferencesConfiguration{
			Directory: filepath.Join(configurationDirectory(), "preferences"),
		},
		Screens: ScreensConfiguration{
			Start:  "/home",
			Routes: demoRoutes(),
		},

		Engine:  engine.NewConfiguration(),
		Monitor: level.NewConfiguration(),
		Signal:  facade.NewConfiguration(),
	}
}

type Configuration struct {
	PreventAutoSave bool          `yaml:"preventAutoSave"`
	RefreshInterval time.Duration `yaml:"refreshInterval,omitempty"`
	Consent         Consent       `yaml:"consent"`

	Channel     ChannelConfiguration     `yaml:"channel"`
	Preferences PreferencesConfiguration `yaml:"preferences"`
	Screens     ScreensConfiguration     `yaml:"screens"`

	Engine  engine.Configuration `yaml:"engine"`
	Monitor level.Configuration  `yaml:"monitor,omitempty"`
	Audio   audio.Configuration  `yaml:"audio,omitempty"`
	Signal  facade.Configuration `yaml:"signal,omitempty"`
}

type PreferencesConfiguration struct {
	Directory string `yaml:"directory,omitempty"`
	InMemory  bool   `yaml:"inMemory,omitempty"`
}

// ScreensConfiguration defines where screens are loaded from. Without a
// directory the embedded demo screens are used.
type ScreensConfiguration struct {
	Directory string            `yaml:"directory,omitempty"`
	Start     string            `yaml:"start"`
	Routes    navigation.Routes `yaml:"routes"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("VN_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)
	using.Flag("refreshInterval", "How often the signal is refreshed and its state is ensured again.").
		Envar("VN_REFRESH_INTERVAL").
		DurationVar(&this.RefreshInterval)
	using.Flag("consent", "How the voice assistant is switched on at start. All possible values: "+AllConsents.String()).
		Envar("VN_CONSENT").
		SetValue(&this.Consent)
	using.Flag("preferences.directory", "Directory the preferences of the user are stored in.").
		Envar("VN_PREFERENCES_DIRECTORY").
		StringVar(&this.Preferences.Directory)
	using.Flag("preferences.inMemory", "If provided preferences of the user are not persisted.").
		Envar("VN_PREFERENCES_IN_MEMORY").
		BoolVar(&this.Preferences.InMemory)
	using.Flag("screens.directory", "Directory the screens are loaded from. If empty the embedded demo screens are used.").
		Envar("VN_SCREENS_DIRECTORY").
		StringVar(&this.Screens.Directory)
	using.Flag("screens.start", "Route which is opened at start.").
		Envar("VN_SCREENS_START").
		StringVar(&this.Screens.Start)

	this.Channel.SetupConfiguration(using)
	this.Engine.SetupConfiguration(using)
	this.Monitor.SetupConfiguration(using)
	this.Audio.SetupConfiguration(using)
	this.Signal.SetupConfiguration(using)
}

func (this *Configuration) loadFrom(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(this); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (this *Configuration) loadFromFile(fn string, ignoreNotFound bool) error {
	f, err := os.Open(fn)
	if os.IsNotExist(err) && ignoreNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.loadFrom(f); err != nil {
		return fmt.Errorf("cannot load configuration file %q: %w", fn, err)
	}

	return nil
}

func (this *Configuration) saveTo(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(this); err != nil {
		return err
	}
	return enc.Close()
}

func (this *Configuration) saveToFile(fn string) error {
	if err := os.MkdirAll(filepath.Dir(fn), 0700); err != nil {
		return fmt.Errorf("cannot create directory of configuration file %q: %w", fn, err)
	}

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.saveTo(f); err != nil {
		return fmt.Errorf("cannot write file %q: %w", fn, err)
	}

	return nil
}

func configurationDirectory() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		fs, err := os.Stat(appData)
		if err == nil && fs.IsDir() {
			return filepath.Join(appData, appDirectoryName)
		}
	}

	u, err := user.Current()
	if err != nil {
		return appDirectoryName
	}

	return filepath.Join(u.HomeDir, ".config", appDirectoryName)
}

func defaultConfigurationFile() string {
	return filepath.Join(configurationDirectory(), "configuration.yml")
}
