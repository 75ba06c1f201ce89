package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"dario.cat/mergo"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/accessibility"
	"github.com/blaubaer/voice-navigator/pkg/audio"
	"github.com/blaubaer/voice-navigator/pkg/channel/bridge"
	"github.com/blaubaer/voice-navigator/pkg/channel/console"
	"github.com/blaubaer/voice-navigator/pkg/common"
	"github.com/blaubaer/voice-navigator/pkg/engine"
	"github.com/blaubaer/voice-navigator/pkg/level"
	"github.com/blaubaer/voice-navigator/pkg/narration"
	"github.com/blaubaer/voice-navigator/pkg/navigation"
	"github.com/blaubaer/voice-navigator/pkg/preferences"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
	"github.com/blaubaer/voice-navigator/pkg/signal"
	"github.com/blaubaer/voice-navigator/pkg/signal/facade"
)

// Voice is what speaks to and listens for the user.
type Voice interface {
	narration.Channel
	recognition.Channel
}

type App struct {
	Signal            facade.Facade
	ConfigurationFile string

	// Voice replaces the configured channel if set.
	Voice Voice
	// Ask replaces the terminal prompt for the consent if set.
	Ask Asker
	// Terminal provides the streams of the console channel and of every
	// prompt while initializing. Standard input and output are used if nil.
	Terminal Terminal

	configFromFlags Configuration
	config          Configuration

	preferences preferences.Store
	store       *accessibility.Store
	navigator   *navigation.Navigator
	voice       Voice
	bridge      *bridge.Bridge
	engine      *engine.Engine
	audio       *audio.Stack
	monitor     *level.Monitor

	releaseTerminal func()
	prompts         *prompts
}

// Terminal acquires a terminal. The streams stay usable until release is
// called.
type Terminal func() (stdin io.ReadCloser, stdout io.Writer, release func(), err error)

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		Envar("VN_CONFIGURATION").
		StringVar(&this.ConfigurationFile)
}

func (this *App) Initialize(ctx context.Context) (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	this.config = NewConfiguration()
	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	if err := mergo.Merge(&this.config, this.configFromFlags, mergo.WithOverride); err != nil {
		return fmt.Errorf("cannot merge configuration with flags: %w", err)
	}

	if this.Terminal != nil {
		this.prompts = redirectPrompts(this.Terminal)
		defer this.prompts.settle()
	}

	if err := this.initializeStore(ctx); err != nil {
		return err
	}
	if err := this.initializeNavigator(); err != nil {
		return err
	}
	if err := this.initializeVoice(); err != nil {
		return err
	}

	var err error
	if this.engine, err = engine.New(this.config.Engine, this.store, this.navigator, this.voice, this.voice); err != nil {
		return fmt.Errorf("cannot create engine: %w", err)
	}

	this.audio = audio.NewStack()
	this.audio.Configuration = this.config.Audio
	if err := this.audio.Initialize(); err != nil {
		return fmt.Errorf("cannot initialize audio: %w", err)
	}
	this.monitor = level.NewMonitor(this.config.Monitor, this.audio, this.store)
	this.monitor.Subscribe(this.onFrame)

	if err := this.Signal.Initialize(&this.config.Signal, this.alwaysSaveConf); err != nil {
		return err
	}

	if err := this.saveConf(false); err != nil {
		return err
	}

	success = true
	return nil
}

func (this *App) initializeStore(ctx context.Context) error {
	if this.config.Preferences.InMemory {
		this.preferences = preferences.NewMemory()
	} else {
		v, err := preferences.NewBadger(preferences.BadgerOptions{Dir: this.config.Preferences.Directory})
		if err != nil {
			return err
		}
		this.preferences = v
	}

	this.store = accessibility.NewStore(this.preferences)
	chosen, err := this.store.Load(ctx)
	if err != nil {
		return err
	}

	ask := this.Ask
	if ask == nil {
		ask = askOnTerminal
	}
	if err := this.config.Consent.ensure(ctx, this.store, chosen, ask); err != nil {
		return err
	}

	this.store.OnChange(func(previous, current accessibility.Snapshot) {
		if p, c := previous.State(), current.State(); p != c {
			log.With("state", c).
				With("previous", p).
				Debug("Voice assistant state changed.")
		}
		if previous.VoiceEnabled && !current.VoiceEnabled {
			log.Info("Voice assistant turned off.")
		} else if !previous.VoiceEnabled && current.VoiceEnabled {
			log.Info("Voice assistant turned on.")
		}
	})
	return nil
}

func (this *App) initializeNavigator() error {
	screens, err := this.config.Screens.open()
	if err != nil {
		return err
	}
	if this.navigator, err = navigation.NewNavigator(screens, this.config.Screens.Routes); err != nil {
		return fmt.Errorf("cannot create navigator: %w", err)
	}
	if err := this.navigator.Navigate(this.config.Screens.Start); err != nil {
		return fmt.Errorf("cannot open start screen: %w", err)
	}
	return nil
}

func (this *App) initializeVoice() error {
	if this.Voice != nil {
		this.voice = this.Voice
		return nil
	}

	locale := this.config.Engine.Locale.Tag
	switch this.config.Channel.Type {
	case ChannelTypeConsole:
		if this.Terminal == nil {
			v, err := console.Open(this.config.Channel.Console, locale)
			if err != nil {
				return err
			}
			this.voice = v
			return nil
		}
		stdin, stdout, release, err := this.Terminal()
		if err != nil {
			return fmt.Errorf("cannot acquire terminal for console channel: %w", err)
		}
		v, err := console.OpenOn(this.config.Channel.Console, locale, stdin, stdout)
		if err != nil {
			release()
			return err
		}
		this.voice = v
		this.releaseTerminal = release
	case ChannelTypeBridge:
		this.bridge = bridge.New(this.config.Channel.Bridge)
		this.voice = this.bridge
	default:
		return fmt.Errorf("unsupported channel type: %v", this.config.Channel.Type)
	}
	return nil
}

func (this *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	spawn := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.WithError(err).
					With("component", name).
					Error("Component failed. Going down...")
				errs <- fmt.Errorf("%s failed: %w", name, err)
				cancel()
			}
		}()
	}

	spawn("engine", this.engine.Run)
	spawn("monitor", this.monitor.Run)
	spawn("signal", this.runSignal)
	if this.bridge != nil {
		spawn("bridge", this.bridge.ListenAndServe)
	}

	wg.Wait()
	close(errs)
	return <-errs
}

func (this *App) runSignal(ctx context.Context) error {
	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	defer this.store.OnChange(func(previous, current accessibility.Snapshot) {
		if previous.State() != current.State() {
			notify()
		}
	})()
	defer this.navigator.OnChange(func(navigation.Destination) {
		notify()
	})()
	notify()

	interval := this.config.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("Signal loop interrupted.")
			return nil
		case <-ticker.C:
			if err := this.Signal.Update(); err != nil {
				log.WithError(err).
					Warn("Cannot update signal.")
				continue
			}
			this.ensureSignal()
		case <-changed:
			this.ensureSignal()
		}
	}
}

func (this *App) ensureSignal() {
	if err := this.Signal.Ensure(this.signalContext()); err != nil {
		log.WithError(err).
			Warn("Cannot ensure signal state.")
	}
}

func (this *App) signalContext() signal.Context {
	var page string
	if d := this.navigator.Current(); !d.IsZero() {
		page = d.Document.Title
	}
	return signal.NewContext(this.store.State(), page)
}

func (this *App) onFrame(frame level.Frame) {
	if b := this.bridge; b != nil {
		b.PublishLevels(frame)
	}
	log.With("frame", frame).
		Trace("Audio levels.")
}

// State is the current state of the voice assistant.
func (this *App) State() signal.State {
	return this.store.State()
}

// OnStateChange calls the given function with every new state of the voice
// assistant.
func (this *App) OnStateChange(fn func(signal.State)) (unregister func()) {
	return this.store.OnChange(func(previous, current accessibility.Snapshot) {
		if previous.State() != current.State() {
			fn(current.State())
		}
	})
}

// ToggleVoice switches the voice assistant on or off.
func (this *App) ToggleVoice(ctx context.Context) error {
	return this.store.SetVoiceEnabled(ctx, !this.store.VoiceEnabled())
}

// ToggleSignOverlay shows or hides the sign language overlay. The choice is
// persisted like the voice assistant one.
func (this *App) ToggleSignOverlay(ctx context.Context) error {
	return this.store.SetSignOverlayEnabled(ctx, !this.store.SignOverlayEnabled())
}

func (this *App) SignOverlayEnabled() bool {
	return this.store.SignOverlayEnabled()
}

// Status reports the engine; only valid while Run is executing.
func (this *App) Status() engine.Status {
	return this.engine.Status()
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}

func (this *App) alwaysSaveConf() error {
	return this.saveConf(true)
}

func (this *App) saveConf(always bool) error {
	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
		} else if err != nil {
			return err
		} else {
			return nil
		}
	}

	if err := this.config.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

func (this *App) Dispose() (rErr error) {
	collect := func(err error) {
		if err != nil && rErr == nil {
			rErr = err
		}
	}

	if this.store != nil {
		collect(this.Signal.Ensure(signal.NewContext(signal.StateOff, "")))
	}
	collect(this.Signal.Dispose())

	if v := this.audio; v != nil {
		collect(v.Dispose())
		this.audio = nil
	}
	if v, ok := this.voice.(io.Closer); ok && this.Voice == nil {
		collect(v.Close())
	}
	this.voice = nil
	if v := this.releaseTerminal; v != nil {
		v()
		this.releaseTerminal = nil
	}
	if v := this.prompts; v != nil {
		v.restore()
		this.prompts = nil
	}
	if v := this.preferences; v != nil {
		if err := v.Close(); err != nil {
			collect(fmt.Errorf("cannot close preferences: %w", err))
		}
		this.preferences = nil
	}

	return rErr
}
