package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/echocat/slf4g"
	"github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/consumer"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"
	"github.com/getlantern/systray"

	"github.com/blaubaer/voice-navigator/pkg/app"
	"github.com/blaubaer/voice-navigator/pkg/common"
	"github.com/blaubaer/voice-navigator/pkg/console"
	ps "github.com/blaubaer/voice-navigator/pkg/signal"
	pst "github.com/blaubaer/voice-navigator/pkg/signal/systray"
)

func main() {
	buffer := common.NewRingLineBuffer(2000, 4096)
	buffer.TruncateTooLongLines = true
	output := console.NewOutput(buffer)
	detachStderr := output.Attach(os.Stderr)
	consumer.Default = consumer.NewWriter(output)

	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(func(v *formatter.Text) {
			bv := true
			v.AllowMultiLineMessage = &bv
			v.MultiLineMessageAfterFields = &bv
		}),
		"json": formatter.NewJson(),
	}

	var a app.App
	var tray bool

	cmd := kingpin.New(os.Args[0], "Voice navigation assistant: reads screens aloud and follows spoken commands.").
		Action(func(*kingpin.ParseContext) error {
			if tray {
				detachStderr()
				return runInTray(&a, output)
			}
			return run(&a)
		})
	a.SetupConfiguration(cmd)

	cmd.Flag("tray", "If provided the voice assistant runs inside the system tray which allows to switch it on and off.").
		Envar("VN_TRAY").
		BoolVar(&tray)
	cmd.Flag("log.level", "").
		SetValue(lv.Level)
	cmd.Flag("log.format", "").
		Default("text").
		SetValue(lv.Consumer.Formatter)
	cmd.Flag("log.color", "").
		Default("auto").
		SetValue(lv.Consumer.Formatter.ColorMode)

	kingpin.MustParse(cmd.Parse(os.Args[1:]))
}

func run(a *app.App) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Initialize(ctx); err != nil {
		return err
	}
	defer func() { _ = a.Dispose() }()

	err := a.Run(ctx)
	log.Info("Terminated. Going down...")
	return err
}

func runInTray(a *app.App, output *console.Output) (rErr error) {
	a.Signal.Systray = &pst.Systray{
		IconOff:       micOffIcon,
		IconOn:        micOnIcon,
		IconListening: micListeningIcon,
		IconSpeaking:  micSpeakingIcon,
	}

	ctrlC := make(chan struct{}, 1)
	shared := &console.Shared{
		Title:  "Voice Navigator",
		Output: output,
		OnCtrlC: func() {
			select {
			case ctrlC <- struct{}{}:
			default:
			}
		},
	}
	a.Terminal = shared.Streams

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Initialize(ctx); err != nil {
		return err
	}

	systray.Run(func() {
		systray.SetIcon(micOffIcon)
		systray.SetTitle("Voice Navigator")
		toggleMi := systray.AddMenuItem(toggleTitle(a.State()), "Switches the voice assistant on or off.")
		overlayMi := systray.AddMenuItemCheckbox("Sign language overlay", "Shows or hides the sign language overlay.", a.SignOverlayEnabled())
		showConsoleMi := systray.AddMenuItem("Show Console", "Shows the console with more information.")
		quitMi := systray.AddMenuItem("Exit", "Exit the voice navigator")

		var hideConsole func()
		toggleConsole := func() {
			if hideConsole != nil {
				hideConsole()
				hideConsole = nil
				showConsoleMi.SetTitle("Show Console")
				showConsoleMi.SetTooltip("Shows the console with more information.")
				return
			}
			_, release, err := shared.Acquire()
			if err != nil {
				log.WithError(err).
					Warn("Cannot create console.")
				return
			}
			hideConsole = release
			showConsoleMi.SetTitle("Hide Console")
			showConsoleMi.SetTooltip("Hide the currently opened console.")
		}

		unregister := a.OnStateChange(func(state ps.State) {
			toggleMi.SetTitle(toggleTitle(state))
		})

		go func() {
			for {
				select {
				case <-toggleMi.ClickedCh:
					if err := a.ToggleVoice(ctx); err != nil {
						log.WithError(err).
							Warn("Cannot switch the voice assistant.")
					}
				case <-overlayMi.ClickedCh:
					if err := a.ToggleSignOverlay(ctx); err != nil {
						log.WithError(err).
							Warn("Cannot switch the sign language overlay.")
					}
					if a.SignOverlayEnabled() {
						overlayMi.Check()
					} else {
						overlayMi.Uncheck()
					}
				case <-showConsoleMi.ClickedCh:
					toggleConsole()
				case <-ctrlC:
					if hideConsole != nil {
						toggleConsole()
					}
				case <-quitMi.ClickedCh:
					log.Info("Exit clicked. Going down...")
					cancel()
				case <-ctx.Done():
					if hideConsole != nil {
						hideConsole()
					}
					return
				}
			}
		}()

		go func() {
			defer systray.Quit()
			defer unregister()
			rErr = a.Run(ctx)
		}()
	}, func() {
		if err := a.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	})

	return rErr
}

func toggleTitle(state ps.State) string {
	if state.IsOn() {
		return state.Title() + " (click to turn off)"
	}
	return state.Title() + " (click to turn on)"
}

var (
	//go:embed assets/mic-off.ico
	micOffIcon []byte
	//go:embed assets/mic-on.ico
	micOnIcon []byte
	//go:embed assets/mic-listening.ico
	micListeningIcon []byte
	//go:embed assets/mic-speaking.ico
	micSpeakingIcon []byte
)
