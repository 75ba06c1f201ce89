package engine

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/command"
	"github.com/blaubaer/voice-navigator/pkg/navigation"
	"github.com/blaubaer/voice-navigator/pkg/scanner"
	"github.com/blaubaer/voice-navigator/pkg/screen"
)

const (
	messageGoodbye        = "Turning off the voice assistant. Goodbye."
	messageNothingToClick = "There is nothing to click here. Say next to continue."
	messageNoCheckbox     = "This is not a checkbox. Say check while a checkbox is selected."
	messageNoHistory      = "There is no previous page."
	messageGoingBack      = "Going back."
	messageStopped        = "Okay. What would you like to do?"
	messagePassword       = "For your security, please type your password using the keyboard. Say next when you are done."
	messageFailed         = "Sorry, that did not work."
)

// authenticationSynonyms groups phrases naming the same kind of control.
var authenticationSynonyms = [][]string{
	{"sign in", "log in", "login"},
	{"sign up", "register", "create account"},
	{"sign out", "log out", "logout"},
}

// process is the handler of the recognition loop and runs on the event
// loop. Every branch ends either in narration that leads back to
// listening or in navigation.
func (this *Engine) process(transcript string) {
	if !this.store.VoiceEnabled() {
		return
	}
	this.store.StopListening()

	item, hasItem := this.current()
	cmd := this.table.Resolve(transcript, hasItem && item.Kind.AcceptsSpeech())
	log.With("command", cmd).
		With("state", this.state).
		Info("Command received.")

	switch cmd.Kind {
	case command.KindTurnOff:
		this.turnOff()
	case command.KindNavigate:
		this.navigateTo(cmd.Destination)
	case command.KindNext:
		this.next()
	case command.KindActivate:
		this.activate(item, hasItem)
	case command.KindAuthenticate:
		this.authenticate(cmd.Phrase)
	case command.KindBack:
		this.back()
	case command.KindRestart:
		this.scheduleScan()
	case command.KindToggle:
		this.toggle(item, hasItem)
	case command.KindStop:
		this.narrator.Cancel()
		this.speakThenListen(messageStopped)
	case command.KindFreeText:
		this.enterText(item, cmd.Raw)
	default:
		this.unknown(cmd, item, hasItem)
	}
}

func (this *Engine) current() (scanner.Item, bool) {
	if this.session == nil {
		return scanner.Item{}, false
	}
	return this.session.Current()
}

func (this *Engine) turnOff() {
	this.setState(StateIdle)
	this.speak(messageGoodbye, func() {
		this.after(this.conf.GraceDelay, func() {
			if err := this.store.SetVoiceEnabled(this.ctx, false); err != nil {
				log.WithError(err).
					Warn("Cannot persist that the voice assistant was turned off.")
			}
		})
	})
}

func (this *Engine) navigateTo(destination string) {
	title := this.navigator.Title(destination)
	this.setState(StateNavigating)
	this.speak(fmt.Sprintf("Opening %s.", title), func() {
		this.navigate(func() error {
			return this.navigator.Navigate(destination)
		})
	})
}

func (this *Engine) navigate(action func() error) {
	if err := action(); err != nil {
		log.WithError(err).
			Warn("Cannot navigate.")
		if errors.Is(err, navigation.ErrNoHistory) {
			this.speakThenListen(messageNoHistory)
		} else {
			this.speakThenListen(messageFailed)
		}
	}
}

func (this *Engine) next() {
	session := this.session
	if session == nil {
		this.scheduleScan()
		return
	}
	session.ClearFocus()
	if !session.Advance() || session.AtEnd() {
		this.endOfContent()
		return
	}
	this.readCurrent()
}

func (this *Engine) activate(item scanner.Item, ok bool) {
	if !ok || !item.IsInteractive() {
		this.speakThenListen(messageNothingToClick)
		return
	}
	this.speak(fmt.Sprintf("Clicking %s.", item.Label), func() {
		navigated, err := this.click(item.Ref)
		if err != nil {
			log.WithError(err).
				With("element", item.Ref).
				Warn("Cannot click element.")
			this.speakThenListen(messageFailed)
			return
		}
		if navigated {
			return
		}
		this.next()
	})
}

// click activates the given element and follows links to known routes. It
// reports if a navigation was started.
func (this *Engine) click(e *screen.Element) (navigated bool, err error) {
	if err := e.Document().Click(e); err != nil {
		return false, err
	}
	link := e.Closest("a")
	if link == nil {
		return false, nil
	}
	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" || strings.HasPrefix(href, "#") {
		return false, nil
	}
	if _, ok := this.navigator.Routes().Find(href); !ok {
		return false, fmt.Errorf("%w: %s", navigation.ErrUnknownDestination, href)
	}
	this.setState(StateNavigating)
	this.supersede()
	return true, this.navigator.Navigate(href)
}

// authenticate presses the control matching the given phrase directly,
// regardless of the cursor.
func (this *Engine) authenticate(phrase string) {
	destination := this.navigator.Current()
	if destination.IsZero() {
		this.speakThenListen(messageNoScreen)
		return
	}

	var items scanner.Items
	if this.session != nil && this.session.Document == destination.Document {
		items = this.session.Items
	} else {
		items = this.scanner.Items(destination.Document, destination.Document.Body())
	}

	synonyms := synonymsOf(phrase)
	for _, candidate := range items {
		switch candidate.Kind {
		case scanner.KindSubmit, scanner.KindButton, scanner.KindLink:
		default:
			continue
		}
		label := command.Normalize(candidate.Label)
		for _, s := range synonyms {
			if strings.Contains(label, s) {
				this.pressDirectly(candidate)
				return
			}
		}
	}

	this.speakThenListen(fmt.Sprintf("There is no %s button on this page.", phrase))
}

func (this *Engine) pressDirectly(item scanner.Item) {
	this.speak(fmt.Sprintf("Pressing %s.", item.Label), func() {
		navigated, err := this.click(item.Ref)
		if err != nil {
			log.WithError(err).
				With("element", item.Ref).
				Warn("Cannot click element.")
			this.speakThenListen(messageFailed)
			return
		}
		if !navigated {
			this.speakThenListen(fmt.Sprintf("%s pressed.", item.Label))
		}
	})
}

func synonymsOf(phrase string) []string {
	for _, group := range authenticationSynonyms {
		for _, candidate := range group {
			if candidate == phrase {
				return group
			}
		}
	}
	return []string{phrase}
}

func (this *Engine) back() {
	if !this.navigator.CanGoBack() {
		this.speakThenListen(messageNoHistory)
		return
	}
	this.setState(StateNavigating)
	this.speak(messageGoingBack, func() {
		this.navigate(this.navigator.Back)
	})
}

func (this *Engine) toggle(item scanner.Item, ok bool) {
	if !ok || item.Kind != scanner.KindCheckbox {
		this.speakThenListen(messageNoCheckbox)
		return
	}
	target := !item.Ref.Checked()
	if err := item.Ref.Document().SetChecked(item.Ref, target); err != nil {
		log.WithError(err).
			With("element", item.Ref).
			Warn("Cannot toggle checkbox.")
		this.speakThenListen(messageFailed)
		return
	}
	if target {
		this.speakThenListen("Checked.")
	} else {
		this.speakThenListen("Unchecked.")
	}
}

func (this *Engine) enterText(item scanner.Item, value string) {
	if err := item.Ref.Document().SetValue(item.Ref, value); err != nil {
		log.WithError(err).
			With("element", item.Ref).
			Warn("Cannot enter text.")
		this.speakThenListen(messageFailed)
		return
	}
	this.speakThenListen(fmt.Sprintf("Entered %s into %s. Say next to continue.", value, item.Label))
}

func (this *Engine) unknown(cmd command.Command, item scanner.Item, ok bool) {
	if ok && item.Kind == scanner.KindPassword {
		// A password must never be read back.
		this.speakThenListen(messagePassword)
		return
	}
	if cmd.Raw == "" {
		this.speakThenListen("I did not understand that. Say next, click, back, or the name of a page.")
		return
	}
	this.speakThenListen(fmt.Sprintf("I heard: %s. That is not a command I know. Say next, click, back, or the name of a page.", cmd.Raw))
}
