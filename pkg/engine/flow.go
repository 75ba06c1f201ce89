package engine

import (
	"fmt"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/screen"
)

const (
	messageNoScreen     = "There is no page to read."
	messageEndOfContent = "End of page. Say read page to hear it again, or name a page to go to."
	messageNothingMore  = "There is nothing more on this page. Say read page to start over, or name a page to go to."
)

// scheduleScan discards the current session and starts a fresh scan once
// the screen had time to settle.
func (this *Engine) scheduleScan() {
	this.supersede()
	this.setState(StateScanning)
	this.after(this.conf.SettleDelay, this.scan)
}

func (this *Engine) scan() {
	if s := this.session; s != nil {
		s.ClearFocus()
	}
	this.session = nil
	this.endAnnounced = false

	destination := this.navigator.Current()
	if destination.IsZero() {
		this.setState(StateAwaitingInput)
		this.speakThenListen(messageNoScreen)
		return
	}

	session := this.scanner.Scan(destination.Document)
	this.session = session
	log.With("session", session.Id).
		With("destination", destination.Route.Id).
		With("items", session.Len()).
		Debug("Screen scanned.")

	this.setState(StateAnnouncing)
	this.speak(announcement(destination.Document, session.Len()), this.readCurrent)
}

func announcement(doc *screen.Document, items int) string {
	switch items {
	case 0:
		return fmt.Sprintf("You are on the %s page. It has nothing to read.", doc.Title)
	case 1:
		return fmt.Sprintf("You are on the %s page. It has one item.", doc.Title)
	default:
		return fmt.Sprintf("You are on the %s page. It has %d items.", doc.Title, items)
	}
}

// readCurrent reads the item under the cursor. Plain text is followed by the
// next item right away; after an interactive item the engine listens for a
// command, unless speech recognition turned out to be unavailable.
func (this *Engine) readCurrent() {
	session := this.session
	if session == nil {
		this.scheduleScan()
		return
	}
	item, ok := session.Current()
	if !ok {
		this.endOfContent()
		return
	}

	this.setState(StateReadingItem)
	session.Focus(item.Ref)
	this.speak(item.Description, func() {
		if item.IsInteractive() && this.recognizer.Available() {
			this.awaitInput()
			return
		}
		session.Advance()
		this.readCurrent()
	})
}

func (this *Engine) awaitInput() {
	if this.session != nil && this.session.AtEnd() {
		this.setState(StateEndOfContent)
	} else {
		this.setState(StateAwaitingInput)
	}
	if !this.recognizer.Available() {
		this.store.StopListening()
		return
	}
	if !this.store.StartListening() {
		log.Debug("Cannot listen right now.")
	}
}

// endOfContent announces the end of the current session only once; later
// requests get a shorter hint.
func (this *Engine) endOfContent() {
	if s := this.session; s != nil {
		s.ClearFocus()
	}
	this.setState(StateEndOfContent)
	if this.endAnnounced {
		this.speakThenListen(messageNothingMore)
		return
	}
	this.endAnnounced = true
	this.speakThenListen(messageEndOfContent)
}

// onRecognitionUnavailable is called on the event loop once the speech to
// text channel turned out to be unusable. Reading goes on without waiting for
// commands.
func (this *Engine) onRecognitionUnavailable(cause error) {
	this.store.StopListening()
	if !this.store.VoiceEnabled() || this.state != StateAwaitingInput {
		return
	}
	session := this.session
	if session == nil || session.AtEnd() {
		return
	}
	log.WithError(cause).
		With("session", session.Id).
		Debug("Continue reading without voice commands.")
	session.Advance()
	this.readCurrent()
}
