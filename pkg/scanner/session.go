package scanner

import (
	"github.com/google/uuid"

	"github.com/blaubaer/voice-navigator/pkg/screen"
)

// Session is the result of one scan together with the reading cursor.
// 0 <= Cursor <= len(Items) holds at any time; Cursor == len(Items) is the
// end of the content.
type Session struct {
	Id       uuid.UUID
	Document *screen.Document
	Items    Items

	cursor  int
	focused *screen.Element
}

func NewSession(doc *screen.Document, items Items) *Session {
	return &Session{
		Id:       uuid.New(),
		Document: doc,
		Items:    items,
	}
}

func (this *Session) Cursor() int {
	return this.cursor
}

func (this *Session) Len() int {
	return len(this.Items)
}

func (this *Session) AtEnd() bool {
	return this.cursor >= len(this.Items)
}

// Current returns the item at the cursor, if the end is not yet reached.
func (this *Session) Current() (Item, bool) {
	if this.AtEnd() {
		return Item{}, false
	}
	return this.Items[this.cursor], true
}

// Advance moves the cursor one item further. It reports false if the end
// was already reached.
func (this *Session) Advance() bool {
	if this.AtEnd() {
		return false
	}
	this.cursor++
	return true
}

func (this *Session) Focused() *screen.Element {
	return this.focused
}

// Focus highlights the given element and clears the highlight of the
// previously focused one.
func (this *Session) Focus(e *screen.Element) {
	if this.focused == e {
		return
	}
	this.ClearFocus()
	this.focused = e
	if this.Document != nil && e != nil {
		this.Document.Highlight(e)
	}
}

func (this *Session) ClearFocus() {
	if this.focused == nil {
		return
	}
	if this.Document != nil {
		this.Document.ClearHighlight(this.focused)
	}
	this.focused = nil
}
