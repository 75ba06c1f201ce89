package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-navigator/pkg/screen"
)

const bookingScreen = `<html><body>
<nav><a href="/home">Home</a><a href="/housing">Housing</a></nav>
<div class="sidebar">Filters</div>
<main>
  <h1>Book a room</h1>
  <p>Pick your dates and confirm.</p>
  <p>Pick your dates and confirm.</p>
  <h2>Guest</h2>
  <form>
    <label for="name">Full name</label>
    <input id="name" type="text" data-width="0" data-height="0">
    <div>E-Mail <input id="mail" type="email" value="a@b.c"></div>
    <input id="phone" placeholder="Phone number">
    <input id="pwd" type="password" aria-label="Password">
    <label><input id="terms" type="checkbox"> Accept terms</label>
    <input id="arrival" name="arrival" type="date" value="2026-10-18">
    <h3>Notes</h3>
    <textarea id="notes" name="notes"></textarea>
    <button id="submit">Sign in</button>
    <input type="submit" value="Register">
  </form>
  <ul>
    <li>Free cancellation</li>
    <li>Breakfast <a href="/breakfast">included</a></li>
  </ul>
  <p aria-hidden="true">Decoration</p>
  <span data-width="0.5">tiny</span>
  <img role="presentation" alt="ornament">
  <div role="button" aria-label="Help"></div>
</main>
</body></html>`

func scan(t testing.TB, html string) *Session {
	t.Helper()
	doc, err := screen.ParseString(html)
	require.NoError(t, err)
	return New(NewConfiguration()).Scan(doc)
}

func TestScanner_Scan(t *testing.T) {
	session := scan(t, bookingScreen)

	assert.Equal(t, []string{
		"Page title: Book a room",
		"Pick your dates and confirm.",
		"Section: Guest",
		"Full name, text field. Say what you want to enter.",
		"E-Mail, text field, currently a@b.c. Say what you want to enter.",
		"Phone number, text field. Say what you want to enter.",
		"Password, password field. For your security, please type your password using the keyboard.",
		"Accept terms, checkbox, not checked. Say check to toggle it.",
		"arrival, date field, current value 2026-10-18.",
		"Subsection: Notes",
		"Notes, text field. Say what you want to enter.",
		"Sign in, button. Say click to press it.",
		"Register, button. Say click to press it.",
		"Free cancellation",
		"Breakfast",
		"included, link. Say click to open it.",
		"Help, button. Say click to press it.",
	}, session.Items.Descriptions())
}

func TestScanner_Scan_kinds(t *testing.T) {
	session := scan(t, bookingScreen)

	kinds := map[string]Kind{}
	for _, item := range session.Items {
		if id := item.Ref.ID(); id != "" {
			kinds[id] = item.Kind
		}
	}
	assert.Equal(t, map[string]Kind{
		"name":    KindTextField,
		"mail":    KindTextField,
		"phone":   KindTextField,
		"pwd":     KindPassword,
		"terms":   KindCheckbox,
		"arrival": KindDate,
		"notes":   KindTextField,
		"submit":  KindSubmit,
	}, kinds)

	assert.False(t, KindPassword.AcceptsSpeech())
	assert.True(t, KindTextField.AcceptsSpeech())
	assert.True(t, KindDate.IsInteractive())
	assert.False(t, KindHeading.IsInteractive())
}

func TestScanner_Scan_isDeterministic(t *testing.T) {
	doc, err := screen.ParseString(bookingScreen)
	require.NoError(t, err)
	instance := New(NewConfiguration())

	first := instance.Scan(doc)
	second := instance.Scan(doc)

	assert.Equal(t, first.Items, second.Items)
	assert.NotEqual(t, first.Id, second.Id)
}

func TestScanner_Scan_dropsLongTexts(t *testing.T) {
	conf := NewConfiguration()
	conf.MaxTextLength = 10
	doc, err := screen.ParseString(`<p>short</p><p>this one is far too long</p>`)
	require.NoError(t, err)

	actual := New(conf).Scan(doc)

	assert.Equal(t, []string{"short"}, actual.Items.Descriptions())
}

func TestSession_cursor(t *testing.T) {
	session := scan(t, `<h1>One</h1><p>Two</p>`)
	require.Equal(t, 2, session.Len())

	item, ok := session.Current()
	assert.True(t, ok)
	assert.Equal(t, "Page title: One", item.Description)

	assert.True(t, session.Advance())
	assert.True(t, session.Advance())
	assert.True(t, session.AtEnd())
	assert.Equal(t, 2, session.Cursor())

	assert.False(t, session.Advance())
	assert.Equal(t, 2, session.Cursor())
	_, ok = session.Current()
	assert.False(t, ok)
}

func TestSession_Focus(t *testing.T) {
	session := scan(t, `<h1>One</h1><p>Two</p>`)
	first, second := session.Items[0].Ref, session.Items[1].Ref

	session.Focus(first)
	assert.True(t, first.Highlighted())

	session.Focus(second)
	assert.False(t, first.Highlighted())
	assert.True(t, second.Highlighted())
	assert.Same(t, second, session.Focused())

	session.ClearFocus()
	assert.False(t, second.Highlighted())
	assert.Nil(t, session.Focused())
}
