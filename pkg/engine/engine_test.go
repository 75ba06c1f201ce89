package engine

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-navigator/pkg/accessibility"
	"github.com/blaubaer/voice-navigator/pkg/narration"
	"github.com/blaubaer/voice-navigator/pkg/navigation"
	"github.com/blaubaer/voice-navigator/pkg/preferences"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
	"github.com/blaubaer/voice-navigator/pkg/screen"
)

const (
	homeScreen = `<html><body>
<nav class="navbar"><a href="/housing">Housing</a></nav>
<h1>Welcome</h1>
<p>Find a place to live.</p>
<form id="signup">
	<label for="street">Street</label><input id="street" name="street">
	<label><input type="checkbox" id="newsletter"> Newsletter</label>
	<input type="password" id="pw" placeholder="Password">
	<button type="submit">Sign in</button>
</form>
<a href="/housing">Show housing offers</a>
</body></html>`

	housingScreen = `<html><body>
<h1>Housing</h1>
<a href="/home">Return home</a>
</body></html>`

	loginScreen = `<html><body>
<form id="login">
	<input id="user" placeholder="User name">
	<input type="password" placeholder="Password">
	<button type="submit">Sign in</button>
</form>
</body></html>`
)

const (
	announceHome  = "You are on the Home page. It has 7 items."
	itemStreet    = "Street, text field. Say what you want to enter."
	itemNewletter = "Newsletter, checkbox, not checked. Say check to toggle it."
	itemPassword  = "Password, password field. For your security, please type your password using the keyboard."
)

func TestEngine_readsUntilFirstInteractiveItem(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()

	assert.Equal(t, []string{
		announceHome,
		"Page title: Welcome",
		"Find a place to live.",
		itemStreet,
	}, h.tts.all())

	status := h.engine.Status()
	assert.Equal(t, StateAwaitingInput, status.State)
	assert.Equal(t, 2, status.Cursor)
	assert.Equal(t, 7, status.Items)
	assert.Equal(t, "/home", status.Destination)

	street := h.element("street")
	assert.True(t, street.Highlighted())
}

func TestEngine_textEntry(t *testing.T) {
	h := newHarness(t, "/home")
	var inputs, changes atomic.Int32
	h.navigator.Current().Document.Subscribe(func(e screen.Event) {
		if e.Target.ID() != "street" {
			return
		}
		switch e.Type {
		case screen.EventInput:
			inputs.Add(1)
		case screen.EventChange:
			changes.Add(1)
		}
	})

	h.enable()
	h.awaitListening()
	h.say("42 Example Street")
	h.awaitSpoken("Entered 42 Example Street into Street. Say next to continue.")
	h.awaitListening()

	assert.Equal(t, "42 Example Street", h.element("street").Value())
	assert.Equal(t, int32(1), inputs.Load())
	assert.Equal(t, int32(1), changes.Load())
	assert.Equal(t, 2, h.engine.Status().Cursor)
}

func TestEngine_checkbox(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	h.say("next")
	h.awaitSpoken(itemNewletter)
	h.awaitListening()
	assert.False(t, h.element("street").Highlighted())
	assert.True(t, h.element("newsletter").Highlighted())

	h.say("check")
	h.awaitSpoken("Checked.")
	h.awaitListening()
	assert.True(t, h.element("newsletter").Checked())
	assert.Equal(t, 1, h.tts.count("Checked."))

	h.say("check")
	h.awaitSpoken("Unchecked.")
	h.awaitListening()
	assert.False(t, h.element("newsletter").Checked())
	assert.Equal(t, 1, h.tts.count("Checked."))
}

func TestEngine_checkOnNonCheckbox(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	h.say("toggle")
	h.awaitSpoken(messageNoCheckbox)
	h.awaitListening()
}

func TestEngine_cursorTermination(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	for i := 0; i < 10; i++ {
		h.say("next")
		h.awaitListening()
	}

	status := h.engine.Status()
	assert.Equal(t, StateEndOfContent, status.State)
	assert.Equal(t, status.Items, status.Cursor)
	assert.True(t, status.EndAnnounced)
	assert.Equal(t, 1, h.tts.count(messageEndOfContent))
	assert.Less(t, 1, h.tts.count(messageNothingMore))
}

func TestEngine_restartResetsCursor(t *testing.T) {
	h := newHarness(t, "/login")

	h.enable()
	h.awaitListening()
	first := h.engine.Status()
	assert.Equal(t, 0, first.Cursor)

	h.say("next")
	h.awaitListening()
	h.say("skip")
	h.awaitListening()
	assert.Equal(t, 2, h.engine.Status().Cursor)

	h.say("read again")
	h.awaitListening()

	status := h.engine.Status()
	assert.Equal(t, 0, status.Cursor)
	assert.NotEqual(t, first.Session, status.Session)
	assert.Equal(t, 2, h.tts.count("You are on the Login page. It has 3 items."))
}

func TestEngine_navigation(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	h.say("open housing")
	h.awaitSpoken("You are on the Housing page. It has 2 items.")
	h.awaitListening()

	assert.Equal(t, []string{"/housing"}, h.navigations())
	assert.Equal(t, 1, h.tts.count("Opening Housing."))
	spoken := h.tts.all()
	assert.Equal(t, "Opening Housing.", spoken[slices.Index(spoken, "You are on the Housing page. It has 2 items.")-1])
	assert.Equal(t, "/housing", h.engine.Status().Destination)
}

func TestEngine_back(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	h.say("back")
	h.awaitSpoken(messageNoHistory)
	h.awaitListening()

	h.say("go to housing")
	h.awaitSpoken("You are on the Housing page. It has 2 items.")
	h.awaitListening()

	h.say("previous")
	h.awaitSpoken(messageGoingBack)
	h.awaitListening()
	assert.Equal(t, "/home", h.engine.Status().Destination)
	assert.Equal(t, 2, h.tts.count(announceHome))
}

func TestEngine_clickLinkNavigates(t *testing.T) {
	h := newHarness(t, "/housing")

	h.enable()
	h.awaitListening()
	h.say("click")
	h.awaitSpoken("Clicking Return home.")
	h.awaitSpoken(announceHome)
	h.awaitListening()

	assert.Equal(t, []string{"/home"}, h.navigations())
}

func TestEngine_clickNonInteractive(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	for i := 0; i < 5; i++ {
		h.say("next")
		h.awaitListening()
	}
	require.Equal(t, StateEndOfContent, h.engine.Status().State)

	h.say("press")
	h.awaitSpoken(messageNothingToClick)
	h.awaitListening()
}

func TestEngine_authenticationShortcut(t *testing.T) {
	h := newHarness(t, "/login")
	var submitted atomic.Int32
	h.navigator.Current().Document.Subscribe(func(e screen.Event) {
		if e.Type == screen.EventSubmit && e.Target.ID() == "login" {
			submitted.Add(1)
		}
	})

	h.enable()
	h.awaitListening()
	h.say("sign in")
	h.awaitSpoken("Sign in pressed.")
	h.awaitListening()

	assert.Equal(t, int32(1), submitted.Load())
	assert.Equal(t, 1, h.tts.count("Pressing Sign in."))
	assert.Equal(t, 0, h.engine.Status().Cursor)
	assert.Empty(t, h.element("user").Value())
}

func TestEngine_unknownCommand(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	h.say("next")
	h.awaitListening()
	h.say("Banana")
	h.awaitSpoken("I heard: Banana. That is not a command I know. Say next, click, back, or the name of a page.")
	h.awaitListening()
}

func TestEngine_passwordIsNeverEchoed(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	h.say("next")
	h.awaitListening()
	h.say("next")
	h.awaitSpoken(itemPassword)
	h.awaitListening()

	h.say("my secret")
	h.awaitSpoken(messagePassword)
	h.awaitListening()

	for _, text := range h.tts.all() {
		assert.NotContains(t, text, "secret")
	}
	assert.Empty(t, h.element("pw").Value())
}

func TestEngine_bareStop(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	h.say("stop")
	h.awaitSpoken(messageStopped)
	h.awaitListening()

	assert.True(t, h.store.VoiceEnabled())
}

func TestEngine_turnOffBeatsNavigation(t *testing.T) {
	h := newHarness(t, "/home")

	h.enable()
	h.awaitListening()
	h.say("stop voice assistant and go to housing")
	h.awaitSpoken(messageGoodbye)

	assert.Eventually(t, func() bool { return !h.store.VoiceEnabled() }, 5*time.Second, time.Millisecond)
	assert.Empty(t, h.navigations())
	assert.Eventually(t, func() bool { return h.engine.Status().State == StateIdle }, 5*time.Second, time.Millisecond)

	chosen, err := accessibility.NewStore(h.persistence).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, chosen)
}

func TestEngine_disableMidSession(t *testing.T) {
	h := newHarness(t, "/home")
	h.tts.hold(true)

	h.enable()
	h.tts.awaitStarted(t)
	require.True(t, h.store.Speaking())

	require.NoError(t, h.store.SetVoiceEnabled(context.Background(), false))
	assert.False(t, h.store.Speaking())
	assert.False(t, h.store.Listening())
	h.tts.awaitCancelled(t)

	spoken := len(h.tts.all())
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, h.tts.all(), spoken)
	h.stt.assertNotStarted(t)
	assert.Eventually(t, func() bool {
		status := h.engine.Status()
		return status.State == StateIdle && status.Items == 0
	}, 5*time.Second, time.Millisecond)

	h.tts.hold(false)
	h.enable()
	h.awaitListening()
	assert.Equal(t, 2, h.tts.count(announceHome))
}

func TestEngine_screenChangeSupersedesNarration(t *testing.T) {
	h := newHarness(t, "/home")
	h.tts.hold(true)

	h.enable()
	h.tts.awaitStarted(t)
	require.Equal(t, []string{announceHome}, h.tts.all())
	before := h.engine.Status()
	require.Equal(t, StateAnnouncing, before.State)

	require.NoError(t, h.navigator.Navigate("/housing"))
	h.tts.awaitCancelled(t)
	h.awaitSpoken("You are on the Housing page. It has 2 items.")

	status := h.engine.Status()
	assert.Equal(t, "/housing", status.Destination)
	assert.NotEqual(t, before.Session, status.Session)
	assert.Equal(t, 2, status.Items)
	assert.Equal(t, 0, h.tts.count("Page title: Welcome"))
	assert.Equal(t, 0, h.tts.count("Find a place to live."))
}

func TestEngine_readsOnWithoutRecognition(t *testing.T) {
	h := newHarness(t, "/home")
	h.stt.failure = recognition.ErrCapabilityUnavailable

	h.enable()
	h.awaitListening()

	assert.Eventually(t, func() bool {
		status := h.engine.Status()
		return status.State == StateEndOfContent && status.Cursor == status.Items
	}, 5*time.Second, time.Millisecond)
	h.awaitSpoken(messageEndOfContent)

	spoken := h.tts.all()
	assert.Equal(t, []string{
		announceHome,
		"Page title: Welcome",
		"Find a place to live.",
		itemStreet,
		itemNewletter,
		itemPassword,
	}, spoken[:6])
	assert.Equal(t, messageEndOfContent, spoken[len(spoken)-1])
	assert.Equal(t, 1, h.tts.count(messageEndOfContent))
	assert.False(t, h.store.Listening())
	assert.True(t, h.store.VoiceEnabled())
	h.stt.assertNotStarted(t)
}

type harness struct {
	t           *testing.T
	persistence *preferences.Memory
	store       *accessibility.Store
	navigator   *navigation.Navigator
	tts         *fakeSpeaker
	stt         *fakeListener
	engine      *Engine

	navigated []string
	mutex     sync.Mutex
}

func newHarness(t *testing.T, start string) *harness {
	persistence := preferences.NewMemory()
	h := &harness{
		t:           t,
		persistence: persistence,
		store:       accessibility.NewStore(persistence),
		tts: &fakeSpeaker{
			started:   make(chan string, 100),
			cancelled: make(chan struct{}, 100),
		},
		stt: &fakeListener{
			started: make(chan struct{}, 100),
			results: make(chan string, 10),
		},
	}

	var err error
	h.navigator, err = navigation.NewNavigator(fstest.MapFS{
		"home.html":    {Data: []byte(homeScreen)},
		"housing.html": {Data: []byte(housingScreen)},
		"login.html":   {Data: []byte(loginScreen)},
	}, navigation.Routes{
		{Id: "/home", Title: "Home", File: "home.html"},
		{Id: "/housing", Title: "Housing", File: "housing.html"},
		{Id: "/login", Title: "Login", File: "login.html"},
	})
	require.NoError(t, err)
	require.NoError(t, h.navigator.Navigate(start))
	h.navigator.OnChange(func(d navigation.Destination) {
		h.mutex.Lock()
		defer h.mutex.Unlock()
		h.navigated = append(h.navigated, d.Route.Id)
	})

	h.store.OnChange(func(_, current accessibility.Snapshot) {
		if current.Listening && current.Speaking {
			t.Error("listening and speaking at the same time")
		}
	})

	conf := NewConfiguration()
	conf.SettleDelay = time.Millisecond
	conf.GraceDelay = time.Millisecond
	conf.Recognition.RestartDelay = time.Millisecond

	h.engine, err = New(conf, h.store, h.navigator, h.tts, h.stt)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, h.engine.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func (this *harness) enable() {
	require.NoError(this.t, this.store.SetVoiceEnabled(context.Background(), true))
}

func (this *harness) awaitListening() {
	this.t.Helper()
	select {
	case <-this.stt.started:
	case <-time.After(5 * time.Second):
		this.t.Fatalf("timeout while waiting for listening; spoken so far: %v", this.tts.all())
	}
}

func (this *harness) say(transcript string) {
	this.stt.results <- transcript
}

func (this *harness) awaitSpoken(text string) {
	this.t.Helper()
	if !assert.Eventually(this.t, func() bool {
		return this.tts.count(text) > 0
	}, 5*time.Second, time.Millisecond) {
		this.t.Fatalf("%q was never spoken; spoken so far: %v", text, this.tts.all())
	}
}

func (this *harness) navigations() []string {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return slices.Clone(this.navigated)
}

func (this *harness) element(id string) *screen.Element {
	result := this.navigator.Current().Document.ElementById(id)
	require.NotNil(this.t, result, id)
	return result
}

type fakeSpeaker struct {
	spoken    []string
	holding   bool
	started   chan string
	cancelled chan struct{}
	mutex     sync.Mutex
}

func (this *fakeSpeaker) Speak(ctx context.Context, u narration.Utterance) error {
	this.mutex.Lock()
	this.spoken = append(this.spoken, u.Text)
	holding := this.holding
	this.mutex.Unlock()

	select {
	case this.started <- u.Text:
	default:
	}
	if !holding {
		return nil
	}
	<-ctx.Done()
	this.cancelled <- struct{}{}
	return ctx.Err()
}

func (this *fakeSpeaker) Voices() []narration.Voice {
	return nil
}

func (this *fakeSpeaker) hold(v bool) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.holding = v
}

func (this *fakeSpeaker) all() []string {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return slices.Clone(this.spoken)
}

func (this *fakeSpeaker) count(text string) (result int) {
	for _, v := range this.all() {
		if strings.TrimSpace(v) == text {
			result++
		}
	}
	return result
}

func (this *fakeSpeaker) awaitStarted(t *testing.T) {
	select {
	case <-this.started:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout while waiting for narration")
	}
}

func (this *fakeSpeaker) awaitCancelled(t *testing.T) {
	select {
	case <-this.cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout while waiting for narration to be cancelled")
	}
}

type fakeListener struct {
	started chan struct{}
	results chan string
	failure error
}

func (this *fakeListener) Capture(ctx context.Context) (string, error) {
	this.started <- struct{}{}
	if this.failure != nil {
		return "", this.failure
	}
	select {
	case v := <-this.results:
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (this *fakeListener) assertNotStarted(t *testing.T) {
	select {
	case <-this.started:
		t.Fatal("unexpected capture")
	case <-time.After(50 * time.Millisecond):
	}
}
