// Package bridge lets a browser page act as text-to-speech and
// speech-to-text channel. The page connects through a websocket and
// exchanges JSON messages with the engine.
package bridge

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/text/language"

	"github.com/blaubaer/voice-navigator/pkg/level"
	"github.com/blaubaer/voice-navigator/pkg/narration"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
)

var ErrNotConnected = errors.New("no bridge page is connected")

//go:embed page.html
var page []byte

func New(conf Configuration) *Bridge {
	return &Bridge{
		conf: conf,
		upgrader: websocket.Upgrader{
			CheckOrigin: sameHost,
		},
		waiters: make(map[string]chan Message),
	}
}

// Bridge implements both narration.Channel and recognition.Channel.
type Bridge struct {
	conf     Configuration
	upgrader websocket.Upgrader

	current *peer
	voices  []narration.Voice
	waiters map[string]chan Message
	mutex   sync.Mutex
}

func (this *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", this.handlePage)
	mux.HandleFunc("/ws", this.handleSocket)
	return mux
}

// ListenAndServe serves the page until the given context is done.
func (this *Bridge) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", this.conf.Listen)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", this.conf.Listen, err)
	}
	server := &http.Server{
		Handler:           this.Handler(),
		ReadHeaderTimeout: time.Second * 10,
	}

	log.With("address", "http://"+ln.Addr().String()+"/").
		Info("Open the bridge page in a browser to hear and talk to the voice assistant.")

	go func() {
		<-ctx.Done()
		this.disconnect()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		_ = server.Shutdown(sCtx)
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("cannot serve bridge: %w", err)
	}
	return nil
}

func (this *Bridge) Connected() bool {
	return this.peer() != nil
}

func (this *Bridge) Speak(ctx context.Context, u narration.Utterance) error {
	p := this.peer()
	if p == nil {
		return ErrNotConnected
	}
	id := u.Id.String()
	if u.Id == uuid.Nil {
		id = uuid.NewString()
	}

	waiter := this.register(id)
	defer this.unregister(id)

	if err := p.send(Message{
		Type:   MessageSpeak,
		Id:     id,
		Text:   u.Text,
		Locale: u.Locale.String(),
		Voice:  u.Voice.Name,
	}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		if err := p.send(Message{Type: MessageCancel, Id: id}); err != nil {
			log.WithError(err).
				Debug("Cannot cancel narration on bridge page.")
		}
		return ctx.Err()
	case m := <-waiter:
		if m.Type == MessageSpoken {
			return nil
		}
		return m.failure()
	}
}

func (this *Bridge) Voices() []narration.Voice {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.voices
}

func (this *Bridge) Capture(ctx context.Context) (string, error) {
	p := this.peer()
	if p == nil {
		return "", fmt.Errorf("%w: %v", recognition.ErrCapabilityUnavailable, ErrNotConnected)
	}
	id := uuid.NewString()

	waiter := this.register(id)
	defer this.unregister(id)

	if err := p.send(Message{Type: MessageListen, Id: id}); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		if err := p.send(Message{Type: MessageStop, Id: id}); err != nil {
			log.WithError(err).
				Debug("Cannot stop recognition on bridge page.")
		}
		return "", ctx.Err()
	case m := <-waiter:
		switch m.Type {
		case MessageTranscript:
			if m.Text == "" {
				return "", recognition.ErrNoSpeech
			}
			return m.Text, nil
		case MessageNoSpeech:
			return "", recognition.ErrNoSpeech
		default:
			return "", m.failure()
		}
	}
}

// PublishLevels forwards the given frame to the page, if connected.
func (this *Bridge) PublishLevels(frame level.Frame) {
	p := this.peer()
	if p == nil {
		return
	}
	if err := p.send(Message{Type: MessageLevels, Mode: frame.Mode, Levels: frame.Levels}); err != nil {
		log.WithError(err).
			Trace("Cannot send levels to bridge page.")
	}
}

func (this *Bridge) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (this *Bridge) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := this.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).
			Warn("Cannot upgrade bridge connection.")
		return
	}

	p := &peer{conn: conn, writeTimeout: this.conf.WriteTimeout}
	this.attach(p)
	defer this.detach(p)

	log.With("remote", r.RemoteAddr).
		Info("Bridge page connected.")

	for {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).
					Debug("Bridge connection read failed.")
			}
			log.With("remote", r.RemoteAddr).
				Info("Bridge page disconnected.")
			return
		}

		log.With("message", m).
			Trace("Bridge message received.")

		switch m.Type {
		case MessageHello:
			this.setVoices(m.Voices)
		case MessageSpoken, MessageTranscript, MessageNoSpeech, MessageError:
			this.deliver(m)
		default:
			log.With("message", m).
				Debug("Ignoring unknown bridge message.")
		}
	}
}

func (this *Bridge) peer() *peer {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.current
}

// attach makes the given peer the current one; a previous page is
// disconnected.
func (this *Bridge) attach(p *peer) {
	this.mutex.Lock()
	previous := this.current
	this.current = p
	this.mutex.Unlock()

	if previous != nil {
		_ = previous.conn.Close()
	}
}

func (this *Bridge) detach(p *peer) {
	_ = p.conn.Close()

	this.mutex.Lock()
	if this.current != p {
		this.mutex.Unlock()
		return
	}
	this.current = nil
	this.voices = nil
	waiters := this.waiters
	this.waiters = make(map[string]chan Message)
	this.mutex.Unlock()

	for id, w := range waiters {
		w <- Message{Type: MessageError, Id: id, Error: "unsupported"}
	}
}

func (this *Bridge) disconnect() {
	if p := this.peer(); p != nil {
		_ = p.conn.Close()
	}
}

func (this *Bridge) setVoices(in []Voice) {
	result := make([]narration.Voice, 0, len(in))
	for _, v := range in {
		tag, err := language.Parse(v.Locale)
		if err != nil {
			log.With("voice", v.Name).
				With("locale", v.Locale).
				Debug("Ignoring voice with illegal locale.")
			continue
		}
		result = append(result, narration.Voice{Name: v.Name, Locale: tag})
	}

	this.mutex.Lock()
	this.voices = result
	this.mutex.Unlock()

	log.With("voices", len(result)).
		Debug("Bridge page reported its voices.")
}

func (this *Bridge) register(id string) chan Message {
	result := make(chan Message, 1)
	this.mutex.Lock()
	this.waiters[id] = result
	this.mutex.Unlock()
	return result
}

func (this *Bridge) unregister(id string) {
	this.mutex.Lock()
	delete(this.waiters, id)
	this.mutex.Unlock()
}

func (this *Bridge) deliver(m Message) {
	this.mutex.Lock()
	w, ok := this.waiters[m.Id]
	delete(this.waiters, m.Id)
	this.mutex.Unlock()

	if !ok {
		log.With("message", m).
			Trace("Ignoring bridge message for stale request.")
		return
	}
	w <- m
}

type peer struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mutex        sync.Mutex
}

func (this *peer) send(m Message) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.writeTimeout > 0 {
		if err := this.conn.SetWriteDeadline(time.Now().Add(this.writeTimeout)); err != nil {
			return fmt.Errorf("cannot send %v to bridge page: %w", m, err)
		}
	}
	if err := this.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("cannot send %v to bridge page: %w", m, err)
	}
	return nil
}

func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}
