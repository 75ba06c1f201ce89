package bridge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/blaubaer/voice-navigator/pkg/level"
	"github.com/blaubaer/voice-navigator/pkg/narration"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
)

func TestBridge_notConnected(t *testing.T) {
	instance := New(NewConfiguration())

	assert.ErrorIs(t, instance.Speak(context.Background(), narration.Utterance{Id: uuid.New(), Text: "Hello"}), ErrNotConnected)

	_, err := instance.Capture(context.Background())
	assert.ErrorIs(t, err, recognition.ErrCapabilityUnavailable)
	assert.Empty(t, instance.Voices())
}

func TestBridge_servesPage(t *testing.T) {
	server := httptest.NewServer(New(NewConfiguration()).Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Voice Navigator Bridge")
}

func TestBridge_hello(t *testing.T) {
	instance, client := connect(t)

	client.send(t, Message{Type: MessageHello, Voices: []Voice{
		{Name: "Samantha", Locale: "en-US"},
		{Name: "Broken", Locale: "not a locale!"},
	}})

	assert.Eventually(t, func() bool { return len(instance.Voices()) == 1 }, 5*time.Second, time.Millisecond)
	assert.Equal(t, narration.Voice{Name: "Samantha", Locale: language.AmericanEnglish}, instance.Voices()[0])
}

func TestBridge_Speak(t *testing.T) {
	instance, client := connect(t)
	id := uuid.New()

	done := make(chan error, 1)
	go func() {
		done <- instance.Speak(context.Background(), narration.Utterance{Id: id, Text: "Hello", Locale: language.German})
	}()

	m := client.receive(t)
	assert.Equal(t, MessageSpeak, m.Type)
	assert.Equal(t, id.String(), m.Id)
	assert.Equal(t, "Hello", m.Text)
	assert.Equal(t, "de", m.Locale)

	client.send(t, Message{Type: MessageSpoken, Id: m.Id})
	assert.NoError(t, <-done)
}

func TestBridge_Speak_cancel(t *testing.T) {
	instance, client := connect(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- instance.Speak(ctx, narration.Utterance{Id: uuid.New(), Text: "Hello"})
	}()

	speak := client.receive(t)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	m := client.receive(t)
	assert.Equal(t, MessageCancel, m.Type)
	assert.Equal(t, speak.Id, m.Id)
}

func TestBridge_Capture(t *testing.T) {
	instance, client := connect(t)

	cases := []struct {
		name     string
		reply    Message
		expected string
		err      error
	}{
		{"transcript", Message{Type: MessageTranscript, Text: "open housing"}, "open housing", nil},
		{"empty", Message{Type: MessageTranscript}, "", recognition.ErrNoSpeech},
		{"noSpeech", Message{Type: MessageNoSpeech}, "", recognition.ErrNoSpeech},
		{"denied", Message{Type: MessageError, Error: "not-allowed"}, "", recognition.ErrPermissionDenied},
		{"unsupported", Message{Type: MessageError, Error: "unsupported"}, "", recognition.ErrCapabilityUnavailable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			done := make(chan captured, 1)
			go func() {
				text, err := instance.Capture(context.Background())
				done <- captured{text, err}
			}()

			m := client.receive(t)
			require.Equal(t, MessageListen, m.Type)
			c.reply.Id = m.Id
			client.send(t, c.reply)

			actual := <-done
			if c.err != nil {
				assert.ErrorIs(t, actual.err, c.err)
			} else {
				assert.NoError(t, actual.err)
				assert.Equal(t, c.expected, actual.text)
			}
		})
	}
}

func TestBridge_Capture_disconnect(t *testing.T) {
	instance, client := connect(t)

	done := make(chan captured, 1)
	go func() {
		text, err := instance.Capture(context.Background())
		done <- captured{text, err}
	}()
	client.receive(t)
	require.NoError(t, client.conn.Close())

	actual := <-done
	assert.ErrorIs(t, actual.err, recognition.ErrCapabilityUnavailable)
	assert.Eventually(t, func() bool { return !instance.Connected() }, 5*time.Second, time.Millisecond)
}

func TestBridge_PublishLevels(t *testing.T) {
	instance, client := connect(t)

	instance.PublishLevels(level.Frame{Mode: level.ModeMicrophone, Levels: level.Levels{0.5, 1}})

	m := client.receive(t)
	assert.Equal(t, MessageLevels, m.Type)
	assert.Equal(t, level.Levels{0.5, 1}, m.Levels)
}

type captured struct {
	text string
	err  error
}

type testClient struct {
	conn *websocket.Conn
}

func connect(t *testing.T) (*Bridge, *testClient) {
	instance := New(NewConfiguration())
	server := httptest.NewServer(instance.Handler())
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, instance.Connected, 5*time.Second, time.Millisecond)
	return instance, &testClient{conn}
}

func (this *testClient) send(t *testing.T, m Message) {
	require.NoError(t, this.conn.WriteJSON(m))
}

func (this *testClient) receive(t *testing.T) Message {
	require.NoError(t, this.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var result Message
	require.NoError(t, this.conn.ReadJSON(&result))
	return result
}
