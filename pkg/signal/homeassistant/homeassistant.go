package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/common"
	"github.com/blaubaer/voice-navigator/pkg/credentials"
	"github.com/blaubaer/voice-navigator/pkg/signal"
)

const DefaultServer = "http://homeassistant.local:8123/"

// Homeassistant reflects the voice assistant as a state entity of a Home
// Assistant instance. The page currently read is exposed as attribute.
type Homeassistant struct {
	conf         *Configuration
	saveConfFunc func() error
	mutex        sync.Mutex

	credentials credentials.Credentials
	lastState   atomic.Pointer[state]

	client http.Client
}

func (this *Homeassistant) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	cred, err := this.resolveCredentials(resolveCredentialsReasonDefault)
	if err != nil {
		return err
	}
	this.credentials = cred

	return this.Update()
}

func (this *Homeassistant) Update() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	rsp, err := this.do(http.MethodGet, "/api/", nil)
	if err != nil {
		return err
	}
	defer func() { _ = rsp.Body.Close() }()

	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d - %s", rsp.StatusCode, rsp.Status)
	}
	return nil
}

func (this *Homeassistant) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	target := state{
		timestamp: time.Now(),
		state:     ctx.State(),
		page:      ctx.Page(),
	}
	logger := log.With("entityId", this.conf.EntityId)

	if v := this.lastState.Load(); v != nil {
		if v.timestamp.Add(this.conf.DeadZoneInterval).After(target.timestamp) && v.isEqualTo(&target) {
			logger.Trace("Entity is already in requested state (while dead zone timeout). No update needed.")
			return nil
		}
	}

	rsp, err := this.do(http.MethodGet, "/api/states/"+this.conf.EntityId, nil)
	if err != nil {
		return err
	}
	defer func() { _ = rsp.Body.Close() }()

	current := state{timestamp: time.Now()}
	attributes := make(map[string]any)
	forceUpdate := false

	switch rsp.StatusCode {
	case http.StatusOK:
		var gRsp stateGetResponse
		if err := json.NewDecoder(rsp.Body).Decode(&gRsp); err != nil {
			logger.WithError(err).
				Info("Cannot decode current entity state. It will be replaced.")
			forceUpdate = true
		} else {
			current.state = gRsp.State
			current.page = gRsp.page()
		}
		if v := gRsp.Attributes; v != nil {
			attributes = v
		}

	case http.StatusNotFound:
		logger.Info("Entity not found. It will be created now...")
		forceUpdate = true
		attributes[attrFriendlyName] = "Voice Navigator"

	default:
		return fmt.Errorf("unexpected status code: %d - %s", rsp.StatusCode, rsp.Status)
	}

	if !forceUpdate && target.isEqualTo(&current) {
		logger.Debug("Entity is already in requested state. No update needed.")
		this.lastState.Store(&target)
		return nil
	}

	attributes[attrIcon] = icon(target.state)
	attributes[attrTitle] = target.state.Title()
	attributes[attrPage] = target.page
	b, err := json.Marshal(statePostRequest{
		State:      target.state,
		Attributes: attributes,
	})
	if err != nil {
		return fmt.Errorf("cannot encode state of %s: %w", this.conf.EntityId, err)
	}

	sRsp, err := this.do(http.MethodPost, "/api/states/"+this.conf.EntityId, b)
	if err != nil {
		return err
	}
	defer func() { _ = sRsp.Body.Close() }()
	if sRsp.StatusCode != http.StatusOK && sRsp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d - %s", sRsp.StatusCode, sRsp.Status)
	}

	logger.With("state", target.state).
		Debug("Entity updated.")
	this.lastState.Store(&target)

	return nil
}

func (this *Homeassistant) Dispose() error {
	this.lastState.Store(nil)
	return nil
}

func (this *Homeassistant) GetType() signal.Type {
	return signal.TypeHomeAssistant
}

func (this *Homeassistant) loadCredentials() (credentials.Credentials, error) {
	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}
	v.Merge(credentials.Credentials{
		HomeAssistantServer: this.conf.Server,
		HomeAssistantToken:  this.conf.Token,
	})
	return v, nil
}

func (this *Homeassistant) storeCredentials(cred credentials.Credentials) error {
	supported, err := cred.WriteToStore()
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Server = cred.HomeAssistantServer
	this.conf.Token = cred.HomeAssistantToken
	return this.saveConfFunc()
}

type resolveCredentialsReason uint

const (
	resolveCredentialsReasonDefault resolveCredentialsReason = iota
	resolveCredentialsReasonInvalidToken
)

func (this *Homeassistant) resolveCredentials(reason resolveCredentialsReason) (credentials.Credentials, error) {
	cred, err := this.loadCredentials()
	if err != nil {
		return credentials.Credentials{}, err
	}

	if reason == resolveCredentialsReasonDefault && !cred.IsHomeAssistantZero() {
		return cred, nil
	}

	if reason == resolveCredentialsReasonInvalidToken {
		log.With("server", cred.HomeAssistantServer).
			Error("Home Assistant rejected the long live token.")
	} else {
		log.Info("Server URL and long live token required to access Home Assistant.")
	}

	for {
		cred.HomeAssistantServer = ""
		cred.HomeAssistantToken = ""
		if err := common.RequestStringContentIfRequiredFromTerminal(&cred.HomeAssistantServer, fmt.Sprintf("Server URL (empty = %s)", DefaultServer), true, false); err != nil {
			return credentials.Credentials{}, fmt.Errorf("cannot request server url: %w", err)
		}
		if cred.HomeAssistantServer == "" {
			cred.HomeAssistantServer = DefaultServer
		}
		if err := common.RequestStringContentIfRequiredFromTerminal(&cred.HomeAssistantToken, "Token", false, true); err != nil {
			return credentials.Credentials{}, fmt.Errorf("cannot request token: %w", err)
		}

		serverOk, tokenOk, err := this.check(cred)
		if err != nil {
			return credentials.Credentials{}, err
		}
		if serverOk && tokenOk {
			if err := this.storeCredentials(cred); err != nil {
				return credentials.Credentials{}, fmt.Errorf("cannot store credentials: %w", err)
			}
			return cred, nil
		}

		if !serverOk {
			log.With("server", cred.HomeAssistantServer).
				Error("Provided Home Assistant's server URL is invalid.")
		} else {
			log.With("server", cred.HomeAssistantServer).
				Error("Provided Home Assistant's long live token is invalid.")
		}
	}
}

func (this *Homeassistant) check(cred credentials.Credentials) (serverOk, tokenOk bool, err error) {
	rsp, err := this.request(cred, http.MethodGet, "/api/", nil)
	if err != nil {
		return false, false, err
	}
	_ = rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true, false, nil
	case http.StatusOK:
		return true, true, nil
	default:
		return false, false, nil
	}
}

func (this *Homeassistant) request(cred credentials.Credentials, method, path string, body []byte) (*http.Response, error) {
	ctx, cancelFunc := context.WithTimeout(context.Background(), this.conf.Timeout)
	defer cancelFunc()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(cred.HomeAssistantServer, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cred.HomeAssistantToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rsp, err := this.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to access %v: %w", req.URL, err)
	}

	// The body has to survive the request context.
	var buf bytes.Buffer
	_, err = buf.ReadFrom(rsp.Body)
	_ = rsp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %v: %w", req.URL, err)
	}
	rsp.Body = io.NopCloser(&buf)
	return rsp, nil
}

func (this *Homeassistant) do(method, path string, body []byte) (*http.Response, error) {
	for {
		rsp, err := this.request(this.credentials, method, path, body)
		if err != nil {
			return nil, err
		}

		switch rsp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			_ = rsp.Body.Close()
			if this.credentials, err = this.resolveCredentials(resolveCredentialsReasonInvalidToken); err != nil {
				return nil, err
			}
		default:
			return rsp, nil
		}
	}
}
