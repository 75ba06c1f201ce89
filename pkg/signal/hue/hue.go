package hue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amimof/huego"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/common"
	"github.com/blaubaer/voice-navigator/pkg/credentials"
	"github.com/blaubaer/voice-navigator/pkg/signal"
)

const appName = "github.com/blaubaer/voice-navigator"

var ErrNotPaired = errors.New("not paired with hue bridge")

type Hue struct {
	conf         *Configuration
	saveConfFunc func() error

	lights      []huego.Light
	groups      []huego.Group
	credentials credentials.Credentials
	mutex       sync.Mutex
}

func (this *Hue) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	v, err := this.resolveCredentials()
	if err != nil {
		return err
	}
	this.credentials = v

	return this.Update()
}

func (this *Hue) Update() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	bridge, err := this.bridge()
	if err != nil {
		return err
	}

	lights, err := this.discoverLights(bridge)
	if err != nil {
		return err
	}
	groups, err := this.discoverGroups(bridge)
	if err != nil {
		return err
	}

	if len(lights) == 0 && len(groups) == 0 {
		log.With("name", this.conf.Name).
			Warn("No hue light or group matches. Nothing will reflect the voice assistant.")
	}

	this.lights = lights
	this.groups = groups
	return nil
}

func (this *Hue) discoverLights(bridge *huego.Bridge) (result []huego.Light, _ error) {
	if !this.conf.Kinds.Has(KindLight) {
		return nil, nil
	}
	candidates, err := bridge.GetLights()
	if err != nil {
		return nil, fmt.Errorf("cannot discover lights of bridge %s: %w", bridge.Host, err)
	}
	for _, candidate := range candidates {
		if this.conf.Name.MatchString(candidate.Name) {
			if candidate.State == nil {
				candidate.State = &huego.State{}
			}
			result = append(result, candidate)
		}
	}
	return result, nil
}

func (this *Hue) discoverGroups(bridge *huego.Bridge) (result []huego.Group, _ error) {
	if !this.conf.Kinds.Has(KindGroup) {
		return nil, nil
	}
	candidates, err := bridge.GetGroups()
	if err != nil {
		return nil, fmt.Errorf("cannot discover groups of bridge %s: %w", bridge.Host, err)
	}
	for _, candidate := range candidates {
		if this.conf.Name.MatchString(candidate.Name) {
			if candidate.State == nil {
				candidate.State = &huego.State{}
			}
			result = append(result, candidate)
		}
	}
	return result, nil
}

func (this *Hue) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	bridge, err := this.bridge()
	if err != nil {
		return err
	}
	state := ctx.State()

	for i, v := range this.lights {
		if target := this.conf.target(state, v.State); target != nil {
			if _, err := bridge.SetLightState(v.ID, *target); err != nil {
				return fmt.Errorf("cannot switch light %q#%d to %v: %w", v.Name, v.ID, state, err)
			}
			this.lights[i].State = target
		}
	}
	for i, v := range this.groups {
		if target := this.conf.target(state, v.State); target != nil {
			if _, err := bridge.SetGroupState(v.ID, *target); err != nil {
				return fmt.Errorf("cannot switch group %q#%d to %v: %w", v.Name, v.ID, state, err)
			}
			this.groups[i].State = target
		}
	}

	log.With("state", state).
		With("lights", len(this.lights)).
		With("groups", len(this.groups)).
		Trace("Hue signal ensured.")
	return nil
}

// target returns the light state to apply for the given voice assistant
// state or nil if the current one already matches.
func (this Configuration) target(state signal.State, current *huego.State) *huego.State {
	hue, on := this.Colors.For(state)
	if !on {
		if current != nil && !current.On {
			return nil
		}
		return &huego.State{On: false}
	}
	if current != nil && current.On && current.Bri == this.Brightness && current.Hue == hue && current.Sat == this.Saturation {
		return nil
	}
	return &huego.State{
		On:  true,
		Bri: this.Brightness,
		Hue: hue,
		Sat: this.Saturation,
	}
}

func (this *Hue) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.lights = nil
	this.groups = nil
	return nil
}

func (this *Hue) GetType() signal.Type {
	return signal.TypeHue
}

func (this *Hue) bridge() (*huego.Bridge, error) {
	v := this.credentials
	if v.IsHueZero() {
		return nil, ErrNotPaired
	}
	return huego.New(v.HueBridge, v.HueUser), nil
}

func (this *Hue) resolveCredentials() (credentials.Credentials, error) {
	if u := this.conf.User; u != "" {
		bridge, err := this.discoverBridge()
		if err != nil {
			return credentials.Credentials{}, err
		}
		return credentials.Credentials{
			HueBridge: bridge.Host,
			HueUser:   u,
		}, nil
	}

	if this.conf.Pair {
		return this.pair()
	}

	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}
	v.Merge(credentials.Credentials{HueBridge: this.conf.Bridge, HueUser: this.conf.User})
	if !v.IsHueZero() {
		return v, nil
	}

	return this.pair()
}

func (this *Hue) discoverBridge() (*huego.Bridge, error) {
	if this.conf.Bridge != "" {
		return &huego.Bridge{
			Host: this.conf.Bridge,
		}, nil
	}

	result, err := huego.Discover()
	if err != nil {
		return nil, fmt.Errorf("cannot discover hue bridge: %w", err)
	}
	return result, nil
}

func (this *Hue) pair() (credentials.Credentials, error) {
	bridge, err := this.discoverBridge()
	if err != nil {
		return credentials.Credentials{}, err
	}

	for {
		log.Info("Wait for hue link button been pressed...")
		user, err := bridge.CreateUser(appName)
		if apiErr, ok := common.AsError[*huego.APIError](err); ok && apiErr.Type == 101 {
			time.Sleep(1 * time.Second)
			continue
		}
		if err != nil {
			return credentials.Credentials{}, fmt.Errorf("cannot pair with %s: %w", bridge.Host, err)
		}

		v := credentials.Credentials{
			HueBridge: bridge.Host,
			HueUser:   user,
		}
		if err := this.storeCredentials(v); err != nil {
			log.WithError(err).
				Warn("Cannot store credentials. The app will work now, but next time the pairing might be required again.")
		}

		log.With("bridge", bridge.Host).
			Info("Successful paired.")
		return v, nil
	}
}

func (this *Hue) storeCredentials(v credentials.Credentials) error {
	supported, err := v.WriteToStore()
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Bridge = v.HueBridge
	this.conf.User = v.HueUser
	return this.saveConfFunc()
}
