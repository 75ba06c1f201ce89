package audio

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"
	"unsafe"

	log "github.com/echocat/slf4g"
	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
)

const (
	captureBufferDuration = wca.REFERENCE_TIME(200 * 10000)
	capturePollInterval   = time.Millisecond * 10
)

type Stack struct {
	Configuration

	initialized bool
	mutex       sync.RWMutex
}

func NewStack() *Stack {
	return &Stack{}
}

func (this *Stack) Initialize() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.initialized {
		return nil
	}

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		return fmt.Errorf("failed to initialize ole: %v", err)
	}

	this.initialized = true
	return nil
}

func (this *Stack) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.initialized {
		return nil
	}

	ole.CoUninitialize()
	this.initialized = false

	return nil
}

func (this *Stack) FindDevices() (Devices, error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if !this.initialized {
		return nil, fmt.Errorf("not initialized")
	}

	de, err := this.enumerator()
	if err != nil {
		return nil, err
	}
	defer de.Release()

	var result Devices
	err = this.eachDevice(de, func(device *wca.IMMDevice, v Device) (bool, error) {
		result = append(result, v)
		return true, nil
	})
	return result, err
}

// Open starts capturing the configured device, or the default capture
// device if none is configured.
func (this *Stack) Open(handler SamplesHandler) (Stream, error) {
	this.mutex.RLock()
	initialized := this.initialized
	this.mutex.RUnlock()
	if !initialized {
		return nil, fmt.Errorf("not initialized")
	}

	result := &stream{
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	ready := make(chan error, 1)
	go result.run(this, handler, ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return result, nil
}

func (this *Stack) enumerator() (*wca.IMMDeviceEnumerator, error) {
	var de *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &de); err != nil {
		return nil, fmt.Errorf("cannot ceate IMMDeviceEnumerator instance: %w", err)
	}
	return de, nil
}

// eachDevice calls the consumer with every active capture device. The
// device is released after the consumer returns, unless the consumer
// returns false; then the caller owns it.
func (this *Stack) eachDevice(enumerator *wca.IMMDeviceEnumerator, consumer func(*wca.IMMDevice, Device) (bool, error)) error {
	var collection *wca.IMMDeviceCollection
	if err := enumerator.EnumAudioEndpoints(wca.ECapture, wca.DEVICE_STATE_ACTIVE, &collection); err != nil {
		return fmt.Errorf("cannot query IMMDevices: %w", err)
	}
	defer collection.Release()

	var count uint32
	if err := collection.GetCount(&count); err != nil {
		return fmt.Errorf("cannot get count of IMMDevice collection: %w", err)
	}

	for i := uint32(0); i < count; i++ {
		var device *wca.IMMDevice
		if err := collection.Item(i, &device); err != nil {
			return fmt.Errorf("cannot get item %d of IMMDevice collection: %w", i, err)
		}
		v, err := this.introspectDevice(device, i)
		if err != nil {
			device.Release()
			return err
		}
		canContinue, err := consumer(device, v)
		if canContinue {
			device.Release()
		}
		if err != nil || !canContinue {
			return err
		}
	}
	return nil
}

func (this *Stack) introspectDevice(captureDevice *wca.IMMDevice, deviceIndex uint32) (Device, error) {
	var id string
	if err := captureDevice.GetId(&id); err != nil {
		return Device{}, fmt.Errorf("cannot get id of device %d of IMMDevice collection: %w", deviceIndex, err)
	}

	var propertyStore *wca.IPropertyStore
	if err := captureDevice.OpenPropertyStore(wca.STGM_READ, &propertyStore); err != nil {
		return Device{}, fmt.Errorf("cannot get properties of device %d of IMMDevice collection: %w", deviceIndex, err)
	}
	defer propertyStore.Release()

	var name wca.PROPVARIANT
	if err := propertyStore.GetValue(&wca.PKEY_Device_FriendlyName, &name); err != nil {
		return Device{}, fmt.Errorf("cannot get name of device %d of IMMDevice collection: %w", deviceIndex, err)
	}

	return Device{
		Id:    id,
		Name:  name.String(),
		Index: deviceIndex,
	}, nil
}

func (this *Stack) selectDevice(enumerator *wca.IMMDeviceEnumerator) (*wca.IMMDevice, error) {
	if this.Device.IsZero() {
		var device *wca.IMMDevice
		if err := enumerator.GetDefaultAudioEndpoint(wca.ECapture, wca.EConsole, &device); err != nil {
			return nil, fmt.Errorf("cannot get default capture device: %w", err)
		}
		return device, nil
	}

	var result *wca.IMMDevice
	err := this.eachDevice(enumerator, func(device *wca.IMMDevice, v Device) (bool, error) {
		if this.Device.MatchString(v.Name) {
			result = device
			log.With("device", v).
				Debug("Capture device selected.")
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("there is no capture device matching %v", this.Device)
	}
	return result, nil
}

type stream struct {
	sampleRate int
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once
}

func (this *stream) SampleRate() int {
	return this.sampleRate
}

func (this *stream) Done() <-chan struct{} {
	return this.stopped
}

func (this *stream) Close() error {
	this.closeOnce.Do(func() {
		close(this.done)
	})
	<-this.stopped
	return nil
}

func (this *stream) run(stack *Stack, handler SamplesHandler, ready chan<- error) {
	defer close(this.stopped)

	// COM objects are bound to the thread which created them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		// S_FALSE: already initialized on this thread.
		if !errors.As(err, &oleErr) || oleErr.Code() != 1 {
			ready <- fmt.Errorf("failed to initialize ole: %v", err)
			return
		}
	}
	defer ole.CoUninitialize()

	client, capture, format, err := this.open(stack)
	if err != nil {
		ready <- err
		return
	}
	defer client.Release()
	defer capture.Release()
	defer func() {
		_ = client.Stop()
	}()

	ready <- nil

	channels := int(format.channels)
	var interleaved, mono []float32
	ticker := time.NewTicker(capturePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-this.done:
			return
		case <-ticker.C:
		}

		for {
			var packetLength uint32
			if err := capture.GetNextPacketSize(&packetLength); err != nil {
				log.WithError(err).
					Warn("Cannot get next packet size of capture device; stopping capture.")
				return
			}
			if packetLength == 0 {
				break
			}

			var data *byte
			var frames, flags uint32
			var devicePosition, qcpPosition uint64
			if err := capture.GetBuffer(&data, &frames, &flags, &devicePosition, &qcpPosition); err != nil {
				log.WithError(err).
					Warn("Cannot read from capture device; stopping capture.")
				return
			}

			interleaved = interleaved[:0]
			if flags&wca.AUDCLNT_BUFFERFLAGS_SILENT != 0 || data == nil {
				for i := uint32(0); i < frames*uint32(channels); i++ {
					interleaved = append(interleaved, 0)
				}
			} else {
				raw := unsafe.Slice(data, int(frames)*int(format.blockAlign))
				interleaved = format.decode(raw, interleaved)
			}

			if err := capture.ReleaseBuffer(frames); err != nil {
				log.WithError(err).
					Warn("Cannot release buffer of capture device; stopping capture.")
				return
			}

			mono = mixDown(interleaved, channels, mono)
			if len(mono) > 0 {
				handler(mono)
			}
		}
	}
}

func (this *stream) open(stack *Stack) (*wca.IAudioClient, *wca.IAudioCaptureClient, sampleFormat, error) {
	de, err := stack.enumerator()
	if err != nil {
		return nil, nil, sampleFormat{}, err
	}
	defer de.Release()

	device, err := stack.selectDevice(de)
	if err != nil {
		return nil, nil, sampleFormat{}, err
	}
	defer device.Release()

	var client *wca.IAudioClient
	if err := device.Activate(wca.IID_IAudioClient, wca.CLSCTX_ALL, nil, &client); err != nil {
		return nil, nil, sampleFormat{}, fmt.Errorf("cannot activate audio client: %w", err)
	}

	var wfx *wca.WAVEFORMATEX
	if err := client.GetMixFormat(&wfx); err != nil {
		client.Release()
		return nil, nil, sampleFormat{}, fmt.Errorf("cannot get mix format of capture device: %w", err)
	}
	defer ole.CoTaskMemFree(uintptr(unsafe.Pointer(wfx)))

	format := sampleFormat{
		channels:      wfx.NChannels,
		bitsPerSample: wfx.WBitsPerSample,
		blockAlign:    wfx.NBlockAlign,
	}
	if err := format.validate(); err != nil {
		client.Release()
		return nil, nil, sampleFormat{}, err
	}
	this.sampleRate = int(wfx.NSamplesPerSec)

	if err := client.Initialize(wca.AUDCLNT_SHAREMODE_SHARED, 0, captureBufferDuration, 0, wfx, nil); err != nil {
		client.Release()
		return nil, nil, sampleFormat{}, fmt.Errorf("cannot initialize audio client: %w", err)
	}

	var capture *wca.IAudioCaptureClient
	if err := client.GetService(wca.IID_IAudioCaptureClient, &capture); err != nil {
		client.Release()
		return nil, nil, sampleFormat{}, fmt.Errorf("cannot get capture service of audio client: %w", err)
	}

	if err := client.Start(); err != nil {
		capture.Release()
		client.Release()
		return nil, nil, sampleFormat{}, fmt.Errorf("cannot start audio client: %w", err)
	}

	log.With("sampleRate", this.sampleRate).
		With("channels", format.channels).
		With("bitsPerSample", format.bitsPerSample).
		Debug("Audio capture started.")

	return client, capture, format, nil
}

type sampleFormat struct {
	channels      uint16
	bitsPerSample uint16
	blockAlign    uint16
}

func (this sampleFormat) validate() error {
	if this.channels == 0 {
		return fmt.Errorf("capture device reports no channels")
	}
	switch this.bitsPerSample {
	case 16, 32:
		return nil
	default:
		return fmt.Errorf("unsupported sample size of %d bits", this.bitsPerSample)
	}
}

// decode converts little endian samples; 32 bit samples are IEEE floats
// as delivered by the shared mode mix format.
func (this sampleFormat) decode(raw []byte, into []float32) []float32 {
	switch this.bitsPerSample {
	case 16:
		for i := 0; i+1 < len(raw); i += 2 {
			v := int16(uint16(raw[i]) | uint16(raw[i+1])<<8)
			into = append(into, float32(v)/32768)
		}
	case 32:
		for i := 0; i+3 < len(raw); i += 4 {
			bits := uint32(raw[i]) | uint32(raw[i+1])<<8 | uint32(raw[i+2])<<16 | uint32(raw[i+3])<<24
			into = append(into, math.Float32frombits(bits))
		}
	}
	return into
}
