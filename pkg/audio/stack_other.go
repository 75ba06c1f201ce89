//go:build !windows

package audio

type Stack struct {
	Configuration
}

func NewStack() *Stack {
	return &Stack{}
}

func (this *Stack) Initialize() error {
	return nil
}

func (this *Stack) Dispose() error {
	return nil
}

func (this *Stack) FindDevices() (Devices, error) {
	return nil, ErrUnsupported
}

func (this *Stack) Open(SamplesHandler) (Stream, error) {
	return nil, ErrUnsupported
}
