package console

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procAllocConsole    = dllKernel32.NewProc("AllocConsole")
	procSetConsoleTitle = dllKernel32.NewProc("SetConsoleTitleW")
	procFreeConsole     = dllKernel32.NewProc("FreeConsole")
)

// NewDedicatedConsole allocates a new console window for this process.
func NewDedicatedConsole(title string) (*DedicatedConsole, error) {
	if r0, _, err := procAllocConsole.Call(); r0 == 0 {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	success := false
	defer func() {
		if !success {
			_, _, _ = procFreeConsole.Call()
		}
	}()

	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return nil, fmt.Errorf("cannot allocate title: %w", err)
	}
	if r0, _, err := procSetConsoleTitle.Call(uintptr(unsafe.Pointer(titlePtr))); r0 == 0 {
		return nil, fmt.Errorf("cannot set console title: %w", err)
	}

	handle := func(which uint32, name string) (windows.Handle, uint32, error) {
		h, err := windows.GetStdHandle(which)
		if err != nil {
			return 0, 0, fmt.Errorf("cannot get %s handle: %w", name, err)
		}
		mode, err := configureHandle(h, which)
		if err != nil {
			return 0, 0, fmt.Errorf("cannot enable virtual terminal processing on %s: %w", name, err)
		}
		return h, mode, nil
	}

	hIn, inMode, err := handle(windows.STD_INPUT_HANDLE, "stdin")
	if err != nil {
		return nil, err
	}
	hOut, outMode, err := handle(windows.STD_OUTPUT_HANDLE, "stdout")
	if err != nil {
		return nil, err
	}
	hErr, errMode, err := handle(windows.STD_ERROR_HANDLE, "stderr")
	if err != nil {
		return nil, err
	}

	result := &DedicatedConsole{
		Stdin:  os.NewFile(uintptr(hIn), "/dev/stdin"),
		Stdout: os.NewFile(uintptr(hOut), "/dev/stdout"),
		Stderr: os.NewFile(uintptr(hErr), "/dev/stderr"),

		StdinMode:  inMode,
		StdoutMode: outMode,
		StderrMode: errMode,
	}
	result.free = func() error {
		_ = SetConsoleCtrlHandler(nil)
		if r0, _, err := procFreeConsole.Call(); r0 == 0 {
			return err
		}
		return nil
	}

	if err := SetConsoleCtrlHandler(result.onCtrlC); err != nil {
		return nil, err
	}

	success = true
	return result, nil
}

func configureHandle(handle windows.Handle, which uint32) (mode uint32, _ error) {
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return 0, nil
	}

	var target uint32
	switch which {
	case windows.STD_INPUT_HANDLE:
		target = windows.ENABLE_VIRTUAL_TERMINAL_INPUT |
			windows.ENABLE_PROCESSED_INPUT |
			windows.ENABLE_LINE_INPUT |
			windows.ENABLE_ECHO_INPUT |
			windows.ENABLE_EXTENDED_FLAGS
	case windows.STD_OUTPUT_HANDLE, windows.STD_ERROR_HANDLE:
		target = windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING |
			windows.ENABLE_WRAP_AT_EOL_OUTPUT |
			windows.ENABLE_PROCESSED_OUTPUT
	default:
		return mode, fmt.Errorf("don't know how to handle %d", which)
	}

	if err := windows.SetConsoleMode(handle, target); err != nil {
		return mode, err
	}
	return mode, nil
}
