package console

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

var (
	dllKernel32               = syscall.NewLazyDLL("kernel32.dll")
	procSetConsoleCtrlHandler = dllKernel32.NewProc("SetConsoleCtrlHandler")
	procExitThread            = dllKernel32.NewProc("ExitThread")
)

// SetConsoleCtrlHandler registers h for Ctrl+C, Ctrl+Break and closing the
// console window. If h returns false the event is swallowed. A nil h
// removes the handler.
func SetConsoleCtrlHandler(h func(event any) bool) error {
	var r0 uintptr
	var err error
	if h == nil {
		r0, _, err = procSetConsoleCtrlHandler.Call(uintptr(0), uintptr(0))
	} else {
		hw := func(event uint32) uintptr {
			if !h(event) {
				if event == windows.CTRL_CLOSE_EVENT {
					// Windows terminates the process once this handler
					// returns for a close event.
					exitThread(0)
				}
				return 1
			}
			return 0
		}
		r0, _, err = procSetConsoleCtrlHandler.Call(syscall.NewCallback(hw), uintptr(1))
	}
	if r0 == 0 {
		return fmt.Errorf("cannot set console ctrl handler: %w", err)
	}
	return nil
}

func exitThread(exitCode uint32) {
	_, _, _ = procExitThread.Call(uintptr(exitCode))
}
