//go:build windows

package ui

import "golang.org/x/sys/windows"

// enableVirtualTerminal switches the console to VT processing so ANSI color
// sequences render on Windows 10+ conhost. Best effort; legacy consoles just
// show uncolored text with stray escapes, same as the rest of the ecosystem.
func enableVirtualTerminal() {
	handle, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil {
		return
	}
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return
	}
	_ = windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
