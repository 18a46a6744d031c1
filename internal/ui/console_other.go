//go:build !windows

package ui

// enableVirtualTerminal is a no-op where ANSI is native.
func enableVirtualTerminal() {}
