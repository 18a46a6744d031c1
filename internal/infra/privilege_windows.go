//go:build windows

package infra

import "golang.org/x/sys/windows"

// IsElevated reports whether the current process token carries administrator
// elevation. Without it service stops and kernel-driver config changes will
// be denied, so the CLI warns up front.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
