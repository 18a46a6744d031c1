//go:build !windows

package infra

import "os"

// IsElevated reports whether we run as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}
