//go:build windows

package infra

import (
	"context"

	"golang.org/x/sys/windows"

	"sfpurge/internal/domain"
)

// DriveLister implements domain.VolumeLister by walking the logical drive
// bitmask and keeping DRIVE_FIXED roots only, so network shares and optical
// media never enter the directory probe.
type DriveLister struct{}

// NewVolumeLister creates the platform volume lister.
func NewVolumeLister() domain.VolumeLister {
	return &DriveLister{}
}

// FixedVolumes returns roots like "C:\" for every fixed local drive.
func (d *DriveLister) FixedVolumes(ctx context.Context) ([]string, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, domain.NewOpError(domain.ErrUnexpected, "list volumes", "", err)
	}

	var roots []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + `:\`
		p, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(p) == windows.DRIVE_FIXED {
			roots = append(roots, root)
		}
	}
	return roots, nil
}

var _ domain.VolumeLister = (*DriveLister)(nil)
