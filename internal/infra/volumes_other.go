//go:build !windows

package infra

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"

	"sfpurge/internal/domain"
)

// PartitionLister implements domain.VolumeLister via gopsutil partitions,
// keeping mountpoints backed by real block devices. Lets the engine run
// against test trees on development machines.
type PartitionLister struct{}

// NewVolumeLister creates the platform volume lister.
func NewVolumeLister() domain.VolumeLister {
	return &PartitionLister{}
}

// FixedVolumes returns mountpoints of device-backed filesystems.
func (p *PartitionLister) FixedVolumes(ctx context.Context) ([]string, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, domain.NewOpError(domain.ErrUnexpected, "list volumes", "", err)
	}

	var roots []string
	for _, part := range parts {
		if strings.HasPrefix(part.Device, "/dev/") {
			roots = append(roots, part.Mountpoint)
		}
	}
	return roots, nil
}

var _ domain.VolumeLister = (*PartitionLister)(nil)
