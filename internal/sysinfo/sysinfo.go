// Package sysinfo collects a host snapshot that is fed into the model's
// system prompt, so translations account for the actual distribution,
// kernel and resource headroom of the machine they target.
package sysinfo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is a point-in-time description of the host.
type Snapshot struct {
	Hostname      string
	OS            string
	Platform      string
	KernelVersion string
	KernelArch    string
	Uptime        time.Duration

	MemoryTotal uint64
	MemoryUsed  float64 // percent

	DiskTotal uint64 // root filesystem
	DiskUsed  float64 // percent
}

// Collect gathers a snapshot. Individual probes failing is tolerated;
// the snapshot carries whatever could be read and an error is returned
// only when nothing could.
func Collect(ctx context.Context) (*Snapshot, error) {
	s := &Snapshot{}
	var ok bool

	if info, err := host.InfoWithContext(ctx); err == nil {
		s.Hostname = info.Hostname
		s.OS = info.OS
		s.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		s.KernelVersion = info.KernelVersion
		s.KernelArch = info.KernelArch
		s.Uptime = time.Duration(info.Uptime) * time.Second
		ok = true
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemoryTotal = vm.Total
		s.MemoryUsed = vm.UsedPercent
		ok = true
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		s.DiskTotal = du.Total
		s.DiskUsed = du.UsedPercent
		ok = true
	}

	if !ok {
		return nil, fmt.Errorf("no host information available")
	}
	return s, nil
}

// PromptContext renders the snapshot as the compact key: value block
// embedded in the model's system prompt.
func (s *Snapshot) PromptContext() string {
	var b strings.Builder
	line := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}

	line("hostname", s.Hostname)
	line("os", s.Platform)
	if s.KernelVersion != "" {
		line("kernel", strings.TrimSpace(s.KernelVersion+" "+s.KernelArch))
	}
	if s.Uptime > 0 {
		line("uptime", formatUptime(s.Uptime))
	}
	if s.MemoryTotal > 0 {
		line("memory", fmt.Sprintf("%s total, %.0f%% used", formatBytes(s.MemoryTotal), s.MemoryUsed))
	}
	if s.DiskTotal > 0 {
		line("disk /", fmt.Sprintf("%s total, %.0f%% used", formatBytes(s.DiskTotal), s.DiskUsed))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
