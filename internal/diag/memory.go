// Package diag samples process and host memory for heartbeat diagnostics.
package diag

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Memory is a point-in-time memory reading.
type Memory struct {
	ProcessRSS      uint64 // resident set size of this process, bytes
	SystemAvailable uint64 // memory available to new allocations, bytes
}

// LogValue renders the reading as a log group.
func (m Memory) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("rss_kb", m.ProcessRSS/1024),
		slog.Uint64("available_kb", m.SystemAvailable/1024),
	)
}

// Probe reads memory statistics for the running process.
type Probe struct {
	proc *process.Process
}

// NewProbe creates a probe bound to the current process.
func NewProbe() (*Probe, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("diag: open process: %w", err)
	}
	return &Probe{proc: proc}, nil
}

// Sample returns the current memory reading.
func (p *Probe) Sample() (Memory, error) {
	info, err := p.proc.MemoryInfo()
	if err != nil {
		return Memory{}, fmt.Errorf("diag: process memory: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Memory{}, fmt.Errorf("diag: virtual memory: %w", err)
	}
	return Memory{ProcessRSS: info.RSS, SystemAvailable: vm.Available}, nil
}
