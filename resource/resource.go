// Package resource implements execution limits and a live resource
// monitor for WASM plugin instances (spec component C12).
package resource

import (
	"fmt"
	"sync"
	"time"
)

// ExecutionLimits bounds one plugin instance's resource consumption.
type ExecutionLimits struct {
	MaxMemory             uint64
	MaxTime               time.Duration
	MaxFuel               uint64
	MaxFileHandles        uint32
	MaxNetworkConnections uint32
}

// DefaultLimits is the baseline limit set.
func DefaultLimits() ExecutionLimits {
	return ExecutionLimits{
		MaxMemory:             16 * 1024 * 1024,
		MaxTime:               100 * time.Millisecond,
		MaxFuel:               1_000_000,
		MaxFileHandles:        10,
		MaxNetworkConnections: 5,
	}
}

// DevelopmentLimits is a more generous limit set for local development.
func DevelopmentLimits() ExecutionLimits {
	return ExecutionLimits{
		MaxMemory:             64 * 1024 * 1024,
		MaxTime:               1 * time.Second,
		MaxFuel:               10_000_000,
		MaxFileHandles:        50,
		MaxNetworkConnections: 20,
	}
}

// ProductionLimits is a strict limit set for untrusted production plugins.
func ProductionLimits() ExecutionLimits {
	return ExecutionLimits{
		MaxMemory:             8 * 1024 * 1024,
		MaxTime:               50 * time.Millisecond,
		MaxFuel:               500_000,
		MaxFileHandles:        5,
		MaxNetworkConnections: 2,
	}
}

// LimitKind discriminates LimitError variants.
type LimitKind int

const (
	LimitMemory LimitKind = iota
	LimitTimeout
	LimitFuelExhausted
	LimitFileHandle
	LimitNetworkConnection
)

// LimitError reports which limit was exceeded and by how much.
type LimitError struct {
	Kind  LimitKind
	Used  uint64
	Limit uint64
}

func (e *LimitError) Error() string {
	switch e.Kind {
	case LimitMemory:
		return fmt.Sprintf("memory limit exceeded: %d bytes > %d bytes", e.Used, e.Limit)
	case LimitTimeout:
		return fmt.Sprintf("execution timeout after %dms", e.Used)
	case LimitFuelExhausted:
		return "fuel exhausted: computation limit reached"
	case LimitFileHandle:
		return fmt.Sprintf("too many file handles: %d > %d", e.Used, e.Limit)
	case LimitNetworkConnection:
		return fmt.Sprintf("too many network connections: %d > %d", e.Used, e.Limit)
	}
	return "unknown resource limit error"
}

// Monitor tracks one plugin instance's live resource usage against its
// ExecutionLimits, failing a resource increment BEFORE it is applied so a
// rejected AddFileHandle/AddNetworkConnection never leaves the counter
// incremented.
type Monitor struct {
	mu                 sync.Mutex
	startTime          time.Time
	limits             ExecutionLimits
	memoryUsage        uint64
	fileHandles        uint32
	networkConnections uint32
	fuelUsed           uint64
}

// NewMonitor starts a Monitor with its clock beginning now.
func NewMonitor(limits ExecutionLimits) *Monitor {
	return &Monitor{startTime: time.Now(), limits: limits}
}

// CheckLimits reports the first limit currently exceeded, if any.
func (m *Monitor) CheckLimits() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkLocked()
}

func (m *Monitor) checkLocked() error {
	if elapsed := time.Since(m.startTime); elapsed > m.limits.MaxTime {
		return &LimitError{Kind: LimitTimeout, Used: uint64(elapsed.Milliseconds())}
	}
	if m.memoryUsage > m.limits.MaxMemory {
		return &LimitError{Kind: LimitMemory, Used: m.memoryUsage, Limit: m.limits.MaxMemory}
	}
	if uint64(m.fileHandles) > uint64(m.limits.MaxFileHandles) {
		return &LimitError{Kind: LimitFileHandle, Used: uint64(m.fileHandles), Limit: uint64(m.limits.MaxFileHandles)}
	}
	if uint64(m.networkConnections) > uint64(m.limits.MaxNetworkConnections) {
		return &LimitError{Kind: LimitNetworkConnection, Used: uint64(m.networkConnections), Limit: uint64(m.limits.MaxNetworkConnections)}
	}
	if m.fuelUsed > m.limits.MaxFuel {
		return &LimitError{Kind: LimitFuelExhausted}
	}
	return nil
}

// UpdateMemoryUsage records the plugin's current memory footprint.
func (m *Monitor) UpdateMemoryUsage(bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memoryUsage = bytes
}

// ConsumeFuel adds to the fuel-spent counter, reporting exhaustion without
// mutating state further once it occurs.
func (m *Monitor) ConsumeFuel(units uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fuelUsed+units > m.limits.MaxFuel {
		return &LimitError{Kind: LimitFuelExhausted}
	}
	m.fuelUsed += units
	return nil
}

// AddFileHandle increments the open-handle count, or fails without
// incrementing if that would exceed the limit.
func (m *Monitor) AddFileHandle() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(m.fileHandles)+1 > uint64(m.limits.MaxFileHandles) {
		return &LimitError{Kind: LimitFileHandle, Used: uint64(m.fileHandles) + 1, Limit: uint64(m.limits.MaxFileHandles)}
	}
	m.fileHandles++
	return nil
}

// RemoveFileHandle decrements the open-handle count, floored at zero.
func (m *Monitor) RemoveFileHandle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fileHandles > 0 {
		m.fileHandles--
	}
}

// AddNetworkConnection increments the connection count, or fails without
// incrementing if that would exceed the limit.
func (m *Monitor) AddNetworkConnection() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(m.networkConnections)+1 > uint64(m.limits.MaxNetworkConnections) {
		return &LimitError{Kind: LimitNetworkConnection, Used: uint64(m.networkConnections) + 1, Limit: uint64(m.limits.MaxNetworkConnections)}
	}
	m.networkConnections++
	return nil
}

// RemoveNetworkConnection decrements the connection count, floored at
// zero.
func (m *Monitor) RemoveNetworkConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.networkConnections > 0 {
		m.networkConnections--
	}
}

// ElapsedTime returns how long this monitor has been running.
func (m *Monitor) ElapsedTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}
