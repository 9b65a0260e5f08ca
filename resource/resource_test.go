package resource

import "testing"

func TestFileHandleFailsBeforeIncrement(t *testing.T) {
	m := NewMonitor(ExecutionLimits{MaxFileHandles: 1, MaxTime: defaultTestTime, MaxMemory: defaultTestMem, MaxNetworkConnections: 1, MaxFuel: 1000})
	if err := m.AddFileHandle(); err != nil {
		t.Fatalf("first handle should be allowed: %v", err)
	}
	if err := m.AddFileHandle(); err == nil {
		t.Fatal("second handle should exceed the limit")
	}
	// The failed call must not have incremented the counter: removing one
	// handle should bring usage back below the limit.
	m.RemoveFileHandle()
	if err := m.AddFileHandle(); err != nil {
		t.Fatalf("expected handle slot to be free again: %v", err)
	}
}

func TestMemoryLimitExceeded(t *testing.T) {
	m := NewMonitor(ExecutionLimits{MaxMemory: 1024, MaxTime: defaultTestTime, MaxFileHandles: 1, MaxNetworkConnections: 1, MaxFuel: 1000})
	m.UpdateMemoryUsage(2048)
	if err := m.CheckLimits(); err == nil {
		t.Fatal("expected memory limit error")
	}
}

func TestFuelExhaustion(t *testing.T) {
	m := NewMonitor(ExecutionLimits{MaxFuel: 100, MaxTime: defaultTestTime, MaxMemory: defaultTestMem, MaxFileHandles: 1, MaxNetworkConnections: 1})
	if err := m.ConsumeFuel(50); err != nil {
		t.Fatalf("50/100 fuel should be fine: %v", err)
	}
	if err := m.ConsumeFuel(60); err == nil {
		t.Fatal("expected fuel exhaustion error")
	}
}

const (
	defaultTestTime = 1_000_000_000 // 1s, expressed in ns via time.Duration below
	defaultTestMem  = 16 * 1024 * 1024
)
