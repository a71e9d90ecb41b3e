package system

import (
	"testing"
	"time"
)

func TestCollect(t *testing.T) {
	before := time.Now()
	stats := Collect(t.TempDir())

	if stats == nil {
		t.Fatal("Collect() returned nil")
	}
	if stats.Timestamp.Before(before) {
		t.Error("snapshot timestamp predates the call")
	}
	if stats.CPU.Cores <= 0 {
		t.Errorf("cores = %d, want at least 1", stats.CPU.Cores)
	}
	if stats.Memory.Total == 0 {
		t.Error("memory total = 0")
	}
	if stats.Disk.Path == "" {
		t.Error("disk section has no path")
	}
}

func TestCollectDefaultsPath(t *testing.T) {
	stats := Collect("")
	if stats.Disk.Path != "/" && stats.Disk.Path != "" {
		t.Errorf("path = %q, want / when no data path is given", stats.Disk.Path)
	}
}
