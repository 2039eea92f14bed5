package resmon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnsupportedMonitorNeverFails(t *testing.T) {
	m := unsupportedMonitor{}
	m.Sample([]int{1, 2, 3}, time.Second)
	res := m.Result()
	assert.Equal(t, "unsupported", res.Backend)
	assert.Zero(t, res.TotalWatts)
	m.Close()
}

func TestDetectCapabilitiesDoesNotPanic(t *testing.T) {
	caps := DetectCapabilities()
	_ = caps // fields vary by host; this only guards against a panic on unreadable /proc
}

func TestParseKernelVersion(t *testing.T) {
	tests := []struct {
		in         string
		wantMajor  int
		wantMinor  int
	}{
		{"6.1.0-generic", 6, 1},
		{"5.8.0", 5, 8},
		{"4.15.0-213-generic", 4, 15},
		{"", 0, 0},
	}
	for _, tt := range tests {
		major, minor := parseKernelVersion(tt.in)
		assert.Equal(t, tt.wantMajor, major, tt.in)
		assert.Equal(t, tt.wantMinor, minor, tt.in)
	}
}
