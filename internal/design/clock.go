package design

import (
	"fmt"
	"math"
)

// freqPeriodTolerance bounds the allowed drift between freq_mhz*period_ns
// and 1000.
const freqPeriodTolerance = 1e-3

// PhysicalClock describes one clock domain of a Design's rtl phase.
type PhysicalClock struct {
	Name        string
	PeriodNS    float64
	FreqMHz     float64
	Rise        float64
	Fall        float64
	Uncertainty float64
	Skew        float64
	Port        string
}

// NewClockFromPeriod builds a PhysicalClock from a period in nanoseconds,
// deriving the frequency. Exactly one of NewClockFromPeriod/NewClockFromFreq
// should be used per clock — the other value is always derived, never both
// user-supplied.
func NewClockFromPeriod(name string, periodNS float64) *PhysicalClock {
	return &PhysicalClock{Name: name, PeriodNS: periodNS, FreqMHz: 1000.0 / periodNS}
}

// NewClockFromFreq builds a PhysicalClock from a frequency in MHz, deriving
// the period.
func NewClockFromFreq(name string, freqMHz float64) *PhysicalClock {
	return &PhysicalClock{Name: name, FreqMHz: freqMHz, PeriodNS: 1000.0 / freqMHz}
}

// Validate checks the freq*period == 1000 invariant within tolerance.
func (c *PhysicalClock) Validate() error {
	product := c.FreqMHz * c.PeriodNS
	if math.Abs(product-1000.0) > freqPeriodTolerance {
		return fmt.Errorf("clock %q: freq_mhz(%g) * period_ns(%g) = %g, want 1000 ± %g",
			c.Name, c.FreqMHz, c.PeriodNS, product, freqPeriodTolerance)
	}
	return nil
}

// ResolvePort fills in Port by looking up c.Name against the rtl clock port
// list, if Port is not already set.
func (c *PhysicalClock) ResolvePort(rtlClockPorts map[string]string) {
	if c.Port != "" {
		return
	}
	if port, ok := rtlClockPorts[c.Name]; ok {
		c.Port = port
	}
}
