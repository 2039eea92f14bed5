package openroad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimingReportExtractsWorstSlack(t *testing.T) {
	out := parseTimingReport([]byte("worst slack -0.125\n"), nil)
	assert.Equal(t, -0.125, out["worst_slack_ns"])
	assert.NotContains(t, out, "fmax_mhz")
}

func TestParseTimingReportDerivesFmaxFromPeriod(t *testing.T) {
	period := 5.0
	out := parseTimingReport([]byte("worst slack -0.5\n"), &period)
	assert.Equal(t, -0.5, out["worst_slack_ns"])
	assert.InDelta(t, 1000.0/5.5, out["fmax_mhz"], 1e-9)
}

func TestParseTimingReportEmptyOnNoMatch(t *testing.T) {
	out := parseTimingReport([]byte("nothing here\n"), nil)
	assert.Empty(t, out)
}
