package yosys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleStatReport = `
=== top ===

   Number of wires:                  42
   Number of wire bits:             128
   Number of public wires:           12
   Number of public wire bits:       64
   Number of memories:                0
   Number of memory bits:             0
   Number of processes:               0
   Number of cells:                   37
     $lut                             20
     $_DFF_P_                        17
`

func TestParseStatReportExtractsCellsAndLUTs(t *testing.T) {
	out := parseStatReport([]byte(sampleStatReport))
	assert.Equal(t, 37, out["num_cells"])
	assert.Equal(t, 20, out["luts"])
}

func TestParseStatReportEmptyOnNoMatch(t *testing.T) {
	out := parseStatReport([]byte("nothing interesting here\n"))
	assert.Empty(t, out)
}
