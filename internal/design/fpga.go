package design

import "strings"

// FPGA describes the target FPGA part plus the vendor/family inferred from
// its part string prefix.
type FPGA struct {
	Part        string
	Vendor      string
	Family      string
	SpeedGrade  string
	Package     string
}

// partPrefixes maps a part-string prefix to (vendor, family). The entries
// are in no particular order; NewFPGA picks the longest matching prefix.
var partPrefixes = []struct {
	prefix string
	vendor string
	family string
}{
	{"xc7a", "xilinx", "artix7"},
	{"xc7k", "xilinx", "kintex7"},
	{"xc7z", "xilinx", "zynq7"},
	{"xcku", "xilinx", "kintexultrascale"},
	{"xcvu", "xilinx", "virtexultrascale"},
	{"10m", "intel", "maxv"},
	{"5ce", "intel", "cyclonev"},
	{"ep4c", "intel", "cycloneiv"},
	{"lfe5", "lattice", "ecp5"},
	{"ice40", "lattice", "ice40"},
	{"up5k", "lattice", "ice40up"},
}

// NewFPGA builds an FPGA from a part string, inferring vendor/family by
// longest matching prefix (case-insensitive). Vendor/family are left empty
// if no prefix matches.
func NewFPGA(part string) *FPGA {
	f := &FPGA{Part: part}
	lower := strings.ToLower(part)
	best := -1
	for _, p := range partPrefixes {
		if strings.HasPrefix(lower, p.prefix) && len(p.prefix) > best {
			f.Vendor = p.vendor
			f.Family = p.family
			best = len(p.prefix)
		}
	}
	return f
}
