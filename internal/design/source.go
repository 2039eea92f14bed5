// Package design models the hardware design data the flow runner operates
// on: source files, clocks, FPGA/ASIC targets, and the top-level Design
// aggregate.
package design

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// SourceType tags the HDL/constraint dialect of a Source file.
type SourceType string

const (
	Verilog        SourceType = "verilog"
	SystemVerilog  SourceType = "system_verilog"
	VHDL           SourceType = "vhdl"
	Bluespec       SourceType = "bluespec"
	SDC            SourceType = "sdc"
	CPPTestbench   SourceType = "cpp_testbench"
	UnknownSource  SourceType = "unknown"
)

// sourceTypeByExt maps common file extensions to a SourceType.
var sourceTypeByExt = map[string]SourceType{
	".v":    Verilog,
	".vh":   Verilog,
	".sv":   SystemVerilog,
	".svh":  SystemVerilog,
	".vhd":  VHDL,
	".vhdl": VHDL,
	".bsv":  Bluespec,
	".sdc":  SDC,
	".cpp":  CPPTestbench,
	".cc":   CPPTestbench,
	".hpp":  CPPTestbench,
}

// Source is one design input file: a resolved absolute path, its content
// hash, and a dialect tag. Invariant: the path must exist and be readable at
// construction time (NewSource enforces this; there is no way to build a
// Source that violates it).
type Source struct {
	Path     string
	Hash     string // sha256 hex of file bytes
	Type     SourceType
	Dialect  string // optional: standard/dialect string, e.g. "2008", "2012"
}

// NewSource resolves path to an absolute form, reads and hashes its
// contents, and infers the SourceType from its extension unless typ is
// explicitly provided (pass UnknownSource to request inference).
func NewSource(path string, typ SourceType, dialect string) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve source path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read source %q: %w", abs, err)
	}
	if typ == "" || typ == UnknownSource {
		typ = inferSourceType(abs)
	}
	sum := sha256.Sum256(data)
	return &Source{
		Path:    abs,
		Hash:    hex.EncodeToString(sum[:]),
		Type:    typ,
		Dialect: dialect,
	}, nil
}

func inferSourceType(path string) SourceType {
	ext := filepath.Ext(path)
	if t, ok := sourceTypeByExt[ext]; ok {
		return t
	}
	return UnknownSource
}

// HashSources is a stable function of a source set and a top module name:
// it concatenates each source's own content hash (already stable per-file)
// with the ordered list of paths and the top name, then hashes that. Order
// of the input slice matters — callers that want order-independence should
// sort before calling.
func HashSources(sources []*Source, top string) string {
	h := sha256.New()
	for _, s := range sources {
		h.Write([]byte(s.Path))
		h.Write([]byte{0})
		h.Write([]byte(s.Hash))
		h.Write([]byte{0})
	}
	h.Write([]byte(top))
	return hex.EncodeToString(h.Sum(nil))
}
