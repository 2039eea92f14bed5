package design

import "fmt"

// ParamValue is a generic parameter value: integer, bool, string, or a
// bit-vector literal (kept as its textual form, e.g. "8'hFF").
type ParamValue struct {
	Int      *int64
	Bool     *bool
	String   *string
	BitVector *string
}

func IntParam(v int64) ParamValue      { return ParamValue{Int: &v} }
func BoolParam(v bool) ParamValue      { return ParamValue{Bool: &v} }
func StringParam(v string) ParamValue  { return ParamValue{String: &v} }
func BitVectorParam(v string) ParamValue { return ParamValue{BitVector: &v} }

// LanguageOptions carries language-specific compile options.
type LanguageOptions struct {
	VHDLStandard  string
	VHDLSynopsys  bool
	VerilogStandard string
}

// RTL is the synthesizable phase of a Design.
type RTL struct {
	Sources []*Source
	Top     string
	Clocks  map[string]*PhysicalClock
	// ClockPorts maps clock name -> port name, used by PhysicalClock.ResolvePort.
	ClockPorts map[string]string
}

// Testbench is the simulation-only phase of a Design.
type Testbench struct {
	Sources                   []*Source
	Top                       string
	ConfigurationSpecification string
}

// Design is the named aggregate of rtl + tb sources plus parameters.
type Design struct {
	Name       string
	RTL        RTL
	TB         Testbench
	Parameters map[string]ParamValue
	Language   LanguageOptions

	rtlHash string
	tbHash  string
}

// New constructs a Design, computing rtl_hash/tb_hash. Parameter keys are
// unique because params is a Go map; no further check is made.
func New(name string, rtl RTL, tb Testbench, params map[string]ParamValue, lang LanguageOptions) (*Design, error) {
	if name == "" {
		return nil, fmt.Errorf("design: name must not be empty")
	}
	if rtl.Top == "" {
		return nil, fmt.Errorf("design %q: rtl.top must not be empty", name)
	}
	if params == nil {
		params = map[string]ParamValue{}
	}
	for _, c := range rtl.Clocks {
		c.ResolvePort(rtl.ClockPorts)
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("design %q: %w", name, err)
		}
	}
	d := &Design{
		Name:       name,
		RTL:        rtl,
		TB:         tb,
		Parameters: params,
		Language:   lang,
	}
	d.rtlHash = HashSources(rtl.Sources, rtl.Top)
	d.tbHash = HashSources(tb.Sources, tb.Top)
	return d, nil
}

// RTLHash returns the stable hash of the rtl source set + top name.
func (d *Design) RTLHash() string { return d.rtlHash }

// TBHash returns the stable hash of the tb source set + top name.
func (d *Design) TBHash() string { return d.tbHash }

// HashInputs returns the canonical structure Hasher.SemanticHash should be
// called on to produce design_hash.
func (d *Design) HashInputs() map[string]any {
	return map[string]any{
		"rtl_hash": d.rtlHash,
		"tb_hash":  d.tbHash,
	}
}
