//go:build !linux

package resmon

// btfAvailable is always false off Linux: there is no kernel BTF to parse.
func btfAvailable() bool { return false }
