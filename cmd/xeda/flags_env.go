package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envBinder auto-populates any unset flag on a command from an environment
// variable named prefix + "_" + the flag name uppercased with "-" replaced
// by "_" (e.g. --max-workers becomes XEDA_MAX_WORKERS). Flags explicitly
// passed on the command line always win.
type envBinder struct {
	prefix string
}

func newEnvBinder(prefix string) *envBinder {
	return &envBinder{prefix: prefix}
}

// bind walks every flag on cmd (local and inherited) and applies its
// environment fallback for any flag the user didn't pass explicitly. Call
// after cmd.Flags() has been parsed, e.g. from a PersistentPreRunE.
func (e *envBinder) bind(cmd *cobra.Command) error {
	var firstErr error
	apply := func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		val, ok := os.LookupEnv(e.envName(f.Name))
		if !ok {
			return
		}
		if err := f.Value.Set(val); err != nil {
			firstErr = err
		}
	}
	cmd.Flags().VisitAll(apply)
	cmd.InheritedFlags().VisitAll(apply)
	return firstErr
}

func (e *envBinder) envName(flagName string) string {
	return e.prefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
