package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagVerbose     = "verbose"
	flagQuiet       = "quiet"
	flagMetricsAddr = "metrics-addr"
)

// NewRootCmd creates the root command for lagoonsim. It is called once
// in the main function.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lagoonsim",
		Short: "Lagoon AMM scenario simulator",
		Long: `lagoonsim replays trading scenarios against an in-memory copy of the
Lagoon AMM: the pool coordinator, the dynamic fee extension, and the
price oracle extension, with block time driven by the scenario file.

Scenarios are YAML files describing pools to create and a sequence of
timed operations (swaps, liquidity changes, donations) interleaved with
oracle and fee queries. Run 'lagoonsim example' for a commented one.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool(flagVerbose, false, "log keeper internals to stderr")

	rootCmd.AddCommand(
		RunCmd(),
		ExampleCmd(),
	)

	return rootCmd
}

// addRunFlags attaches the run command's output controls.
func addRunFlags(flags *pflag.FlagSet) {
	flags.Bool(flagQuiet, false, "suppress per-step output, print only the final state")
	flags.String(flagMetricsAddr, "", "serve Prometheus metrics on this address after the run until interrupted")
}
