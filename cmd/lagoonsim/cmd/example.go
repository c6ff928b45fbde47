package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// exampleScenario exercises both extensions: a dynamic-fee pool under
// bursty trading and an oracle pool collecting observations from every
// kind of liquidity movement.
const exampleScenario = `# lagoonsim scenario. All amounts are whole tokens, scaled by
# 10^decimals on load. Each step may carry "wait" seconds that elapse
# before it runs; steps without wait run in the same block.
description: fee ramp under bursty trading, then oracle checks
start_time: "2026-01-01T00:00:00Z"
decimals: 18

pools:
  # Effective fee managed by the dynamic fee extension.
  - name: eden
    token0: uatom
    token1: uosmo
    fee: dynamic
    tick_spacing: 60
    extension: dynfee
    amount0: 1000
    amount1: 1000000

  # Static 0.3% fee, price history kept by the oracle extension.
  - name: watch
    token0: uatom
    token1: uusdc
    fee: 3000
    tick_spacing: 60
    extension: oracle
    amount0: 1000
    amount1: 1000000

steps:
  # Burst of trades against the dynamic pool; watch the fee move.
  - { op: swap, pool: eden, sell: uatom, amount_in: 5 }
  - { op: swap, pool: eden, sell: uatom, amount_in: 40, wait: 30 }
  - { op: swap, pool: eden, sell: uosmo, amount_in: 20000, wait: 30 }
  - { op: fee, pool: eden, amount: 5000 }

  # Feed the oracle from swaps, a deposit, and a donation.
  - { op: swap, pool: watch, sell: uatom, amount_in: 2, wait: 60 }
  - { op: swap, pool: watch, sell: uatom, amount_in: 3, wait: 60 }
  - { op: add, pool: watch, shares: 500, wait: 60 }
  - { op: donate, pool: watch, amount0: 1, amount1: 1000, wait: 60 }

  # Historical price queries.
  - { op: status, pool: watch }
  - { op: consult, pool: watch, seconds_ago: 120 }
  - { op: twap, pool: watch, seconds_ago: 240 }
  - { op: vwap, pool: watch, seconds_ago: 240 }

  - { op: remove, pool: watch, shares: 200, wait: 30 }
  - { op: quote, pool: eden, sell: uatom, amount_in: 10 }
`

// ExampleCmd prints a runnable scenario to stdout.
func ExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print a commented example scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), exampleScenario)
			return err
		},
	}
}
