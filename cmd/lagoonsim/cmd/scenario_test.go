package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

func writeScenario(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
description: two pools
start_time: "2026-01-01T00:00:00Z"
decimals: 6
pools:
  - name: main
    token0: uatom
    token1: uosmo
    fee: dynamic
    extension: dynfee
    amount0: 1000
    amount1: 1000000
  - token0: uatom
    token1: uusdc
    fee: 3000
    tick_spacing: 30
    amount0: 50
    amount1: 50
steps:
  - { op: swap, pool: main, sell: uatom, amount_in: 5, wait: 60 }
  - { op: consult, pool: pool1, seconds_ago: 120 }
`)

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	require.Equal(t, "two pools", sc.Description)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), sc.StartTime)
	require.Equal(t, 6, sc.Decimals)

	require.Len(t, sc.Pools, 2)
	require.Equal(t, "main", sc.Pools[0].Name)
	require.Equal(t, types.DynamicFeeFlag, sc.Pools[0].Fee)
	require.Equal(t, int64(60), sc.Pools[0].TickSpacing)
	require.Equal(t, math.NewIntWithDecimal(1_000, 6), sc.Pools[0].Amount0)
	require.Equal(t, math.NewIntWithDecimal(1_000_000, 6), sc.Pools[0].Amount1)

	// Unnamed pools get positional names and keep their declared fee
	require.Equal(t, "pool1", sc.Pools[1].Name)
	require.Equal(t, uint32(3000), sc.Pools[1].Fee)
	require.Equal(t, int64(30), sc.Pools[1].TickSpacing)

	require.Len(t, sc.Steps, 2)
	require.Equal(t, opSwap, sc.Steps[0].Op)
	require.Equal(t, int64(60), sc.Steps[0].Wait)
	require.Equal(t, "uatom", sc.Steps[0].Sell)
	require.Equal(t, math.NewIntWithDecimal(5, 6), sc.Steps[0].AmountIn)
	require.True(t, sc.Steps[0].MinOut.IsZero())
	require.Equal(t, defaultActor, sc.Steps[0].Actor)
	require.Equal(t, int64(120), sc.Steps[1].SecondsAgo)
}

func TestLoadScenarioDefaults(t *testing.T) {
	path := writeScenario(t, `
pools:
  - name: main
    token0: uatom
    token1: uosmo
    fee: 3000
    amount0: 10
    amount1: 10
`)

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	require.Equal(t, defaultStartTime, sc.StartTime)
	require.Equal(t, 18, sc.Decimals)
	require.Empty(t, sc.Steps)
	require.Equal(t, math.NewIntWithDecimal(10, 18), sc.Pools[0].Amount0)
}

func TestLoadScenarioRejects(t *testing.T) {
	base := `
pools:
  - name: main
    token0: uatom
    token1: uosmo
    fee: 3000
    amount0: 10
    amount1: 10
steps:
`
	tests := []struct {
		name     string
		contents string
		errMsg   string
	}{
		{
			name:     "no pools",
			contents: "description: empty\n",
			errMsg:   "declares no pools",
		},
		{
			name:     "decimals out of range",
			contents: "decimals: 19\n" + base,
			errMsg:   "decimals must be between 0 and 18",
		},
		{
			name:     "malformed start time",
			contents: "start_time: \"yesterday\"\n" + base,
			errMsg:   "RFC3339",
		},
		{
			name: "missing token",
			contents: `
pools:
  - name: main
    token0: uatom
    fee: 3000
    amount0: 10
    amount1: 10
`,
			errMsg: "needs token0 and token1",
		},
		{
			name: "bad fee",
			contents: `
pools:
  - name: main
    token0: uatom
    token1: uosmo
    fee: steep
    amount0: 10
    amount1: 10
`,
			errMsg: "fee must be a number",
		},
		{
			name: "duplicate pool name",
			contents: `
pools:
  - name: main
    token0: uatom
    token1: uosmo
    fee: 3000
    amount0: 10
    amount1: 10
  - name: main
    token0: uatom
    token1: uusdc
    fee: 3000
    amount0: 10
    amount1: 10
`,
			errMsg: `duplicate pool name "main"`,
		},
		{
			name: "zero seed amount",
			contents: `
pools:
  - name: main
    token0: uatom
    token1: uosmo
    fee: 3000
    amount0: 10
`,
			errMsg: "positive amount0 and amount1",
		},
		{
			name:     "unknown op",
			contents: base + "  - { op: explode, pool: main }\n",
			errMsg:   `unknown op "explode"`,
		},
		{
			name:     "unknown pool",
			contents: base + "  - { op: status, pool: ghost }\n",
			errMsg:   `unknown pool "ghost"`,
		},
		{
			name:     "negative wait",
			contents: base + "  - { op: status, pool: main, wait: -5 }\n",
			errMsg:   "wait cannot be negative",
		},
		{
			name:     "swap without sell denom",
			contents: base + "  - { op: swap, pool: main, amount_in: 5 }\n",
			errMsg:   "needs the sell denom",
		},
		{
			name:     "swap without input",
			contents: base + "  - { op: swap, pool: main, sell: uatom }\n",
			errMsg:   "positive amount_in",
		},
		{
			name:     "twap without period",
			contents: base + "  - { op: twap, pool: main }\n",
			errMsg:   "positive seconds_ago",
		},
		{
			name:     "donate without amounts",
			contents: base + "  - { op: donate, pool: main }\n",
			errMsg:   "needs amount0 or amount1",
		},
		{
			name:     "negative amount",
			contents: base + "  - { op: add, pool: main, shares: -3 }\n",
			errMsg:   "cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.contents))
			require.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestExampleScenarioParses(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, exampleScenario))
	require.NoError(t, err)
	require.Len(t, sc.Pools, 2)
	require.Len(t, sc.Steps, 14)
	require.Equal(t, types.DynamicFeeFlag, sc.Pools[0].Fee)
	require.Equal(t, "oracle", sc.Pools[1].Extension)
}
