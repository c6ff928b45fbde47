package cmd

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lagoon-dex/lagoon/x/amm/extensions/dynfee"
	"github.com/lagoon-dex/lagoon/x/amm/extensions/oracle"
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// RunCmd builds the run command: replay one scenario file against a
// fresh in-memory AMM and print what happened.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a scenario against a fresh in-memory AMM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := LoadScenario(args[0])
			if err != nil {
				return err
			}

			logger := log.NewNopLogger()
			if verbose, _ := cmd.Flags().GetBool(flagVerbose); verbose {
				logger = log.NewLogger(cmd.ErrOrStderr())
			}
			quiet, _ := cmd.Flags().GetBool(flagQuiet)

			out := cmd.OutOrStdout()
			if err := runScenario(out, sc, logger, quiet); err != nil {
				return err
			}

			if addr, _ := cmd.Flags().GetString(flagMetricsAddr); addr != "" {
				return serveMetrics(out, addr)
			}
			return nil
		},
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func runScenario(w io.Writer, sc Scenario, logger log.Logger, quiet bool) error {
	env, err := newSimEnv(sc.StartTime, logger)
	if err != nil {
		return err
	}

	if !quiet {
		if sc.Description != "" {
			fmt.Fprintf(w, "scenario: %s\n", sc.Description)
		}
		fmt.Fprintf(w, "clock starts at %s\n", sc.StartTime.Format(time.RFC3339))
	}

	for _, ps := range sc.Pools {
		h, err := env.createPool(ps)
		if err != nil {
			return err
		}
		if quiet {
			continue
		}
		pool, err := env.keeper.GetPool(env.ctx, h.id)
		if err != nil {
			return err
		}
		fee, err := env.keeper.GetFee(env.ctx, h.id)
		if err != nil {
			return err
		}
		spot, err := pool.SpotPrice()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "pool %s: %s/%s id=%s fee=%d shares=%s spot=%s\n",
			h.name, pool.Pair.Token0, pool.Pair.Token1, shortID(h.id), fee,
			formatAmount(pool.TotalShares, sc.Decimals), formatPrice(spot))
	}

	failed := 0
	for _, st := range sc.Steps {
		env.advance(st.Wait)
		line, err := env.runStep(sc, st)
		if err != nil {
			failed++
			if !quiet {
				fmt.Fprintf(w, "[t+%6ds] ! %s %s: %v\n", env.elapsed, st.Op, st.Pool, err)
			}
			continue
		}
		if !quiet {
			fmt.Fprintf(w, "[t+%6ds] %s\n", env.elapsed, line)
		}
	}

	env.printSummary(w, sc)

	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(sc.Steps))
	}
	return nil
}

// runStep executes one operation and renders its result line. Step
// failures are outcomes to report; they leave no partial state behind.
func (env *simEnv) runStep(sc Scenario, st Step) (string, error) {
	if st.Op == opWait {
		return fmt.Sprintf("wait %ds", st.Wait), nil
	}
	h, err := env.handle(st.Pool)
	if err != nil {
		return "", err
	}

	switch st.Op {
	case opSwap:
		return env.runSwap(sc, h, st)

	case opQuote:
		params, outDenom, err := swapParams(h, st)
		if err != nil {
			return "", err
		}
		amountOut, fee, err := env.keeper.SimulateSwap(env.ctx, h.id, params)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("quote %s: %s %s -> %s %s (fee %d)",
			h.name, formatAmount(st.AmountIn, sc.Decimals), st.Sell,
			formatAmount(amountOut, sc.Decimals), outDenom, fee), nil

	case opAdd:
		delta, err := env.keeper.ModifyPosition(env.ctx, st.Actor, h.id, st.Shares)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("add %s: +%s shares (deposit %s %s + %s %s)",
			h.name, formatAmount(st.Shares, sc.Decimals),
			formatAmount(delta.Amount0, sc.Decimals), h.pair.Token0,
			formatAmount(delta.Amount1, sc.Decimals), h.pair.Token1), nil

	case opRemove:
		delta, err := env.keeper.ModifyPosition(env.ctx, st.Actor, h.id, st.Shares.Neg())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("remove %s: -%s shares (withdraw %s %s + %s %s)",
			h.name, formatAmount(st.Shares, sc.Decimals),
			formatAmount(delta.Amount0.Neg(), sc.Decimals), h.pair.Token0,
			formatAmount(delta.Amount1.Neg(), sc.Decimals), h.pair.Token1), nil

	case opDonate:
		amount0, amount1 := h.canonicalAmounts(st.Amount0, st.Amount1)
		if err := env.keeper.Donate(env.ctx, st.Actor, h.id, amount0, amount1); err != nil {
			return "", err
		}
		return fmt.Sprintf("donate %s: %s %s + %s %s",
			h.name, formatAmount(st.Amount0, sc.Decimals), h.token0,
			formatAmount(st.Amount1, sc.Decimals), h.token1), nil

	case opConsult:
		price, err := env.oracle.Consult(env.ctx, h.token0, h.token1, st.SecondsAgo)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("consult %s (%ds ago): %s %s per %s",
			h.name, st.SecondsAgo, formatPrice(price), h.token1, h.token0), nil

	case opTWAP:
		price, err := env.oracle.GetTWAP(env.ctx, h.id, st.SecondsAgo)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("twap %s (%ds): %s %s per %s",
			h.name, st.SecondsAgo, formatPrice(price), h.pair.Token1, h.pair.Token0), nil

	case opVWAP:
		price, err := env.oracle.GetVWAP(env.ctx, h.id, st.SecondsAgo)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("vwap %s (%ds): %s %s per %s",
			h.name, st.SecondsAgo, formatPrice(price), h.pair.Token1, h.pair.Token0), nil

	case opFee:
		feeAmount, err := env.fees.CalculateFee(env.ctx, h.pair, st.Amount)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("fee %s: charge on %s = %s",
			h.name, formatAmount(st.Amount, sc.Decimals),
			formatAmount(feeAmount, sc.Decimals)), nil

	case opStatus:
		status := env.oracle.Status(env.ctx, h.id)
		count := env.oracle.GetObservationCount(env.ctx, h.id)
		line := fmt.Sprintf("oracle %s: %s, %d observations", h.name, status, count)
		if latest, err := env.oracle.GetLatestPrice(env.ctx, h.id); err == nil {
			line += fmt.Sprintf(", latest %s %s per %s",
				formatPrice(latest), h.pair.Token1, h.pair.Token0)
		}
		return line, nil
	}

	return "", fmt.Errorf("unknown op %q", st.Op)
}

func (env *simEnv) runSwap(sc Scenario, h poolHandle, st Step) (string, error) {
	params, outDenom, err := swapParams(h, st)
	if err != nil {
		return "", err
	}
	feeBefore, err := env.keeper.GetFee(env.ctx, h.id)
	if err != nil {
		return "", err
	}

	delta, err := env.keeper.Swap(env.ctx, st.Actor, h.id, params)
	if err != nil {
		return "", err
	}
	out := delta.Amount0
	if params.ZeroForOne {
		out = delta.Amount1
	}

	line := fmt.Sprintf("swap %s: %s %s -> %s %s (fee %d)",
		h.name, formatAmount(params.AmountIn, sc.Decimals), st.Sell,
		formatAmount(out.Neg(), sc.Decimals), outDenom, feeBefore)

	// Dynamic pools recompute their fee in the after-swap handler; show
	// the evolution alongside the scores that produced it.
	if h.pair.Extension == dynfee.ExtensionName {
		feeAfter, err := env.keeper.GetFee(env.ctx, h.id)
		if err != nil {
			return "", err
		}
		cond := env.fees.GetMarketCondition(env.ctx, h.id)
		line += fmt.Sprintf(" | fee -> %d (vol %d liq %d act %d)",
			feeAfter, cond.VolatilityScore, cond.LiquidityScore, cond.ActivityScore)
	}
	return line, nil
}

// swapParams orients a step's sell denom onto the pair.
func swapParams(h poolHandle, st Step) (types.SwapParams, string, error) {
	var zeroForOne bool
	var outDenom string
	switch st.Sell {
	case h.pair.Token0:
		zeroForOne = true
		outDenom = h.pair.Token1
	case h.pair.Token1:
		zeroForOne = false
		outDenom = h.pair.Token0
	default:
		return types.SwapParams{}, "", fmt.Errorf("pool %s does not trade %s", h.name, st.Sell)
	}
	return types.SwapParams{
		ZeroForOne:   zeroForOne,
		AmountIn:     st.AmountIn,
		MinAmountOut: st.MinOut,
	}, outDenom, nil
}

func (env *simEnv) printSummary(w io.Writer, sc Scenario) {
	fmt.Fprintf(w, "--- final state after %ds ---\n", env.elapsed)
	for _, ps := range sc.Pools {
		h, err := env.handle(ps.Name)
		if err != nil {
			continue
		}
		pool, err := env.keeper.GetPool(env.ctx, h.id)
		if err != nil {
			fmt.Fprintf(w, "pool %s: %v\n", h.name, err)
			continue
		}

		line := fmt.Sprintf("pool %s: %s %s + %s %s, shares %s",
			h.name,
			formatAmount(pool.Reserve0, sc.Decimals), pool.Pair.Token0,
			formatAmount(pool.Reserve1, sc.Decimals), pool.Pair.Token1,
			formatAmount(pool.TotalShares, sc.Decimals))
		if fee, err := env.keeper.GetFee(env.ctx, h.id); err == nil {
			line += fmt.Sprintf(", fee %d", fee)
		}
		if spot, err := pool.SpotPrice(); err == nil {
			line += fmt.Sprintf(", spot %s", formatPrice(spot))
		}
		fmt.Fprintln(w, line)

		if h.pair.Extension == oracle.ExtensionName {
			fmt.Fprintf(w, "  oracle: %s, %d observations\n",
				env.oracle.Status(env.ctx, h.id), env.oracle.GetObservationCount(env.ctx, h.id))
		}
	}
}

// serveMetrics exposes the Prometheus counters the run accumulated and
// blocks until the process is interrupted.
func serveMetrics(w io.Writer, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Fprintf(w, "serving metrics on %s/metrics, interrupt to stop\n", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// formatAmount renders base units as whole tokens, trimming trailing
// zeros.
func formatAmount(v math.Int, decimals int) string {
	if decimals == 0 {
		return v.String()
	}
	s := math.LegacyNewDecFromIntWithPrec(v, int64(decimals)).String()
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// formatPrice renders a PriceScale fixed-point price.
func formatPrice(v math.Int) string {
	return formatAmount(v, 18)
}

// shortID abbreviates a pool id for display.
func shortID(id types.PoolID) string {
	return id.String()[:8]
}
