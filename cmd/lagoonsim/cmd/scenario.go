package cmd

import (
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// defaultStartTime anchors scenarios that do not pin their own clock,
// keeping replays deterministic.
var defaultStartTime = time.Unix(1_700_000_000, 0).UTC()

const defaultActor = "lagoon1sim"

// Scenario is one parsed scenario file: pools to create at the start
// and timed steps to run against them.
type Scenario struct {
	Description string
	StartTime   time.Time
	Decimals    int
	Pools       []PoolSpec
	Steps       []Step
}

// PoolSpec describes one pool created before the steps run. Token
// order is kept as written so queries and output read the way the
// author declared the pair.
type PoolSpec struct {
	Name        string
	Token0      string
	Token1      string
	Fee         uint32
	TickSpacing int64
	Extension   string
	Amount0     math.Int
	Amount1     math.Int
}

// Step is one timed operation. Wait seconds elapse before the
// operation executes; a zero wait runs it in the same block.
type Step struct {
	Op         string
	Wait       int64
	Pool       string
	Actor      string
	Sell       string
	AmountIn   math.Int
	MinOut     math.Int
	Shares     math.Int
	Amount0    math.Int
	Amount1    math.Int
	Amount     math.Int
	SecondsAgo int64
}

// Step operations understood by the runner.
const (
	opSwap    = "swap"
	opQuote   = "quote"
	opAdd     = "add"
	opRemove  = "remove"
	opDonate  = "donate"
	opConsult = "consult"
	opTWAP    = "twap"
	opVWAP    = "vwap"
	opFee     = "fee"
	opStatus  = "status"
	opWait    = "wait"
)

// LoadScenario reads and validates a scenario YAML file.
func LoadScenario(path string) (Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("decimals", 18)
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return parseScenario(v)
}

func parseScenario(v *viper.Viper) (Scenario, error) {
	sc := Scenario{
		Description: v.GetString("description"),
		StartTime:   defaultStartTime,
		Decimals:    v.GetInt("decimals"),
	}
	if sc.Decimals < 0 || sc.Decimals > 18 {
		return Scenario{}, fmt.Errorf("decimals must be between 0 and 18, got %d", sc.Decimals)
	}
	if raw := v.GetString("start_time"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("start_time must be RFC3339: %w", err)
		}
		sc.StartTime = start.UTC()
	}

	pools, err := parsePools(v.Get("pools"), sc.Decimals)
	if err != nil {
		return Scenario{}, err
	}
	sc.Pools = pools

	names := make(map[string]bool, len(pools))
	for _, ps := range pools {
		names[ps.Name] = true
	}

	steps, err := parseSteps(v.Get("steps"), sc.Decimals, names)
	if err != nil {
		return Scenario{}, err
	}
	sc.Steps = steps

	return sc, nil
}

func parsePools(raw interface{}, decimals int) ([]PoolSpec, error) {
	entries := cast.ToSlice(raw)
	if len(entries) == 0 {
		return nil, fmt.Errorf("scenario declares no pools")
	}

	pools := make([]PoolSpec, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		m := cast.ToStringMap(entry)
		if m == nil {
			return nil, fmt.Errorf("pool %d is not a mapping", i)
		}

		ps := PoolSpec{
			Name:        cast.ToString(m["name"]),
			Token0:      cast.ToString(m["token0"]),
			Token1:      cast.ToString(m["token1"]),
			TickSpacing: cast.ToInt64(m["tick_spacing"]),
			Extension:   cast.ToString(m["extension"]),
		}
		if ps.Name == "" {
			ps.Name = fmt.Sprintf("pool%d", i)
		}
		if seen[ps.Name] {
			return nil, fmt.Errorf("duplicate pool name %q", ps.Name)
		}
		seen[ps.Name] = true

		if ps.Token0 == "" || ps.Token1 == "" {
			return nil, fmt.Errorf("pool %q needs token0 and token1", ps.Name)
		}
		if ps.TickSpacing == 0 {
			ps.TickSpacing = 60
		}

		fee, err := parseFee(m["fee"])
		if err != nil {
			return nil, fmt.Errorf("pool %q: %w", ps.Name, err)
		}
		ps.Fee = fee

		if ps.Amount0, err = scaleAmount(m["amount0"], decimals); err != nil {
			return nil, fmt.Errorf("pool %q amount0: %w", ps.Name, err)
		}
		if ps.Amount1, err = scaleAmount(m["amount1"], decimals); err != nil {
			return nil, fmt.Errorf("pool %q amount1: %w", ps.Name, err)
		}
		if !ps.Amount0.IsPositive() || !ps.Amount1.IsPositive() {
			return nil, fmt.Errorf("pool %q needs positive amount0 and amount1", ps.Name)
		}

		pools = append(pools, ps)
	}
	return pools, nil
}

func parseSteps(raw interface{}, decimals int, pools map[string]bool) ([]Step, error) {
	entries := cast.ToSlice(raw)
	steps := make([]Step, 0, len(entries))
	for i, entry := range entries {
		m := cast.ToStringMap(entry)
		if m == nil {
			return nil, fmt.Errorf("step %d is not a mapping", i)
		}

		st := Step{
			Op:         strings.ToLower(cast.ToString(m["op"])),
			Wait:       cast.ToInt64(m["wait"]),
			Pool:       cast.ToString(m["pool"]),
			Actor:      cast.ToString(m["actor"]),
			Sell:       cast.ToString(m["sell"]),
			SecondsAgo: cast.ToInt64(m["seconds_ago"]),
		}
		if st.Wait < 0 {
			return nil, fmt.Errorf("step %d: wait cannot be negative", i)
		}
		if st.Actor == "" {
			st.Actor = defaultActor
		}

		var err error
		if st.AmountIn, err = scaleAmount(m["amount_in"], decimals); err != nil {
			return nil, fmt.Errorf("step %d amount_in: %w", i, err)
		}
		if st.MinOut, err = scaleAmount(m["min_out"], decimals); err != nil {
			return nil, fmt.Errorf("step %d min_out: %w", i, err)
		}
		if st.Shares, err = scaleAmount(m["shares"], decimals); err != nil {
			return nil, fmt.Errorf("step %d shares: %w", i, err)
		}
		if st.Amount0, err = scaleAmount(m["amount0"], decimals); err != nil {
			return nil, fmt.Errorf("step %d amount0: %w", i, err)
		}
		if st.Amount1, err = scaleAmount(m["amount1"], decimals); err != nil {
			return nil, fmt.Errorf("step %d amount1: %w", i, err)
		}
		if st.Amount, err = scaleAmount(m["amount"], decimals); err != nil {
			return nil, fmt.Errorf("step %d amount: %w", i, err)
		}

		if err := validateStep(i, st, pools); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func validateStep(i int, st Step, pools map[string]bool) error {
	if st.Op == opWait {
		if st.Wait == 0 {
			return fmt.Errorf("step %d: wait step needs wait seconds", i)
		}
		return nil
	}
	if !pools[st.Pool] {
		return fmt.Errorf("step %d: unknown pool %q", i, st.Pool)
	}

	switch st.Op {
	case opSwap, opQuote:
		if st.Sell == "" {
			return fmt.Errorf("step %d: %s needs the sell denom", i, st.Op)
		}
		if !st.AmountIn.IsPositive() {
			return fmt.Errorf("step %d: %s needs a positive amount_in", i, st.Op)
		}
	case opAdd, opRemove:
		if !st.Shares.IsPositive() {
			return fmt.Errorf("step %d: %s needs positive shares", i, st.Op)
		}
	case opDonate:
		if !st.Amount0.IsPositive() && !st.Amount1.IsPositive() {
			return fmt.Errorf("step %d: donate needs amount0 or amount1", i)
		}
	case opConsult, opTWAP, opVWAP:
		if st.SecondsAgo <= 0 {
			return fmt.Errorf("step %d: %s needs a positive seconds_ago", i, st.Op)
		}
	case opFee:
		if !st.Amount.IsPositive() {
			return fmt.Errorf("step %d: fee needs a positive amount", i)
		}
	case opStatus:
	default:
		return fmt.Errorf("step %d: unknown op %q", i, st.Op)
	}
	return nil
}

// parseFee accepts a parts-per-million number or the literal "dynamic"
// for pools whose fee the dynamic fee extension manages.
func parseFee(raw interface{}) (uint32, error) {
	if strings.EqualFold(strings.TrimSpace(cast.ToString(raw)), "dynamic") {
		return types.DynamicFeeFlag, nil
	}
	fee, err := cast.ToUint32E(raw)
	if err != nil {
		return 0, fmt.Errorf("fee must be a number or %q, got %v", "dynamic", raw)
	}
	return fee, nil
}

// scaleAmount converts whole tokens from the file into base units.
// Missing values come through as zero.
func scaleAmount(raw interface{}, decimals int) (math.Int, error) {
	whole, err := cast.ToInt64E(raw)
	if err != nil {
		return math.Int{}, fmt.Errorf("expected a whole-token integer, got %v", raw)
	}
	if whole < 0 {
		return math.Int{}, fmt.Errorf("amounts cannot be negative, got %d", whole)
	}
	return math.NewIntWithDecimal(whole, decimals), nil
}
