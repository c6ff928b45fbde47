package types

// Fee values are expressed in parts-per-million of swap input.
const (
	// MinFee is the lowest fee the registry accepts (0.01%).
	MinFee uint32 = 100

	// MaxFee is the highest fee the registry accepts (10%).
	MaxFee uint32 = 100_000

	// FeeStep is the granularity every stored fee must align to.
	FeeStep uint32 = 100

	// DefaultFee seeds dynamic-fee pools until the extension pushes
	// its first derived fee (0.30%).
	DefaultFee uint32 = 3000

	// FeeDenominator converts a parts-per-million fee into a fraction.
	FeeDenominator uint32 = 1_000_000

	// DynamicFeeFlag marks a pair whose effective fee comes from the
	// fee-tier registry instead of the pair itself.
	DynamicFeeFlag uint32 = 0x800000
)

// ValidateFeeValue checks that a fee is within [MinFee, MaxFee] and
// aligned to FeeStep.
func ValidateFeeValue(fee uint32) error {
	if fee < MinFee || fee > MaxFee {
		return ErrInvalidFee.Wrapf("fee %d outside [%d, %d]", fee, MinFee, MaxFee)
	}
	if fee%FeeStep != 0 {
		return ErrInvalidFee.Wrapf("fee %d not aligned to step %d", fee, FeeStep)
	}
	return nil
}
