package types

import (
	"cosmossdk.io/errors"
)

// AMM module sentinel errors
var (
	ErrInvalidPair              = errors.Register(ModuleName, 1, "invalid pair key")
	ErrPoolNotFound             = errors.Register(ModuleName, 2, "pool not found")
	ErrPoolAlreadyExists        = errors.Register(ModuleName, 3, "pool already exists")
	ErrInvalidTokenDenom        = errors.Register(ModuleName, 4, "invalid token denomination")
	ErrInsufficientLiquidity    = errors.Register(ModuleName, 5, "insufficient liquidity in pool")
	ErrInvalidAmount            = errors.Register(ModuleName, 6, "invalid amount")
	ErrSlippageExceeded         = errors.Register(ModuleName, 7, "output amount less than minimum required")
	ErrInsufficientShares       = errors.Register(ModuleName, 8, "insufficient liquidity shares")
	ErrMaxPoolsReached          = errors.Register(ModuleName, 9, "maximum number of pools reached")
	ErrInvalidPoolState         = errors.Register(ModuleName, 10, "invalid pool state")
	ErrExtensionNotFound        = errors.Register(ModuleName, 11, "extension not registered")
	ErrInvalidCheckpointAck     = errors.Register(ModuleName, 12, "checkpoint acknowledgment mismatch")
	ErrInvalidFee               = errors.Register(ModuleName, 13, "invalid fee")
	ErrPeriodTooShort           = errors.Register(ModuleName, 14, "consult period below minimum")
	ErrPeriodTooLong            = errors.Register(ModuleName, 15, "consult period exceeds observation window")
	ErrInsufficientObservations = errors.Register(ModuleName, 16, "not enough observations recorded")
	ErrInvalidPrice             = errors.Register(ModuleName, 17, "invalid price")
	ErrArithmetic               = errors.Register(ModuleName, 18, "arithmetic overflow or division by zero")
	ErrInvalidParams            = errors.Register(ModuleName, 19, "invalid module parameters")
	ErrInvalidProtectionParams  = errors.Register(ModuleName, 20, "invalid protection parameters")
)
