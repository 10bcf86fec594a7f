package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrInvalidToken          = errors.Register("vault", 1, "asset type does not match the ledger's configured type")
	ErrZeroValue             = errors.Register("vault", 2, "value must be strictly positive")
	ErrInvalidShareTag       = errors.Register("vault", 3, "invalid sub-pool tag")
	ErrInvalidDepositReceipt = errors.Register("vault", 4, "deposit receipt does not match this ledger")
	ErrInvalidBidReceipt     = errors.Register("vault", 5, "bid receipt does not match this ledger")
	ErrDepositDisabled       = errors.Register("vault", 6, "ledger has no next round, deposits disabled")
	ErrInvalidBalanceValue   = errors.Register("vault", 7, "invalid balance value")
	ErrUnauthorized          = errors.Register("vault", 8, "unauthorized")

	ErrVaultNotFound = errors.Register("vault", 10, "vault not found")
	ErrVaultExists   = errors.Register("vault", 11, "vault already exists")
)
