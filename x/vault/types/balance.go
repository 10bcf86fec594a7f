package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Balance is a typed, non-negative asset amount. It is the only carrier of
// value inside the ledger: value enters and leaves a Balance exclusively
// through Split/Join/TakeAll, which debit the source in place, so two
// balances can never account for the same units. Destroy refuses non-zero
// balances; callers that hold value must put it somewhere first.
type Balance struct {
	Denom  string   `json:"denom"`
	Amount math.Int `json:"amount"`
}

// NewBalance returns an empty balance of the given denom.
func NewBalance(denom string) Balance {
	return Balance{Denom: denom, Amount: math.ZeroInt()}
}

// NewBalanceFromAmount returns a balance holding amount units of denom.
// The caller asserts the units exist; this is the mint point used by tests
// and by external collaborators handing value into the ledger.
func NewBalanceFromAmount(denom string, amount math.Int) Balance {
	return Balance{Denom: denom, Amount: amount}
}

// Value returns the current amount.
func (b *Balance) Value() math.Int {
	if b.Amount.IsNil() {
		return math.ZeroInt()
	}
	return b.Amount
}

// IsZero reports whether the balance holds no value.
func (b *Balance) IsZero() bool {
	return b.Value().IsZero()
}

// Split debits amount from b and returns it as a new balance of the same
// denom. Fails with ErrInvalidBalanceValue if amount is negative or exceeds
// the held value.
func (b *Balance) Split(amount math.Int) (Balance, error) {
	if amount.IsNegative() {
		return Balance{}, errors.Wrapf(ErrInvalidBalanceValue, "split amount %s is negative", amount)
	}
	if amount.GT(b.Value()) {
		return Balance{}, errors.Wrapf(ErrInvalidBalanceValue, "split amount %s exceeds balance %s", amount, b.Value())
	}
	b.Amount = b.Value().Sub(amount)
	return Balance{Denom: b.Denom, Amount: amount}, nil
}

// TakeAll empties b and returns everything it held.
func (b *Balance) TakeAll() Balance {
	out := Balance{Denom: b.Denom, Amount: b.Value()}
	b.Amount = math.ZeroInt()
	return out
}

// Join consumes other into b. Fails with ErrInvalidToken on denom mismatch;
// other is left untouched on failure.
func (b *Balance) Join(other Balance) error {
	if other.Denom != b.Denom {
		return errors.Wrapf(ErrInvalidToken, "cannot join %s into %s", other.Denom, b.Denom)
	}
	b.Amount = b.Value().Add(other.Value())
	return nil
}

// Destroy discards the balance. Only a zero balance may be destroyed.
func (b *Balance) Destroy() error {
	if !b.IsZero() {
		return errors.Wrapf(ErrInvalidBalanceValue, "destroying non-zero balance of %s %s", b.Value(), b.Denom)
	}
	return nil
}
