package types

import (
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// RefundShare is one address's accumulated pending refund. Unlike
// deposit and bid records, refund records are keyed by a plain address,
// not an opaque receipt.
type RefundShare struct {
	Address string   `json:"address"`
	Amount  math.Int `json:"amount"`
}

// RefundVault holds unmatched bidder funds pending reclamation: one
// pooled balance and a linear address registry. Records are found by
// equality scan; there is no index.
type RefundVault struct {
	Denom     string        `json:"denom"`
	Balance   Balance       `json:"balance"`
	Records   []RefundShare `json:"records"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
}

// NewRefundVault creates an empty refund ledger for denom.
func NewRefundVault(denom string) *RefundVault {
	now := time.Now().Unix()
	return &RefundVault{
		Denom:     denom,
		Balance:   NewBalance(denom),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Register returns the record index for address, creating a
// zero-initialized record on first sight.
func (v *RefundVault) Register(address string) int {
	for i := range v.Records {
		if v.Records[i].Address == address {
			return i
		}
	}
	v.Records = append(v.Records, RefundShare{Address: address, Amount: math.ZeroInt()})
	v.UpdatedAt = time.Now().Unix()
	return len(v.Records) - 1
}

// PutRefund credits the pooled balance and the given address's record
// with the whole of bal.
func (v *RefundVault) PutRefund(bal *Balance, address string) error {
	if bal.Denom != v.Denom {
		return errors.Wrapf(ErrInvalidToken, "refund denom %s, ledger expects %s", bal.Denom, v.Denom)
	}
	in := bal.TakeAll()
	amt := in.Value()
	if err := v.Balance.Join(in); err != nil {
		return err
	}
	i := v.Register(address)
	v.Records[i].Amount = v.Records[i].Amount.Add(amt)
	v.UpdatedAt = time.Now().Unix()
	return nil
}

// PutRefunds credits a batch of records by index (obtained via Register)
// with the matching share amounts. The shares must sum to the whole of
// bal; any mismatch or out-of-range index fails with
// ErrInvalidBalanceValue before anything is credited.
func (v *RefundVault) PutRefunds(bal *Balance, indices []int, shares []math.Int) error {
	if bal.Denom != v.Denom {
		return errors.Wrapf(ErrInvalidToken, "refund denom %s, ledger expects %s", bal.Denom, v.Denom)
	}
	if len(indices) != len(shares) {
		return errors.Wrapf(ErrInvalidBalanceValue, "%d indices for %d shares", len(indices), len(shares))
	}
	total := math.ZeroInt()
	for i, idx := range indices {
		if idx < 0 || idx >= len(v.Records) {
			return errors.Wrapf(ErrInvalidBalanceValue, "record index %d out of range", idx)
		}
		if shares[i].IsNegative() {
			return errors.Wrapf(ErrInvalidBalanceValue, "negative refund share %s", shares[i])
		}
		total = total.Add(shares[i])
	}
	if !total.Equal(bal.Value()) {
		return errors.Wrapf(ErrInvalidBalanceValue, "shares sum %s != balance %s", total, bal.Value())
	}
	if err := v.Balance.Join(bal.TakeAll()); err != nil {
		return err
	}
	for i, idx := range indices {
		v.Records[idx].Amount = v.Records[idx].Amount.Add(shares[i])
	}
	v.UpdatedAt = time.Now().Unix()
	return nil
}

// TakeRefund zeroes the address's record and splits the equivalent
// amount out of the pool. The second return is false when the address
// has nothing to take.
func (v *RefundVault) TakeRefund(address string) (Balance, bool, error) {
	for i := range v.Records {
		if v.Records[i].Address != address {
			continue
		}
		amt := v.Records[i].Amount
		if amt.IsZero() {
			return NewBalance(v.Denom), false, nil
		}
		out, err := v.Balance.Split(amt)
		if err != nil {
			return Balance{}, false, err
		}
		v.Records[i].Amount = math.ZeroInt()
		v.UpdatedAt = time.Now().Unix()
		return out, true, nil
	}
	return NewBalance(v.Denom), false, nil
}

// CheckInvariant verifies the pooled balance equals the sum of record
// amounts.
func (v *RefundVault) CheckInvariant() error {
	sum := math.ZeroInt()
	for i := range v.Records {
		sum = sum.Add(v.Records[i].Amount)
	}
	if !sum.Equal(v.Balance.Value()) {
		return errors.Wrapf(ErrInvalidBalanceValue, "record amounts %s != pooled balance %s", sum, v.Balance.Value())
	}
	return nil
}
