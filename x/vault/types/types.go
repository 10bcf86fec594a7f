package types

import (
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "vault"
	StoreKey   = ModuleName
)

// Fee basis-point denominator
const FeeDenominator = 10_000

// ShareTag identifies one of the six accounting sub-pools a deposit
// ledger partitions funds into.
type ShareTag int

const (
	TagActive ShareTag = iota
	TagDeactivating
	TagInactive
	TagWarmup
	TagPremium
	TagIncentive

	ShareTagCount
)

var shareTagNames = [ShareTagCount]string{
	"active", "deactivating", "inactive", "warmup", "premium", "incentive",
}

// String returns the tag's wire name.
func (t ShareTag) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return shareTagNames[t]
}

// Valid reports whether the tag is in range.
func (t ShareTag) Valid() bool {
	return t >= 0 && t < ShareTagCount
}

// DepositShare is one holder's record in a deposit ledger: the receipt
// identity it is keyed by and one share amount per sub-pool tag. Records
// live in the vault's ordered record slice; positional order is the
// canonical order for all proportional allocations.
type DepositShare struct {
	ReceiptID string                   `json:"receipt_id"`
	Shares    [ShareTagCount]math.Int `json:"shares"`
}

// NewDepositShare returns an all-zero record for the given receipt.
func NewDepositShare(receiptID string) DepositShare {
	s := DepositShare{ReceiptID: receiptID}
	for i := range s.Shares {
		s.Shares[i] = math.ZeroInt()
	}
	return s
}

// Total sums the record's shares across all tags.
func (s *DepositShare) Total() math.Int {
	total := math.ZeroInt()
	for i := range s.Shares {
		total = total.Add(s.Shares[i])
	}
	return total
}

// IsEmpty reports whether every tag share is zero.
func (s *DepositShare) IsEmpty() bool {
	return s.Total().IsZero()
}

// DepositVault is the deposit ledger aggregate: asset identities, the
// round flag, fee parameters, six tag balances with their share-supply
// counters, and the ordered record store.
//
// Invariant at every observable state (except between WithdrawForLending
// and its matching DepositFromLending): for every tag,
// Balances[tag] == ShareSupply[tag] == sum of record shares for that tag.
type DepositVault struct {
	VaultID    string `json:"vault_id"`
	RoundIndex uint64 `json:"round_index"`

	DepositDenom   string `json:"deposit_denom"`
	BidDenom       string `json:"bid_denom"`
	IncentiveDenom string `json:"incentive_denom,omitempty"` // empty until registered

	HasNext bool `json:"has_next"`

	FeeBP       uint64 `json:"fee_bp"`
	FeeShareBP  uint64 `json:"fee_share_bp,omitempty"`
	FeeShareKey string `json:"fee_share_key,omitempty"`

	Balances    [ShareTagCount]Balance  `json:"balances"`
	ShareSupply [ShareTagCount]math.Int `json:"share_supply"`

	Records []DepositShare `json:"records"`

	// LendingOut marks the window between WithdrawForLending and
	// DepositFromLending during which the balance/share invariant on
	// Active and Deactivating is intentionally suspended.
	LendingOut bool `json:"lending_out,omitempty"`

	Metadata  string `json:"metadata,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// NewDepositVault creates a deposit ledger with all tags zero and a
// successor round enabled.
func NewDepositVault(vaultID, depositDenom, bidDenom string, feeBP uint64, metadata string) *DepositVault {
	now := time.Now().Unix()
	v := &DepositVault{
		VaultID:      vaultID,
		DepositDenom: depositDenom,
		BidDenom:     bidDenom,
		HasNext:      true,
		FeeBP:        feeBP,
		Metadata:     metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for tag := ShareTag(0); tag < ShareTagCount; tag++ {
		v.Balances[tag] = NewBalance(v.denomFor(tag))
		v.ShareSupply[tag] = math.ZeroInt()
	}
	return v
}

// denomFor returns the asset type a tag's balance is denominated in.
func (v *DepositVault) denomFor(tag ShareTag) string {
	switch tag {
	case TagPremium:
		return v.BidDenom
	case TagIncentive:
		return v.IncentiveDenom
	default:
		return v.DepositDenom
	}
}

// UpdateIncentiveToken registers the third asset type accepted by the
// incentive sub-pool. Re-registering a different denom while the incentive
// balance is non-empty fails with ErrInvalidToken.
func (v *DepositVault) UpdateIncentiveToken(denom string) error {
	if denom == "" {
		return errors.Wrap(ErrInvalidToken, "empty incentive denom")
	}
	if v.IncentiveDenom == denom {
		return nil
	}
	if !v.Balances[TagIncentive].IsZero() {
		return errors.Wrapf(ErrInvalidToken, "incentive pool still holds %s", v.IncentiveDenom)
	}
	v.IncentiveDenom = denom
	v.Balances[TagIncentive] = NewBalance(denom)
	return nil
}

// SetFeeShare configures the secondary fee split routed to a keyed sink.
func (v *DepositVault) SetFeeShare(feeShareBP uint64, key string) {
	v.FeeShareBP = feeShareBP
	v.FeeShareKey = key
}

// findRecord returns the index of the record keyed by receiptID.
func (v *DepositVault) findRecord(receiptID string) (int, bool) {
	for i := range v.Records {
		if v.Records[i].ReceiptID == receiptID {
			return i, true
		}
	}
	return 0, false
}

// swapRemove removes the record at index i in O(1) by swapping in the
// last record. Later allocations see the moved record at position i.
func (v *DepositVault) swapRemove(i int) DepositShare {
	last := len(v.Records) - 1
	rec := v.Records[i]
	v.Records[i] = v.Records[last]
	v.Records = v.Records[:last]
	return rec
}

// touch refreshes the aggregate's update timestamp.
func (v *DepositVault) touch() {
	v.UpdatedAt = time.Now().Unix()
}

// CheckInvariant verifies that for every tag the balance, the reported
// share supply and the sum of record shares agree. Active/Deactivating
// balances are exempt while a lending withdrawal is outstanding.
func (v *DepositVault) CheckInvariant() error {
	for tag := ShareTag(0); tag < ShareTagCount; tag++ {
		sum := math.ZeroInt()
		for i := range v.Records {
			sum = sum.Add(v.Records[i].Shares[tag])
		}
		if !sum.Equal(v.ShareSupply[tag]) {
			return errors.Wrapf(ErrInvalidBalanceValue,
				"tag %s: record shares %s != share supply %s", tag, sum, v.ShareSupply[tag])
		}
		if v.LendingOut && (tag == TagActive || tag == TagDeactivating) {
			continue
		}
		if !v.Balances[tag].Value().Equal(v.ShareSupply[tag]) {
			return errors.Wrapf(ErrInvalidBalanceValue,
				"tag %s: balance %s != share supply %s", tag, v.Balances[tag].Value(), v.ShareSupply[tag])
		}
	}
	return nil
}

// TotalValue sums all tag balances. Fee extraction and settlement payoff
// transfers are the only operations allowed to change it.
func (v *DepositVault) TotalValue() math.Int {
	total := math.ZeroInt()
	for tag := ShareTag(0); tag < ShareTagCount; tag++ {
		total = total.Add(v.Balances[tag].Value())
	}
	return total
}
