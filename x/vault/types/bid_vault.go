package types

import (
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// BidShare is one bidder's claim on the bid ledger's pooled balance.
type BidShare struct {
	ReceiptID string   `json:"receipt_id"`
	Share     math.Int `json:"share"`
}

// BidVault is the bid ledger: bidder share records against a single
// pooled payoff balance (denominated in the deposit asset, funded at
// settlement) plus an optional incentive balance whose flows are not
// tracked per holder (only principal shares are).
type BidVault struct {
	VaultID    string `json:"vault_id"`
	RoundIndex uint64 `json:"round_index"`

	Denom          string `json:"denom"`
	IncentiveDenom string `json:"incentive_denom,omitempty"`

	Balance     Balance  `json:"balance"`
	Incentive   Balance  `json:"incentive"`
	ShareSupply math.Int `json:"share_supply"`

	Records []BidShare `json:"records"`

	Metadata  string `json:"metadata,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// NewBidVault creates an empty bid ledger paying out in denom.
func NewBidVault(vaultID, denom string, roundIndex uint64, metadata string) *BidVault {
	now := time.Now().Unix()
	return &BidVault{
		VaultID:     vaultID,
		RoundIndex:  roundIndex,
		Denom:       denom,
		Balance:     NewBalance(denom),
		Incentive:   NewBalance(""),
		ShareSupply: math.ZeroInt(),
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewBid appends a record with the given share weight for receiptID and
// grows the share supply. Fails with ZeroValue on a non-positive share.
func (b *BidVault) NewBid(receiptID string, share math.Int) error {
	if !share.IsPositive() {
		return errors.Wrapf(ErrZeroValue, "bid share %s", share)
	}
	b.Records = append(b.Records, BidShare{ReceiptID: receiptID, Share: share})
	b.ShareSupply = b.ShareSupply.Add(share)
	b.UpdatedAt = time.Now().Unix()
	return nil
}

// AddShare appends a record without touching the share supply; used when
// re-materializing already-counted shares under a fresh receipt.
func (b *BidVault) AddShare(receiptID string, share math.Int) {
	if share.IsZero() {
		return
	}
	b.Records = append(b.Records, BidShare{ReceiptID: receiptID, Share: share})
}

// ExtractShares removes the records of all presented receipts and
// returns their summed share. The share supply is NOT debited; callers
// decide whether the shares leave the pool (Exercise) or come back under
// a new identity (SplitShares). A receipt presented more than once is
// extracted only once.
func (b *BidVault) ExtractShares(receiptIDs []string) (math.Int, error) {
	total := math.ZeroInt()
	seen := make(map[string]bool, len(receiptIDs))
	for _, id := range receiptIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		found := false
		for i := range b.Records {
			if b.Records[i].ReceiptID != id {
				continue
			}
			total = total.Add(b.Records[i].Share)
			last := len(b.Records) - 1
			b.Records[i] = b.Records[last]
			b.Records = b.Records[:last]
			found = true
			break
		}
		if !found {
			return math.ZeroInt(), errors.Wrapf(ErrInvalidBidReceipt, "receipt %s has no record", id)
		}
	}
	return total, nil
}

// Exercise burns the presented receipts' records and pays out their
// proportional slice of the pooled balance (and of the incentive
// balance, when present).
//
// The payoff divisor is the share supply captured BEFORE the debit:
// payoff = floor(balance * extracted / supply_before). Debiting first
// and dividing by the post-debit supply would overpay every exerciser;
// the pre-debit divisor is part of this method's contract.
func (b *BidVault) Exercise(receiptIDs []string) (payoff, incentive Balance, extracted math.Int, err error) {
	supplyBefore := b.ShareSupply
	extracted, err = b.ExtractShares(receiptIDs)
	if err != nil {
		return Balance{}, Balance{}, math.ZeroInt(), err
	}
	if supplyBefore.IsZero() || extracted.IsZero() {
		return NewBalance(b.Denom), NewBalance(b.Incentive.Denom), extracted, nil
	}

	payoffAmt := proRataCut(extracted, b.Balance.Value(), supplyBefore)
	incentiveAmt := proRataCut(extracted, b.Incentive.Value(), supplyBefore)

	b.ShareSupply = b.ShareSupply.Sub(extracted)
	payoff, err = b.Balance.Split(payoffAmt)
	if err != nil {
		return Balance{}, Balance{}, math.ZeroInt(), err
	}
	incentive, err = b.Incentive.Split(incentiveAmt)
	if err != nil {
		return Balance{}, Balance{}, math.ZeroInt(), err
	}
	b.UpdatedAt = time.Now().Unix()
	return payoff, incentive, extracted, nil
}

// SplitShares merges the presented receipts' shares and re-emits them as
// up to two fresh records: one capped at target (or the whole amount
// when target is nil) under primaryID, and a remainder under
// remainderID. Returns the primary and remainder share amounts; a zero
// remainder emits no second record.
func (b *BidVault) SplitShares(receiptIDs []string, target *math.Int, primaryID, remainderID string) (math.Int, math.Int, error) {
	merged, err := b.ExtractShares(receiptIDs)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	primary := merged
	if target != nil {
		if target.IsNegative() {
			return math.ZeroInt(), math.ZeroInt(), errors.Wrapf(ErrInvalidBalanceValue, "negative target share %s", target)
		}
		primary = minInt(*target, merged)
	}
	remainder := merged.Sub(primary)
	b.AddShare(primaryID, primary)
	b.AddShare(remainderID, remainder)
	b.UpdatedAt = time.Now().Unix()
	return primary, remainder, nil
}

// PutIncentive joins an incentive balance into the bid ledger. The first
// put fixes the incentive denom.
func (b *BidVault) PutIncentive(in *Balance) error {
	if b.Incentive.Denom == "" {
		b.Incentive.Denom = in.Denom
	}
	return b.Incentive.Join(in.TakeAll())
}

// CheckInvariant verifies the share supply equals the sum of record
// shares.
func (b *BidVault) CheckInvariant() error {
	sum := math.ZeroInt()
	for i := range b.Records {
		sum = sum.Add(b.Records[i].Share)
	}
	if !sum.Equal(b.ShareSupply) {
		return errors.Wrapf(ErrInvalidBalanceValue, "record shares %s != share supply %s", sum, b.ShareSupply)
	}
	return nil
}
