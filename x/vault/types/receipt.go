package types

import (
	"time"

	"github.com/google/uuid"
)

// DepositReceipt is the bearer handle binding a holder to a deposit
// ledger record. Its identity (receipt ID + vault ID + round index) is
// the join key into the record store; the live share amounts always stay
// in the ledger. Whoever presents the receipt owns the entitlement; the
// ledger never authenticates a user, only the receipt.
type DepositReceipt struct {
	ReceiptID  string `json:"receipt_id"`
	VaultID    string `json:"vault_id"`
	RoundIndex uint64 `json:"round_index"`
	Metadata   string `json:"metadata,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// NewDepositReceipt mints a fresh receipt for the vault's current round.
func NewDepositReceipt(v *DepositVault) DepositReceipt {
	return DepositReceipt{
		ReceiptID:  uuid.NewString(),
		VaultID:    v.VaultID,
		RoundIndex: v.RoundIndex,
		Metadata:   v.Metadata,
		CreatedAt:  time.Now().Unix(),
	}
}

// Matches reports whether the receipt was issued by this vault, in the
// current round or an earlier one. A receipt claiming a future round is
// forged.
func (r DepositReceipt) Matches(v *DepositVault) bool {
	return r.VaultID == v.VaultID && r.RoundIndex <= v.RoundIndex
}

// BidReceipt is the bearer handle binding a bidder to a bid ledger record.
type BidReceipt struct {
	ReceiptID  string `json:"receipt_id"`
	VaultID    string `json:"vault_id"`
	RoundIndex uint64 `json:"round_index"`
	Metadata   string `json:"metadata,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// NewBidReceipt mints a fresh receipt for the bid vault's current round.
func NewBidReceipt(b *BidVault) BidReceipt {
	return BidReceipt{
		ReceiptID:  uuid.NewString(),
		VaultID:    b.VaultID,
		RoundIndex: b.RoundIndex,
		Metadata:   b.Metadata,
		CreatedAt:  time.Now().Unix(),
	}
}

// Matches reports whether the receipt was issued by this bid vault, in
// the current round or an earlier one.
func (r BidReceipt) Matches(b *BidVault) bool {
	return r.VaultID == b.VaultID && r.RoundIndex <= b.RoundIndex
}
