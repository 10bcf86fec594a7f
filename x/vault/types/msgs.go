package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgCreateVault = "create_vault"
	TypeMsgDeposit     = "deposit"
	TypeMsgUnsubscribe = "unsubscribe"
	TypeMsgClaim       = "claim"
	TypeMsgHarvest     = "harvest"
	TypeMsgActivate    = "activate"
	TypeMsgSettle      = "settle"
	TypeMsgNewBid      = "new_bid"
	TypeMsgExercise    = "exercise"
)

// MsgCreateVault creates a new deposit ledger with its paired bid ledger.
type MsgCreateVault struct {
	Manager      string `json:"manager"`
	VaultID      string `json:"vault_id"`
	DepositDenom string `json:"deposit_denom"`
	BidDenom     string `json:"bid_denom"`
	FeeBP        uint64 `json:"fee_bp"`
	Metadata     string `json:"metadata,omitempty"`
}

// Route implements sdk.Msg
func (msg MsgCreateVault) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgCreateVault) Type() string { return TypeMsgCreateVault }

// ValidateBasic implements sdk.Msg
func (msg MsgCreateVault) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.VaultID == "" {
		return ErrVaultNotFound
	}
	if msg.DepositDenom == "" || msg.BidDenom == "" {
		return ErrInvalidToken
	}
	if msg.FeeBP > FeeDenominator {
		return ErrInvalidBalanceValue
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgCreateVault) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgCreateVault) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgCreateVault) Reset() { *msg = MsgCreateVault{} }

// String implements proto.Message
func (msg MsgCreateVault) String() string {
	return fmt.Sprintf("MsgCreateVault{VaultID: %s, Deposit: %s, Bid: %s}", msg.VaultID, msg.DepositDenom, msg.BidDenom)
}

// MsgCreateVaultResponse is the CreateVault response.
type MsgCreateVaultResponse struct {
	VaultID string `json:"vault_id"`
}

// MsgDeposit contributes funds into a vault's warmup sub-pool. Any
// presented receipts are merged into the resulting one.
type MsgDeposit struct {
	Depositor  string   `json:"depositor"`
	VaultID    string   `json:"vault_id"`
	Amount     string   `json:"amount"`
	ReceiptIDs []string `json:"receipt_ids,omitempty"`
}

// Route implements sdk.Msg
func (msg MsgDeposit) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgDeposit) Type() string { return TypeMsgDeposit }

// ValidateBasic implements sdk.Msg
func (msg MsgDeposit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Depositor); err != nil {
		return err
	}
	if msg.VaultID == "" {
		return ErrVaultNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgDeposit) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Depositor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgDeposit) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgDeposit) Reset() { *msg = MsgDeposit{} }

// String implements proto.Message
func (msg MsgDeposit) String() string {
	return fmt.Sprintf("MsgDeposit{VaultID: %s, Amount: %s}", msg.VaultID, msg.Amount)
}

// MsgDepositResponse is the Deposit response.
type MsgDepositResponse struct {
	ReceiptID    string `json:"receipt_id"`
	WarmupShares string `json:"warmup_shares"`
}

// MsgUnsubscribe moves shares from Active to Deactivating.
type MsgUnsubscribe struct {
	Holder     string   `json:"holder"`
	VaultID    string   `json:"vault_id"`
	ReceiptIDs []string `json:"receipt_ids"`
	Amount     string   `json:"amount,omitempty"` // empty = all
}

// Route implements sdk.Msg
func (msg MsgUnsubscribe) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgUnsubscribe) Type() string { return TypeMsgUnsubscribe }

// ValidateBasic implements sdk.Msg
func (msg MsgUnsubscribe) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Holder); err != nil {
		return err
	}
	if len(msg.ReceiptIDs) == 0 {
		return ErrInvalidDepositReceipt
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgUnsubscribe) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Holder)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgUnsubscribe) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgUnsubscribe) Reset() { *msg = MsgUnsubscribe{} }

// String implements proto.Message
func (msg MsgUnsubscribe) String() string {
	return fmt.Sprintf("MsgUnsubscribe{VaultID: %s, Receipts: %d}", msg.VaultID, len(msg.ReceiptIDs))
}

// MsgUnsubscribeResponse is the Unsubscribe response.
type MsgUnsubscribeResponse struct {
	ReceiptID string `json:"receipt_id"`
	Moved     string `json:"moved"`
}

// MsgClaim withdraws a holder's inactive funds.
type MsgClaim struct {
	Holder     string   `json:"holder"`
	VaultID    string   `json:"vault_id"`
	ReceiptIDs []string `json:"receipt_ids"`
}

// Route implements sdk.Msg
func (msg MsgClaim) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgClaim) Type() string { return TypeMsgClaim }

// ValidateBasic implements sdk.Msg
func (msg MsgClaim) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Holder); err != nil {
		return err
	}
	if len(msg.ReceiptIDs) == 0 {
		return ErrInvalidDepositReceipt
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgClaim) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Holder)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgClaim) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgClaim) Reset() { *msg = MsgClaim{} }

// String implements proto.Message
func (msg MsgClaim) String() string {
	return fmt.Sprintf("MsgClaim{VaultID: %s, Receipts: %d}", msg.VaultID, len(msg.ReceiptIDs))
}

// MsgClaimResponse is the Claim response.
type MsgClaimResponse struct {
	ReceiptID string `json:"receipt_id,omitempty"`
	Claimed   string `json:"claimed"`
}

// MsgHarvest withdraws a holder's premium, net of fees.
type MsgHarvest struct {
	Holder     string   `json:"holder"`
	VaultID    string   `json:"vault_id"`
	ReceiptIDs []string `json:"receipt_ids"`
}

// Route implements sdk.Msg
func (msg MsgHarvest) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgHarvest) Type() string { return TypeMsgHarvest }

// ValidateBasic implements sdk.Msg
func (msg MsgHarvest) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Holder); err != nil {
		return err
	}
	if len(msg.ReceiptIDs) == 0 {
		return ErrInvalidDepositReceipt
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgHarvest) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Holder)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgHarvest) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgHarvest) Reset() { *msg = MsgHarvest{} }

// String implements proto.Message
func (msg MsgHarvest) String() string {
	return fmt.Sprintf("MsgHarvest{VaultID: %s, Receipts: %d}", msg.VaultID, len(msg.ReceiptIDs))
}

// MsgHarvestResponse is the Harvest response.
type MsgHarvestResponse struct {
	ReceiptID string `json:"receipt_id,omitempty"`
	Harvested string `json:"harvested"`
	Fee       string `json:"fee"`
}

// MsgActivate is the manager operation starting a round: the whole
// warmup pool becomes active.
type MsgActivate struct {
	Manager string `json:"manager"`
	VaultID string `json:"vault_id"`
	Denom   string `json:"denom"`
	HasNext bool   `json:"has_next"`
}

// Route implements sdk.Msg
func (msg MsgActivate) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgActivate) Type() string { return TypeMsgActivate }

// ValidateBasic implements sdk.Msg
func (msg MsgActivate) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.VaultID == "" {
		return ErrVaultNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgActivate) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgActivate) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgActivate) Reset() { *msg = MsgActivate{} }

// String implements proto.Message
func (msg MsgActivate) String() string {
	return fmt.Sprintf("MsgActivate{VaultID: %s, HasNext: %t}", msg.VaultID, msg.HasNext)
}

// MsgActivateResponse is the Activate response.
type MsgActivateResponse struct {
	Activated  string `json:"activated"`
	RoundIndex uint64 `json:"round_index"`
}

// MsgSettle is the manager operation applying the strategy's realized
// share price against the paired bid ledger.
type MsgSettle struct {
	Manager    string `json:"manager"`
	VaultID    string `json:"vault_id"`
	SharePrice string `json:"share_price"`
	Decimals   uint64 `json:"decimals"`
}

// Route implements sdk.Msg
func (msg MsgSettle) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSettle) Type() string { return TypeMsgSettle }

// ValidateBasic implements sdk.Msg
func (msg MsgSettle) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.VaultID == "" {
		return ErrVaultNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSettle) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSettle) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSettle) Reset() { *msg = MsgSettle{} }

// String implements proto.Message
func (msg MsgSettle) String() string {
	return fmt.Sprintf("MsgSettle{VaultID: %s, SharePrice: %s, Decimals: %d}", msg.VaultID, msg.SharePrice, msg.Decimals)
}

// MsgSettleResponse is the Settle response.
type MsgSettleResponse struct {
	Payoff string `json:"payoff"`
}

// MsgNewBid records an auction winner's claim on the settlement payoff.
type MsgNewBid struct {
	Bidder  string `json:"bidder"`
	VaultID string `json:"vault_id"`
	Share   string `json:"share"`
}

// Route implements sdk.Msg
func (msg MsgNewBid) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgNewBid) Type() string { return TypeMsgNewBid }

// ValidateBasic implements sdk.Msg
func (msg MsgNewBid) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Bidder); err != nil {
		return err
	}
	if msg.VaultID == "" {
		return ErrVaultNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgNewBid) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Bidder)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgNewBid) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgNewBid) Reset() { *msg = MsgNewBid{} }

// String implements proto.Message
func (msg MsgNewBid) String() string {
	return fmt.Sprintf("MsgNewBid{VaultID: %s, Share: %s}", msg.VaultID, msg.Share)
}

// MsgNewBidResponse is the NewBid response.
type MsgNewBidResponse struct {
	ReceiptID string `json:"receipt_id"`
}

// MsgExercise converts bid receipts into their slice of the settled
// payoff pool.
type MsgExercise struct {
	Bidder     string   `json:"bidder"`
	VaultID    string   `json:"vault_id"`
	ReceiptIDs []string `json:"receipt_ids"`
}

// Route implements sdk.Msg
func (msg MsgExercise) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgExercise) Type() string { return TypeMsgExercise }

// ValidateBasic implements sdk.Msg
func (msg MsgExercise) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Bidder); err != nil {
		return err
	}
	if len(msg.ReceiptIDs) == 0 {
		return ErrInvalidBidReceipt
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgExercise) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Bidder)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgExercise) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgExercise) Reset() { *msg = MsgExercise{} }

// String implements proto.Message
func (msg MsgExercise) String() string {
	return fmt.Sprintf("MsgExercise{VaultID: %s, Receipts: %d}", msg.VaultID, len(msg.ReceiptIDs))
}

// MsgExerciseResponse is the Exercise response.
type MsgExerciseResponse struct {
	Payoff    string `json:"payoff"`
	Incentive string `json:"incentive"`
}
