package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/options-vault/metrics"
	"github.com/openalpha/options-vault/x/vault/types"
)

// NewBid records an auction winner's claim on the settlement payoff and
// mints the bearer receipt for it. Only the manager, acting as the
// auction's clearing agent, may grant shares.
func (k *Keeper) NewBid(ctx context.Context, manager, vaultID string, share math.Int) (*types.BidReceipt, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return nil, err
	}
	bid := k.GetBidVault(sdkCtx, vaultID)
	if bid == nil {
		return nil, types.ErrVaultNotFound
	}
	receipt := types.NewBidReceipt(bid)
	if err := bid.NewBid(receipt.ReceiptID, share); err != nil {
		return nil, err
	}
	k.SetBidReceipt(sdkCtx, receipt)
	k.SetBidVault(sdkCtx, bid)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_new_bid",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("share", share.String()),
			sdk.NewAttribute("receipt_id", receipt.ReceiptID),
		),
	)
	metrics.GetCollector().RecordBid(vaultID)
	return &receipt, nil
}

// Exercise burns the presented bid receipts and pays the bidder their
// proportional slice of the settled payoff pool (plus any incentive).
func (k *Keeper) Exercise(ctx context.Context, bidder, vaultID string, receiptIDs []string) (math.Int, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	bid := k.GetBidVault(sdkCtx, vaultID)
	if bid == nil {
		return math.ZeroInt(), math.ZeroInt(), types.ErrVaultNotFound
	}
	if err := k.validateBidReceipts(sdkCtx, bid, receiptIDs); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	payoff, incentive, extracted, err := bid.Exercise(receiptIDs)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	payoffAmt := payoff.Value()
	incentiveAmt := incentive.Value()
	if err := k.payOut(ctx, bidder, payoff); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if err := k.payOut(ctx, bidder, incentive); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	for _, id := range receiptIDs {
		k.BurnBidReceipt(sdkCtx, id)
	}
	k.SetBidVault(sdkCtx, bid)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_exercise",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("bidder", bidder),
			sdk.NewAttribute("shares", extracted.String()),
			sdk.NewAttribute("payoff", payoffAmt.String()),
		),
	)

	k.logger.Info("Bid exercised",
		"vault_id", vaultID,
		"bidder", bidder,
		"shares", extracted.String(),
		"payoff", payoffAmt.String(),
	)
	metrics.GetCollector().RecordExercise(vaultID, bid.Denom, metricValue(payoffAmt))
	return payoffAmt, incentiveAmt, nil
}

// SplitBidReceipt merges the presented receipts' shares and re-emits
// them as a primary receipt capped at target plus a remainder receipt.
// The remainder receipt is nil when nothing is left over.
func (k *Keeper) SplitBidReceipt(ctx context.Context, vaultID string, receiptIDs []string, target *math.Int) (*types.BidReceipt, *types.BidReceipt, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	bid := k.GetBidVault(sdkCtx, vaultID)
	if bid == nil {
		return nil, nil, types.ErrVaultNotFound
	}
	if err := k.validateBidReceipts(sdkCtx, bid, receiptIDs); err != nil {
		return nil, nil, err
	}
	primary := types.NewBidReceipt(bid)
	remainder := types.NewBidReceipt(bid)
	primaryShare, remainderShare, err := bid.SplitShares(receiptIDs, target, primary.ReceiptID, remainder.ReceiptID)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range receiptIDs {
		k.BurnBidReceipt(sdkCtx, id)
	}
	k.SetBidReceipt(sdkCtx, primary)
	var remainderOut *types.BidReceipt
	if !remainderShare.IsZero() {
		k.SetBidReceipt(sdkCtx, remainder)
		remainderOut = &remainder
	}
	k.SetBidVault(sdkCtx, bid)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_split_bid",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("primary", primaryShare.String()),
			sdk.NewAttribute("remainder", remainderShare.String()),
		),
	)
	return &primary, remainderOut, nil
}

// PutBidIncentive joins an incentive payment into the bid ledger's
// incentive balance, paid in by the manager.
func (k *Keeper) PutBidIncentive(ctx context.Context, manager, vaultID, denom string, amount math.Int) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	bid := k.GetBidVault(sdkCtx, vaultID)
	if bid == nil {
		return types.ErrVaultNotFound
	}
	in, err := k.payIn(ctx, manager, denom, amount)
	if err != nil {
		return err
	}
	if err := bid.PutIncentive(&in); err != nil {
		return err
	}
	k.SetBidVault(sdkCtx, bid)
	return nil
}
