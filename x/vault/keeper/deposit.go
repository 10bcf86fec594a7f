package keeper

import (
	"context"
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/options-vault/metrics"
	"github.com/openalpha/options-vault/x/vault/types"
)

// CreateVault provisions a deposit ledger and its paired bid ledger.
func (k *Keeper) CreateVault(ctx context.Context, manager, vaultID, depositDenom, bidDenom string, feeBP uint64, metadata string) (*types.DepositVault, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return nil, err
	}
	if feeBP > types.FeeDenominator {
		return nil, types.ErrInvalidBalanceValue.Wrapf("fee %d bp exceeds %d", feeBP, types.FeeDenominator)
	}
	if k.GetDepositVault(sdkCtx, vaultID) != nil {
		return nil, types.ErrVaultExists
	}

	vault := types.NewDepositVault(vaultID, depositDenom, bidDenom, feeBP, metadata)
	bid := types.NewBidVault(vaultID, depositDenom, vault.RoundIndex, metadata)
	k.SetDepositVault(sdkCtx, vault)
	k.SetBidVault(sdkCtx, bid)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_created",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("deposit_denom", depositDenom),
			sdk.NewAttribute("bid_denom", bidDenom),
		),
	)

	k.logger.Info("Vault created",
		"vault_id", vaultID,
		"deposit_denom", depositDenom,
		"bid_denom", bidDenom,
		"fee_bp", feeBP,
	)
	return vault, nil
}

// mergeUnderFreshReceipt folds the presented receipts' records into one,
// re-keys it under a newly minted receipt and burns the old ones.
// With no receipts presented it appends a fresh zero record instead.
func (k *Keeper) mergeUnderFreshReceipt(ctx sdk.Context, vault *types.DepositVault, receiptIDs []string) (int, types.DepositReceipt, error) {
	receipt := types.NewDepositReceipt(vault)
	if len(receiptIDs) == 0 {
		return vault.EnsureRecord(receipt.ReceiptID), receipt, nil
	}
	if err := k.validateDepositReceipts(ctx, vault, receiptIDs); err != nil {
		return 0, types.DepositReceipt{}, err
	}
	idx, err := vault.MergeRecords(receiptIDs)
	if err != nil {
		return 0, types.DepositReceipt{}, err
	}
	vault.RekeyRecord(idx, receipt.ReceiptID)
	for _, id := range receiptIDs {
		k.BurnDepositReceipt(ctx, id)
	}
	return idx, receipt, nil
}

// finishRecord closes out a record after a withdrawal: an emptied record
// is dropped and no receipt survives; otherwise the fresh receipt is
// persisted and handed back.
func (k *Keeper) finishRecord(ctx sdk.Context, vault *types.DepositVault, idx int, receipt types.DepositReceipt) *types.DepositReceipt {
	if vault.RemoveIfEmpty(idx) {
		return nil
	}
	k.SetDepositReceipt(ctx, receipt)
	return &receipt
}

// Deposit contributes amount of the deposit asset into the vault's
// warmup sub-pool, folding any presented receipts into the fresh one.
func (k *Keeper) Deposit(ctx context.Context, depositor, vaultID string, amount math.Int, receiptIDs []string) (*types.DepositReceipt, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, math.ZeroInt(), types.ErrVaultNotFound
	}

	addr, err := sdk.AccAddressFromBech32(depositor)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	coins := sdk.NewCoins(sdk.NewCoin(vault.DepositDenom, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, addr, types.ModuleName, coins); err != nil {
		return nil, math.ZeroInt(), err
	}

	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	in := types.NewBalanceFromAmount(vault.DepositDenom, amount)
	if err := vault.DepositToWarmup(idx, &in); err != nil {
		return nil, math.ZeroInt(), err
	}
	warmup := vault.Records[idx].Shares[types.TagWarmup]

	k.SetDepositReceipt(sdkCtx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_deposit",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("depositor", depositor),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("receipt_id", receipt.ReceiptID),
		),
	)

	k.logger.Info("Deposit processed",
		"vault_id", vaultID,
		"depositor", depositor,
		"amount", amount.String(),
	)
	metrics.GetCollector().RecordDeposit(vaultID, vault.DepositDenom, metricValue(amount))
	return &receipt, warmup, nil
}

// Unsubscribe moves amount (or the whole active share when amount is
// nil) from Active to Deactivating under a fresh receipt.
func (k *Keeper) Unsubscribe(ctx context.Context, holder, vaultID string, receiptIDs []string, amount *math.Int) (*types.DepositReceipt, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, math.ZeroInt(), types.ErrVaultNotFound
	}
	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	moved, err := vault.Unsubscribe(idx, amount)
	if err != nil {
		return nil, math.ZeroInt(), err
	}

	k.SetDepositReceipt(sdkCtx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_unsubscribe",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("moved", moved.String()),
			sdk.NewAttribute("receipt_id", receipt.ReceiptID),
		),
	)
	return &receipt, moved, nil
}

// Claim withdraws the presented records' inactive funds to the holder.
// The returned receipt is nil when the merged record was fully drained.
func (k *Keeper) Claim(ctx context.Context, holder, vaultID string, receiptIDs []string) (*types.DepositReceipt, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, math.ZeroInt(), types.ErrVaultNotFound
	}
	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	out, err := vault.ClaimInactive(idx)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	claimed := out.Value()
	if err := k.payOut(ctx, holder, out); err != nil {
		return nil, math.ZeroInt(), err
	}

	survived := k.finishRecord(sdkCtx, vault, idx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_claim",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("claimed", claimed.String()),
		),
	)

	k.logger.Info("Claim processed",
		"vault_id", vaultID,
		"holder", holder,
		"claimed", claimed.String(),
	)
	metrics.GetCollector().RecordWithdrawal(vaultID, "claim", vault.DepositDenom, metricValue(claimed))
	return survived, claimed, nil
}

// Harvest withdraws the presented records' premium to the holder, net of
// the vault fee.
func (k *Keeper) Harvest(ctx context.Context, holder, vaultID string, receiptIDs []string) (*types.DepositReceipt, math.Int, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, math.ZeroInt(), math.ZeroInt(), types.ErrVaultNotFound
	}
	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, math.ZeroInt(), math.ZeroInt(), err
	}
	net, fee, feeShare, err := vault.HarvestPremium(idx)
	if err != nil {
		return nil, math.ZeroInt(), math.ZeroInt(), err
	}
	harvested := net.Value()
	feeTotal := fee.Value().Add(feeShare.Value())
	if err := k.routeFees(sdkCtx, vault, fee, feeShare); err != nil {
		return nil, math.ZeroInt(), math.ZeroInt(), err
	}
	if err := k.payOut(ctx, holder, net); err != nil {
		return nil, math.ZeroInt(), math.ZeroInt(), err
	}

	survived := k.finishRecord(sdkCtx, vault, idx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_harvest",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("harvested", harvested.String()),
			sdk.NewAttribute("fee", feeTotal.String()),
		),
	)
	mc := metrics.GetCollector()
	mc.RecordWithdrawal(vaultID, "harvest", vault.BidDenom, metricValue(harvested))
	mc.RecordFees(vaultID, vault.BidDenom, metricValue(feeTotal))
	return survived, harvested, feeTotal, nil
}

// RedeemIncentive withdraws the presented records' incentive share to
// the holder, net of the vault fee.
func (k *Keeper) RedeemIncentive(ctx context.Context, holder, vaultID string, receiptIDs []string) (*types.DepositReceipt, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, math.ZeroInt(), types.ErrVaultNotFound
	}
	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	net, fee, feeShare, err := vault.RedeemIncentive(idx)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	redeemed := net.Value()
	if err := k.routeFees(sdkCtx, vault, fee, feeShare); err != nil {
		return nil, math.ZeroInt(), err
	}
	if err := k.payOut(ctx, holder, net); err != nil {
		return nil, math.ZeroInt(), err
	}

	survived := k.finishRecord(sdkCtx, vault, idx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_redeem_incentive",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("redeemed", redeemed.String()),
		),
	)
	return survived, redeemed, nil
}

// ReduceWarmup pulls amount back out of the holder's warmup share before
// it activates.
func (k *Keeper) ReduceWarmup(ctx context.Context, holder, vaultID string, receiptIDs []string, amount math.Int) (*types.DepositReceipt, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, types.ErrVaultNotFound
	}
	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, err
	}
	out, err := vault.ReduceWarmup(idx, amount)
	if err != nil {
		return nil, err
	}
	if err := k.payOut(ctx, holder, out); err != nil {
		return nil, err
	}

	survived := k.finishRecord(sdkCtx, vault, idx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_reduce_warmup",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return survived, nil
}

// Compound folds the presented records' inactive funds (and premium,
// when the bid asset equals the deposit asset) back into warmup for the
// next round. The premium leg is charged the vault fee.
func (k *Keeper) Compound(ctx context.Context, holder, vaultID string, receiptIDs []string) (*types.DepositReceipt, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, math.ZeroInt(), types.ErrVaultNotFound
	}
	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	total, err := vault.CompoundInactive(idx)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	if vault.BidDenom == vault.DepositDenom {
		compounded, fee, feeShare, err := vault.CompoundPremium(idx)
		if err != nil {
			return nil, math.ZeroInt(), err
		}
		if err := k.routeFees(sdkCtx, vault, fee, feeShare); err != nil {
			return nil, math.ZeroInt(), err
		}
		total = total.Add(compounded)
	}

	k.SetDepositReceipt(sdkCtx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_compound",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("compounded", total.String()),
		),
	)
	return &receipt, total, nil
}

// metricValue downscales a ledger amount for prometheus gauges. Amounts
// past float64 precision only matter for monitoring, not accounting.
func metricValue(amount math.Int) float64 {
	f, _ := new(big.Float).SetInt(amount.BigInt()).Float64()
	return f
}

// payOut sends a ledger balance to a bech32 account. Zero balances are
// destroyed without a bank transfer.
func (k *Keeper) payOut(ctx context.Context, to string, bal types.Balance) error {
	if bal.IsZero() {
		return bal.Destroy()
	}
	addr, err := sdk.AccAddressFromBech32(to)
	if err != nil {
		return err
	}
	out := bal.TakeAll()
	coins := sdk.NewCoins(sdk.NewCoin(out.Denom, out.Value()))
	return k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, addr, coins)
}
