package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/options-vault/metrics"
	"github.com/openalpha/options-vault/x/vault/types"
)

// Activate starts a round: the whole warmup pool becomes active and the
// paired bid ledger rolls forward to the new round index.
func (k *Keeper) Activate(ctx context.Context, manager, vaultID, denom string, hasNext bool) (math.Int, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return math.ZeroInt(), 0, err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return math.ZeroInt(), 0, types.ErrVaultNotFound
	}
	moved, err := vault.Activate(denom, hasNext)
	if err != nil {
		return math.ZeroInt(), 0, err
	}
	bid := k.GetBidVault(sdkCtx, vaultID)
	if bid != nil && bid.RoundIndex < vault.RoundIndex {
		bid.RoundIndex = vault.RoundIndex
		k.SetBidVault(sdkCtx, bid)
	}
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_activate",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("activated", moved.String()),
			sdk.NewAttribute("round_index", strconv.FormatUint(vault.RoundIndex, 10)),
		),
	)

	k.logger.Info("Round activated",
		"vault_id", vaultID,
		"activated", moved.String(),
		"round_index", vault.RoundIndex,
		"has_next", hasNext,
	)
	metrics.GetCollector().RecordActivation(vaultID, vault.RoundIndex)
	return moved, vault.RoundIndex, nil
}

// Recoup refunds unused strategy collateral back across the ledger's
// records.
func (k *Keeper) Recoup(ctx context.Context, manager, vaultID string, refund math.Int) (math.Int, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return math.ZeroInt(), math.ZeroInt(), types.ErrVaultNotFound
	}
	fromActive, fromDeact, err := vault.Recoup(refund)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_recoup",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("from_active", fromActive.String()),
			sdk.NewAttribute("from_deactivating", fromDeact.String()),
		),
	)
	return fromActive, fromDeact, nil
}

// Settle applies the strategy's realized share price. When the price is
// below par the loss payoff moves into the paired bid ledger for
// exercising bidders.
func (k *Keeper) Settle(ctx context.Context, manager, vaultID string, sharePrice math.Int, decimals uint64) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return math.ZeroInt(), err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return math.ZeroInt(), types.ErrVaultNotFound
	}
	bid := k.GetBidVault(sdkCtx, vaultID)
	if bid == nil {
		return math.ZeroInt(), types.ErrVaultNotFound
	}
	payoff, err := vault.Settle(bid, sharePrice, decimals)
	if err != nil {
		return math.ZeroInt(), err
	}
	k.SetDepositVault(sdkCtx, vault)
	k.SetBidVault(sdkCtx, bid)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_settle",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("share_price", sharePrice.String()),
			sdk.NewAttribute("payoff", payoff.String()),
		),
	)

	k.logger.Info("Round settled",
		"vault_id", vaultID,
		"share_price", sharePrice.String(),
		"payoff", payoff.String(),
	)
	metrics.GetCollector().RecordSettlement(vaultID, metricValue(payoff))
	return payoff, nil
}

// Delivery injects an auction premium, paid in by the manager in the bid
// asset, pro-rata across active and deactivating holders.
func (k *Keeper) Delivery(ctx context.Context, manager, vaultID string, premium math.Int) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return types.ErrVaultNotFound
	}
	in, err := k.payIn(ctx, manager, vault.BidDenom, premium)
	if err != nil {
		return err
	}
	if err := vault.Delivery(&in); err != nil {
		return err
	}
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_delivery",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("premium", premium.String()),
		),
	)
	return nil
}

// DeliverIncentive injects an incentive payment, routed by its asset
// type into warmup, premium or the incentive sub-pool.
func (k *Keeper) DeliverIncentive(ctx context.Context, manager, vaultID, denom string, amount math.Int) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return types.ErrVaultNotFound
	}
	in, err := k.payIn(ctx, manager, denom, amount)
	if err != nil {
		return err
	}
	if err := vault.DeliverIncentive(&in); err != nil {
		return err
	}
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_deliver_incentive",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return nil
}

// UpdateIncentiveToken registers the vault's incentive asset type.
func (k *Keeper) UpdateIncentiveToken(ctx context.Context, manager, vaultID, denom string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return types.ErrVaultNotFound
	}
	if err := vault.UpdateIncentiveToken(denom); err != nil {
		return err
	}
	k.SetDepositVault(sdkCtx, vault)
	return nil
}

// SetFeeShare configures the vault's secondary fee split.
func (k *Keeper) SetFeeShare(ctx context.Context, manager, vaultID string, feeShareBP uint64, key string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	if feeShareBP > types.FeeDenominator {
		return types.ErrInvalidBalanceValue.Wrapf("fee share %d bp exceeds %d", feeShareBP, types.FeeDenominator)
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return types.ErrVaultNotFound
	}
	vault.SetFeeShare(feeShareBP, key)
	k.SetDepositVault(sdkCtx, vault)
	return nil
}

// Terminate retires the vault: everything foldable folds into Inactive
// and deposits close for good.
func (k *Keeper) Terminate(ctx context.Context, manager, vaultID string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return types.ErrVaultNotFound
	}
	if err := vault.Terminate(); err != nil {
		return err
	}
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_terminated",
			sdk.NewAttribute("vault_id", vaultID),
		),
	)

	k.logger.Info("Vault terminated", "vault_id", vaultID)
	return nil
}

// AdjustUserShareRatio reconciles rounding drift on one sub-pool,
// rescaling record shares to the tag's balance.
func (k *Keeper) AdjustUserShareRatio(ctx context.Context, manager, vaultID string, tag types.ShareTag) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return types.ErrVaultNotFound
	}
	if err := vault.AdjustUserShareRatio(tag); err != nil {
		return err
	}
	k.SetDepositVault(sdkCtx, vault)
	return nil
}

// payIn pulls amount of denom from a bech32 account into the module and
// returns it as a ledger balance.
func (k *Keeper) payIn(ctx context.Context, from, denom string, amount math.Int) (types.Balance, error) {
	addr, err := sdk.AccAddressFromBech32(from)
	if err != nil {
		return types.Balance{}, err
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, addr, types.ModuleName, coins); err != nil {
		return types.Balance{}, err
	}
	return types.NewBalanceFromAmount(denom, amount), nil
}
