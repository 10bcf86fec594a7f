package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/options-vault/metrics"
	"github.com/openalpha/options-vault/x/vault/types"
)

// WithdrawForLending hands the vault's Active and Deactivating funds to
// the manager for deployment into an external money market. Shares stay
// behind; the invariant suspension ends at DepositFromLending.
func (k *Keeper) WithdrawForLending(ctx context.Context, manager, vaultID string) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return math.ZeroInt(), err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return math.ZeroInt(), types.ErrVaultNotFound
	}
	out, err := vault.WithdrawForLending()
	if err != nil {
		return math.ZeroInt(), err
	}
	withdrawn := out.Value()
	if err := k.payOut(ctx, manager, out); err != nil {
		return math.ZeroInt(), err
	}
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_lending_withdraw",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("withdrawn", withdrawn.String()),
		),
	)

	k.logger.Info("Lending withdrawal",
		"vault_id", vaultID,
		"withdrawn", withdrawn.String(),
	)
	metrics.GetCollector().RecordLending(vaultID, true, 0)
	return withdrawn, nil
}

// DepositFromLending returns money-market principal into the vault,
// restoring the suspended balance invariant, together with the money
// market's reward leg. Rounding shortfalls up to the tolerance are
// covered from the global fee fund. With distribute set, the reward and
// any principal surplus roll into the ledger routed by asset type;
// otherwise both are credited to the global fee fund.
func (k *Keeper) DepositFromLending(ctx context.Context, manager, vaultID string, principal math.Int, rewardDenom string, reward math.Int, distribute bool) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return types.ErrVaultNotFound
	}
	in, err := k.payIn(ctx, manager, vault.DepositDenom, principal)
	if err != nil {
		return err
	}

	fund := k.GetFeeFund(sdkCtx, GlobalFeeFundID)
	tolerance := math.NewInt(types.LendingShortfallTolerance)
	reserve := types.NewBalance(vault.DepositDenom)
	if available := fund.Total(vault.DepositDenom); available.IsPositive() {
		take := tolerance
		if available.LT(take) {
			take = available
		}
		cover, err := fund.Debit(vault.DepositDenom, take)
		if err != nil {
			return err
		}
		reserve = cover
	}

	reserved := reserve.Value()
	surplus, err := vault.DepositFromLending(&in, &reserve)
	if err != nil {
		return err
	}
	covered := reserved.Sub(reserve.Value())
	// unspent reserve goes back where it came from
	if err := fund.Credit(reserve.TakeAll()); err != nil {
		return err
	}

	surplusAmt := surplus.Value()
	if distribute && !surplus.IsZero() {
		if err := vault.RewardFromLending(&surplus); err != nil {
			return err
		}
	} else if err := fund.Credit(surplus.TakeAll()); err != nil {
		return err
	}

	if reward.IsPositive() {
		rewardBal, err := k.payIn(ctx, manager, rewardDenom, reward)
		if err != nil {
			return err
		}
		if distribute {
			if err := vault.RewardFromLending(&rewardBal); err != nil {
				return err
			}
		} else if err := fund.Credit(rewardBal.TakeAll()); err != nil {
			return err
		}
	}

	k.SetFeeFund(sdkCtx, fund)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_lending_deposit",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("principal", principal.String()),
			sdk.NewAttribute("surplus", surplusAmt.String()),
			sdk.NewAttribute("reward", reward.String()),
			sdk.NewAttribute("distributed", strconv.FormatBool(distribute)),
		),
	)

	k.logger.Info("Lending principal restored",
		"vault_id", vaultID,
		"principal", principal.String(),
		"surplus", surplusAmt.String(),
		"reward", reward.String(),
	)
	metrics.GetCollector().RecordLending(vaultID, false, metricValue(covered))
	return nil
}

// RewardFromLending distributes money-market proceeds across the
// ledger, routed by asset type.
func (k *Keeper) RewardFromLending(ctx context.Context, manager, vaultID, denom string, amount math.Int) error {
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
	if err := vault.RewardFromLending(&in); err != nil {
		return err
	}
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_lending_reward",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return nil
}
