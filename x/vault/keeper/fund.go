package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/options-vault/metrics"
	"github.com/openalpha/options-vault/x/vault/types"
)

// FundStep is one leg of a RaiseFund or ReduceFund composition. Fee is
// the total charge taken from the leg, zero for fee-free tags.
type FundStep struct {
	Tag    types.ShareTag `json:"tag"`
	Amount math.Int       `json:"amount"`
	Fee    math.Int       `json:"fee"`
}

// ReduceFundRequest selects the legs ReduceFund extracts. A nil
// WarmupAmount leaves warmup untouched; the boolean legs drain their
// tag completely.
type ReduceFundRequest struct {
	WarmupAmount *math.Int
	Inactive     bool
	Premium      bool
	Incentive    bool
}

// ReduceFundResult carries the typed balances ReduceFund extracted, one
// per asset, plus the per-leg log. Legs that were not selected or held
// nothing leave their balance zero.
type ReduceFundResult struct {
	Deposit   types.Balance
	Premium   types.Balance
	Incentive types.Balance
	Steps     []FundStep
}

// RaiseFund tops up the presented position with a fresh deposit and,
// when compound is set, folds its inactive (and same-asset premium)
// funds into warmup alongside it. The premium leg is charged the vault
// fee. Fails with ErrDepositDisabled when the vault has no next round.
func (k *Keeper) RaiseFund(ctx context.Context, depositor, vaultID string, amount math.Int, compound bool, receiptIDs []string) (*types.DepositReceipt, []FundStep, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, nil, types.ErrVaultNotFound
	}
	if !vault.HasNext {
		return nil, nil, types.ErrDepositDisabled
	}

	if amount.IsPositive() {
		addr, err := sdk.AccAddressFromBech32(depositor)
		if err != nil {
			return nil, nil, err
		}
		coins := sdk.NewCoins(sdk.NewCoin(vault.DepositDenom, amount))
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, addr, types.ModuleName, coins); err != nil {
			return nil, nil, err
		}
	}

	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, nil, err
	}

	var steps []FundStep
	if amount.IsPositive() {
		in := types.NewBalanceFromAmount(vault.DepositDenom, amount)
		if err := vault.DepositToWarmup(idx, &in); err != nil {
			return nil, nil, err
		}
		steps = append(steps, FundStep{Tag: types.TagWarmup, Amount: amount, Fee: math.ZeroInt()})
	}
	if compound {
		folded, err := vault.CompoundInactive(idx)
		if err != nil {
			return nil, nil, err
		}
		if folded.IsPositive() {
			steps = append(steps, FundStep{Tag: types.TagInactive, Amount: folded, Fee: math.ZeroInt()})
		}
		if vault.BidDenom == vault.DepositDenom {
			compounded, fee, feeShare, err := vault.CompoundPremium(idx)
			if err != nil {
				return nil, nil, err
			}
			charged := fee.Value().Add(feeShare.Value())
			if err := k.routeFees(sdkCtx, vault, fee, feeShare); err != nil {
				return nil, nil, err
			}
			if compounded.IsPositive() || charged.IsPositive() {
				steps = append(steps, FundStep{Tag: types.TagPremium, Amount: compounded, Fee: charged})
			}
		}
	}

	survived := k.finishRecord(sdkCtx, vault, idx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_raise_fund",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("depositor", depositor),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	k.logger.Info("RaiseFund processed",
		"vault_id", vaultID,
		"depositor", depositor,
		"amount", amount.String(),
		"legs", len(steps),
	)
	if amount.IsPositive() {
		metrics.GetCollector().RecordDeposit(vaultID, vault.DepositDenom, metricValue(amount))
	}
	return survived, steps, nil
}

// ReduceFund extracts the selected legs of the presented position in a
// single pass. Premium and incentive legs are charged the vault fee;
// the per-leg amounts and charges come back in the result's Steps.
func (k *Keeper) ReduceFund(ctx context.Context, holder, vaultID string, receiptIDs []string, req ReduceFundRequest) (*types.DepositReceipt, *ReduceFundResult, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	vault := k.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, nil, types.ErrVaultNotFound
	}
	idx, receipt, err := k.mergeUnderFreshReceipt(sdkCtx, vault, receiptIDs)
	if err != nil {
		return nil, nil, err
	}

	res := &ReduceFundResult{
		Deposit:   types.NewBalance(vault.DepositDenom),
		Premium:   types.NewBalance(vault.BidDenom),
		Incentive: types.NewBalance(vault.IncentiveDenom),
	}
	if req.WarmupAmount != nil {
		out, err := vault.ReduceWarmup(idx, *req.WarmupAmount)
		if err != nil {
			return nil, nil, err
		}
		amt := out.Value()
		if err := res.Deposit.Join(out); err != nil {
			return nil, nil, err
		}
		res.Steps = append(res.Steps, FundStep{Tag: types.TagWarmup, Amount: amt, Fee: math.ZeroInt()})
	}
	if req.Inactive {
		out, err := vault.ClaimInactive(idx)
		if err != nil {
			return nil, nil, err
		}
		amt := out.Value()
		if err := res.Deposit.Join(out); err != nil {
			return nil, nil, err
		}
		res.Steps = append(res.Steps, FundStep{Tag: types.TagInactive, Amount: amt, Fee: math.ZeroInt()})
	}
	if req.Premium {
		net, fee, feeShare, err := vault.HarvestPremium(idx)
		if err != nil {
			return nil, nil, err
		}
		charged := fee.Value().Add(feeShare.Value())
		if err := k.routeFees(sdkCtx, vault, fee, feeShare); err != nil {
			return nil, nil, err
		}
		amt := net.Value()
		if err := res.Premium.Join(net); err != nil {
			return nil, nil, err
		}
		res.Steps = append(res.Steps, FundStep{Tag: types.TagPremium, Amount: amt, Fee: charged})
	}
	if req.Incentive {
		net, fee, feeShare, err := vault.RedeemIncentive(idx)
		if err != nil {
			return nil, nil, err
		}
		charged := fee.Value().Add(feeShare.Value())
		if err := k.routeFees(sdkCtx, vault, fee, feeShare); err != nil {
			return nil, nil, err
		}
		amt := net.Value()
		if err := res.Incentive.Join(net); err != nil {
			return nil, nil, err
		}
		res.Steps = append(res.Steps, FundStep{Tag: types.TagIncentive, Amount: amt, Fee: charged})
	}

	mc := metrics.GetCollector()
	for _, out := range []types.Balance{res.Deposit, res.Premium, res.Incentive} {
		if err := k.payOut(ctx, holder, out); err != nil {
			return nil, nil, err
		}
		if !out.IsZero() {
			mc.RecordWithdrawal(vaultID, "reduce_fund", out.Denom, metricValue(out.Value()))
		}
	}

	survived := k.finishRecord(sdkCtx, vault, idx, receipt)
	k.SetDepositVault(sdkCtx, vault)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_reduce_fund",
			sdk.NewAttribute("vault_id", vaultID),
			sdk.NewAttribute("holder", holder),
			sdk.NewAttribute("deposit", res.Deposit.Value().String()),
			sdk.NewAttribute("premium", res.Premium.Value().String()),
			sdk.NewAttribute("incentive", res.Incentive.Value().String()),
		),
	)
	k.logger.Info("ReduceFund processed",
		"vault_id", vaultID,
		"holder", holder,
		"legs", len(res.Steps),
	)
	return survived, res, nil
}
