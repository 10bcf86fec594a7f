package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/options-vault/metrics"
	"github.com/openalpha/options-vault/x/vault/types"
)

// PutRefund parks funds the auction could not match for later
// reclamation by the beneficiary. The manager pays the funds in.
func (k *Keeper) PutRefund(ctx context.Context, manager, beneficiary, denom string, amount math.Int) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	in, err := k.payIn(ctx, manager, denom, amount)
	if err != nil {
		return err
	}
	refund := k.GetRefundVault(sdkCtx, denom)
	if err := refund.PutRefund(&in, beneficiary); err != nil {
		return err
	}
	k.SetRefundVault(sdkCtx, refund)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_refund_put",
			sdk.NewAttribute("beneficiary", beneficiary),
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	metrics.GetCollector().RecordRefund(denom, false)
	return nil
}

// PutRefundBatch parks one payment across many beneficiaries in a single
// store round-trip. The shares must sum to the full amount.
func (k *Keeper) PutRefundBatch(ctx context.Context, manager, denom string, amount math.Int, beneficiaries []string, shares []math.Int) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.requireAuthority(manager); err != nil {
		return err
	}
	if len(beneficiaries) != len(shares) {
		return types.ErrInvalidBalanceValue.Wrapf("%d beneficiaries for %d shares", len(beneficiaries), len(shares))
	}
	in, err := k.payIn(ctx, manager, denom, amount)
	if err != nil {
		return err
	}
	refund := k.GetRefundVault(sdkCtx, denom)
	indices := make([]int, len(beneficiaries))
	for i, addr := range beneficiaries {
		indices[i] = refund.Register(addr)
	}
	if err := refund.PutRefunds(&in, indices, shares); err != nil {
		return err
	}
	k.SetRefundVault(sdkCtx, refund)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_refund_batch",
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return nil
}

// TakeRefund pays the caller's whole pending refund of denom back out.
func (k *Keeper) TakeRefund(ctx context.Context, claimer, denom string) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	refund := k.GetRefundVault(sdkCtx, denom)
	out, ok, err := refund.TakeRefund(claimer)
	if err != nil {
		return math.ZeroInt(), err
	}
	if !ok {
		return math.ZeroInt(), nil
	}
	taken := out.Value()
	if err := k.payOut(ctx, claimer, out); err != nil {
		return math.ZeroInt(), err
	}
	k.SetRefundVault(sdkCtx, refund)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_refund_taken",
			sdk.NewAttribute("claimer", claimer),
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("amount", taken.String()),
		),
	)
	metrics.GetCollector().RecordRefund(denom, true)
	return taken, nil
}
