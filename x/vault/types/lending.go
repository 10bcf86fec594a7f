package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// LendingShortfallTolerance is the largest principal shortfall, in
// minimal units, the round-trip will absorb from the caller's reserve.
// It covers unit rounding inside the external money market.
const LendingShortfallTolerance = 2

// WithdrawForLending empties the Active and Deactivating balances into a
// single output for deployment into the external money market. The share
// ledger is untouched: shares keep representing claims while the balance
// is absent, which is the one sanctioned suspension of the
// balance==shares invariant, ended by DepositFromLending.
func (v *DepositVault) WithdrawForLending() (Balance, error) {
	if v.LendingOut {
		return Balance{}, errors.Wrap(ErrInvalidBalanceValue, "lending withdrawal already outstanding")
	}
	out := v.Balances[TagActive].TakeAll()
	if err := out.Join(v.Balances[TagDeactivating].TakeAll()); err != nil {
		return Balance{}, err
	}
	v.LendingOut = true
	v.touch()
	return out, nil
}

// DepositFromLending restores the principal returned by the money market
// into Active and Deactivating, pro-rata to the untouched share supply.
// A shortfall of at most LendingShortfallTolerance units is pulled from
// the caller-supplied reserve; beyond that the round-trip fails with
// InvalidBalanceValue. The returned surplus balance holds any principal
// above the required restoration, for the caller to distribute alongside
// the reward leg (or route to the fee sink).
func (v *DepositVault) DepositFromLending(principal, reserve *Balance) (surplus Balance, err error) {
	if principal.Denom != v.DepositDenom {
		return Balance{}, errors.Wrapf(ErrInvalidToken, "principal denom %s, vault expects %s", principal.Denom, v.DepositDenom)
	}
	if !v.LendingOut {
		return Balance{}, errors.Wrap(ErrInvalidBalanceValue, "no lending withdrawal outstanding")
	}

	requiredActive := v.ShareSupply[TagActive].Sub(v.Balances[TagActive].Value())
	requiredDeact := v.ShareSupply[TagDeactivating].Sub(v.Balances[TagDeactivating].Value())
	required := requiredActive.Add(requiredDeact)

	in := principal.TakeAll()
	if in.Value().LT(required) {
		shortfall := required.Sub(in.Value())
		if shortfall.GT(math.NewInt(LendingShortfallTolerance)) {
			// put the principal back before aborting
			if jerr := principal.Join(in); jerr != nil {
				return Balance{}, jerr
			}
			return Balance{}, errors.Wrapf(ErrInvalidBalanceValue,
				"principal shortfall %s exceeds tolerance of %d units", shortfall, LendingShortfallTolerance)
		}
		cover, serr := reserve.Split(shortfall)
		if serr != nil {
			return Balance{}, serr
		}
		if jerr := in.Join(cover); jerr != nil {
			return Balance{}, jerr
		}
	}

	toActive, err := in.Split(requiredActive)
	if err != nil {
		return Balance{}, err
	}
	if err := v.Balances[TagActive].Join(toActive); err != nil {
		return Balance{}, err
	}
	toDeact, err := in.Split(requiredDeact)
	if err != nil {
		return Balance{}, err
	}
	if err := v.Balances[TagDeactivating].Join(toDeact); err != nil {
		return Balance{}, err
	}

	v.LendingOut = false
	v.touch()
	return in, nil
}

// RewardFromLending distributes money-market proceeds pro-rata like a
// delivery, routed by the reward's asset type: the deposit asset rolls
// into Warmup (Inactive without a next round), the bid asset joins
// Premium, and any third asset lands in Incentive, registering itself as
// the incentive token if needed.
func (v *DepositVault) RewardFromLending(reward *Balance) error {
	return v.routeProceeds(reward, true)
}
