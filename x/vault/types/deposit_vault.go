package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// ============ Record store access ============

// EnsureRecord returns the index of the record keyed by receiptID,
// appending a zero record if none exists.
func (v *DepositVault) EnsureRecord(receiptID string) int {
	if i, ok := v.findRecord(receiptID); ok {
		return i
	}
	v.Records = append(v.Records, NewDepositShare(receiptID))
	return len(v.Records) - 1
}

// MergeRecords folds the records of all presented receipts into the
// first one and returns its index. The absorbed records are swap-removed.
// A receipt without a live record fails with ErrInvalidDepositReceipt;
// a receipt presented more than once is absorbed only once.
func (v *DepositVault) MergeRecords(receiptIDs []string) (int, error) {
	if len(receiptIDs) == 0 {
		return 0, errors.Wrap(ErrInvalidDepositReceipt, "no receipts presented")
	}
	first, ok := v.findRecord(receiptIDs[0])
	if !ok {
		return 0, errors.Wrapf(ErrInvalidDepositReceipt, "receipt %s has no record", receiptIDs[0])
	}
	seen := map[string]bool{receiptIDs[0]: true}
	for _, id := range receiptIDs[1:] {
		if seen[id] {
			continue
		}
		seen[id] = true
		i, ok := v.findRecord(id)
		if !ok {
			return 0, errors.Wrapf(ErrInvalidDepositReceipt, "receipt %s has no record", id)
		}
		for tag := ShareTag(0); tag < ShareTagCount; tag++ {
			v.Records[first].Shares[tag] = v.Records[first].Shares[tag].Add(v.Records[i].Shares[tag])
		}
		v.swapRemove(i)
		if first == len(v.Records) {
			// the merged record was the last one and got swapped into i
			first = i
		}
	}
	return first, nil
}

// RekeyRecord re-binds the record at index i to a fresh receipt identity.
func (v *DepositVault) RekeyRecord(i int, receiptID string) {
	v.Records[i].ReceiptID = receiptID
}

// RemoveIfEmpty swap-removes the record at index i when all six shares
// are zero. Returns true if the record was removed.
func (v *DepositVault) RemoveIfEmpty(i int) bool {
	if !v.Records[i].IsEmpty() {
		return false
	}
	v.swapRemove(i)
	return true
}

// ============ Depositor edges ============

// DepositToWarmup credits amount into the warmup sub-pool and the record
// at index i. Fails with DepositDisabled when the ledger has no next
// round, with InvalidToken on denom mismatch and ZeroValue on an empty
// deposit.
func (v *DepositVault) DepositToWarmup(i int, amount *Balance) error {
	if !v.HasNext {
		return ErrDepositDisabled
	}
	if amount.Denom != v.DepositDenom {
		return errors.Wrapf(ErrInvalidToken, "deposit denom %s, vault expects %s", amount.Denom, v.DepositDenom)
	}
	if amount.IsZero() {
		return errors.Wrap(ErrZeroValue, "empty deposit")
	}
	in := amount.TakeAll()
	amt := in.Value()
	if err := v.Balances[TagWarmup].Join(in); err != nil {
		return err
	}
	v.Records[i].Shares[TagWarmup] = v.Records[i].Shares[TagWarmup].Add(amt)
	v.ShareSupply[TagWarmup] = v.ShareSupply[TagWarmup].Add(amt)
	v.touch()
	return nil
}

// Unsubscribe moves amount (or the record's whole active share when
// amount is nil) from Active to Deactivating for the record at index i.
// Returns the amount moved.
func (v *DepositVault) Unsubscribe(i int, amount *math.Int) (math.Int, error) {
	rec := &v.Records[i]
	move := rec.Shares[TagActive]
	if amount != nil {
		if amount.GT(rec.Shares[TagActive]) {
			return math.ZeroInt(), errors.Wrapf(ErrInvalidBalanceValue,
				"unsubscribe %s exceeds active share %s", amount, rec.Shares[TagActive])
		}
		move = *amount
	}
	if move.IsZero() {
		return math.ZeroInt(), nil
	}
	bal, err := v.Balances[TagActive].Split(move)
	if err != nil {
		return math.ZeroInt(), err
	}
	if err := v.Balances[TagDeactivating].Join(bal); err != nil {
		return math.ZeroInt(), err
	}
	rec.Shares[TagActive] = rec.Shares[TagActive].Sub(move)
	rec.Shares[TagDeactivating] = rec.Shares[TagDeactivating].Add(move)
	v.ShareSupply[TagActive] = v.ShareSupply[TagActive].Sub(move)
	v.ShareSupply[TagDeactivating] = v.ShareSupply[TagDeactivating].Add(move)
	v.touch()
	return move, nil
}

// withdrawTag pulls the record's whole share of the given tag out of the
// ledger and returns it as a balance.
func (v *DepositVault) withdrawTag(i int, tag ShareTag) (Balance, error) {
	rec := &v.Records[i]
	amt := rec.Shares[tag]
	if amt.IsZero() {
		return NewBalance(v.denomFor(tag)), nil
	}
	out, err := v.Balances[tag].Split(amt)
	if err != nil {
		return Balance{}, err
	}
	rec.Shares[tag] = math.ZeroInt()
	v.ShareSupply[tag] = v.ShareSupply[tag].Sub(amt)
	v.touch()
	return out, nil
}

// ClaimInactive withdraws the record's inactive share.
func (v *DepositVault) ClaimInactive(i int) (Balance, error) {
	return v.withdrawTag(i, TagInactive)
}

// HarvestPremium withdraws the record's premium share, net of fees.
// The fee split is returned for the caller to route to its sinks.
func (v *DepositVault) HarvestPremium(i int) (net, fee, feeShare Balance, err error) {
	out, err := v.withdrawTag(i, TagPremium)
	if err != nil {
		return Balance{}, Balance{}, Balance{}, err
	}
	fee, feeShare, err = v.ChargeFee(&out)
	if err != nil {
		return Balance{}, Balance{}, Balance{}, err
	}
	return out, fee, feeShare, nil
}

// RedeemIncentive withdraws the record's incentive share, net of fees.
func (v *DepositVault) RedeemIncentive(i int) (net, fee, feeShare Balance, err error) {
	out, err := v.withdrawTag(i, TagIncentive)
	if err != nil {
		return Balance{}, Balance{}, Balance{}, err
	}
	fee, feeShare, err = v.ChargeFee(&out)
	if err != nil {
		return Balance{}, Balance{}, Balance{}, err
	}
	return out, fee, feeShare, nil
}

// ReduceWarmup withdraws amount from the record's warmup share.
func (v *DepositVault) ReduceWarmup(i int, amount math.Int) (Balance, error) {
	rec := &v.Records[i]
	if amount.GT(rec.Shares[TagWarmup]) {
		return Balance{}, errors.Wrapf(ErrInvalidBalanceValue,
			"reduce %s exceeds warmup share %s", amount, rec.Shares[TagWarmup])
	}
	out, err := v.Balances[TagWarmup].Split(amount)
	if err != nil {
		return Balance{}, err
	}
	rec.Shares[TagWarmup] = rec.Shares[TagWarmup].Sub(amount)
	v.ShareSupply[TagWarmup] = v.ShareSupply[TagWarmup].Sub(amount)
	v.touch()
	return out, nil
}

// CompoundInactive folds the record's inactive share back into warmup.
func (v *DepositVault) CompoundInactive(i int) (math.Int, error) {
	rec := &v.Records[i]
	amt := rec.Shares[TagInactive]
	if amt.IsZero() {
		return math.ZeroInt(), nil
	}
	bal, err := v.Balances[TagInactive].Split(amt)
	if err != nil {
		return math.ZeroInt(), err
	}
	if err := v.Balances[TagWarmup].Join(bal); err != nil {
		return math.ZeroInt(), err
	}
	rec.Shares[TagInactive] = math.ZeroInt()
	rec.Shares[TagWarmup] = rec.Shares[TagWarmup].Add(amt)
	v.ShareSupply[TagInactive] = v.ShareSupply[TagInactive].Sub(amt)
	v.ShareSupply[TagWarmup] = v.ShareSupply[TagWarmup].Add(amt)
	v.touch()
	return amt, nil
}

// CompoundPremium folds the record's premium share back into warmup, net
// of fees. Only meaningful when the bid asset equals the deposit asset;
// otherwise fails with ErrInvalidToken.
func (v *DepositVault) CompoundPremium(i int) (compounded math.Int, fee, feeShare Balance, err error) {
	if v.BidDenom != v.DepositDenom {
		return math.ZeroInt(), Balance{}, Balance{}, errors.Wrapf(ErrInvalidToken,
			"cannot compound premium denom %s into deposit denom %s", v.BidDenom, v.DepositDenom)
	}
	rec := &v.Records[i]
	amt := rec.Shares[TagPremium]
	if amt.IsZero() {
		return math.ZeroInt(), NewBalance(v.BidDenom), NewBalance(v.BidDenom), nil
	}
	out, err := v.Balances[TagPremium].Split(amt)
	if err != nil {
		return math.ZeroInt(), Balance{}, Balance{}, err
	}
	fee, feeShare, err = v.ChargeFee(&out)
	if err != nil {
		return math.ZeroInt(), Balance{}, Balance{}, err
	}
	net := out.Value()
	if err := v.Balances[TagWarmup].Join(out); err != nil {
		return math.ZeroInt(), Balance{}, Balance{}, err
	}
	rec.Shares[TagPremium] = math.ZeroInt()
	rec.Shares[TagWarmup] = rec.Shares[TagWarmup].Add(net)
	v.ShareSupply[TagPremium] = v.ShareSupply[TagPremium].Sub(amt)
	v.ShareSupply[TagWarmup] = v.ShareSupply[TagWarmup].Add(net)
	v.touch()
	return net, fee, feeShare, nil
}

// ============ Round life cycle ============

// Activate moves the whole warmup sub-pool into Active, scanning every
// record exactly once, begins the next round and records whether a
// successor round exists. A no-op when warmup is empty. Fails with
// InvalidToken if denom does not name the deposit asset.
func (v *DepositVault) Activate(denom string, hasNext bool) (math.Int, error) {
	if denom != v.DepositDenom {
		return math.ZeroInt(), errors.Wrapf(ErrInvalidToken, "activate denom %s, vault expects %s", denom, v.DepositDenom)
	}
	v.HasNext = hasNext
	moved := v.Balances[TagWarmup].Value()
	if moved.IsZero() {
		// idempotent when there is nothing to activate
		return math.ZeroInt(), nil
	}
	v.RoundIndex++
	bal := v.Balances[TagWarmup].TakeAll()
	if err := v.Balances[TagActive].Join(bal); err != nil {
		return math.ZeroInt(), err
	}
	for i := range v.Records {
		rec := &v.Records[i]
		rec.Shares[TagActive] = rec.Shares[TagActive].Add(rec.Shares[TagWarmup])
		rec.Shares[TagWarmup] = math.ZeroInt()
	}
	v.ShareSupply[TagActive] = v.ShareSupply[TagActive].Add(v.ShareSupply[TagWarmup])
	v.ShareSupply[TagWarmup] = math.ZeroInt()
	v.touch()
	return moved, nil
}

// Recoup refunds refund units of the deposit asset out of the combined
// Active+Deactivating pool, per record proportionally to its combined
// weight, debiting the deactivating side first. The deactivating portion
// always lands in Inactive; the active portion rolls into Warmup when a
// next round exists, otherwise into Inactive. Allocation walks records in
// store order with the shared sequential floor scheme. Returns the
// amounts pulled from the active and deactivating sides.
func (v *DepositVault) Recoup(refund math.Int) (fromActive, fromDeactivating math.Int, err error) {
	zero := math.ZeroInt()
	if refund.IsNegative() {
		return zero, zero, errors.Wrapf(ErrInvalidBalanceValue, "negative refund %s", refund)
	}
	if v.LendingOut {
		return zero, zero, errors.Wrap(ErrInvalidBalanceValue, "lending withdrawal outstanding")
	}
	pool := v.ShareSupply[TagActive].Add(v.ShareSupply[TagDeactivating])
	if refund.GT(pool) {
		return zero, zero, errors.Wrapf(ErrInvalidBalanceValue, "refund %s exceeds pool %s", refund, pool)
	}
	if refund.IsZero() {
		return zero, zero, nil
	}

	fromActive, fromDeactivating = zero, zero
	alloc := newAllocator(refund, pool)
	for i := range v.Records {
		rec := &v.Records[i]
		weight := rec.Shares[TagActive].Add(rec.Shares[TagDeactivating])
		if weight.IsZero() {
			continue
		}
		cut := alloc.next(weight)
		takeD := minInt(cut, rec.Shares[TagDeactivating])
		takeA := cut.Sub(takeD)

		rec.Shares[TagDeactivating] = rec.Shares[TagDeactivating].Sub(takeD)
		rec.Shares[TagInactive] = rec.Shares[TagInactive].Add(takeD)
		rec.Shares[TagActive] = rec.Shares[TagActive].Sub(takeA)
		if v.HasNext {
			rec.Shares[TagWarmup] = rec.Shares[TagWarmup].Add(takeA)
		} else {
			rec.Shares[TagInactive] = rec.Shares[TagInactive].Add(takeA)
		}

		fromActive = fromActive.Add(takeA)
		fromDeactivating = fromDeactivating.Add(takeD)
	}

	// Balances and supplies follow the share moves.
	dBal, err := v.Balances[TagDeactivating].Split(fromDeactivating)
	if err != nil {
		return zero, zero, err
	}
	if err := v.Balances[TagInactive].Join(dBal); err != nil {
		return zero, zero, err
	}
	aBal, err := v.Balances[TagActive].Split(fromActive)
	if err != nil {
		return zero, zero, err
	}
	activeDst := TagInactive
	if v.HasNext {
		activeDst = TagWarmup
	}
	if err := v.Balances[activeDst].Join(aBal); err != nil {
		return zero, zero, err
	}
	v.ShareSupply[TagActive] = v.ShareSupply[TagActive].Sub(fromActive)
	v.ShareSupply[TagDeactivating] = v.ShareSupply[TagDeactivating].Sub(fromDeactivating)
	v.ShareSupply[TagInactive] = v.ShareSupply[TagInactive].Add(fromDeactivating)
	v.ShareSupply[activeDst] = v.ShareSupply[activeDst].Add(fromActive)
	v.touch()
	return fromActive, fromDeactivating, nil
}

// Settle applies the strategy's realized share price. When the price is
// below 10^decimals a loss occurred: the payoff
// (active+deactivating shares) * (multiplier - price) / multiplier is
// moved out of the Active/Deactivating balances (weighted by share
// supply, not balance) into the bid ledger's pooled balance. Regardless
// of a loss, every record is then rescaled to the surviving pool: active
// shares stay active when a next round exists and fold into Inactive
// otherwise; the whole deactivating remainder always folds into
// Inactive. Fails with ZeroValue on a zero price and InvalidToken on a
// denom mismatch between the two ledgers.
func (v *DepositVault) Settle(bid *BidVault, sharePrice math.Int, decimals uint64) (math.Int, error) {
	if sharePrice.IsZero() {
		return math.ZeroInt(), errors.Wrap(ErrZeroValue, "zero settlement share price")
	}
	if bid.Denom != v.DepositDenom {
		return math.ZeroInt(), errors.Wrapf(ErrInvalidToken, "bid ledger denom %s, vault pays %s", bid.Denom, v.DepositDenom)
	}
	if v.LendingOut {
		return math.ZeroInt(), errors.Wrap(ErrInvalidBalanceValue, "lending withdrawal outstanding")
	}

	multiplier := pow10(decimals)
	activeSupply := v.ShareSupply[TagActive]
	deactSupply := v.ShareSupply[TagDeactivating]
	totalSupply := activeSupply.Add(deactSupply)

	payoff := math.ZeroInt()
	if sharePrice.LT(multiplier) && !totalSupply.IsZero() {
		payoff = totalSupply.Mul(multiplier.Sub(sharePrice)).Quo(multiplier)
		fromActive := proRataCut(activeSupply, payoff, totalSupply)
		fromDeact := payoff.Sub(fromActive)

		aBal, err := v.Balances[TagActive].Split(fromActive)
		if err != nil {
			return math.ZeroInt(), err
		}
		if err := bid.Balance.Join(aBal); err != nil {
			return math.ZeroInt(), err
		}
		dBal, err := v.Balances[TagDeactivating].Split(fromDeact)
		if err != nil {
			return math.ZeroInt(), err
		}
		if err := bid.Balance.Join(dBal); err != nil {
			return math.ZeroInt(), err
		}
	}

	newActive := v.Balances[TagActive].Value()
	newDeact := v.Balances[TagDeactivating].Value()

	activeAlloc := newAllocator(newActive, activeSupply)
	deactAlloc := newAllocator(newDeact, deactSupply)
	for i := range v.Records {
		rec := &v.Records[i]
		if !rec.Shares[TagActive].IsZero() {
			cut := activeAlloc.next(rec.Shares[TagActive])
			if v.HasNext {
				rec.Shares[TagActive] = cut
			} else {
				rec.Shares[TagActive] = math.ZeroInt()
				rec.Shares[TagInactive] = rec.Shares[TagInactive].Add(cut)
			}
		}
		if !rec.Shares[TagDeactivating].IsZero() {
			cut := deactAlloc.next(rec.Shares[TagDeactivating])
			rec.Shares[TagDeactivating] = math.ZeroInt()
			rec.Shares[TagInactive] = rec.Shares[TagInactive].Add(cut)
		}
	}

	// Deactivating is settled out entirely; active follows has_next.
	dBal := v.Balances[TagDeactivating].TakeAll()
	if err := v.Balances[TagInactive].Join(dBal); err != nil {
		return math.ZeroInt(), err
	}
	v.ShareSupply[TagDeactivating] = math.ZeroInt()
	v.ShareSupply[TagInactive] = v.ShareSupply[TagInactive].Add(newDeact)
	if v.HasNext {
		v.ShareSupply[TagActive] = newActive
	} else {
		aBal := v.Balances[TagActive].TakeAll()
		if err := v.Balances[TagInactive].Join(aBal); err != nil {
			return math.ZeroInt(), err
		}
		v.ShareSupply[TagActive] = math.ZeroInt()
		v.ShareSupply[TagInactive] = v.ShareSupply[TagInactive].Add(newActive)
	}
	v.touch()
	return payoff, nil
}

// distribute spreads amount across all records' tag shares, weighted by
// each record's combined Active+Deactivating share, in store order.
// The tag's balance must already hold the amount.
func (v *DepositVault) distribute(amount math.Int, tag ShareTag) error {
	if amount.IsZero() {
		return nil
	}
	pool := v.ShareSupply[TagActive].Add(v.ShareSupply[TagDeactivating])
	if pool.IsZero() {
		return errors.Wrap(ErrZeroValue, "no active or deactivating shares to distribute over")
	}
	alloc := newAllocator(amount, pool)
	for i := range v.Records {
		rec := &v.Records[i]
		weight := rec.Shares[TagActive].Add(rec.Shares[TagDeactivating])
		if weight.IsZero() {
			continue
		}
		cut := alloc.next(weight)
		rec.Shares[tag] = rec.Shares[tag].Add(cut)
	}
	v.ShareSupply[tag] = v.ShareSupply[tag].Add(amount)
	v.touch()
	return nil
}

// Delivery injects an auction premium (in the bid asset) into the
// Premium sub-pool, distributed pro-rata across Active+Deactivating.
func (v *DepositVault) Delivery(premium *Balance) error {
	if premium.Denom != v.BidDenom {
		return errors.Wrapf(ErrInvalidToken, "premium denom %s, vault expects %s", premium.Denom, v.BidDenom)
	}
	in := premium.TakeAll()
	amt := in.Value()
	if err := v.Balances[TagPremium].Join(in); err != nil {
		return err
	}
	return v.distribute(amt, TagPremium)
}

// DeliverIncentive injects an incentive balance, routed by asset type:
// the deposit asset rolls into Warmup (Inactive when no next round
// exists), the bid asset joins Premium, and the registered incentive
// asset lands in the Incentive sub-pool. An unregistered third asset
// fails with ErrInvalidToken.
func (v *DepositVault) DeliverIncentive(incentive *Balance) error {
	return v.routeProceeds(incentive, false)
}

// routeProceeds routes an injected balance by denom. With autoRegister
// set, an unknown third asset registers itself as the incentive token
// (the lending reward path); otherwise it is rejected.
func (v *DepositVault) routeProceeds(in *Balance, autoRegister bool) error {
	var tag ShareTag
	switch {
	case in.Denom == v.DepositDenom:
		tag = TagWarmup
		if !v.HasNext {
			tag = TagInactive
		}
	case in.Denom == v.BidDenom:
		tag = TagPremium
	case in.Denom == v.IncentiveDenom && v.IncentiveDenom != "":
		tag = TagIncentive
	case autoRegister:
		if err := v.UpdateIncentiveToken(in.Denom); err != nil {
			return err
		}
		tag = TagIncentive
	default:
		return errors.Wrapf(ErrInvalidToken, "unregistered incentive denom %s", in.Denom)
	}
	bal := in.TakeAll()
	amt := bal.Value()
	if amt.IsZero() {
		return nil
	}
	if err := v.Balances[tag].Join(bal); err != nil {
		return err
	}
	return v.distribute(amt, tag)
}

// Terminate unconditionally folds Active, Deactivating and Warmup into
// Inactive and retires the ledger. Irreversible.
func (v *DepositVault) Terminate() error {
	if v.LendingOut {
		return errors.Wrap(ErrInvalidBalanceValue, "lending withdrawal outstanding")
	}
	for _, tag := range []ShareTag{TagActive, TagDeactivating, TagWarmup} {
		bal := v.Balances[tag].TakeAll()
		if err := v.Balances[TagInactive].Join(bal); err != nil {
			return err
		}
		v.ShareSupply[TagInactive] = v.ShareSupply[TagInactive].Add(v.ShareSupply[tag])
		v.ShareSupply[tag] = math.ZeroInt()
	}
	for i := range v.Records {
		rec := &v.Records[i]
		for _, tag := range []ShareTag{TagActive, TagDeactivating, TagWarmup} {
			rec.Shares[TagInactive] = rec.Shares[TagInactive].Add(rec.Shares[tag])
			rec.Shares[tag] = math.ZeroInt()
		}
	}
	v.HasNext = false
	v.touch()
	return nil
}

// ============ Fees and reconciliation ============

// ChargeFee withdraws the configured fee from bal in place and returns
// the primary and keyed-sink portions: fee = value * fee_bp / 10000,
// of which fee_share_bp / 10000 goes to the secondary sink.
func (v *DepositVault) ChargeFee(bal *Balance) (fee, feeShare Balance, err error) {
	feeAmt := bal.Value().MulRaw(int64(v.FeeBP)).QuoRaw(FeeDenominator)
	shareAmt := feeAmt.MulRaw(int64(v.FeeShareBP)).QuoRaw(FeeDenominator)
	fee, err = bal.Split(feeAmt.Sub(shareAmt))
	if err != nil {
		return Balance{}, Balance{}, err
	}
	feeShare, err = bal.Split(shareAmt)
	if err != nil {
		return Balance{}, Balance{}, err
	}
	return fee, feeShare, nil
}

// AdjustUserShareRatio reconciles rounding drift on one tag: the tag's
// balance is taken as ground truth and every record's share is rescaled
// (sequential floor scheme, store order) to sum exactly to it. The
// reported share supply is reset to the balance.
func (v *DepositVault) AdjustUserShareRatio(tag ShareTag) error {
	if !tag.Valid() {
		return errors.Wrapf(ErrInvalidShareTag, "tag %d", tag)
	}
	if v.LendingOut && (tag == TagActive || tag == TagDeactivating) {
		return errors.Wrap(ErrInvalidBalanceValue, "lending withdrawal outstanding")
	}
	target := v.Balances[tag].Value()
	current := math.ZeroInt()
	for i := range v.Records {
		current = current.Add(v.Records[i].Shares[tag])
	}
	if current.IsZero() {
		if !target.IsZero() {
			return errors.Wrapf(ErrZeroValue, "no %s shares to rescale against balance %s", tag, target)
		}
		v.ShareSupply[tag] = math.ZeroInt()
		return nil
	}
	alloc := newAllocator(target, current)
	check := math.ZeroInt()
	for i := range v.Records {
		rec := &v.Records[i]
		if rec.Shares[tag].IsZero() {
			continue
		}
		rec.Shares[tag] = alloc.next(rec.Shares[tag])
		check = check.Add(rec.Shares[tag])
	}
	if !check.Equal(target) {
		return errors.Wrapf(ErrInvalidBalanceValue, "rescaled %s shares %s != balance %s", tag, check, target)
	}
	v.ShareSupply[tag] = target
	v.touch()
	return nil
}
