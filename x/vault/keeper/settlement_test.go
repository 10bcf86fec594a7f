package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/openalpha/options-vault/x/vault/types"
)

// settledVault builds a deposit ledger with 5_0000_00000 active and
// 5_0000_00000 deactivating under one record, paired with a bid ledger
// holding shares shares against zero balance.
func settledVault(t *testing.T, shares int64) (*types.DepositVault, *types.BidVault) {
	t.Helper()
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 10_0000_00000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	half := math.NewInt(5_0000_00000)
	if _, err := v.Unsubscribe(0, &half); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	b := types.NewBidVault("theta-usdc", "usdc", v.RoundIndex, "")
	if shares > 0 {
		if err := b.NewBid("bid1", math.NewInt(shares)); err != nil {
			t.Fatalf("new bid: %v", err)
		}
	}
	return v, b
}

// TestSettleWithLoss tests settlement at share price 0.7: 30% of the
// working pool moves into the bid ledger and the remaining shares
// rescale
func TestSettleWithLoss(t *testing.T) {
	v, b := settledVault(t, 1_0000_00000)

	// 0.7 at 8 decimals
	payoff, err := v.Settle(b, math.NewInt(7000_0000), 8)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !payoff.Equal(math.NewInt(3_0000_00000)) {
		t.Errorf("expected payoff 3_0000_00000, got %s", payoff)
	}
	if !b.Balance.Value().Equal(math.NewInt(3_0000_00000)) {
		t.Errorf("expected bid balance 3_0000_00000, got %s", b.Balance.Value())
	}
	if !v.Balances[types.TagActive].Value().Equal(math.NewInt(3_5000_00000)) {
		t.Errorf("expected active 3_5000_00000, got %s", v.Balances[types.TagActive].Value())
	}
	if !v.Balances[types.TagInactive].Value().Equal(math.NewInt(3_5000_00000)) {
		t.Errorf("expected inactive 3_5000_00000, got %s", v.Balances[types.TagInactive].Value())
	}
	if !v.Balances[types.TagDeactivating].IsZero() {
		t.Errorf("expected empty deactivating, got %s", v.Balances[types.TagDeactivating].Value())
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("deposit invariant after settle: %v", err)
	}
	if err := b.CheckInvariant(); err != nil {
		t.Errorf("bid invariant after settle: %v", err)
	}
}

// TestSettleAtPar tests settlement at share price 1.0: no payoff, the
// deactivating remainder still folds into inactive
func TestSettleAtPar(t *testing.T) {
	v, b := settledVault(t, 1_0000_00000)

	payoff, err := v.Settle(b, math.NewInt(1_0000_0000), 8)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !payoff.IsZero() {
		t.Errorf("expected zero payoff at par, got %s", payoff)
	}
	if !b.Balance.IsZero() {
		t.Errorf("expected empty bid balance, got %s", b.Balance.Value())
	}
	if !v.Balances[types.TagActive].Value().Equal(math.NewInt(5_0000_00000)) {
		t.Errorf("expected active 5_0000_00000, got %s", v.Balances[types.TagActive].Value())
	}
	if !v.Balances[types.TagInactive].Value().Equal(math.NewInt(5_0000_00000)) {
		t.Errorf("expected inactive 5_0000_00000, got %s", v.Balances[types.TagInactive].Value())
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after par settle: %v", err)
	}
}

// TestSettleAboveParNoGain tests that a share price above 1.0 pays no
// bonus: settlement only ever transfers losses
func TestSettleAboveParNoGain(t *testing.T) {
	v, b := settledVault(t, 1_0000_00000)
	before := v.TotalValue()

	payoff, err := v.Settle(b, math.NewInt(1_2000_0000), 8)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !payoff.IsZero() {
		t.Errorf("expected zero payoff above par, got %s", payoff)
	}
	if !v.TotalValue().Equal(before) {
		t.Errorf("expected total value %s preserved, got %s", before, v.TotalValue())
	}
}

// TestSettleRejectsZeroPrice tests the zero share price edge
func TestSettleRejectsZeroPrice(t *testing.T) {
	v, b := settledVault(t, 1_0000_00000)
	if _, err := v.Settle(b, math.ZeroInt(), 8); err == nil {
		t.Error("expected error settling at zero price")
	}
}

// TestSettleWithoutNextRound tests the active remainder folding into
// inactive when the vault is winding down
func TestSettleWithoutNextRound(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", false); err != nil {
		t.Fatalf("activate: %v", err)
	}
	b := types.NewBidVault("theta-usdc", "usdc", v.RoundIndex, "")

	if _, err := v.Settle(b, math.NewInt(5000_0000), 8); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !v.Balances[types.TagActive].IsZero() {
		t.Errorf("expected empty active, got %s", v.Balances[types.TagActive].Value())
	}
	if !v.Balances[types.TagInactive].Value().Equal(math.NewInt(500)) {
		t.Errorf("expected inactive 500, got %s", v.Balances[types.TagInactive].Value())
	}
	if !b.Balance.Value().Equal(math.NewInt(500)) {
		t.Errorf("expected bid balance 500, got %s", b.Balance.Value())
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after winding-down settle: %v", err)
	}
}

// TestExerciseFullShare tests exercising the whole share supply
func TestExerciseFullShare(t *testing.T) {
	b := types.NewBidVault("theta-usdc", "usdc", 1, "")
	if err := b.NewBid("bid1", math.NewInt(1_0000_00000)); err != nil {
		t.Fatalf("new bid: %v", err)
	}
	fund := types.NewBalanceFromAmount("usdc", math.NewInt(3_0000_00000))
	if err := b.Balance.Join(fund); err != nil {
		t.Fatalf("fund bid ledger: %v", err)
	}

	payoff, _, extracted, err := b.Exercise([]string{"bid1"})
	if err != nil {
		t.Fatalf("exercise: %v", err)
	}
	if !payoff.Value().Equal(math.NewInt(3_0000_00000)) {
		t.Errorf("expected payoff 3_0000_00000, got %s", payoff.Value())
	}
	if !extracted.Equal(math.NewInt(1_0000_00000)) {
		t.Errorf("expected extracted 1_0000_00000, got %s", extracted)
	}
	if !b.ShareSupply.IsZero() {
		t.Errorf("expected share supply 0, got %s", b.ShareSupply)
	}
	if !b.Balance.IsZero() {
		t.Errorf("expected drained bid balance, got %s", b.Balance.Value())
	}
	if err := b.CheckInvariant(); err != nil {
		t.Errorf("invariant after exercise: %v", err)
	}
}

// TestExercisePreDebitDivisor tests that each exercise divides by the
// supply captured before its own debit, so sequential exercisers drain
// the pool exactly
func TestExercisePreDebitDivisor(t *testing.T) {
	b := types.NewBidVault("theta-usdc", "usdc", 1, "")
	if err := b.NewBid("big", math.NewInt(60)); err != nil {
		t.Fatalf("new bid: %v", err)
	}
	if err := b.NewBid("small", math.NewInt(40)); err != nil {
		t.Fatalf("new bid: %v", err)
	}
	fund := types.NewBalanceFromAmount("usdc", math.NewInt(100))
	if err := b.Balance.Join(fund); err != nil {
		t.Fatalf("fund bid ledger: %v", err)
	}

	first, _, _, err := b.Exercise([]string{"big"})
	if err != nil {
		t.Fatalf("first exercise: %v", err)
	}
	if !first.Value().Equal(math.NewInt(60)) {
		t.Errorf("expected first payoff 60, got %s", first.Value())
	}
	second, _, _, err := b.Exercise([]string{"small"})
	if err != nil {
		t.Fatalf("second exercise: %v", err)
	}
	if !second.Value().Equal(math.NewInt(40)) {
		t.Errorf("expected second payoff 40, got %s", second.Value())
	}
	if !b.Balance.IsZero() {
		t.Errorf("expected drained pool, got %s", b.Balance.Value())
	}
}

// TestExerciseUnknownReceipt tests rejecting a receipt with no record
func TestExerciseUnknownReceipt(t *testing.T) {
	b := types.NewBidVault("theta-usdc", "usdc", 1, "")
	if _, _, _, err := b.Exercise([]string{"ghost"}); err == nil {
		t.Error("expected error exercising unknown receipt")
	}
}

// TestExerciseDuplicateReceipt tests that a receipt listed twice is
// extracted and paid only once
func TestExerciseDuplicateReceipt(t *testing.T) {
	b := types.NewBidVault("theta-usdc", "usdc", 1, "")
	if err := b.NewBid("bid1", math.NewInt(60)); err != nil {
		t.Fatalf("new bid: %v", err)
	}
	if err := b.NewBid("bid2", math.NewInt(40)); err != nil {
		t.Fatalf("new bid: %v", err)
	}
	fund := types.NewBalanceFromAmount("usdc", math.NewInt(100))
	if err := b.Balance.Join(fund); err != nil {
		t.Fatalf("fund bid ledger: %v", err)
	}

	payoff, _, extracted, err := b.Exercise([]string{"bid1", "bid1"})
	if err != nil {
		t.Fatalf("exercise: %v", err)
	}
	if !extracted.Equal(math.NewInt(60)) {
		t.Errorf("expected extracted 60, got %s", extracted)
	}
	if !payoff.Value().Equal(math.NewInt(60)) {
		t.Errorf("expected payoff 60, got %s", payoff.Value())
	}
	if !b.ShareSupply.Equal(math.NewInt(40)) {
		t.Errorf("expected remaining supply 40, got %s", b.ShareSupply)
	}
	if err := b.CheckInvariant(); err != nil {
		t.Errorf("invariant after exercise: %v", err)
	}
}

// TestExerciseWithIncentive tests the incentive balance paying out
// alongside the principal payoff
func TestExerciseWithIncentive(t *testing.T) {
	b := types.NewBidVault("theta-usdc", "usdc", 1, "")
	if err := b.NewBid("bid1", math.NewInt(50)); err != nil {
		t.Fatalf("new bid: %v", err)
	}
	if err := b.NewBid("bid2", math.NewInt(50)); err != nil {
		t.Fatalf("new bid: %v", err)
	}
	fund := types.NewBalanceFromAmount("usdc", math.NewInt(200))
	if err := b.Balance.Join(fund); err != nil {
		t.Fatalf("fund bid ledger: %v", err)
	}
	bonus := types.NewBalanceFromAmount("arb", math.NewInt(80))
	if err := b.PutIncentive(&bonus); err != nil {
		t.Fatalf("put incentive: %v", err)
	}

	payoff, incentive, _, err := b.Exercise([]string{"bid1"})
	if err != nil {
		t.Fatalf("exercise: %v", err)
	}
	if !payoff.Value().Equal(math.NewInt(100)) {
		t.Errorf("expected payoff 100, got %s", payoff.Value())
	}
	if !incentive.Value().Equal(math.NewInt(40)) {
		t.Errorf("expected incentive 40, got %s", incentive.Value())
	}
	if incentive.Denom != "arb" {
		t.Errorf("expected incentive denom arb, got %s", incentive.Denom)
	}
}

// TestSplitShares tests carving a merged bid position into a capped
// primary and a remainder
func TestSplitShares(t *testing.T) {
	b := types.NewBidVault("theta-usdc", "usdc", 1, "")
	if err := b.NewBid("a", math.NewInt(30)); err != nil {
		t.Fatalf("new bid: %v", err)
	}
	if err := b.NewBid("b", math.NewInt(70)); err != nil {
		t.Fatalf("new bid: %v", err)
	}

	target := math.NewInt(45)
	primary, remainder, err := b.SplitShares([]string{"a", "b"}, &target, "p", "q")
	if err != nil {
		t.Fatalf("split shares: %v", err)
	}
	if !primary.Equal(math.NewInt(45)) {
		t.Errorf("expected primary 45, got %s", primary)
	}
	if !remainder.Equal(math.NewInt(55)) {
		t.Errorf("expected remainder 55, got %s", remainder)
	}
	if !b.ShareSupply.Equal(math.NewInt(100)) {
		t.Errorf("expected supply unchanged at 100, got %s", b.ShareSupply)
	}
	if err := b.CheckInvariant(); err != nil {
		t.Errorf("invariant after split: %v", err)
	}

	// a nil target merges without capping and emits no remainder record
	merged, rest, err := b.SplitShares([]string{"p", "q"}, nil, "all", "none")
	if err != nil {
		t.Fatalf("merge split: %v", err)
	}
	if !merged.Equal(math.NewInt(100)) {
		t.Errorf("expected merged 100, got %s", merged)
	}
	if !rest.IsZero() {
		t.Errorf("expected zero remainder, got %s", rest)
	}
	if len(b.Records) != 1 {
		t.Errorf("expected 1 record after merge, got %d", len(b.Records))
	}
}
