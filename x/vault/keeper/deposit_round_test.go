package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/openalpha/options-vault/x/vault/types"
)

// depositTo credits amount into the vault's warmup pool under receiptID.
func depositTo(t *testing.T, v *types.DepositVault, receiptID string, amount int64) {
	t.Helper()
	i := v.EnsureRecord(receiptID)
	in := types.NewBalanceFromAmount(v.DepositDenom, math.NewInt(amount))
	if err := v.DepositToWarmup(i, &in); err != nil {
		t.Fatalf("deposit %d under %s: %v", amount, receiptID, err)
	}
}

// TestDepositAccumulates tests two deposits under one receipt
func TestDepositAccumulates(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")

	depositTo(t, v, "r1", 8_0000_00000)
	depositTo(t, v, "r1", 2_0000_00000)

	if !v.Balances[types.TagWarmup].Value().Equal(math.NewInt(10_0000_00000)) {
		t.Errorf("expected warmup balance 10_0000_00000, got %s", v.Balances[types.TagWarmup].Value())
	}
	if len(v.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(v.Records))
	}
	if !v.Records[0].Shares[types.TagWarmup].Equal(math.NewInt(10_0000_00000)) {
		t.Errorf("expected warmup share 10_0000_00000, got %s", v.Records[0].Shares[types.TagWarmup])
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after deposits: %v", err)
	}
}

// TestActivateMovesWarmup tests round activation
func TestActivateMovesWarmup(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 10_0000_00000)

	moved, err := v.Activate("usdc", true)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !moved.Equal(math.NewInt(10_0000_00000)) {
		t.Errorf("expected activated 10_0000_00000, got %s", moved)
	}
	if !v.Balances[types.TagActive].Value().Equal(math.NewInt(10_0000_00000)) {
		t.Errorf("expected active balance 10_0000_00000, got %s", v.Balances[types.TagActive].Value())
	}
	if !v.Balances[types.TagWarmup].IsZero() {
		t.Errorf("expected empty warmup, got %s", v.Balances[types.TagWarmup].Value())
	}
	if v.RoundIndex != 1 {
		t.Errorf("expected round index 1, got %d", v.RoundIndex)
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after activate: %v", err)
	}
}

// TestActivateIdempotent tests that a second activate with nothing
// warming up leaves the ledger untouched
func TestActivateIdempotent(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)

	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("first activate: %v", err)
	}
	round := v.RoundIndex
	active := v.Balances[types.TagActive].Value()

	moved, err := v.Activate("usdc", true)
	if err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if !moved.IsZero() {
		t.Errorf("expected second activate to move nothing, got %s", moved)
	}
	if v.RoundIndex != round {
		t.Errorf("expected round index to stay %d, got %d", round, v.RoundIndex)
	}
	if !v.Balances[types.TagActive].Value().Equal(active) {
		t.Errorf("expected active balance to stay %s, got %s", active, v.Balances[types.TagActive].Value())
	}
}

// TestActivateWrongDenom tests activation rejects a foreign asset
func TestActivateWrongDenom(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)

	if _, err := v.Activate("atom", true); err == nil {
		t.Error("expected error activating with wrong denom")
	}
}

// TestUnsubscribeHalf tests moving half the active share to deactivating
func TestUnsubscribeHalf(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 10_0000_00000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	half := math.NewInt(5_0000_00000)
	moved, err := v.Unsubscribe(0, &half)
	if err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if !moved.Equal(half) {
		t.Errorf("expected moved 5_0000_00000, got %s", moved)
	}
	if !v.Balances[types.TagActive].Value().Equal(half) {
		t.Errorf("expected active 5_0000_00000, got %s", v.Balances[types.TagActive].Value())
	}
	if !v.Balances[types.TagDeactivating].Value().Equal(half) {
		t.Errorf("expected deactivating 5_0000_00000, got %s", v.Balances[types.TagDeactivating].Value())
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after unsubscribe: %v", err)
	}
}

// TestUnsubscribeAll tests that a nil amount moves the whole active share
func TestUnsubscribeAll(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	moved, err := v.Unsubscribe(0, nil)
	if err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if !moved.Equal(math.NewInt(1000)) {
		t.Errorf("expected moved 1000, got %s", moved)
	}
	if !v.Balances[types.TagActive].IsZero() {
		t.Errorf("expected empty active, got %s", v.Balances[types.TagActive].Value())
	}
}

// TestUnsubscribeOverdraw tests rejecting more than the active share
func TestUnsubscribeOverdraw(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	over := math.NewInt(1001)
	if _, err := v.Unsubscribe(0, &over); err == nil {
		t.Error("expected error unsubscribing more than active share")
	}
}

// TestRecoupSplitsAcrossPools tests the recoup tag routing: the
// deactivating side lands in inactive, the active side warms up for the
// next round
func TestRecoupSplitsAcrossPools(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 10_0000_00000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	half := math.NewInt(5_0000_00000)
	if _, err := v.Unsubscribe(0, &half); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	before := v.TotalValue()

	fromActive, fromDeact, err := v.Recoup(math.NewInt(6_0000_00000))
	if err != nil {
		t.Fatalf("recoup: %v", err)
	}
	if !fromActive.Equal(math.NewInt(1_0000_00000)) {
		t.Errorf("expected 1_0000_00000 pulled from active, got %s", fromActive)
	}
	if !fromDeact.Equal(math.NewInt(5_0000_00000)) {
		t.Errorf("expected 5_0000_00000 pulled from deactivating, got %s", fromDeact)
	}
	if !v.Balances[types.TagActive].Value().Equal(math.NewInt(4_0000_00000)) {
		t.Errorf("expected active 4_0000_00000, got %s", v.Balances[types.TagActive].Value())
	}
	if !v.Balances[types.TagDeactivating].IsZero() {
		t.Errorf("expected empty deactivating, got %s", v.Balances[types.TagDeactivating].Value())
	}
	if !v.Balances[types.TagInactive].Value().Equal(math.NewInt(5_0000_00000)) {
		t.Errorf("expected inactive 5_0000_00000, got %s", v.Balances[types.TagInactive].Value())
	}
	if !v.Balances[types.TagWarmup].Value().Equal(math.NewInt(1_0000_00000)) {
		t.Errorf("expected warmup 1_0000_00000, got %s", v.Balances[types.TagWarmup].Value())
	}

	// funds only move tags, never vanish
	if !v.TotalValue().Equal(before) {
		t.Errorf("expected total value %s preserved, got %s", before, v.TotalValue())
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after recoup: %v", err)
	}
}

// TestRecoupWithoutNextRound tests the active portion folding into
// inactive when no successor round exists
func TestRecoupWithoutNextRound(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", false); err != nil {
		t.Fatalf("activate: %v", err)
	}

	fromActive, _, err := v.Recoup(math.NewInt(600))
	if err != nil {
		t.Fatalf("recoup: %v", err)
	}
	if !fromActive.Equal(math.NewInt(600)) {
		t.Errorf("expected 600 pulled from active, got %s", fromActive)
	}
	if !v.Balances[types.TagWarmup].IsZero() {
		t.Errorf("expected empty warmup without next round, got %s", v.Balances[types.TagWarmup].Value())
	}
	if !v.Balances[types.TagInactive].Value().Equal(math.NewInt(600)) {
		t.Errorf("expected inactive 600, got %s", v.Balances[types.TagInactive].Value())
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after recoup: %v", err)
	}
}

// TestRecoupExceedsPool tests rejecting a refund larger than the pool
func TestRecoupExceedsPool(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if _, _, err := v.Recoup(math.NewInt(1001)); err == nil {
		t.Error("expected error recouping more than the pool")
	}
}

// TestRecoupMultiRecord tests the sequential floor allocation across
// records in store order: each cut is floored against the shrinking
// remainder, the last weighted record absorbs the residue
func TestRecoupMultiRecord(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "a", 100)
	depositTo(t, v, "b", 100)
	depositTo(t, v, "c", 100)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	// refund 100 over pool 300: floor(100*100/300)=33, then
	// floor(100*67/200)=33, then floor(100*34/100)=34
	fromActive, _, err := v.Recoup(math.NewInt(100))
	if err != nil {
		t.Fatalf("recoup: %v", err)
	}
	if !fromActive.Equal(math.NewInt(100)) {
		t.Errorf("expected 100 recouped, got %s", fromActive)
	}
	want := []int64{33, 33, 34}
	for i, w := range want {
		if !v.Records[i].Shares[types.TagWarmup].Equal(math.NewInt(w)) {
			t.Errorf("record %d: expected warmup cut %d, got %s", i, w, v.Records[i].Shares[types.TagWarmup])
		}
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after multi-record recoup: %v", err)
	}
}

// TestDepositDisabledWithoutNextRound tests deposits closing once the
// ledger has no successor round
func TestDepositDisabledWithoutNextRound(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", false); err != nil {
		t.Fatalf("activate: %v", err)
	}

	i := v.EnsureRecord("r2")
	in := types.NewBalanceFromAmount("usdc", math.NewInt(500))
	if err := v.DepositToWarmup(i, &in); err == nil {
		t.Error("expected deposit to fail with no next round")
	}
}

// TestTerminateFoldsEverything tests termination folding all working
// pools into inactive
func TestTerminateFoldsEverything(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	part := math.NewInt(300)
	if _, err := v.Unsubscribe(0, &part); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	depositTo(t, v, "r1", 200)

	if err := v.Terminate(); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if !v.Balances[types.TagInactive].Value().Equal(math.NewInt(1200)) {
		t.Errorf("expected inactive 1200, got %s", v.Balances[types.TagInactive].Value())
	}
	for _, tag := range []types.ShareTag{types.TagActive, types.TagDeactivating, types.TagWarmup} {
		if !v.Balances[tag].IsZero() {
			t.Errorf("expected empty %s after terminate, got %s", tag, v.Balances[tag].Value())
		}
	}
	if v.HasNext {
		t.Error("expected terminated vault to have no next round")
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after terminate: %v", err)
	}
}

// TestClaimInactive tests withdrawing the inactive share
func TestClaimInactive(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := v.Terminate(); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	out, err := v.ClaimInactive(0)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !out.Value().Equal(math.NewInt(1000)) {
		t.Errorf("expected claimed 1000, got %s", out.Value())
	}
	if !v.Records[0].IsEmpty() {
		t.Error("expected record drained after claim")
	}
	if !v.RemoveIfEmpty(0) {
		t.Error("expected drained record to be removable")
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after claim: %v", err)
	}
}

// TestReduceWarmup tests pulling a deposit back before activation
func TestReduceWarmup(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)

	out, err := v.ReduceWarmup(0, math.NewInt(400))
	if err != nil {
		t.Fatalf("reduce warmup: %v", err)
	}
	if !out.Value().Equal(math.NewInt(400)) {
		t.Errorf("expected reduced 400, got %s", out.Value())
	}
	if !v.Balances[types.TagWarmup].Value().Equal(math.NewInt(600)) {
		t.Errorf("expected warmup 600, got %s", v.Balances[types.TagWarmup].Value())
	}
	if _, err := v.ReduceWarmup(0, math.NewInt(601)); err == nil {
		t.Error("expected error reducing more than the warmup share")
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after reduce: %v", err)
	}
}
