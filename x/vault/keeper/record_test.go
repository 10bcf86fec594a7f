package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/openalpha/options-vault/x/vault/types"
)

// TestBalanceLinearOps tests the consuming balance API: value moves
// between balances, never duplicates
func TestBalanceLinearOps(t *testing.T) {
	b := types.NewBalanceFromAmount("usdc", math.NewInt(1000))

	part, err := b.Split(math.NewInt(400))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if !part.Value().Equal(math.NewInt(400)) {
		t.Errorf("expected split 400, got %s", part.Value())
	}
	if !b.Value().Equal(math.NewInt(600)) {
		t.Errorf("expected source debited to 600, got %s", b.Value())
	}

	if _, err := b.Split(math.NewInt(601)); err == nil {
		t.Error("expected error splitting more than the balance")
	}
	if _, err := b.Split(math.NewInt(-1)); err == nil {
		t.Error("expected error splitting a negative amount")
	}

	if err := b.Join(part); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !b.Value().Equal(math.NewInt(1000)) {
		t.Errorf("expected rejoined 1000, got %s", b.Value())
	}

	other := types.NewBalanceFromAmount("atom", math.NewInt(5))
	if err := b.Join(other); err == nil {
		t.Error("expected error joining a foreign denom")
	}

	if err := b.Destroy(); err == nil {
		t.Error("expected error destroying a non-zero balance")
	}
	all := b.TakeAll()
	if !all.Value().Equal(math.NewInt(1000)) {
		t.Errorf("expected taken 1000, got %s", all.Value())
	}
	if err := b.Destroy(); err != nil {
		t.Errorf("expected emptied balance to destroy cleanly: %v", err)
	}
}

// TestMergeRecords tests folding several records into one
func TestMergeRecords(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "a", 100)
	depositTo(t, v, "b", 200)
	depositTo(t, v, "c", 300)

	idx, err := v.MergeRecords([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(v.Records) != 1 {
		t.Fatalf("expected 1 record after merge, got %d", len(v.Records))
	}
	if !v.Records[idx].Shares[types.TagWarmup].Equal(math.NewInt(600)) {
		t.Errorf("expected merged warmup 600, got %s", v.Records[idx].Shares[types.TagWarmup])
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after merge: %v", err)
	}

	v.RekeyRecord(idx, "fresh")
	if _, err := v.MergeRecords([]string{"a"}); err == nil {
		t.Error("expected error merging a burnt receipt")
	}
}

// TestMergeRecordsDuplicateReceipt tests that presenting the same
// receipt twice absorbs its record only once
func TestMergeRecordsDuplicateReceipt(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "a", 100)
	depositTo(t, v, "b", 50)

	idx, err := v.MergeRecords([]string{"a", "a"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(v.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(v.Records))
	}
	if v.Records[idx].ReceiptID != "a" {
		t.Errorf("expected index to stay on a, got %s", v.Records[idx].ReceiptID)
	}
	if !v.Records[idx].Shares[types.TagWarmup].Equal(math.NewInt(100)) {
		t.Errorf("expected warmup share 100, got %s", v.Records[idx].Shares[types.TagWarmup])
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after duplicate merge: %v", err)
	}

	// a later receipt repeated in the list folds in once
	idx, err = v.MergeRecords([]string{"a", "b", "b"})
	if err != nil {
		t.Fatalf("merge with repeated tail: %v", err)
	}
	if len(v.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(v.Records))
	}
	if !v.Records[idx].Shares[types.TagWarmup].Equal(math.NewInt(150)) {
		t.Errorf("expected merged warmup 150, got %s", v.Records[idx].Shares[types.TagWarmup])
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after tail merge: %v", err)
	}
}

// TestMergeRecordsDuplicateSoleRecord tests the duplicate presentation
// of the only record in the store
func TestMergeRecordsDuplicateSoleRecord(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "a", 100)

	idx, err := v.MergeRecords([]string{"a", "a"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if idx != 0 || len(v.Records) != 1 {
		t.Fatalf("expected sole record at index 0, got idx %d of %d", idx, len(v.Records))
	}
	if !v.Records[0].Shares[types.TagWarmup].Equal(math.NewInt(100)) {
		t.Errorf("expected warmup share 100, got %s", v.Records[0].Shares[types.TagWarmup])
	}
	v.RekeyRecord(idx, "fresh")
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after rekey: %v", err)
	}
}

// TestMergeRecordsSwapRelocation tests the merge surviving the target
// record being swap-relocated mid-merge
func TestMergeRecordsSwapRelocation(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "a", 100)
	depositTo(t, v, "b", 200)

	// merging into the last record forces the swap to land on it
	idx, err := v.MergeRecords([]string{"b", "a"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if v.Records[idx].ReceiptID != "b" {
		t.Errorf("expected merged record keyed by b, got %s", v.Records[idx].ReceiptID)
	}
	if !v.Records[idx].Shares[types.TagWarmup].Equal(math.NewInt(300)) {
		t.Errorf("expected merged warmup 300, got %s", v.Records[idx].Shares[types.TagWarmup])
	}
}

// TestReceiptMatching tests bearer receipt validity across rounds
func TestReceiptMatching(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	receipt := types.NewDepositReceipt(v)
	if !receipt.Matches(v) {
		t.Error("expected fresh receipt to match its vault")
	}

	// receipts from earlier rounds stay valid
	depositTo(t, v, receipt.ReceiptID, 1000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !receipt.Matches(v) {
		t.Error("expected earlier-round receipt to stay valid")
	}

	// a receipt claiming a future round is forged
	forged := receipt
	forged.RoundIndex = v.RoundIndex + 1
	if forged.Matches(v) {
		t.Error("expected future-round receipt to be rejected")
	}

	other := types.NewDepositVault("theta-atom", "atom", "atom", 0, "")
	if receipt.Matches(other) {
		t.Error("expected receipt to be rejected by a different vault")
	}
}

// TestChargeFee tests the basis-point fee split
func TestChargeFee(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 1000, "")
	v.SetFeeShare(2000, "partner")

	bal := types.NewBalanceFromAmount("usdc", math.NewInt(1000))
	fee, feeShare, err := v.ChargeFee(&bal)
	if err != nil {
		t.Fatalf("charge fee: %v", err)
	}
	// 10% fee = 100, of which 20% = 20 goes to the keyed sink
	if !fee.Value().Equal(math.NewInt(80)) {
		t.Errorf("expected primary fee 80, got %s", fee.Value())
	}
	if !feeShare.Value().Equal(math.NewInt(20)) {
		t.Errorf("expected fee share 20, got %s", feeShare.Value())
	}
	if !bal.Value().Equal(math.NewInt(900)) {
		t.Errorf("expected net 900, got %s", bal.Value())
	}
}

// TestHarvestPremiumWithFee tests the fee coming off the premium leg
func TestHarvestPremiumWithFee(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 500, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	premium := types.NewBalanceFromAmount("usdc", math.NewInt(200))
	if err := v.Delivery(&premium); err != nil {
		t.Fatalf("delivery: %v", err)
	}

	net, fee, feeShare, err := v.HarvestPremium(0)
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	// 5% of 200 = 10, no secondary split configured
	if !net.Value().Equal(math.NewInt(190)) {
		t.Errorf("expected net 190, got %s", net.Value())
	}
	if !fee.Value().Equal(math.NewInt(10)) {
		t.Errorf("expected fee 10, got %s", fee.Value())
	}
	if !feeShare.IsZero() {
		t.Errorf("expected no fee share, got %s", feeShare.Value())
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after harvest: %v", err)
	}
}

// TestDeliverySpreadsProRata tests the premium spreading across records
// by their combined working share
func TestDeliverySpreadsProRata(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "a", 300)
	depositTo(t, v, "b", 100)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	premium := types.NewBalanceFromAmount("usdc", math.NewInt(100))
	if err := v.Delivery(&premium); err != nil {
		t.Fatalf("delivery: %v", err)
	}
	if !v.Records[0].Shares[types.TagPremium].Equal(math.NewInt(75)) {
		t.Errorf("expected a's premium 75, got %s", v.Records[0].Shares[types.TagPremium])
	}
	if !v.Records[1].Shares[types.TagPremium].Equal(math.NewInt(25)) {
		t.Errorf("expected b's premium 25, got %s", v.Records[1].Shares[types.TagPremium])
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after delivery: %v", err)
	}
}

// TestCompoundInactive tests folding claimed-but-unclaimed funds back
// into the next round
func TestCompoundInactive(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "r1", 1000)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := v.Unsubscribe(0, nil); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	b := types.NewBidVault("theta-usdc", "usdc", v.RoundIndex, "")
	if _, err := v.Settle(b, math.NewInt(1_0000_0000), 8); err != nil {
		t.Fatalf("settle: %v", err)
	}

	compounded, err := v.CompoundInactive(0)
	if err != nil {
		t.Fatalf("compound: %v", err)
	}
	if !compounded.Equal(math.NewInt(1000)) {
		t.Errorf("expected compounded 1000, got %s", compounded)
	}
	if !v.Balances[types.TagWarmup].Value().Equal(math.NewInt(1000)) {
		t.Errorf("expected warmup 1000, got %s", v.Balances[types.TagWarmup].Value())
	}
	if !v.Balances[types.TagInactive].IsZero() {
		t.Errorf("expected empty inactive, got %s", v.Balances[types.TagInactive].Value())
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after compound: %v", err)
	}
}

// TestAdjustUserShareRatio tests reconciling rounding drift against the
// balance as ground truth
func TestAdjustUserShareRatio(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	depositTo(t, v, "a", 30)
	depositTo(t, v, "b", 70)

	// simulate drift: the balance gained 10 units the shares never saw
	drift := types.NewBalanceFromAmount("usdc", math.NewInt(10))
	if err := v.Balances[types.TagWarmup].Join(drift); err != nil {
		t.Fatalf("join drift: %v", err)
	}
	if err := v.CheckInvariant(); err == nil {
		t.Fatal("expected invariant to catch the drift")
	}

	if err := v.AdjustUserShareRatio(types.TagWarmup); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if !v.Records[0].Shares[types.TagWarmup].Equal(math.NewInt(33)) {
		t.Errorf("expected a rescaled to 33, got %s", v.Records[0].Shares[types.TagWarmup])
	}
	if !v.Records[1].Shares[types.TagWarmup].Equal(math.NewInt(77)) {
		t.Errorf("expected b rescaled to 77, got %s", v.Records[1].Shares[types.TagWarmup])
	}
	if err := v.CheckInvariant(); err != nil {
		t.Errorf("invariant after adjust: %v", err)
	}

	if err := v.AdjustUserShareRatio(types.ShareTag(42)); err == nil {
		t.Error("expected error adjusting an invalid tag")
	}
}

// TestUpdateIncentiveToken tests registering and guarding the third
// asset type
func TestUpdateIncentiveToken(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 0, "")
	if err := v.UpdateIncentiveToken("arb"); err != nil {
		t.Fatalf("register incentive: %v", err)
	}
	if err := v.UpdateIncentiveToken("arb"); err != nil {
		t.Errorf("expected re-registering the same denom to be a no-op: %v", err)
	}
	if err := v.UpdateIncentiveToken(""); err == nil {
		t.Error("expected error registering an empty denom")
	}

	// swapping while the pool holds funds is rejected
	depositTo(t, v, "r1", 100)
	if _, err := v.Activate("usdc", true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	in := types.NewBalanceFromAmount("arb", math.NewInt(50))
	if err := v.DeliverIncentive(&in); err != nil {
		t.Fatalf("deliver incentive: %v", err)
	}
	if err := v.UpdateIncentiveToken("osmo"); err == nil {
		t.Error("expected error swapping incentive denom over a non-empty pool")
	}
}
