package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/openalpha/options-vault/x/vault/types"
)

// TestFeeFundCreditDebit tests the per-denom fund accounting
func TestFeeFundCreditDebit(t *testing.T) {
	fund := NewFeeFund(GlobalFeeFundID)

	if err := fund.Credit(types.NewBalanceFromAmount("usdc", math.NewInt(100))); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := fund.Credit(types.NewBalanceFromAmount("usdc", math.NewInt(50))); err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if err := fund.Credit(types.NewBalanceFromAmount("atom", math.NewInt(30))); err != nil {
		t.Fatalf("atom credit: %v", err)
	}

	if !fund.Total("usdc").Equal(math.NewInt(150)) {
		t.Errorf("expected 150 usdc, got %s", fund.Total("usdc"))
	}
	if !fund.Total("atom").Equal(math.NewInt(30)) {
		t.Errorf("expected 30 atom, got %s", fund.Total("atom"))
	}
	if !fund.Total("osmo").IsZero() {
		t.Errorf("expected no osmo, got %s", fund.Total("osmo"))
	}

	out, err := fund.Debit("usdc", math.NewInt(40))
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !out.Value().Equal(math.NewInt(40)) {
		t.Errorf("expected debited 40, got %s", out.Value())
	}
	if !fund.Total("usdc").Equal(math.NewInt(110)) {
		t.Errorf("expected 110 usdc left, got %s", fund.Total("usdc"))
	}

	if _, err := fund.Debit("usdc", math.NewInt(111)); err == nil {
		t.Error("expected error overdrawing the fund")
	}
	if _, err := fund.Debit("osmo", math.NewInt(1)); err == nil {
		t.Error("expected error debiting an unknown denom")
	}
}
