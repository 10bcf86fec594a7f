package keeper

import (
	"encoding/json"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/options-vault/x/vault/types"
)

// GlobalFeeFundID is the identifier for the primary fee sink
const GlobalFeeFundID = "global"

// FeeFund accumulates extracted fees per asset type. The global fund
// takes the primary fee cut; additional funds are keyed by the
// fee-share key configured on a vault. Fund balances stay inside the
// module account; only the accounting lives here.
type FeeFund struct {
	FundID    string          `json:"fund_id"`
	Balances  []types.Balance `json:"balances"`
	UpdatedAt int64           `json:"updated_at"`
}

// NewFeeFund creates an empty fee fund
func NewFeeFund(fundID string) *FeeFund {
	return &FeeFund{FundID: fundID, UpdatedAt: time.Now().Unix()}
}

// Credit joins bal into the fund's balance of the same denom, creating
// the slot on first sight.
func (f *FeeFund) Credit(bal types.Balance) error {
	for i := range f.Balances {
		if f.Balances[i].Denom == bal.Denom {
			if err := f.Balances[i].Join(bal); err != nil {
				return err
			}
			f.UpdatedAt = time.Now().Unix()
			return nil
		}
	}
	f.Balances = append(f.Balances, bal)
	f.UpdatedAt = time.Now().Unix()
	return nil
}

// Debit splits amount of denom out of the fund.
func (f *FeeFund) Debit(denom string, amount math.Int) (types.Balance, error) {
	for i := range f.Balances {
		if f.Balances[i].Denom == denom {
			return f.Balances[i].Split(amount)
		}
	}
	return types.Balance{}, types.ErrInvalidBalanceValue.Wrapf("fund %s holds no %s", f.FundID, denom)
}

// Total returns the fund's holding of denom.
func (f *FeeFund) Total(denom string) math.Int {
	for i := range f.Balances {
		if f.Balances[i].Denom == denom {
			return f.Balances[i].Value()
		}
	}
	return math.ZeroInt()
}

// SetFeeFund saves a fee fund to the store
func (k *Keeper) SetFeeFund(ctx sdk.Context, fund *FeeFund) {
	store := k.GetStore(ctx)
	key := append(FeeFundKeyPrefix, []byte(fund.FundID)...)
	bz, _ := json.Marshal(fund)
	store.Set(key, bz)
}

// GetFeeFund retrieves a fee fund, creating an empty one on first use
func (k *Keeper) GetFeeFund(ctx sdk.Context, fundID string) *FeeFund {
	store := k.GetStore(ctx)
	key := append(FeeFundKeyPrefix, []byte(fundID)...)
	bz := store.Get(key)
	if bz == nil {
		return NewFeeFund(fundID)
	}
	var fund FeeFund
	if err := json.Unmarshal(bz, &fund); err != nil {
		return NewFeeFund(fundID)
	}
	return &fund
}

// routeFees deposits a fee split extracted by a vault operation: the
// primary cut into the global fund, the share cut into the vault's
// keyed fund (or the global fund when no key is configured). Zero
// balances are destroyed instead of creating empty fund slots.
func (k *Keeper) routeFees(ctx sdk.Context, vault *types.DepositVault, fee, feeShare types.Balance) error {
	if !fee.IsZero() {
		fund := k.GetFeeFund(ctx, GlobalFeeFundID)
		if err := fund.Credit(fee); err != nil {
			return err
		}
		k.SetFeeFund(ctx, fund)
	} else if err := fee.Destroy(); err != nil {
		return err
	}

	if !feeShare.IsZero() {
		fundID := vault.FeeShareKey
		if fundID == "" {
			fundID = GlobalFeeFundID
		}
		fund := k.GetFeeFund(ctx, fundID)
		if err := fund.Credit(feeShare); err != nil {
			return err
		}
		k.SetFeeFund(ctx, fund)
	} else if err := feeShare.Destroy(); err != nil {
		return err
	}
	return nil
}
