package app

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"

	vaultkeeper "github.com/openalpha/options-vault/x/vault/keeper"
)

type vaultBankAdapter struct {
	keeper *bankkeeper.BaseKeeper
}

func newVaultBankAdapter(keeper *bankkeeper.BaseKeeper) vaultkeeper.BankKeeper {
	return vaultBankAdapter{keeper: keeper}
}

func (a vaultBankAdapter) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	if a.keeper == nil {
		return fmt.Errorf("bank keeper not set")
	}
	return a.keeper.SendCoinsFromAccountToModule(ctx, senderAddr, recipientModule, amt)
}

func (a vaultBankAdapter) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	if a.keeper == nil {
		return fmt.Errorf("bank keeper not set")
	}
	return a.keeper.SendCoinsFromModuleToAccount(ctx, senderModule, recipientAddr, amt)
}
