package keeper

import (
	"context"
	"encoding/json"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/options-vault/x/vault/types"
)

// Store key prefixes
var (
	DepositVaultKeyPrefix   = []byte{0x01}
	BidVaultKeyPrefix       = []byte{0x02}
	RefundVaultKeyPrefix    = []byte{0x03}
	DepositReceiptKeyPrefix = []byte{0x04}
	BidReceiptKeyPrefix     = []byte{0x05}
	FeeFundKeyPrefix        = []byte{0x06}
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
}

// Keeper manages the vault module state
type Keeper struct {
	cdc        codec.BinaryCodec
	storeKey   storetypes.StoreKey
	bankKeeper BankKeeper
	logger     log.Logger
	authority  string
}

// NewKeeper creates a new vault keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	bankKeeper BankKeeper,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:        cdc,
		storeKey:   storeKey,
		bankKeeper: bankKeeper,
		authority:  authority,
		logger:     logger.With("module", "x/vault"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the manager authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// requireAuthority gates the manager-side operations.
func (k *Keeper) requireAuthority(addr string) error {
	if addr != k.authority {
		return types.ErrUnauthorized
	}
	return nil
}

// ============ Deposit Vault Operations ============

// SetDepositVault saves a deposit ledger to the store
func (k *Keeper) SetDepositVault(ctx sdk.Context, vault *types.DepositVault) {
	store := k.GetStore(ctx)
	key := append(DepositVaultKeyPrefix, []byte(vault.VaultID)...)
	bz, _ := json.Marshal(vault)
	store.Set(key, bz)
}

// GetDepositVault retrieves a deposit ledger from the store
func (k *Keeper) GetDepositVault(ctx sdk.Context, vaultID string) *types.DepositVault {
	store := k.GetStore(ctx)
	key := append(DepositVaultKeyPrefix, []byte(vaultID)...)
	bz := store.Get(key)
	if bz == nil {
		return nil
	}
	var vault types.DepositVault
	if err := json.Unmarshal(bz, &vault); err != nil {
		return nil
	}
	return &vault
}

// GetAllDepositVaults returns all deposit ledgers
func (k *Keeper) GetAllDepositVaults(ctx sdk.Context) []*types.DepositVault {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, DepositVaultKeyPrefix)
	defer iterator.Close()

	var vaults []*types.DepositVault
	for ; iterator.Valid(); iterator.Next() {
		var vault types.DepositVault
		if err := json.Unmarshal(iterator.Value(), &vault); err != nil {
			continue
		}
		vaults = append(vaults, &vault)
	}
	return vaults
}

// ============ Bid Vault Operations ============

// SetBidVault saves a bid ledger to the store
func (k *Keeper) SetBidVault(ctx sdk.Context, vault *types.BidVault) {
	store := k.GetStore(ctx)
	key := append(BidVaultKeyPrefix, []byte(vault.VaultID)...)
	bz, _ := json.Marshal(vault)
	store.Set(key, bz)
}

// GetBidVault retrieves a bid ledger from the store
func (k *Keeper) GetBidVault(ctx sdk.Context, vaultID string) *types.BidVault {
	store := k.GetStore(ctx)
	key := append(BidVaultKeyPrefix, []byte(vaultID)...)
	bz := store.Get(key)
	if bz == nil {
		return nil
	}
	var vault types.BidVault
	if err := json.Unmarshal(bz, &vault); err != nil {
		return nil
	}
	return &vault
}

// ============ Refund Vault Operations ============

// SetRefundVault saves a refund ledger to the store, keyed by denom
func (k *Keeper) SetRefundVault(ctx sdk.Context, vault *types.RefundVault) {
	store := k.GetStore(ctx)
	key := append(RefundVaultKeyPrefix, []byte(vault.Denom)...)
	bz, _ := json.Marshal(vault)
	store.Set(key, bz)
}

// GetRefundVault retrieves the refund ledger for a denom, creating an
// empty one on first use
func (k *Keeper) GetRefundVault(ctx sdk.Context, denom string) *types.RefundVault {
	store := k.GetStore(ctx)
	key := append(RefundVaultKeyPrefix, []byte(denom)...)
	bz := store.Get(key)
	if bz == nil {
		return types.NewRefundVault(denom)
	}
	var vault types.RefundVault
	if err := json.Unmarshal(bz, &vault); err != nil {
		return types.NewRefundVault(denom)
	}
	return &vault
}

// ============ Receipt Operations ============

// SetDepositReceipt saves a deposit receipt to the store
func (k *Keeper) SetDepositReceipt(ctx sdk.Context, receipt types.DepositReceipt) {
	store := k.GetStore(ctx)
	key := append(DepositReceiptKeyPrefix, []byte(receipt.ReceiptID)...)
	bz, _ := json.Marshal(receipt)
	store.Set(key, bz)
}

// GetDepositReceipt retrieves a deposit receipt from the store
func (k *Keeper) GetDepositReceipt(ctx sdk.Context, receiptID string) *types.DepositReceipt {
	store := k.GetStore(ctx)
	key := append(DepositReceiptKeyPrefix, []byte(receiptID)...)
	bz := store.Get(key)
	if bz == nil {
		return nil
	}
	var receipt types.DepositReceipt
	if err := json.Unmarshal(bz, &receipt); err != nil {
		return nil
	}
	return &receipt
}

// BurnDepositReceipt removes a spent deposit receipt
func (k *Keeper) BurnDepositReceipt(ctx sdk.Context, receiptID string) {
	store := k.GetStore(ctx)
	store.Delete(append(DepositReceiptKeyPrefix, []byte(receiptID)...))
}

// SetBidReceipt saves a bid receipt to the store
func (k *Keeper) SetBidReceipt(ctx sdk.Context, receipt types.BidReceipt) {
	store := k.GetStore(ctx)
	key := append(BidReceiptKeyPrefix, []byte(receipt.ReceiptID)...)
	bz, _ := json.Marshal(receipt)
	store.Set(key, bz)
}

// GetBidReceipt retrieves a bid receipt from the store
func (k *Keeper) GetBidReceipt(ctx sdk.Context, receiptID string) *types.BidReceipt {
	store := k.GetStore(ctx)
	key := append(BidReceiptKeyPrefix, []byte(receiptID)...)
	bz := store.Get(key)
	if bz == nil {
		return nil
	}
	var receipt types.BidReceipt
	if err := json.Unmarshal(bz, &receipt); err != nil {
		return nil
	}
	return &receipt
}

// BurnBidReceipt removes a spent bid receipt
func (k *Keeper) BurnBidReceipt(ctx sdk.Context, receiptID string) {
	store := k.GetStore(ctx)
	store.Delete(append(BidReceiptKeyPrefix, []byte(receiptID)...))
}

// validateDepositReceipts checks every presented receipt exists and was
// issued by the vault in its current round or an earlier one.
func (k *Keeper) validateDepositReceipts(ctx sdk.Context, vault *types.DepositVault, receiptIDs []string) error {
	for _, id := range receiptIDs {
		receipt := k.GetDepositReceipt(ctx, id)
		if receipt == nil || !receipt.Matches(vault) {
			return types.ErrInvalidDepositReceipt
		}
	}
	return nil
}

// validateBidReceipts checks every presented receipt against the bid ledger.
func (k *Keeper) validateBidReceipts(ctx sdk.Context, vault *types.BidVault, receiptIDs []string) error {
	for _, id := range receiptIDs {
		receipt := k.GetBidReceipt(ctx, id)
		if receipt == nil || !receipt.Matches(vault) {
			return types.ErrInvalidBidReceipt
		}
	}
	return nil
}
