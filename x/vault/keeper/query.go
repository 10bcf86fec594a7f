package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/options-vault/x/vault/types"
)

// QueryServer defines the vault QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// Vault returns a deposit ledger by ID
func (q *QueryServer) Vault(ctx context.Context, vaultID string) (*types.DepositVault, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	vault := q.keeper.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, types.ErrVaultNotFound
	}
	return vault, nil
}

// Vaults returns all deposit ledgers
func (q *QueryServer) Vaults(ctx context.Context, offset, limit uint64) ([]*types.DepositVault, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	allVaults := q.keeper.GetAllDepositVaults(sdkCtx)

	total := uint64(len(allVaults))

	// Apply pagination
	if offset >= total {
		return []*types.DepositVault{}, total, nil
	}

	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}

	return allVaults[offset:end], total, nil
}

// BidVault returns a bid ledger by vault ID
func (q *QueryServer) BidVault(ctx context.Context, vaultID string) (*types.BidVault, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	bid := q.keeper.GetBidVault(sdkCtx, vaultID)
	if bid == nil {
		return nil, types.ErrVaultNotFound
	}
	return bid, nil
}

// Position returns the record a deposit receipt is entitled to, as one
// share amount per sub-pool tag.
func (q *QueryServer) Position(ctx context.Context, vaultID, receiptID string) (*types.DepositShare, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	vault := q.keeper.GetDepositVault(sdkCtx, vaultID)
	if vault == nil {
		return nil, types.ErrVaultNotFound
	}
	receipt := q.keeper.GetDepositReceipt(sdkCtx, receiptID)
	if receipt == nil || !receipt.Matches(vault) {
		return nil, types.ErrInvalidDepositReceipt
	}
	for i := range vault.Records {
		if vault.Records[i].ReceiptID == receiptID {
			rec := vault.Records[i]
			return &rec, nil
		}
	}
	return nil, types.ErrInvalidDepositReceipt
}

// BidPosition returns a bid receipt's share weight and its current
// pro-rata estimate against the pooled payoff balance.
func (q *QueryServer) BidPosition(ctx context.Context, vaultID, receiptID string) (share, estimate math.Int, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	bid := q.keeper.GetBidVault(sdkCtx, vaultID)
	if bid == nil {
		return math.ZeroInt(), math.ZeroInt(), types.ErrVaultNotFound
	}
	receipt := q.keeper.GetBidReceipt(sdkCtx, receiptID)
	if receipt == nil || !receipt.Matches(bid) {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInvalidBidReceipt
	}
	for i := range bid.Records {
		if bid.Records[i].ReceiptID != receiptID {
			continue
		}
		share = bid.Records[i].Share
		estimate = math.ZeroInt()
		if !bid.ShareSupply.IsZero() {
			estimate = share.Mul(bid.Balance.Value()).Quo(bid.ShareSupply)
		}
		return share, estimate, nil
	}
	return math.ZeroInt(), math.ZeroInt(), types.ErrInvalidBidReceipt
}

// PendingRefund returns an address's reclaimable amount of denom.
func (q *QueryServer) PendingRefund(ctx context.Context, address, denom string) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	refund := q.keeper.GetRefundVault(sdkCtx, denom)
	for i := range refund.Records {
		if refund.Records[i].Address == address {
			return refund.Records[i].Amount, nil
		}
	}
	return math.ZeroInt(), nil
}

// FeeFundBalance returns a fee fund's holding of denom.
func (q *QueryServer) FeeFundBalance(ctx context.Context, fundID, denom string) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	fund := q.keeper.GetFeeFund(sdkCtx, fundID)
	return fund.Total(denom), nil
}
