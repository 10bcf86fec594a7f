package keeper

import (
	"context"

	"cosmossdk.io/math"
	"github.com/openalpha/options-vault/x/vault/types"
)

// MsgServer defines the vault MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// CreateVault handles MsgCreateVault
func (m *MsgServer) CreateVault(ctx context.Context, msg *types.MsgCreateVault) (*types.MsgCreateVaultResponse, error) {
	vault, err := m.keeper.CreateVault(ctx, msg.Manager, msg.VaultID, msg.DepositDenom, msg.BidDenom, msg.FeeBP, msg.Metadata)
	if err != nil {
		return nil, err
	}
	return &types.MsgCreateVaultResponse{VaultID: vault.VaultID}, nil
}

// Deposit handles MsgDeposit
func (m *MsgServer) Deposit(ctx context.Context, msg *types.MsgDeposit) (*types.MsgDepositResponse, error) {
	amount, ok := math.NewIntFromString(msg.Amount)
	if !ok {
		return nil, types.ErrInvalidBalanceValue.Wrapf("amount %q", msg.Amount)
	}
	receipt, warmup, err := m.keeper.Deposit(ctx, msg.Depositor, msg.VaultID, amount, msg.ReceiptIDs)
	if err != nil {
		return nil, err
	}
	return &types.MsgDepositResponse{
		ReceiptID:    receipt.ReceiptID,
		WarmupShares: warmup.String(),
	}, nil
}

// Unsubscribe handles MsgUnsubscribe
func (m *MsgServer) Unsubscribe(ctx context.Context, msg *types.MsgUnsubscribe) (*types.MsgUnsubscribeResponse, error) {
	var amount *math.Int
	if msg.Amount != "" {
		amt, ok := math.NewIntFromString(msg.Amount)
		if !ok {
			return nil, types.ErrInvalidBalanceValue.Wrapf("amount %q", msg.Amount)
		}
		amount = &amt
	}
	receipt, moved, err := m.keeper.Unsubscribe(ctx, msg.Holder, msg.VaultID, msg.ReceiptIDs, amount)
	if err != nil {
		return nil, err
	}
	return &types.MsgUnsubscribeResponse{
		ReceiptID: receipt.ReceiptID,
		Moved:     moved.String(),
	}, nil
}

// Claim handles MsgClaim
func (m *MsgServer) Claim(ctx context.Context, msg *types.MsgClaim) (*types.MsgClaimResponse, error) {
	receipt, claimed, err := m.keeper.Claim(ctx, msg.Holder, msg.VaultID, msg.ReceiptIDs)
	if err != nil {
		return nil, err
	}
	resp := &types.MsgClaimResponse{Claimed: claimed.String()}
	if receipt != nil {
		resp.ReceiptID = receipt.ReceiptID
	}
	return resp, nil
}

// Harvest handles MsgHarvest
func (m *MsgServer) Harvest(ctx context.Context, msg *types.MsgHarvest) (*types.MsgHarvestResponse, error) {
	receipt, harvested, fee, err := m.keeper.Harvest(ctx, msg.Holder, msg.VaultID, msg.ReceiptIDs)
	if err != nil {
		return nil, err
	}
	resp := &types.MsgHarvestResponse{
		Harvested: harvested.String(),
		Fee:       fee.String(),
	}
	if receipt != nil {
		resp.ReceiptID = receipt.ReceiptID
	}
	return resp, nil
}

// Activate handles MsgActivate
func (m *MsgServer) Activate(ctx context.Context, msg *types.MsgActivate) (*types.MsgActivateResponse, error) {
	moved, roundIndex, err := m.keeper.Activate(ctx, msg.Manager, msg.VaultID, msg.Denom, msg.HasNext)
	if err != nil {
		return nil, err
	}
	return &types.MsgActivateResponse{
		Activated:  moved.String(),
		RoundIndex: roundIndex,
	}, nil
}

// Settle handles MsgSettle
func (m *MsgServer) Settle(ctx context.Context, msg *types.MsgSettle) (*types.MsgSettleResponse, error) {
	sharePrice, ok := math.NewIntFromString(msg.SharePrice)
	if !ok {
		return nil, types.ErrInvalidBalanceValue.Wrapf("share price %q", msg.SharePrice)
	}
	payoff, err := m.keeper.Settle(ctx, msg.Manager, msg.VaultID, sharePrice, msg.Decimals)
	if err != nil {
		return nil, err
	}
	return &types.MsgSettleResponse{Payoff: payoff.String()}, nil
}

// NewBid handles MsgNewBid
func (m *MsgServer) NewBid(ctx context.Context, msg *types.MsgNewBid) (*types.MsgNewBidResponse, error) {
	share, ok := math.NewIntFromString(msg.Share)
	if !ok {
		return nil, types.ErrInvalidBalanceValue.Wrapf("share %q", msg.Share)
	}
	receipt, err := m.keeper.NewBid(ctx, msg.Bidder, msg.VaultID, share)
	if err != nil {
		return nil, err
	}
	return &types.MsgNewBidResponse{ReceiptID: receipt.ReceiptID}, nil
}

// Exercise handles MsgExercise
func (m *MsgServer) Exercise(ctx context.Context, msg *types.MsgExercise) (*types.MsgExerciseResponse, error) {
	payoff, incentive, err := m.keeper.Exercise(ctx, msg.Bidder, msg.VaultID, msg.ReceiptIDs)
	if err != nil {
		return nil, err
	}
	return &types.MsgExerciseResponse{
		Payoff:    payoff.String(),
		Incentive: incentive.String(),
	}, nil
}
