package keeper

import (
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/options-vault/metrics"
)

// EndBlocker is called at the end of each block to audit ledger state
func (k *Keeper) EndBlocker(ctx sdk.Context) error {
	blockHeight := ctx.BlockHeight()
	start := time.Now()
	mc := metrics.GetCollector()

	violations := 0
	vaults := k.GetAllDepositVaults(ctx)
	for _, vault := range vaults {
		if err := vault.CheckInvariant(); err != nil {
			violations++
			mc.RecordInvariantViolation(vault.VaultID, "deposit")
			k.logger.Error("Ledger invariant violated",
				"vault_id", vault.VaultID,
				"error", err,
			)
			ctx.EventManager().EmitEvent(
				sdk.NewEvent(
					"vault_invariant_violation",
					sdk.NewAttribute("vault_id", vault.VaultID),
					sdk.NewAttribute("error", err.Error()),
				),
			)
			continue
		}
		bid := k.GetBidVault(ctx, vault.VaultID)
		if bid == nil {
			continue
		}
		if err := bid.CheckInvariant(); err != nil {
			violations++
			mc.RecordInvariantViolation(vault.VaultID, "bid")
			k.logger.Error("Bid ledger invariant violated",
				"vault_id", vault.VaultID,
				"error", err,
			)
		}
	}

	totalDuration := time.Since(start)
	mc.RecordEndBlock(blockHeight, float64(totalDuration.Microseconds())/1000.0)

	k.logger.Debug("Vault EndBlocker completed",
		"block", blockHeight,
		"total_ms", totalDuration.Milliseconds(),
		"vaults_audited", len(vaults),
		"violations", violations,
	)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_endblock",
			sdk.NewAttribute("block_height", math.NewInt(blockHeight).String()),
			sdk.NewAttribute("vaults_audited", math.NewInt(int64(len(vaults))).String()),
			sdk.NewAttribute("violations", math.NewInt(int64(violations)).String()),
		),
	)

	return nil
}
