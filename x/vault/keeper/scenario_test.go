package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/options-vault/x/vault/types"
)

// TestVaultLifecycle walks a full round: two depositors, activation,
// premium delivery, a losing settlement, harvest, unsubscribe and
// terminate, checking the ledger invariant at every stage.
func TestVaultLifecycle(t *testing.T) {
	v := types.NewDepositVault("theta-usdc", "usdc", "usdc", 1000, "")

	depositTo(t, v, "r1", 600)
	depositTo(t, v, "r2", 400)

	moved, err := v.Activate("usdc", true)
	require.NoError(t, err)
	require.True(t, moved.Equal(math.NewInt(1000)), "activated %s", moved)
	require.EqualValues(t, 1, v.RoundIndex)
	require.NoError(t, v.CheckInvariant())

	premium := types.NewBalanceFromAmount("usdc", math.NewInt(100))
	require.NoError(t, v.Delivery(&premium))
	require.True(t, v.Records[0].Shares[types.TagPremium].Equal(math.NewInt(60)))
	require.True(t, v.Records[1].Shares[types.TagPremium].Equal(math.NewInt(40)))

	bid := types.NewBidVault("theta-usdc", "usdc", 1, "")
	payoff, err := v.Settle(bid, math.NewInt(9000), 4)
	require.NoError(t, err)
	require.True(t, payoff.Equal(math.NewInt(100)), "payoff %s", payoff)
	require.True(t, bid.Balance.Value().Equal(math.NewInt(100)))
	require.True(t, v.Balances[types.TagActive].Value().Equal(math.NewInt(900)))
	require.True(t, v.Records[0].Shares[types.TagActive].Equal(math.NewInt(540)))
	require.True(t, v.Records[1].Shares[types.TagActive].Equal(math.NewInt(360)))
	require.NoError(t, v.CheckInvariant())

	net, fee, feeShare, err := v.HarvestPremium(0)
	require.NoError(t, err)
	require.True(t, net.Value().Equal(math.NewInt(54)), "net %s", net.Value())
	require.True(t, fee.Value().Equal(math.NewInt(6)), "fee %s", fee.Value())
	require.True(t, feeShare.IsZero())

	unsubscribed, err := v.Unsubscribe(1, nil)
	require.NoError(t, err)
	require.True(t, unsubscribed.Equal(math.NewInt(360)))
	require.True(t, v.ShareSupply[types.TagDeactivating].Equal(math.NewInt(360)))

	require.NoError(t, v.Terminate())
	require.False(t, v.HasNext)
	require.True(t, v.Balances[types.TagInactive].Value().Equal(math.NewInt(900)))
	require.NoError(t, v.CheckInvariant())

	first, err := v.ClaimInactive(0)
	require.NoError(t, err)
	require.True(t, first.Value().Equal(math.NewInt(540)))
	second, err := v.ClaimInactive(1)
	require.NoError(t, err)
	require.True(t, second.Value().Equal(math.NewInt(360)))
	require.NoError(t, v.CheckInvariant())
}

// TestMultiLegExtraction drains a position across three asset types in
// one pass, the composition ReduceFund performs, verifying the fee
// split on the premium and incentive legs.
func TestMultiLegExtraction(t *testing.T) {
	v := types.NewDepositVault("theta-multi", "usdc", "atom", 1000, "")
	v.SetFeeShare(2000, "partner")

	depositTo(t, v, "r1", 1000)
	_, err := v.Activate("usdc", true)
	require.NoError(t, err)
	depositTo(t, v, "r1", 200)

	premium := types.NewBalanceFromAmount("atom", math.NewInt(300))
	require.NoError(t, v.Delivery(&premium))
	require.NoError(t, v.UpdateIncentiveToken("arb"))
	incentive := types.NewBalanceFromAmount("arb", math.NewInt(100))
	require.NoError(t, v.DeliverIncentive(&incentive))
	require.NoError(t, v.CheckInvariant())

	warmupOut, err := v.ReduceWarmup(0, math.NewInt(150))
	require.NoError(t, err)
	require.Equal(t, "usdc", warmupOut.Denom)
	require.True(t, warmupOut.Value().Equal(math.NewInt(150)))
	require.True(t, v.Records[0].Shares[types.TagWarmup].Equal(math.NewInt(50)))

	premiumOut, fee, feeShare, err := v.HarvestPremium(0)
	require.NoError(t, err)
	require.Equal(t, "atom", premiumOut.Denom)
	require.True(t, premiumOut.Value().Equal(math.NewInt(270)), "net %s", premiumOut.Value())
	require.True(t, fee.Value().Equal(math.NewInt(24)), "fee %s", fee.Value())
	require.True(t, feeShare.Value().Equal(math.NewInt(6)), "fee share %s", feeShare.Value())

	incentiveOut, fee, feeShare, err := v.RedeemIncentive(0)
	require.NoError(t, err)
	require.Equal(t, "arb", incentiveOut.Denom)
	require.True(t, incentiveOut.Value().Equal(math.NewInt(90)))
	require.True(t, fee.Value().Equal(math.NewInt(8)))
	require.True(t, feeShare.Value().Equal(math.NewInt(2)))

	require.True(t, v.Records[0].Shares[types.TagActive].Equal(math.NewInt(1000)))
	require.NoError(t, v.CheckInvariant())
}
