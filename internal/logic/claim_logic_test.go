package logic

import (
	"context"
	"errors"
	"testing"

	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// wonBuyCampaign 走完整直购流程得到一个已结算的 WON 活动：
// 贡献 1M/2M/3M，花费 5120000 + 128000 费用，剩余 752000 可退
func wonBuyCampaign(t *testing.T, f *fixture) *model.CampaignModel {
	t.Helper()
	ctx := context.Background()

	campaign := f.newBuyCampaign(t, dec("8000000"))
	f.mustContribute(t, campaign.Id, aliceHex, dec("1000000"))
	f.mustContribute(t, campaign.Id, bobHex, dec("2000000"))
	f.mustContribute(t, campaign.Id, carolHex, dec("3000000"))

	require.NoError(t, f.allowList.Allow(targetHex, party.AllowKindBuyTarget))
	f.chain.nftOwner = custodyAddr
	require.NoError(t, f.buy.Buy(ctx, campaign.Id, dec("5120000"), targetHex, nil))
	return f.reload(t, campaign.Id)
}

func TestClaimAmountsUndeterminedWhileActive(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("1000"))

	// 活动进行中金额未定，非贡献者同样拿到这个错误
	_, err := f.claim.GetClaimAmounts(campaign.Id, aliceHex)
	require.ErrorIs(err, party.ErrNotFinalized)
	_, err = f.claim.GetClaimAmounts(campaign.Id, rivalAddr.Hex())
	require.ErrorIs(err, party.ErrNotFinalized)

	_, err = f.claim.Claim(context.Background(), campaign.Id, aliceHex)
	require.ErrorIs(err, party.ErrNotFinalized)
}

func TestClaimLostRefundsFullContribution(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newBuyCampaign(t, dec("1000000"))
	f.mustContribute(t, campaign.Id, aliceHex, dec("700"))
	f.mustContribute(t, campaign.Id, bobHex, dec("300"))
	f.expirePast(t, campaign.Id)
	require.NoError(f.buy.Expire(ctx, campaign.Id))

	amounts, err := f.claim.GetClaimAmounts(campaign.Id, aliceHex)
	require.NoError(err)
	require.True(amounts.TokenAmount.IsZero())
	require.True(amounts.EthAmount.Equal(dec("700")))

	record, err := f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.NoError(err)
	require.True(record.EthAmount.Equal(dec("700")))
	require.False(record.ViaWeth)
	require.True(f.chain.ethSent[common.HexToAddress(aliceHex)].Equal(dec("700")))

	// 非贡献者不可提领
	_, err = f.claim.Claim(ctx, campaign.Id, rivalAddr.Hex())
	require.ErrorIs(err, party.ErrNotContributor)
}

func TestClaimWonProRata(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	campaign := wonBuyCampaign(t, f)

	// held 5116800000 与 excess 752000 按 1/6、2/6、3/6 分，向下取整
	cases := []struct {
		address string
		tokens  string
		eth     string
	}{
		{aliceHex, "852800000", "125333"},
		{bobHex, "1705600000", "250666"},
		{carolHex, "2558400000", "376000"},
	}

	totalTokens := decimal.Zero
	totalEth := decimal.Zero
	for _, tc := range cases {
		contributed, err := f.claim.getContributor(campaign.Id, tc.address)
		require.NoError(err)
		used, err := f.claim.TotalEthUsed(campaign.Id, tc.address)
		require.NoError(err)
		require.True(used.Equal(contributed.Amount.Sub(dec(tc.eth))), "eth used for %s: %s", tc.address, used)

		record, err := f.claim.Claim(ctx, campaign.Id, tc.address)
		require.NoError(err)
		require.True(record.TokenAmount.Equal(dec(tc.tokens)), "tokens for %s: %s", tc.address, record.TokenAmount)
		require.True(record.EthAmount.Equal(dec(tc.eth)), "eth for %s: %s", tc.address, record.EthAmount)
		totalTokens = totalTokens.Add(record.TokenAmount)
		totalEth = totalEth.Add(record.EthAmount)
	}

	// 提领总和不超过池子，尘埃留在活动余额
	require.True(totalTokens.LessThanOrEqual(campaign.HeldShares))
	require.True(totalEth.LessThanOrEqual(dec("752000")))

	// 份额从托管地址转给了贡献者
	require.True(f.chain.tokensSent[common.HexToAddress(aliceHex)].Equal(dec("852800000")))
}

func TestClaimAtMostOnce(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	campaign := wonBuyCampaign(t, f)

	_, err := f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.NoError(err)

	_, err = f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.ErrorIs(err, party.ErrAlreadyClaimed)

	// 份额只转了一次
	require.True(f.chain.tokensSent[common.HexToAddress(aliceHex)].Equal(dec("852800000")))
}

func TestClaimMarkedEvenWhenTransferFails(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	campaign := wonBuyCampaign(t, f)

	// 效果先行：转账失败不会把 claimed 翻回去，第二次提领仍被拒
	f.chain.tokenErr = errors.New("transfer reverted")
	_, err := f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.Error(err)

	_, err = f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.ErrorIs(err, party.ErrAlreadyClaimed)
}

func TestClaimWethFallback(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newBuyCampaign(t, dec("1000000"))
	f.mustContribute(t, campaign.Id, aliceHex, dec("500"))
	f.expirePast(t, campaign.Id)
	require.NoError(f.buy.Expire(ctx, campaign.Id))

	// 贡献者是不可收款合约，退款走 WETH
	f.chain.ethViaWeth = true
	record, err := f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.NoError(err)
	require.True(record.ViaWeth)

	var stored model.ClaimRecordModel
	require.NoError(f.db.First(&stored, record.Id).Error)
	require.True(stored.ViaWeth)
}

func TestClaimSettlementPending(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	// WON 闭锁成功但结算失败（份额化不可用）
	campaign := f.newBuyCampaign(t, dec("1000000"))
	f.mustContribute(t, campaign.Id, aliceHex, dec("1025000"))
	require.NoError(f.allowList.Allow(targetHex, party.AllowKindBuyTarget))
	f.chain.nftOwner = custodyAddr
	f.vault.err = errors.New("vault unavailable")

	require.NoError(f.buy.Buy(ctx, campaign.Id, dec("1000000"), targetHex, nil))
	reloaded := f.reload(t, campaign.Id)
	require.Equal(party.StatusWon, reloaded.Status)
	require.Nil(reloaded.SettledAt)

	// 结算完成前金额未定
	_, err := f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.ErrorIs(err, party.ErrSettlementPending)

	// 结算重试成功后可以提领
	f.vault.err = nil
	require.NoError(f.settle.Settle(ctx, f.reload(t, campaign.Id)))
	_, err = f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.NoError(err)
}
