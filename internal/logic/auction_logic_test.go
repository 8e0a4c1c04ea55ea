package logic

import (
	"context"
	"errors"
	"testing"

	"github.com/blues/pas/internal/party"
	"github.com/stretchr/testify/require"
)

func TestBidUsesMaxSpendAndMarksLeading(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("4100000"))

	f.adapter.open = true
	f.adapter.leader = rivalAddr

	require.NoError(f.auction.Bid(context.Background(), campaign.Id))

	// 4100000 * 10000 / 10250 = 4000000，预留 2.5% 费用
	require.Len(f.adapter.placedBids, 1)
	require.True(f.adapter.placedBids[0].Equal(dec("4000000")))

	reloaded := f.reload(t, campaign.Id)
	require.True(reloaded.CurrentBid.Equal(dec("4000000")))
	require.True(reloaded.Leading)
}

func TestBidPreconditions(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("4100000"))

	// 拍卖未开
	f.adapter.open = false
	require.ErrorIs(f.auction.Bid(ctx, campaign.Id), party.ErrAuctionNotActive)

	// 资金池已领先
	f.adapter.open = true
	f.adapter.leader = custodyAddr
	require.ErrorIs(f.auction.Bid(ctx, campaign.Id), party.ErrAlreadyHighestBidder)

	// 直购活动不能出价
	buyCampaign := f.newBuyCampaign(t, dec("1000"))
	require.ErrorIs(f.auction.Bid(ctx, buyCampaign.Id), party.ErrWrongVariant)
}

func TestBidRollsBackWhenAdapterRejects(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("4100000"))

	f.adapter.open = true
	f.adapter.leader = rivalAddr
	f.adapter.bidErr = errors.New("bid below reserve")

	require.Error(f.auction.Bid(context.Background(), campaign.Id))

	// 适配器拒绝后账面无任何痕迹
	reloaded := f.reload(t, campaign.Id)
	require.True(reloaded.CurrentBid.IsZero())
	require.False(reloaded.Leading)
}

func TestFinalizeWonLatchesAndSettles(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("4100000"))

	f.adapter.open = true
	f.adapter.leader = rivalAddr
	require.NoError(f.auction.Bid(ctx, campaign.Id))

	// 拍卖结束，资金池是赢家，外部拍卖还没人结算
	f.adapter.open = false
	f.adapter.winner = custodyAddr
	require.NoError(f.auction.Finalize(ctx, campaign.Id))
	require.Equal(1, f.adapter.finalizeHit)

	reloaded := f.reload(t, campaign.Id)
	require.Equal(party.StatusWon, reloaded.Status)
	// totalSpent = 出价 + 费用，一次性固定
	require.True(reloaded.TotalSpent.Equal(dec("4100000")))
	require.NotNil(reloaded.FinalizedAt)
	require.NotNil(reloaded.SettledAt)

	// 结算：铸造 totalSpent * 1000，份额费 2.5% 划给费用接收方
	require.True(f.vault.minted.Equal(dec("4100000000")))
	require.True(reloaded.ShareSupply.Equal(dec("4100000000")))
	require.True(f.chain.tokensSent[feeAddr].Equal(dec("102500000")))
	require.True(reloaded.HeldShares.Equal(dec("3997500000")))
	// ETH 费 = totalSpent - currentBid
	require.True(f.chain.ethSent[feeAddr].Equal(dec("100000")))
	// 转售底价 = totalSpent * 2
	require.True(reloaded.ResalePrice.Equal(dec("8200000")))

	// 重复收束被显式拒绝，费用不会重复计提
	require.ErrorIs(f.auction.Finalize(ctx, campaign.Id), party.ErrCampaignNotActive)
	require.True(f.chain.tokensSent[feeAddr].Equal(dec("102500000")))
}

func TestFinalizeToleratesExternalSettlement(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("4100000"))
	f.adapter.open = true
	f.adapter.leader = rivalAddr
	require.NoError(f.auction.Bid(ctx, campaign.Id))

	// 第三方已经结算了外部拍卖
	f.adapter.open = false
	f.adapter.finalized = true
	f.adapter.winner = custodyAddr
	require.NoError(f.auction.Finalize(ctx, campaign.Id))
	require.Equal(0, f.adapter.finalizeHit)
	require.Equal(party.StatusWon, f.reload(t, campaign.Id).Status)
}

func TestFinalizeLostWhenOutbid(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("4100000"))
	f.adapter.open = false
	f.adapter.winner = rivalAddr

	require.NoError(f.auction.Finalize(ctx, campaign.Id))

	reloaded := f.reload(t, campaign.Id)
	require.Equal(party.StatusLost, reloaded.Status)
	require.True(reloaded.TotalSpent.IsZero())
	require.False(reloaded.Leading)
}

func TestFinalizeWhileAuctionOpen(t *testing.T) {
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)
	f.adapter.open = true

	err := f.auction.Finalize(context.Background(), campaign.Id)
	require.ErrorIs(t, err, party.ErrAuctionStillOpen)
}

func TestFinalizeDefaultsToLostWhenWinnerUnqueryable(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("1000"))
	f.adapter.open = false
	f.adapter.winnerErr = errors.New("contract selfdestructed")

	// 对手方不可查询时不锁死退款通道
	require.NoError(f.auction.Finalize(context.Background(), campaign.Id))
	require.Equal(party.StatusLost, f.reload(t, campaign.Id).Status)
}

func TestFinalizeDefaultsToLostWhenMarketUnreachable(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("4100000"))
	f.adapter.open = true
	require.NoError(f.auction.Bid(ctx, campaign.Id))

	// 市场合约整体自毁：所有状态查询都报错，收束仍然走完，
	// 缺省 LOST 开放全额退款，无逾期出口的活动也不会被卡死
	unreachable := errors.New("no contract code at address")
	f.adapter.openErr = unreachable
	f.adapter.finalizedErr = unreachable
	f.adapter.winnerErr = unreachable
	require.NoError(f.auction.Finalize(ctx, campaign.Id))

	campaign = f.reload(t, campaign.Id)
	require.Equal(party.StatusLost, campaign.Status)
	require.False(campaign.Leading)
	require.True(campaign.TotalSpent.IsZero())
	require.Equal(0, f.adapter.finalizeHit)

	// 全部贡献可退
	amounts, err := f.claim.GetClaimAmounts(campaign.Id, aliceHex)
	require.NoError(err)
	require.True(amounts.EthAmount.Equal(dec("4100000")))
}

func TestFinalizePropagatesExternalFinalizeFailure(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("4100000"))
	f.adapter.open = true
	require.NoError(f.auction.Bid(ctx, campaign.Id))

	// 市场尚可查询但结算交易失败：传播错误留待重试，
	// 不在赢家未定时就收束
	f.adapter.open = false
	f.adapter.finalized = false
	f.adapter.winner = custodyAddr
	callFailed := errors.New("execution reverted")
	f.adapter.finalizeErr = callFailed

	err := f.auction.Finalize(ctx, campaign.Id)
	require.ErrorIs(err, callFailed)
	require.Equal(party.StatusActive, f.reload(t, campaign.Id).Status)

	// 失败恢复后重试成功
	f.adapter.finalizeErr = nil
	require.NoError(f.auction.Finalize(ctx, campaign.Id))
	require.Equal(party.StatusWon, f.reload(t, campaign.Id).Status)
}

func TestAuctionExpire(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("1000"))

	// 未到逾期时间
	require.ErrorIs(f.auction.Expire(ctx, campaign.Id), party.ErrNotTimedOut)

	// 逾期但领先中：不可放弃一个可能赢下的出价
	f.expirePast(t, campaign.Id)
	f.adapter.leader = custodyAddr
	require.ErrorIs(f.auction.Expire(ctx, campaign.Id), party.ErrExpireWhileLeading)

	// 逾期且未领先
	f.adapter.leader = rivalAddr
	require.NoError(f.auction.Expire(ctx, campaign.Id))
	require.Equal(party.StatusLost, f.reload(t, campaign.Id).Status)

	// 终止后再次逾期被拒绝
	require.ErrorIs(f.auction.Expire(ctx, campaign.Id), party.ErrCampaignNotActive)
}
