package logic

import (
	"context"
	"testing"

	"github.com/blues/pas/internal/party"
	"github.com/stretchr/testify/require"
)

func TestGuardTryAcquire(t *testing.T) {
	require := require.New(t)
	g := newCampaignGuard()

	release, ok := g.TryAcquire(1)
	require.True(ok)

	// 同一活动的第二次获取失败而不是排队
	_, ok = g.TryAcquire(1)
	require.False(ok)

	// 其他活动不受影响
	release2, ok := g.TryAcquire(2)
	require.True(ok)
	release2()

	release()
	release3, ok := g.TryAcquire(1)
	require.True(ok)
	release3()
}

func TestGuardBlocksReentrantOperations(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("1000"))

	// 模拟外部调用期间回调进来的重入：守卫占用时任何状态变更操作直接拒绝
	release, ok := guard.TryAcquire(campaign.Id)
	require.True(ok)
	defer release()

	ctx := context.Background()
	_, err := f.contribute.Contribute(ctx, campaign.Id, aliceHex, dec("1"), "0xdead", 0)
	require.ErrorIs(err, party.ErrOperationInFlight)
	require.ErrorIs(f.auction.Bid(ctx, campaign.Id), party.ErrOperationInFlight)
	require.ErrorIs(f.auction.Finalize(ctx, campaign.Id), party.ErrOperationInFlight)
	require.ErrorIs(f.auction.Expire(ctx, campaign.Id), party.ErrOperationInFlight)
	require.ErrorIs(f.buy.Buy(ctx, campaign.Id, dec("1"), targetHex, nil), party.ErrOperationInFlight)
	require.ErrorIs(f.emergency.EmergencyForceLost(ctx, operatorHex, campaign.Id), party.ErrOperationInFlight)
	require.ErrorIs(f.reseller.SupportReseller(ctx, campaign.Id, aliceHex, resellerHex, nil), party.ErrOperationInFlight)
	require.ErrorIs(f.reseller.RouteApproved(ctx, campaign.Id), party.ErrOperationInFlight)
}
