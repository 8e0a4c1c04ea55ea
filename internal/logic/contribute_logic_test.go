package logic

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestContributeAccumulatesLedger(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)

	f.mustContribute(t, campaign.Id, aliceHex, dec("1000000"))
	f.mustContribute(t, campaign.Id, bobHex, dec("2000000"))
	f.mustContribute(t, campaign.Id, aliceHex, dec("500000"))

	// 活动总额与贡献者累计账本一致
	reloaded := f.reload(t, campaign.Id)
	require.True(reloaded.TotalContributed.Equal(dec("3500000")))

	alice, err := f.contribute.GetContributor(campaign.Id, aliceHex)
	require.NoError(err)
	require.True(alice.Amount.Equal(dec("1500000")))
	require.False(alice.Claimed)

	bob, err := f.contribute.GetContributor(campaign.Id, bobHex)
	require.NoError(err)
	require.True(bob.Amount.Equal(dec("2000000")))

	// 流水带入账后的总额
	records, total, err := f.contribute.GetCampaignContributions(campaign.Id, 1, 10)
	require.NoError(err)
	require.EqualValues(3, total)
	require.Len(records, 3)
}

func TestContributeConcurrentConservesTotal(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)

	// 并发入账被活动守卫串行化，未抢到守卫的调用重试；
	// 全部落账后总额与各账本严格守恒，没有丢失的更新
	addresses := []string{aliceHex, bobHex, carolHex}
	var wg sync.WaitGroup
	for _, addr := range addresses {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				for {
					_, err := f.contribute.Contribute(context.Background(), campaign.Id, addr, dec("7"), uuid.NewString(), 0)
					if err == nil {
						break
					}
					if !errors.Is(err, party.ErrOperationInFlight) {
						t.Errorf("contribute for %s: %v", addr, err)
						return
					}
				}
			}
		}(addr)
	}
	wg.Wait()

	reloaded := f.reload(t, campaign.Id)
	require.True(reloaded.TotalContributed.Equal(dec("210")))
	for _, addr := range addresses {
		contributor, err := f.contribute.GetContributor(campaign.Id, addr)
		require.NoError(err)
		require.True(contributor.Amount.Equal(dec("70")))
	}
}

func TestContributeNormalizesAddressCase(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	campaign := f.newBuyCampaign(t, dec("1000000"))

	aliceUpper := "0x00000000000000000000000000000000000000A1"
	f.mustContribute(t, campaign.Id, aliceUpper, dec("600"))
	f.mustContribute(t, campaign.Id, aliceHex, dec("400"))

	// 两种写法落在同一条账本上
	contributor, err := f.contribute.GetContributor(campaign.Id, aliceUpper)
	require.NoError(err)
	require.True(contributor.Amount.Equal(dec("1000")))

	var count int64
	require.NoError(f.db.Model(&model.ContributorModel{}).
		Where("campaign_id = ?", campaign.Id).Count(&count).Error)
	require.EqualValues(1, count)

	// 提领同样大小写不敏感
	f.expirePast(t, campaign.Id)
	require.NoError(f.buy.Expire(ctx, campaign.Id))
	record, err := f.claim.Claim(ctx, campaign.Id, aliceUpper)
	require.NoError(err)
	require.True(record.EthAmount.Equal(dec("1000")))
}

func TestContributeRejectsZeroAmount(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)

	_, err := f.contribute.Contribute(context.Background(), campaign.Id, aliceHex, decimal.Zero, uuid.NewString(), 0)
	require.ErrorIs(err, party.ErrZeroContribution)

	_, err = f.contribute.Contribute(context.Background(), campaign.Id, aliceHex, dec("-1"), uuid.NewString(), 0)
	require.ErrorIs(err, party.ErrZeroContribution)
}

func TestContributeRejectsUnknownCampaign(t *testing.T) {
	f := newFixture(t)

	_, err := f.contribute.Contribute(context.Background(), 9999, aliceHex, dec("1"), uuid.NewString(), 0)
	require.ErrorIs(t, err, party.ErrCampaignNotFound)
}

func TestContributeRejectsTerminalCampaign(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	campaign := f.newAuctionCampaign(t)

	require.NoError(f.db.Model(campaign).Update("status", party.StatusLost).Error)

	_, err := f.contribute.Contribute(context.Background(), campaign.Id, aliceHex, dec("1"), uuid.NewString(), 0)
	require.ErrorIs(err, party.ErrCampaignNotActive)
}

func TestContributeGateToken(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	campaign := f.newAuctionCampaign(t)
	require.NoError(f.db.Model(campaign).Updates(map[string]interface{}{
		"gate_token":       "0x0000000000000000000000000000000000000777",
		"gate_min_balance": dec("100"),
	}).Error)

	// 持仓不足
	f.chain.gateBalance = dec("99")
	_, err := f.contribute.Contribute(context.Background(), campaign.Id, aliceHex, dec("1000"), uuid.NewString(), 0)
	require.ErrorIs(err, party.ErrNotGateHolder)

	// 达到门槛
	f.chain.gateBalance = dec("100")
	_, err = f.contribute.Contribute(context.Background(), campaign.Id, aliceHex, dec("1000"), uuid.NewString(), 0)
	require.NoError(err)
}

func TestContributeBuyVariantHardCap(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	// maxPrice 1000000，上限 = 1000000 + 2.5% = 1025000
	campaign := f.newBuyCampaign(t, dec("1000000"))

	f.mustContribute(t, campaign.Id, aliceHex, dec("1000000"))
	f.mustContribute(t, campaign.Id, bobHex, dec("25000"))

	// 超出上限的第一笔被整体拒绝，而不是部分入账
	_, err := f.contribute.Contribute(context.Background(), campaign.Id, carolHex, dec("1"), uuid.NewString(), 0)
	require.ErrorIs(err, party.ErrContributionCap)

	reloaded := f.reload(t, campaign.Id)
	require.True(reloaded.TotalContributed.Equal(dec("1025000")))

	var count int64
	require.NoError(f.db.Model(&model.ContributeRecordModel{}).
		Where("campaign_id = ?", campaign.Id).Count(&count).Error)
	require.EqualValues(2, count)
}
