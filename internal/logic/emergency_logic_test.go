package logic

import (
	"context"
	"testing"

	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEmergencyRequiresOperator(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	campaign := f.newAuctionCampaign(t)

	err := f.emergency.EmergencyWithdrawEth(ctx, aliceHex, campaign.Id, dec("1"))
	require.ErrorIs(err, party.ErrOnlyOperator)
	err = f.emergency.EmergencyCall(ctx, aliceHex, campaign.Id, targetHex, nil)
	require.ErrorIs(err, party.ErrOnlyOperator)
	err = f.emergency.EmergencyForceLost(ctx, aliceHex, campaign.Id)
	require.ErrorIs(err, party.ErrOnlyOperator)

	// 地址比较不区分大小写
	err = f.emergency.EmergencyWithdrawEth(ctx, common.HexToAddress(operatorHex).Hex(), campaign.Id, dec("1"))
	require.NoError(err)
}

func TestEmergencyWithdrawAndCall(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	campaign := f.newAuctionCampaign(t)

	require.NoError(f.emergency.EmergencyWithdrawEth(ctx, operatorHex, campaign.Id, dec("12345")))
	require.True(f.chain.ethSent[common.HexToAddress(operatorHex)].Equal(dec("12345")))

	require.NoError(f.emergency.EmergencyCall(ctx, operatorHex, campaign.Id, targetHex, []byte{0x01}))
	require.Equal(1, f.chain.callCount)
}

func TestEmergencyForceLostOpensRefunds(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	campaign := f.newAuctionCampaign(t)
	f.mustContribute(t, campaign.Id, aliceHex, dec("900"))

	require.NoError(f.emergency.EmergencyForceLost(ctx, operatorHex, campaign.Id))

	reloaded := f.reload(t, campaign.Id)
	require.Equal(party.StatusLost, reloaded.Status)
	require.Contains(f.eventNames(t, campaign.Id), model.EventForcedLost)

	// 强制关闭走与正常失败相同的全额退款路径
	record, err := f.claim.Claim(ctx, campaign.Id, aliceHex)
	require.NoError(err)
	require.True(record.EthAmount.Equal(dec("900")))

	// 终止状态不能再次强制关闭
	err = f.emergency.EmergencyForceLost(ctx, operatorHex, campaign.Id)
	require.ErrorIs(err, party.ErrCampaignNotActive)
}
