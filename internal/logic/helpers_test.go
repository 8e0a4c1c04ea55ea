package logic

import (
	"context"
	"testing"
	"time"

	"github.com/blues/pas/internal/config"
	"github.com/blues/pas/internal/database"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/blues/pas/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	custodyAddr = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	feeAddr     = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	shareAddr   = common.HexToAddress("0x000000000000000000000000000000000000005a")
	rivalAddr   = common.HexToAddress("0x00000000000000000000000000000000000000ee")

	operatorHex = "0x000000000000000000000000000000000000009f"
	aliceHex    = "0x00000000000000000000000000000000000000a1"
	bobHex      = "0x00000000000000000000000000000000000000b2"
	carolHex    = "0x00000000000000000000000000000000000000c3"
	targetHex   = "0x000000000000000000000000000000000000007a"
	resellerHex = "0x000000000000000000000000000000000000008b"
	assetHex    = "0x0000000000000000000000000000000000000401"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// mockChain 内存假链客户端，记录所有转出动作
type mockChain struct {
	gateBalance decimal.Decimal
	nftOwner    common.Address
	callErr     error
	ethErr      error
	ethViaWeth  bool
	tokenErr    error
	nftErr      error

	ethSent    map[common.Address]decimal.Decimal
	tokensSent map[common.Address]decimal.Decimal
	nftSentTo  []common.Address
	callCount  int
}

func newMockChain() *mockChain {
	return &mockChain{
		ethSent:    make(map[common.Address]decimal.Decimal),
		tokensSent: make(map[common.Address]decimal.Decimal),
	}
}

func (m *mockChain) CustodyAddress() common.Address { return custodyAddr }

func (m *mockChain) EthBalance(ctx context.Context, addr common.Address) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *mockChain) TokenBalance(ctx context.Context, token, holder common.Address) (decimal.Decimal, error) {
	return m.gateBalance, nil
}

func (m *mockChain) TransferToken(ctx context.Context, token, to common.Address, amount decimal.Decimal) error {
	if m.tokenErr != nil {
		return m.tokenErr
	}
	m.tokensSent[to] = m.tokensSent[to].Add(amount)
	return nil
}

func (m *mockChain) TransferETH(ctx context.Context, to common.Address, amount decimal.Decimal) (bool, error) {
	if m.ethErr != nil {
		return false, m.ethErr
	}
	m.ethSent[to] = m.ethSent[to].Add(amount)
	return m.ethViaWeth, nil
}

func (m *mockChain) OwnerOf(ctx context.Context, nftContract common.Address, tokenId string) (common.Address, error) {
	return m.nftOwner, nil
}

func (m *mockChain) TransferNFT(ctx context.Context, nftContract common.Address, tokenId string, to common.Address) error {
	if m.nftErr != nil {
		return m.nftErr
	}
	m.nftSentTo = append(m.nftSentTo, to)
	m.nftOwner = to
	return nil
}

func (m *mockChain) Call(ctx context.Context, target common.Address, data []byte, value decimal.Decimal) error {
	m.callCount++
	return m.callErr
}

// mockAdapter 内存假市场适配器
type mockAdapter struct {
	open         bool
	leader       common.Address
	finalized    bool
	winner       common.Address
	price        decimal.Decimal
	bidErr       error
	openErr      error
	finalizedErr error
	finalizeErr  error
	winnerErr    error
	placedBids   []decimal.Decimal
	finalizeHit  int
}

func (m *mockAdapter) CurrentPrice(ctx context.Context, auctionId string) (decimal.Decimal, error) {
	return m.price, nil
}

func (m *mockAdapter) AuctionOpen(ctx context.Context, auctionId string) (bool, error) {
	if m.openErr != nil {
		return false, m.openErr
	}
	return m.open, nil
}

func (m *mockAdapter) HighestBidder(ctx context.Context, auctionId string) (common.Address, error) {
	return m.leader, nil
}

func (m *mockAdapter) PlaceBid(ctx context.Context, auctionId string, amount decimal.Decimal) error {
	if m.bidErr != nil {
		return m.bidErr
	}
	m.placedBids = append(m.placedBids, amount)
	m.leader = custodyAddr
	return nil
}

func (m *mockAdapter) Finalized(ctx context.Context, auctionId string) (bool, error) {
	if m.finalizedErr != nil {
		return false, m.finalizedErr
	}
	return m.finalized, nil
}

func (m *mockAdapter) FinalizeAuction(ctx context.Context, auctionId string) error {
	if m.finalizeErr != nil {
		return m.finalizeErr
	}
	m.finalizeHit++
	m.finalized = true
	return nil
}

func (m *mockAdapter) IsWinner(ctx context.Context, auctionId string, bidder common.Address) (bool, error) {
	if m.winnerErr != nil {
		return false, m.winnerErr
	}
	return bidder == m.winner, nil
}

// mockVault 内存假份额化金库，按指定总量原样铸造
type mockVault struct {
	err       error
	lastAsset vault.Asset
	minted    decimal.Decimal
	reserve   decimal.Decimal
}

func (m *mockVault) Fractionalize(ctx context.Context, asset vault.Asset, supply, reservePrice decimal.Decimal) (vault.Result, error) {
	if m.err != nil {
		return vault.Result{}, m.err
	}
	m.lastAsset = asset
	m.minted = supply
	m.reserve = reservePrice
	return vault.Result{ShareToken: shareAddr, TotalSupply: supply}, nil
}

// fixture 一套完整的业务逻辑与假依赖
type fixture struct {
	db      *gorm.DB
	chain   *mockChain
	adapter *mockAdapter
	vault   *mockVault

	campaign   *CampaignLogic
	contribute *ContributeLogic
	allowList  *AllowListLogic
	settle     *SettleLogic
	auction    *AuctionLogic
	buy        *BuyLogic
	claim      *ClaimLogic
	reseller   *ResellerLogic
	emergency  *EmergencyLogic
}

func testCampaignConfig() config.CampaignConfig {
	return config.CampaignConfig{
		EthFeeBps:        250,
		TokenFeeBps:      250,
		TokenScale:       1000,
		ResaleMultiplier: "2",
		QuorumBps:        9000,
		FeeRecipient:     feeAddr.Hex(),
		Operator:         operatorHex,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	chain := newMockChain()
	adapter := &mockAdapter{}
	mv := &mockVault{}
	cfg := testCampaignConfig()

	campaignLogic := NewCampaignLogic(db, cfg)
	allowListLogic := NewAllowListLogic(db)
	settleLogic := NewSettleLogic(db, chain, mv, feeAddr)

	return &fixture{
		db:         db,
		chain:      chain,
		adapter:    adapter,
		vault:      mv,
		campaign:   campaignLogic,
		contribute: NewContributeLogic(db, chain),
		allowList:  allowListLogic,
		settle:     settleLogic,
		auction:    NewAuctionLogic(db, chain, adapter, settleLogic, campaignLogic),
		buy:        NewBuyLogic(db, chain, settleLogic, campaignLogic, allowListLogic),
		claim:      NewClaimLogic(db, chain, settleLogic, campaignLogic),
		reseller:   NewResellerLogic(db, chain, allowListLogic, campaignLogic),
		emergency:  NewEmergencyLogic(db, chain, campaignLogic, operatorHex),
	}
}

// newAuctionCampaign 创建一个 ACTIVE 的竞拍活动
func (f *fixture) newAuctionCampaign(t *testing.T) *model.CampaignModel {
	t.Helper()
	campaign := &model.CampaignModel{
		Name:          "vault keycard 42",
		Variant:       party.VariantAuction,
		AssetContract: assetHex,
		AssetTokenId:  "42",
		AuctionId:     "7",
	}
	require.NoError(t, f.campaign.CreateCampaign(campaign))
	return campaign
}

// newBuyCampaign 创建一个 ACTIVE 的直购活动
func (f *fixture) newBuyCampaign(t *testing.T, maxPrice decimal.Decimal) *model.CampaignModel {
	t.Helper()
	expires := time.Now().Add(24 * time.Hour)
	campaign := &model.CampaignModel{
		Name:          "vault keycard 42",
		Variant:       party.VariantBuy,
		AssetContract: assetHex,
		AssetTokenId:  "42",
		MaxPrice:      maxPrice,
		ExpiresAt:     &expires,
	}
	require.NoError(t, f.campaign.CreateCampaign(campaign))
	return campaign
}

// mustContribute 贡献入账，失败即终止测试。tx_hash 带唯一索引，每笔生成一个。
func (f *fixture) mustContribute(t *testing.T, campaignId int64, address string, amount decimal.Decimal) {
	t.Helper()
	_, err := f.contribute.Contribute(context.Background(), campaignId, address, amount, uuid.NewString(), 0)
	require.NoError(t, err)
}

// reload 重新读取活动
func (f *fixture) reload(t *testing.T, id int64) *model.CampaignModel {
	t.Helper()
	campaign, err := f.campaign.GetCampaign(id)
	require.NoError(t, err)
	return campaign
}

// expirePast 把活动的逾期时间改到过去
func (f *fixture) expirePast(t *testing.T, id int64) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&model.CampaignModel{}).
		Where("id = ?", id).Update("expires_at", &past).Error)
}

// eventNames 活动事件流水的名称序列
func (f *fixture) eventNames(t *testing.T, id int64) []string {
	t.Helper()
	var events []model.EventModel
	require.NoError(t, f.db.Where("campaign_id = ?", id).Order("created_at asc").Find(&events).Error)
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}
