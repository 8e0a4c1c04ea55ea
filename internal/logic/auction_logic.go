package logic

import (
	"context"
	"time"

	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/market"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"gorm.io/gorm"
)

// AuctionLogic 竞拍模式状态机：反复出价直到赢得、输掉或放弃外部拍卖
type AuctionLogic struct {
	db       *gorm.DB
	chain    ChainClient
	adapter  market.Adapter
	settle   *SettleLogic
	campaign *CampaignLogic
}

// NewAuctionLogic 创建竞拍状态机
func NewAuctionLogic(db *gorm.DB, chain ChainClient, adapter market.Adapter, settle *SettleLogic, campaign *CampaignLogic) *AuctionLogic {
	return &AuctionLogic{
		db:       db,
		chain:    chain,
		adapter:  adapter,
		settle:   settle,
		campaign: campaign,
	}
}

// Bid 以资金池允许的最大金额出价。任何人可调用；资金池已领先或拍卖
// 不在进行中时拒绝。最大出价 = totalContributed 扣除费用预留后的余量。
func (l *AuctionLogic) Bid(ctx context.Context, campaignId int64) error {
	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return party.ErrOperationInFlight
	}
	defer release()

	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.Variant != party.VariantAuction {
		return party.ErrWrongVariant
	}
	if campaign.Status != party.StatusActive {
		return party.ErrCampaignNotActive
	}

	open, err := l.adapter.AuctionOpen(ctx, campaign.AuctionId)
	if err != nil {
		return err
	}
	if !open {
		return party.ErrAuctionNotActive
	}

	leader, err := l.adapter.HighestBidder(ctx, campaign.AuctionId)
	if err != nil {
		return err
	}
	custody := l.chain.CustodyAddress()
	if leader == custody {
		return party.ErrAlreadyHighestBidder
	}

	// 逾期且未领先的活动只应走 expire，不再接受新出价
	if campaign.Expired(time.Now()) {
		return party.ErrCampaignNotActive
	}

	// 预留费用后的最大可出价金额，向下取整
	maxBid := party.MaxSpend(campaign.TotalContributed, campaign.EthFeeBps)
	if !maxBid.IsPositive() {
		return party.ErrInsufficientFunds
	}

	// 先记后调：出价金额与领先标记在外部调用前落库，适配器拒绝则整体回滚
	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{
		"current_bid": maxBid,
		"leading":     true,
	}
	if err := tx.Model(campaign).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recordEvent(tx, campaignId, model.EventBid, map[string]interface{}{
		"amount":     maxBid,
		"auction_id": campaign.AuctionId,
	}); err != nil {
		tx.Rollback()
		return err
	}

	if err := l.adapter.PlaceBid(ctx, campaign.AuctionId, maxBid); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	logger.Info("Campaign %d placed bid %s on auction %s", campaignId, maxBid, campaign.AuctionId)
	return nil
}

// Finalize 在外部拍卖结束后收束活动。任何人可调用；外部拍卖尚未被
// 结算时先触发适配器的结算（容忍第三方已抢先结算）。资金池是记录的
// 赢家则转 WON 并触发结算引擎，否则转 LOST、全部贡献可退。
// 终止状态下的再次调用显式拒绝，费用与份额不会重复计提。
func (l *AuctionLogic) Finalize(ctx context.Context, campaignId int64) error {
	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return party.ErrOperationInFlight
	}
	defer release()

	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.Variant != party.VariantAuction {
		return party.ErrWrongVariant
	}
	if campaign.Status != party.StatusActive {
		return party.ErrCampaignNotActive
	}

	// 对手方状态查询失败不中断收束：合约已自毁或不可查询时，
	// 按拍卖已结束处理，最终缺省为 LOST，退款通道不被锁死
	open, err := l.adapter.AuctionOpen(ctx, campaign.AuctionId)
	if err != nil {
		logger.Warn("Campaign %d auction open query failed, treating auction as closed: %v", campaignId, err)
		open = false
	}
	if open {
		return party.ErrAuctionStillOpen
	}

	finalized, err := l.adapter.Finalized(ctx, campaign.AuctionId)
	if err != nil {
		logger.Warn("Campaign %d finalized query failed, skipping external finalize: %v", campaignId, err)
		finalized = true
	}
	if !finalized {
		// 结算交易失败仍然传播：市场尚可查询，留给下次重试，
		// 不在赢家未定时就按 LOST 收束
		if err := l.adapter.FinalizeAuction(ctx, campaign.AuctionId); err != nil {
			return err
		}
	}

	custody := l.chain.CustodyAddress()
	won, err := l.adapter.IsWinner(ctx, campaign.AuctionId, custody)
	if err != nil {
		// 对手方合约已不可查询时不锁死退款通道，按 LOST 收束
		logger.Warn("Campaign %d winner query failed, defaulting to lost: %v", campaignId, err)
		won = false
	}

	if !won {
		return l.markLost(campaignId, campaign, model.EventFinalized, map[string]interface{}{
			"won":         false,
			"total_spent": 0,
		})
	}

	// WON 闭锁：totalSpent 在此一次性固定，此后不再变更
	totalSpent := party.TotalWithFee(campaign.CurrentBid, campaign.EthFeeBps)
	now := time.Now()

	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{
		"status":       party.StatusWon,
		"total_spent":  totalSpent,
		"finalized_at": &now,
	}
	if err := tx.Model(campaign).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	campaign.Status = party.StatusWon
	campaign.TotalSpent = totalSpent
	campaign.FinalizedAt = &now

	// 结算失败不回滚 WON 闭锁，由结算重试任务接续
	if err := l.settle.Settle(ctx, campaign); err != nil {
		logger.Error("Campaign %d settlement failed, will retry: %v", campaignId, err)
	}

	logger.Info("Campaign %d finalized as won, totalSpent=%s", campaignId, totalSpent)
	return nil
}

// Expire 逾期出口：过了逾期时间且资金池未在拍卖中领先时转 LOST。
// 领先中的活动不可过期，避免放弃一个可能赢下的出价。
func (l *AuctionLogic) Expire(ctx context.Context, campaignId int64) error {
	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return party.ErrOperationInFlight
	}
	defer release()

	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.Variant != party.VariantAuction {
		return party.ErrWrongVariant
	}
	if campaign.Status != party.StatusActive {
		return party.ErrCampaignNotActive
	}
	if !campaign.Expired(time.Now()) {
		return party.ErrNotTimedOut
	}

	leader, err := l.adapter.HighestBidder(ctx, campaign.AuctionId)
	if err == nil && leader == l.chain.CustodyAddress() {
		return party.ErrExpireWhileLeading
	}

	return l.markLost(campaignId, campaign, model.EventExpired, map[string]interface{}{
		"total_contributed": campaign.TotalContributed,
	})
}

// markLost 统一的 LOST 收束：totalSpent 保持 0，全部贡献转为可退
func (l *AuctionLogic) markLost(campaignId int64, campaign *model.CampaignModel, event string, data map[string]interface{}) error {
	now := time.Now()

	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{
		"status":       party.StatusLost,
		"leading":      false,
		"finalized_at": &now,
	}
	if err := tx.Model(campaign).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recordEvent(tx, campaignId, event, data); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	campaign.Status = party.StatusLost
	campaign.FinalizedAt = &now
	logger.Info("Campaign %d closed as lost", campaignId)
	return nil
}
