package logic

import (
	"context"
	"time"

	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BuyLogic 直购模式状态机：一次限价外部调用买断目标资产
type BuyLogic struct {
	db        *gorm.DB
	chain     ChainClient
	settle    *SettleLogic
	campaign  *CampaignLogic
	allowList *AllowListLogic
}

// NewBuyLogic 创建直购状态机
func NewBuyLogic(db *gorm.DB, chain ChainClient, settle *SettleLogic, campaign *CampaignLogic, allowList *AllowListLogic) *BuyLogic {
	return &BuyLogic{
		db:        db,
		chain:     chain,
		settle:    settle,
		campaign:  campaign,
		allowList: allowList,
	}
}

// Buy 对白名单内的目标合约做一笔带值调用买入资产。外部调用失败则整个
// 操作无效果、活动保持 ACTIVE 可重试；调用成功但资产没有到账（收钱不
// 交货的卖家）同样整体失败。成功后 totalSpent 一次性固定并触发结算。
// 活动级守卫挡住外部调用回调进来的重入，同一笔资金不会被花两次。
func (l *BuyLogic) Buy(ctx context.Context, campaignId int64, spendAmount decimal.Decimal, targetContract string, callData []byte) error {
	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return party.ErrOperationInFlight
	}
	defer release()

	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.Variant != party.VariantBuy {
		return party.ErrWrongVariant
	}
	if campaign.Status != party.StatusActive {
		return party.ErrCampaignNotActive
	}
	if !spendAmount.IsPositive() {
		return party.ErrInsufficientFunds
	}
	if spendAmount.GreaterThan(campaign.MaxPrice) {
		return party.ErrPriceTooHigh
	}

	totalSpent := party.TotalWithFee(spendAmount, campaign.EthFeeBps)
	if totalSpent.GreaterThan(campaign.TotalContributed) {
		return party.ErrInsufficientFunds
	}

	allowed, err := l.allowList.IsAllowed(targetContract, party.AllowKindBuyTarget)
	if err != nil {
		return err
	}
	if !allowed {
		return party.ErrTargetNotAllowed
	}

	// 唯一一次外部调用；在任何账务落库之前发生，失败即整体失败
	target := common.HexToAddress(targetContract)
	if err := l.chain.Call(ctx, target, callData, spendAmount); err != nil {
		logger.Warn("Campaign %d buy call to %s failed: %v", campaignId, targetContract, err)
		return party.ErrBuyFailed
	}

	// 防御性检查：资产必须已经到托管地址
	owner, err := l.chain.OwnerOf(ctx, common.HexToAddress(campaign.AssetContract), campaign.AssetTokenId)
	if err != nil || owner != l.chain.CustodyAddress() {
		logger.Error("Campaign %d paid but asset not delivered (owner=%s err=%v)", campaignId, owner.Hex(), err)
		return party.ErrBuyFailed
	}

	// WON 闭锁
	now := time.Now()
	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{
		"status":       party.StatusWon,
		"current_bid":  spendAmount,
		"total_spent":  totalSpent,
		"finalized_at": &now,
	}
	if err := tx.Model(campaign).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recordEvent(tx, campaignId, model.EventBought, map[string]interface{}{
		"spend":       spendAmount,
		"total_spent": totalSpent,
		"target":      targetContract,
	}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	campaign.Status = party.StatusWon
	campaign.CurrentBid = spendAmount
	campaign.TotalSpent = totalSpent
	campaign.FinalizedAt = &now

	// 结算失败不回滚 WON 闭锁，由结算重试任务接续
	if err := l.settle.Settle(ctx, campaign); err != nil {
		logger.Error("Campaign %d settlement failed, will retry: %v", campaignId, err)
	}

	logger.Info("Campaign %d bought asset for %s (totalSpent=%s)", campaignId, spendAmount, totalSpent)
	return nil
}

// Expire 逾期出口：过了逾期时间无条件转 LOST，全部贡献转为可退
func (l *BuyLogic) Expire(ctx context.Context, campaignId int64) error {
	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return party.ErrOperationInFlight
	}
	defer release()

	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.Variant != party.VariantBuy {
		return party.ErrWrongVariant
	}
	if campaign.Status != party.StatusActive {
		return party.ErrCampaignNotActive
	}
	if !campaign.Expired(time.Now()) {
		return party.ErrNotTimedOut
	}

	now := time.Now()
	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{
		"status":       party.StatusLost,
		"finalized_at": &now,
	}
	if err := tx.Model(campaign).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recordEvent(tx, campaignId, model.EventExpired, map[string]interface{}{
		"total_contributed": campaign.TotalContributed,
	}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	logger.Info("Campaign %d expired as lost", campaignId)
	return nil
}
