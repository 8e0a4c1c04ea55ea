package logic

import (
	"context"
	"strings"
	"time"

	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EmergencyLogic 应急逃生通道：仅受信操作员可用，用于救回卡死的资金或
// 资产（例如误转进托管地址的 NFT）。这是破玻璃通道，不走正常账务路径，
// 也不得用于抽走已经划归贡献者提领的资金。
type EmergencyLogic struct {
	db       *gorm.DB
	chain    ChainClient
	campaign *CampaignLogic
	operator string
}

// NewEmergencyLogic 创建应急逻辑
func NewEmergencyLogic(db *gorm.DB, chain ChainClient, campaign *CampaignLogic, operator string) *EmergencyLogic {
	return &EmergencyLogic{db: db, chain: chain, campaign: campaign, operator: operator}
}

// requireOperator 校验调用者是否为受信操作员
func (l *EmergencyLogic) requireOperator(caller string) error {
	if !strings.EqualFold(caller, l.operator) {
		return party.ErrOnlyOperator
	}
	return nil
}

// EmergencyWithdrawEth 提走指定金额的 ETH 到操作员地址，任何状态可用
func (l *EmergencyLogic) EmergencyWithdrawEth(ctx context.Context, caller string, campaignId int64, amount decimal.Decimal) error {
	if err := l.requireOperator(caller); err != nil {
		return err
	}
	if _, err := l.campaign.GetCampaign(campaignId); err != nil {
		return err
	}

	if _, err := l.chain.TransferETH(ctx, common.HexToAddress(l.operator), amount); err != nil {
		return err
	}
	logger.Warn("Emergency ETH withdraw of %s for campaign %d by operator", amount, campaignId)
	return nil
}

// EmergencyCall 对任意目标做一次外部调用，任何状态可用
func (l *EmergencyLogic) EmergencyCall(ctx context.Context, caller string, campaignId int64, target string, data []byte) error {
	if err := l.requireOperator(caller); err != nil {
		return err
	}
	if _, err := l.campaign.GetCampaign(campaignId); err != nil {
		return err
	}

	if err := l.chain.Call(ctx, common.HexToAddress(target), data, decimal.Zero); err != nil {
		return err
	}
	logger.Warn("Emergency call to %s for campaign %d by operator", target, campaignId)
	return nil
}

// EmergencyForceLost 强制把 ACTIVE 活动收束为 LOST，对外部市场被攻破或
// 永久卡死的情况兜底，走与正常失败相同的全额退款提领路径
func (l *EmergencyLogic) EmergencyForceLost(ctx context.Context, caller string, campaignId int64) error {
	if err := l.requireOperator(caller); err != nil {
		return err
	}

	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return party.ErrOperationInFlight
	}
	defer release()

	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.Status != party.StatusActive {
		return party.ErrCampaignNotActive
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
		"leading":      false,
		"finalized_at": &now,
	}
	if err := tx.Model(campaign).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recordEvent(tx, campaignId, model.EventForcedLost, map[string]interface{}{
		"total_contributed": campaign.TotalContributed,
	}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	logger.Warn("Campaign %d force-closed as lost by operator", campaignId)
	return nil
}
