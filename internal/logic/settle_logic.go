package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/blues/pas/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettleLogic 结算与费用引擎：WON 闭锁后执行一次，计算协议费用、转售底价
// 与铸造总量，并触发份额化。
type SettleLogic struct {
	db             *gorm.DB
	chain          ChainClient
	fractionalizer vault.Fractionalizer
	feeRecipient   common.Address
}

// NewSettleLogic 创建结算引擎
func NewSettleLogic(db *gorm.DB, chain ChainClient, fractionalizer vault.Fractionalizer, feeRecipient common.Address) *SettleLogic {
	return &SettleLogic{
		db:             db,
		chain:          chain,
		fractionalizer: fractionalizer,
		feeRecipient:   feeRecipient,
	}
}

// Settle 执行结算。幂等：已完成的步骤跳过，可由结算重试任务安全重放。
// 份额化与每一笔费用划转各自落检查点，任一步之后崩溃或失败，重放都
// 不会重复铸造或重复计提费用。
func (l *SettleLogic) Settle(ctx context.Context, campaign *model.CampaignModel) error {
	if campaign.Status != party.StatusWon {
		return fmt.Errorf("settle called on %s campaign %d", campaign.Status, campaign.Id)
	}
	if l.Settled(campaign) {
		return nil
	}

	// 第一步：份额化
	if campaign.ShareToken == "" {
		supply := party.ScaleSupply(campaign.TotalSpent, campaign.TokenScale)
		resalePrice := campaign.TotalSpent.Mul(campaign.ResaleMultiplier).Floor()

		result, err := l.fractionalizer.Fractionalize(ctx, vault.Asset{
			Contract: common.HexToAddress(campaign.AssetContract),
			TokenId:  campaign.AssetTokenId,
		}, supply, resalePrice)
		if err != nil {
			return fmt.Errorf("fractionalize failed: %w", err)
		}

		updates := map[string]interface{}{
			"share_token":  result.ShareToken.Hex(),
			"share_supply": result.TotalSupply,
			"resale_price": resalePrice,
		}
		if err := l.db.Model(campaign).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to persist fractionalization: %w", err)
		}
		campaign.ShareToken = result.ShareToken.Hex()
		campaign.ShareSupply = result.TotalSupply
		campaign.ResalePrice = resalePrice
	}

	// 第二步：费用划转与留存份额。每笔转账成功后立即落检查点，
	// 后面一笔失败时已付的不会在重试中再付一遍
	tokenFee := party.FeeAmount(campaign.ShareSupply, campaign.TokenFeeBps)
	splitFee := decimal.Zero
	if campaign.SplitRecipient != "" && campaign.SplitBps > 0 {
		splitFee = party.FeeAmount(campaign.ShareSupply, campaign.SplitBps)
	}
	held := campaign.ShareSupply.Sub(tokenFee).Sub(splitFee)
	ethFee := campaign.TotalSpent.Sub(campaign.CurrentBid)

	shareToken := common.HexToAddress(campaign.ShareToken)
	if campaign.TokenFeePaidAt == nil {
		if tokenFee.IsPositive() {
			if err := l.chain.TransferToken(ctx, shareToken, l.feeRecipient, tokenFee); err != nil {
				return fmt.Errorf("token fee transfer failed: %w", err)
			}
		}
		if err := l.checkpoint(campaign, "token_fee_paid_at", &campaign.TokenFeePaidAt); err != nil {
			return err
		}
	}
	if campaign.SplitPaidAt == nil {
		if splitFee.IsPositive() {
			if err := l.chain.TransferToken(ctx, shareToken, common.HexToAddress(campaign.SplitRecipient), splitFee); err != nil {
				return fmt.Errorf("split transfer failed: %w", err)
			}
		}
		if err := l.checkpoint(campaign, "split_paid_at", &campaign.SplitPaidAt); err != nil {
			return err
		}
	}
	if campaign.EthFeePaidAt == nil {
		if ethFee.IsPositive() {
			if _, err := l.chain.TransferETH(ctx, l.feeRecipient, ethFee); err != nil {
				return fmt.Errorf("eth fee transfer failed: %w", err)
			}
		}
		if err := l.checkpoint(campaign, "eth_fee_paid_at", &campaign.EthFeePaidAt); err != nil {
			return err
		}
	}

	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()
	updates := map[string]interface{}{
		"held_shares": held,
		"settled_at":  &now,
	}
	if err := tx.Model(campaign).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recordEvent(tx, campaign.Id, model.EventFinalized, map[string]interface{}{
		"won":         true,
		"total_spent": campaign.TotalSpent,
		"eth_fee":     ethFee,
		"token_fee":   tokenFee,
		"split":       splitFee,
		"held_shares": held,
		"share_token": campaign.ShareToken,
	}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	campaign.HeldShares = held
	campaign.SettledAt = &now
	logger.Info("Campaign %d settled: supply=%s held=%s ethFee=%s",
		campaign.Id, campaign.ShareSupply, held, ethFee)
	return nil
}

// checkpoint 单笔划转完成后立即落库的检查点，重试时据此跳过
func (l *SettleLogic) checkpoint(campaign *model.CampaignModel, column string, mark **time.Time) error {
	now := time.Now()
	if err := l.db.Model(campaign).Update(column, &now).Error; err != nil {
		return fmt.Errorf("failed to persist %s checkpoint: %w", column, err)
	}
	*mark = &now
	return nil
}

// Settled 结算是否已完成
func (l *SettleLogic) Settled(campaign *model.CampaignModel) bool {
	return campaign.SettledAt != nil
}
