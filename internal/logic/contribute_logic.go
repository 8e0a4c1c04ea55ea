package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContributeLogic 贡献账本业务逻辑
type ContributeLogic struct {
	db    *gorm.DB
	chain ChainClient
}

// NewContributeLogic 创建贡献账本业务逻辑
func NewContributeLogic(db *gorm.DB, chain ChainClient) *ContributeLogic {
	return &ContributeLogic{db: db, chain: chain}
}

// Contribute 记入一笔贡献。campaign 必须 ACTIVE，金额必须为正；
// 配置了门槛代币时贡献者必须达到最低持仓；直购模式不允许超出
// maxPrice + 费用的硬上限。所有效果在一个事务里提交，失败无部分效果。
// 地址统一小写入账；活动守卫串行化同一活动的并发贡献，账本增量用
// SQL 表达式累加，总额不会被并发写覆盖。
func (l *ContributeLogic) Contribute(ctx context.Context, campaignId int64, address string, amount decimal.Decimal, txHash string, blockNum int64) (*model.ContributeRecordModel, error) {
	if !amount.IsPositive() {
		return nil, party.ErrZeroContribution
	}
	address = strings.ToLower(address)

	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return nil, party.ErrOperationInFlight
	}
	defer release()

	var campaign model.CampaignModel
	if err := l.db.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, party.ErrCampaignNotFound
		}
		return nil, err
	}

	if campaign.Status != party.StatusActive {
		return nil, party.ErrCampaignNotActive
	}

	// 门槛代币检查
	if campaign.GateToken != "" {
		balance, err := l.chain.TokenBalance(ctx, common.HexToAddress(campaign.GateToken), common.HexToAddress(address))
		if err != nil {
			return nil, fmt.Errorf("gate token balance query failed: %w", err)
		}
		if balance.LessThan(campaign.GateMinBalance) {
			return nil, party.ErrNotGateHolder
		}
	}

	// 直购模式硬上限：超出 maxPrice + 费用的资金无法使用，直接拒绝
	if campaign.Variant == party.VariantBuy {
		if campaign.TotalContributed.Add(amount).GreaterThan(campaign.FeeCeiling()) {
			return nil, party.ErrContributionCap
		}
	}

	newTotal := campaign.TotalContributed.Add(amount)
	record := &model.ContributeRecordModel{
		CampaignId: campaignId,
		Address:    address,
		Amount:     amount,
		TxHash:     txHash,
		BlockNum:   blockNum,
		TotalAfter: newTotal,
	}

	// 开始事务
	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// 贡献流水
	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// 贡献者累计账本
	var contributor model.ContributorModel
	err := tx.Where("campaign_id = ? AND lower(address) = ?", campaignId, address).First(&contributor).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		contributor = model.ContributorModel{
			CampaignId: campaignId,
			Address:    address,
			Amount:     amount,
		}
		if err := tx.Create(&contributor).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	case err != nil:
		tx.Rollback()
		return nil, err
	default:
		if err := tx.Model(&contributor).
			Update("amount", gorm.Expr("amount + ?", amount)).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// 活动总额，数据库侧累加
	if err := tx.Model(&campaign).
		Update("total_contributed", gorm.Expr("total_contributed + ?", amount)).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := recordEvent(tx, campaignId, model.EventContributed, map[string]interface{}{
		"contributor": address,
		"amount":      amount,
		"total":       newTotal,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return record, nil
}

// GetContributor 获取贡献者累计账本，地址大小写不敏感
func (l *ContributeLogic) GetContributor(campaignId int64, address string) (*model.ContributorModel, error) {
	var contributor model.ContributorModel
	err := l.db.Where("campaign_id = ? AND lower(address) = ?", campaignId, strings.ToLower(address)).First(&contributor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, party.ErrNotContributor
	}
	if err != nil {
		return nil, err
	}
	return &contributor, nil
}

// GetCampaignContributions 获取活动贡献流水
func (l *ContributeLogic) GetCampaignContributions(campaignId int64, page, pageSize int) ([]model.ContributeRecordModel, int64, error) {
	var records []model.ContributeRecordModel
	var total int64

	if err := l.db.Model(&model.ContributeRecordModel{}).
		Where("campaign_id = ?", campaignId).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
