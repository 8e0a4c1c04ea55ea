package logic

import (
	"errors"
	"fmt"

	"github.com/blues/pas/internal/config"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignLogic 活动业务逻辑
type CampaignLogic struct {
	db  *gorm.DB
	cfg config.CampaignConfig
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB, cfg config.CampaignConfig) *CampaignLogic {
	return &CampaignLogic{db: db, cfg: cfg}
}

// CreateCampaign 创建活动（工厂入口），未指定的费用参数用配置默认值
func (l *CampaignLogic) CreateCampaign(campaign *model.CampaignModel) error {
	l.applyDefaults(campaign)
	if err := l.validateCampaign(campaign); err != nil {
		return err
	}

	campaign.Status = party.StatusActive
	campaign.TotalContributed = decimal.Zero
	campaign.TotalSpent = decimal.Zero

	if err := l.db.Create(campaign).Error; err != nil {
		return err
	}
	return nil
}

// GetCampaign 获取活动详情
func (l *CampaignLogic) GetCampaign(id int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, party.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to fetch campaign: %w", err)
	}
	return &campaign, nil
}

// GetCampaigns 获取活动列表
func (l *CampaignLogic) GetCampaigns() ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	if err := l.db.Order("id").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch campaigns: %w", err)
	}
	return campaigns, nil
}

// GetCampaignStats 获取活动统计信息
func (l *CampaignLogic) GetCampaignStats(id int64) (map[string]interface{}, error) {
	campaign, err := l.GetCampaign(id)
	if err != nil {
		return nil, err
	}

	var contributorCount int64
	if err := l.db.Model(&model.ContributorModel{}).
		Where("campaign_id = ?", id).
		Count(&contributorCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count contributors: %w", err)
	}

	var contributionCount int64
	if err := l.db.Model(&model.ContributeRecordModel{}).
		Where("campaign_id = ?", id).
		Count(&contributionCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count contributions: %w", err)
	}

	var claimedCount int64
	if err := l.db.Model(&model.ContributorModel{}).
		Where("campaign_id = ? AND claimed = ?", id, true).
		Count(&claimedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count claims: %w", err)
	}

	return map[string]interface{}{
		"campaign_id":        campaign.Id,
		"status":             campaign.Status,
		"variant":            campaign.Variant,
		"total_contributed":  campaign.TotalContributed,
		"total_spent":        campaign.TotalSpent,
		"contributor_count":  contributorCount,
		"contribution_count": contributionCount,
		"claimed_count":      claimedCount,
		"share_token":        campaign.ShareToken,
		"share_supply":       campaign.ShareSupply,
	}, nil
}

// applyDefaults 填充费用默认值
func (l *CampaignLogic) applyDefaults(campaign *model.CampaignModel) {
	if campaign.EthFeeBps == 0 {
		campaign.EthFeeBps = l.cfg.EthFeeBps
	}
	if campaign.TokenFeeBps == 0 {
		campaign.TokenFeeBps = l.cfg.TokenFeeBps
	}
	if campaign.TokenScale == 0 {
		campaign.TokenScale = l.cfg.TokenScale
	}
	if campaign.QuorumBps == 0 {
		campaign.QuorumBps = l.cfg.QuorumBps
	}
	if campaign.ResaleMultiplier.IsZero() {
		if m, err := decimal.NewFromString(l.cfg.ResaleMultiplier); err == nil {
			campaign.ResaleMultiplier = m
		} else {
			campaign.ResaleMultiplier = decimal.NewFromInt(1)
		}
	}
}

// validateCampaign 验证活动数据
func (l *CampaignLogic) validateCampaign(campaign *model.CampaignModel) error {
	if campaign.Name == "" {
		return errors.New("活动名称不能为空")
	}
	if campaign.AssetContract == "" || campaign.AssetTokenId == "" {
		return errors.New("目标资产不能为空")
	}
	switch campaign.Variant {
	case party.VariantAuction:
		if campaign.AuctionId == "" {
			return errors.New("竞拍模式必须指定拍卖ID")
		}
	case party.VariantBuy:
		if !campaign.MaxPrice.IsPositive() {
			return errors.New("直购模式必须指定价格上限")
		}
		if campaign.ExpiresAt == nil {
			return errors.New("直购模式必须指定逾期时间")
		}
	default:
		return errors.New("未知的收购方式")
	}
	return nil
}
