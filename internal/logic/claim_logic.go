package logic

import (
	"context"
	"errors"
	"strings"

	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClaimLogic 提领引擎：终止状态后每个贡献者恰好提领一次
type ClaimLogic struct {
	db       *gorm.DB
	chain    ChainClient
	settle   *SettleLogic
	campaign *CampaignLogic
}

// NewClaimLogic 创建提领引擎
func NewClaimLogic(db *gorm.DB, chain ChainClient, settle *SettleLogic, campaign *CampaignLogic) *ClaimLogic {
	return &ClaimLogic{db: db, chain: chain, settle: settle, campaign: campaign}
}

// ClaimAmounts 提领金额
type ClaimAmounts struct {
	TokenAmount decimal.Decimal `json:"token_amount"`
	EthAmount   decimal.Decimal `json:"eth_amount"`
}

// GetClaimAmounts 计算贡献者可提领的份额与 ETH。只在终止状态下有意义，
// ACTIVE 时金额未定、显式拒绝。LOST 全额退 ETH；WON 按贡献占比分扣费后
// 的留存份额与未花掉的 ETH，比例计算向下取整，尘埃留在活动余额。
func (l *ClaimLogic) GetClaimAmounts(campaignId int64, address string) (*ClaimAmounts, error) {
	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return nil, err
	}
	if !campaign.Status.Terminal() {
		return nil, party.ErrNotFinalized
	}
	contributor, err := l.getContributor(campaignId, address)
	if err != nil {
		return nil, err
	}
	return l.computeAmounts(campaign, contributor)
}

// TotalEthUsed 贡献中实际被消耗的部分，供外部对账
func (l *ClaimLogic) TotalEthUsed(campaignId int64, address string) (decimal.Decimal, error) {
	amounts, err := l.GetClaimAmounts(campaignId, address)
	if err != nil {
		return decimal.Zero, err
	}
	contributor, err := l.getContributor(campaignId, address)
	if err != nil {
		return decimal.Zero, err
	}
	return contributor.Amount.Sub(amounts.EthAmount), nil
}

// Claim 为贡献者执行提领。claimed 标记先行翻转并提交，之后才发起转账
// （checks-effects-interactions）；因此转账即便失败，第二次提领也一定被拒。
// 直接 ETH 转账失败时退为 WETH，不可收款的贡献者不会卡死自己的退款。
func (l *ClaimLogic) Claim(ctx context.Context, campaignId int64, address string) (*model.ClaimRecordModel, error) {
	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return nil, err
	}
	if !campaign.Status.Terminal() {
		return nil, party.ErrNotFinalized
	}
	contributor, err := l.getContributor(campaignId, address)
	if err != nil {
		return nil, err
	}
	if contributor.Claimed {
		return nil, party.ErrAlreadyClaimed
	}

	amounts, err := l.computeAmounts(campaign, contributor)
	if err != nil {
		return nil, err
	}

	// 效果先行：翻转 claimed 并提交
	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	res := tx.Model(&model.ContributorModel{}).
		Where("id = ? AND claimed = ?", contributor.Id, false).
		Updates(map[string]interface{}{
			"claimed":        true,
			"claimed_tokens": amounts.TokenAmount,
			"claimed_eth":    amounts.EthAmount,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// 并发提领时只有第一个翻转成功
		tx.Rollback()
		return nil, party.ErrAlreadyClaimed
	}

	record := &model.ClaimRecordModel{
		CampaignId:  campaignId,
		Address:     address,
		TokenAmount: amounts.TokenAmount,
		EthAmount:   amounts.EthAmount,
	}
	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := recordEvent(tx, campaignId, model.EventClaimed, map[string]interface{}{
		"contributor": address,
		"tokens":      amounts.TokenAmount,
		"eth":         amounts.EthAmount,
		"contributed": contributor.Amount,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// 交互在后：外部转账
	to := common.HexToAddress(address)
	if amounts.TokenAmount.IsPositive() {
		if err := l.chain.TransferToken(ctx, common.HexToAddress(campaign.ShareToken), to, amounts.TokenAmount); err != nil {
			logger.Error("Campaign %d claim token transfer to %s failed: %v", campaignId, address, err)
			return record, err
		}
	}
	if amounts.EthAmount.IsPositive() {
		viaWeth, err := l.chain.TransferETH(ctx, to, amounts.EthAmount)
		if err != nil {
			logger.Error("Campaign %d claim eth transfer to %s failed: %v", campaignId, address, err)
			return record, err
		}
		if viaWeth {
			if err := l.db.Model(record).Update("via_weth", true).Error; err != nil {
				logger.Warn("Failed to mark claim %d as weth fallback: %v", record.Id, err)
			}
			record.ViaWeth = true
		}
	}

	logger.Info("Campaign %d claim by %s: tokens=%s eth=%s", campaignId, address, amounts.TokenAmount, amounts.EthAmount)
	return record, nil
}

// computeAmounts 提领金额计算
func (l *ClaimLogic) computeAmounts(campaign *model.CampaignModel, contributor *model.ContributorModel) (*ClaimAmounts, error) {
	switch campaign.Status {
	case party.StatusLost:
		return &ClaimAmounts{
			TokenAmount: decimal.Zero,
			EthAmount:   contributor.Amount,
		}, nil
	case party.StatusWon:
		if !l.settle.Settled(campaign) {
			return nil, party.ErrSettlementPending
		}
		excess := campaign.TotalContributed.Sub(campaign.TotalSpent)
		return &ClaimAmounts{
			TokenAmount: party.ProRata(contributor.Amount, campaign.TotalContributed, campaign.HeldShares),
			EthAmount:   party.ProRata(contributor.Amount, campaign.TotalContributed, excess),
		}, nil
	default:
		return nil, party.ErrNotFinalized
	}
}

// getContributor 校验贡献者身份，地址大小写不敏感
func (l *ClaimLogic) getContributor(campaignId int64, address string) (*model.ContributorModel, error) {
	var contributor model.ContributorModel
	err := l.db.Where("campaign_id = ? AND lower(address) = ?", campaignId, strings.ToLower(address)).First(&contributor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, party.ErrNotContributor
	}
	if err != nil {
		return nil, err
	}
	if !contributor.Amount.IsPositive() {
		return nil, party.ErrNotContributor
	}
	return &contributor, nil
}
