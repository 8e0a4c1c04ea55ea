package logic

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResellerLogic 转售渠道投票：活动胜出后，已提领份额的贡献者可以按
// 份额权重支持某个白名单转售渠道。同一 (渠道, calldata) 的累计支持
// 达到法定比例后，托管资产移交给该渠道并执行跟进调用。
type ResellerLogic struct {
	db        *gorm.DB
	chain     ChainClient
	allowList *AllowListLogic
	campaign  *CampaignLogic
}

// NewResellerLogic 创建转售投票逻辑
func NewResellerLogic(db *gorm.DB, chain ChainClient, allowList *AllowListLogic, campaign *CampaignLogic) *ResellerLogic {
	return &ResellerLogic{db: db, chain: chain, allowList: allowList, campaign: campaign}
}

// calldataHash 对跟进调用的 calldata 取 keccak256，作为投票聚合键
func calldataHash(data []byte) string {
	return hex.EncodeToString(crypto.Keccak256(data))
}

// SupportReseller 以投票人已提领的份额为权重，支持一个转售渠道。
// 重复支持同一 (渠道, calldata) 组合会被拒绝；达到法定比例时立即路由。
func (l *ResellerLogic) SupportReseller(ctx context.Context, campaignId int64, voter, reseller string, calldata []byte) error {
	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return party.ErrOperationInFlight
	}
	defer release()

	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.Status != party.StatusWon {
		return party.ErrVotingNotOpen
	}
	if campaign.ApprovedReseller != "" {
		return party.ErrVotingNotOpen
	}

	allowed, err := l.allowList.IsAllowed(reseller, party.AllowKindReseller)
	if err != nil {
		return err
	}
	if !allowed {
		return party.ErrResellerNotApproved
	}

	var contributor model.ContributorModel
	err = l.db.Where("campaign_id = ? AND lower(address) = ?",
		campaignId, strings.ToLower(voter)).First(&contributor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return party.ErrNoVotingPower
	}
	if err != nil {
		return err
	}
	if !contributor.ClaimedTokens.IsPositive() {
		return party.ErrNoVotingPower
	}

	hash := calldataHash(calldata)

	var existing model.ResellerVoteModel
	err = l.db.Where("campaign_id = ? AND lower(voter) = ? AND lower(reseller) = ? AND calldata_hash = ?",
		campaignId, strings.ToLower(voter), strings.ToLower(reseller), hash).First(&existing).Error
	if err == nil {
		return party.ErrAlreadySupported
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	vote := model.ResellerVoteModel{
		CampaignId:   campaignId,
		Voter:        strings.ToLower(voter),
		Reseller:     strings.ToLower(reseller),
		CalldataHash: hash,
		Weight:       contributor.ClaimedTokens,
	}
	if err := tx.Create(&vote).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := recordEvent(tx, campaignId, model.EventResellerSupported, map[string]interface{}{
		"voter":    vote.Voter,
		"reseller": vote.Reseller,
		"weight":   vote.Weight,
	}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	support, err := l.tally(campaignId, reseller, hash)
	if err != nil {
		return err
	}
	quorum := party.FeeAmount(campaign.ShareSupply, campaign.QuorumBps)
	if support.LessThan(quorum) {
		logger.Info("Campaign %d reseller %s support %s of quorum %s", campaignId, vote.Reseller, support, quorum)
		return nil
	}

	return l.approve(ctx, campaign, reseller, hash, calldata, support)
}

// tally 汇总某个 (渠道, calldata) 组合的累计支持权重
func (l *ResellerLogic) tally(campaignId int64, reseller, hash string) (decimal.Decimal, error) {
	var votes []model.ResellerVoteModel
	err := l.db.Where("campaign_id = ? AND lower(reseller) = ? AND calldata_hash = ?",
		campaignId, strings.ToLower(reseller), hash).Find(&votes).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, v := range votes {
		total = total.Add(v.Weight)
	}
	return total, nil
}

// GetVotes 列出活动的全部投票记录
func (l *ResellerLogic) GetVotes(campaignId int64) ([]model.ResellerVoteModel, error) {
	var votes []model.ResellerVoteModel
	if err := l.db.Where("campaign_id = ?", campaignId).Order("created_at asc").Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

// approve 达到法定比例后的批准：先落批准标记与获胜 calldata 再做外部
// 转移，并发投票不会触发二次路由；移交失败时标记已提交、路由未完成，
// 可由 RouteApproved 重放
func (l *ResellerLogic) approve(ctx context.Context, campaign *model.CampaignModel, reseller, hash string, calldata []byte, support decimal.Decimal) error {
	now := time.Now()
	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Model(&model.CampaignModel{}).
		Where("id = ? AND approved_reseller = ?", campaign.Id, "").
		Updates(map[string]interface{}{
			"approved_reseller": strings.ToLower(reseller),
			"approved_calldata": hex.EncodeToString(calldata),
			"updated_at":        now,
		})
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return party.ErrVotingNotOpen
	}
	if err := recordEvent(tx, campaign.Id, model.EventResellerApproved, map[string]interface{}{
		"reseller":      strings.ToLower(reseller),
		"calldata_hash": hash,
		"support":       support,
	}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	campaign.ApprovedReseller = strings.ToLower(reseller)
	campaign.ApprovedCalldata = hex.EncodeToString(calldata)
	logger.Info("Campaign %d approved reseller %s with support %s", campaign.Id, reseller, support)

	return l.route(ctx, campaign)
}

// RouteApproved 重放已批准但尚未完成的资产移交。未批准或已移交时为
// 空操作；转售路由任务定期调用。
func (l *ResellerLogic) RouteApproved(ctx context.Context, campaignId int64) error {
	release, ok := guard.TryAcquire(campaignId)
	if !ok {
		return party.ErrOperationInFlight
	}
	defer release()

	campaign, err := l.campaign.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	if campaign.ApprovedReseller == "" || campaign.AssetRoutedAt != nil {
		return nil
	}
	return l.route(ctx, campaign)
}

// route 把托管资产移交给已批准的渠道并执行跟进调用，完成后落移交
// 标记。资产已不在托管地址时跳过转移，重放不会重复移交。
func (l *ResellerLogic) route(ctx context.Context, campaign *model.CampaignModel) error {
	resellerAddr := common.HexToAddress(campaign.ApprovedReseller)

	owner, err := l.chain.OwnerOf(ctx, common.HexToAddress(campaign.AssetContract), campaign.AssetTokenId)
	if err != nil {
		return err
	}
	if owner == l.chain.CustodyAddress() {
		if err := l.chain.TransferNFT(ctx,
			common.HexToAddress(campaign.AssetContract), campaign.AssetTokenId, resellerAddr); err != nil {
			logger.Error("Campaign %d asset handoff to reseller %s failed, will retry: %v",
				campaign.Id, campaign.ApprovedReseller, err)
			return err
		}
	}

	calldata, err := hex.DecodeString(campaign.ApprovedCalldata)
	if err != nil {
		return err
	}
	if len(calldata) > 0 {
		if err := l.chain.Call(ctx, resellerAddr, calldata, decimal.Zero); err != nil {
			logger.Error("Campaign %d reseller follow-up call failed, will retry: %v", campaign.Id, err)
			return err
		}
	}

	now := time.Now()
	if err := l.db.Model(campaign).Update("asset_routed_at", &now).Error; err != nil {
		return err
	}
	campaign.AssetRoutedAt = &now
	logger.Info("Campaign %d asset routed to reseller %s", campaign.Id, campaign.ApprovedReseller)
	return nil
}
