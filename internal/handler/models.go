package handler

import (
	"time"

	"github.com/blues/pas/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 活动相关响应模型

// CampaignResponse 活动响应模型
type CampaignResponse struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Variant          string     `json:"variant"`
	Status           string     `json:"status"`
	AssetContract    string     `json:"assetContract"`
	AssetTokenID     string     `json:"assetTokenId"`
	AuctionID        string     `json:"auctionId,omitempty"`
	CurrentBid       string     `json:"currentBid"`
	Leading          bool       `json:"leading"`
	MaxPrice         string     `json:"maxPrice"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	TotalContributed string     `json:"totalContributed"`
	TotalSpent       string     `json:"totalSpent"`
	EthFeeBps        int64      `json:"ethFeeBps"`
	TokenFeeBps      int64      `json:"tokenFeeBps"`
	ShareToken       string     `json:"shareToken,omitempty"`
	ShareSupply      string     `json:"shareSupply"`
	ResalePrice      string     `json:"resalePrice"`
	ApprovedReseller string     `json:"approvedReseller,omitempty"`
	FinalizedAt      *time.Time `json:"finalizedAt,omitempty"`
	SettledAt        *time.Time `json:"settledAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// GetCampaignsResponse 活动列表响应
type GetCampaignsResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
}

// GetCampaignStatsResponse 活动统计响应
type GetCampaignStatsResponse struct {
	Stats map[string]interface{} `json:"stats"`
}

// 贡献相关响应模型

// ContributeRecordResponse 贡献流水响应模型
type ContributeRecordResponse struct {
	ID         int64     `json:"id"`
	CampaignID int64     `json:"campaignId"`
	Address    string    `json:"address"`
	Amount     string    `json:"amount"`
	TxHash     string    `json:"txHash"`
	BlockNum   int64     `json:"blockNum"`
	TotalAfter string    `json:"totalAfter"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetCampaignContributionsResponse 活动贡献流水响应
type GetCampaignContributionsResponse struct {
	Records    []ContributeRecordResponse `json:"records"`
	Pagination Pagination                 `json:"pagination"`
}

// ContributorResponse 贡献者账本响应模型
type ContributorResponse struct {
	CampaignID    int64  `json:"campaignId"`
	Address       string `json:"address"`
	Amount        string `json:"amount"`
	Claimed       bool   `json:"claimed"`
	ClaimedTokens string `json:"claimedTokens"`
	ClaimedEth    string `json:"claimedEth"`
}

// 提领相关响应模型

// ClaimAmountsResponse 提领预览响应模型
type ClaimAmountsResponse struct {
	TokenAmount string `json:"tokenAmount"`
	EthAmount   string `json:"ethAmount"`
	EthUsed     string `json:"ethUsed"`
}

// ClaimRecordResponse 提领流水响应模型
type ClaimRecordResponse struct {
	ID          int64     `json:"id"`
	CampaignID  int64     `json:"campaignId"`
	Address     string    `json:"address"`
	TokenAmount string    `json:"tokenAmount"`
	EthAmount   string    `json:"ethAmount"`
	ViaWeth     bool      `json:"viaWeth"`
	CreatedAt   time.Time `json:"createdAt"`
}

// 转售投票响应模型

// ResellerVoteResponse 转售投票响应模型
type ResellerVoteResponse struct {
	CampaignID   int64     `json:"campaignId"`
	Voter        string    `json:"voter"`
	Reseller     string    `json:"reseller"`
	CalldataHash string    `json:"calldataHash"`
	Weight       string    `json:"weight"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AllowListEntryResponse 白名单条目响应模型
type AllowListEntryResponse struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
}

// 转换函数

// ToCampaignResponse 将活动数据库模型转换为响应模型
func ToCampaignResponse(campaign *model.CampaignModel) CampaignResponse {
	return CampaignResponse{
		ID:               campaign.Id,
		Name:             campaign.Name,
		Variant:          string(campaign.Variant),
		Status:           string(campaign.Status),
		AssetContract:    campaign.AssetContract,
		AssetTokenID:     campaign.AssetTokenId,
		AuctionID:        campaign.AuctionId,
		CurrentBid:       campaign.CurrentBid.String(),
		Leading:          campaign.Leading,
		MaxPrice:         campaign.MaxPrice.String(),
		ExpiresAt:        campaign.ExpiresAt,
		TotalContributed: campaign.TotalContributed.String(),
		TotalSpent:       campaign.TotalSpent.String(),
		EthFeeBps:        campaign.EthFeeBps,
		TokenFeeBps:      campaign.TokenFeeBps,
		ShareToken:       campaign.ShareToken,
		ShareSupply:      campaign.ShareSupply.String(),
		ResalePrice:      campaign.ResalePrice.String(),
		ApprovedReseller: campaign.ApprovedReseller,
		FinalizedAt:      campaign.FinalizedAt,
		SettledAt:        campaign.SettledAt,
		CreatedAt:        campaign.CreatedAt,
		UpdatedAt:        campaign.UpdatedAt,
	}
}

// ToCampaignResponseList 将活动数据库模型列表转换为响应模型列表
func ToCampaignResponseList(campaigns []model.CampaignModel) []CampaignResponse {
	result := make([]CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		result[i] = ToCampaignResponse(&campaign)
	}
	return result
}

// ToContributeRecordResponse 将贡献流水数据库模型转换为响应模型
func ToContributeRecordResponse(record *model.ContributeRecordModel) ContributeRecordResponse {
	return ContributeRecordResponse{
		ID:         record.Id,
		CampaignID: record.CampaignId,
		Address:    record.Address,
		Amount:     record.Amount.String(),
		TxHash:     record.TxHash,
		BlockNum:   record.BlockNum,
		TotalAfter: record.TotalAfter.String(),
		CreatedAt:  record.CreatedAt,
	}
}

// ToContributeRecordResponseList 将贡献流水数据库模型列表转换为响应模型列表
func ToContributeRecordResponseList(records []model.ContributeRecordModel) []ContributeRecordResponse {
	result := make([]ContributeRecordResponse, len(records))
	for i, record := range records {
		result[i] = ToContributeRecordResponse(&record)
	}
	return result
}

// ToContributorResponse 将贡献者账本数据库模型转换为响应模型
func ToContributorResponse(contributor *model.ContributorModel) ContributorResponse {
	return ContributorResponse{
		CampaignID:    contributor.CampaignId,
		Address:       contributor.Address,
		Amount:        contributor.Amount.String(),
		Claimed:       contributor.Claimed,
		ClaimedTokens: contributor.ClaimedTokens.String(),
		ClaimedEth:    contributor.ClaimedEth.String(),
	}
}

// ToClaimRecordResponse 将提领流水数据库模型转换为响应模型
func ToClaimRecordResponse(record *model.ClaimRecordModel) ClaimRecordResponse {
	return ClaimRecordResponse{
		ID:          record.Id,
		CampaignID:  record.CampaignId,
		Address:     record.Address,
		TokenAmount: record.TokenAmount.String(),
		EthAmount:   record.EthAmount.String(),
		ViaWeth:     record.ViaWeth,
		CreatedAt:   record.CreatedAt,
	}
}

// ToResellerVoteResponseList 将投票记录数据库模型列表转换为响应模型列表
func ToResellerVoteResponseList(votes []model.ResellerVoteModel) []ResellerVoteResponse {
	result := make([]ResellerVoteResponse, len(votes))
	for i, vote := range votes {
		result[i] = ResellerVoteResponse{
			CampaignID:   vote.CampaignId,
			Voter:        vote.Voter,
			Reseller:     vote.Reseller,
			CalldataHash: vote.CalldataHash,
			Weight:       vote.Weight.String(),
			CreatedAt:    vote.CreatedAt,
		}
	}
	return result
}

// ToAllowListResponseList 将白名单数据库模型列表转换为响应模型列表
func ToAllowListResponseList(entries []model.AllowListModel) []AllowListEntryResponse {
	result := make([]AllowListEntryResponse, len(entries))
	for i, entry := range entries {
		result[i] = AllowListEntryResponse{
			Address: entry.Address,
			Kind:    string(entry.Kind),
		}
	}
	return result
}
