package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/blues/pas/internal/logic"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 活动处理器
type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(campaignLogic *logic.CampaignLogic) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: campaignLogic,
	}
}

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Name           string     `json:"name" binding:"required"`
	Variant        string     `json:"variant" binding:"required"`
	AssetContract  string     `json:"assetContract" binding:"required"`
	AssetTokenID   string     `json:"assetTokenId" binding:"required"`
	AuctionID      string     `json:"auctionId"`
	MaxPrice       string     `json:"maxPrice"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	GateToken      string     `json:"gateToken"`
	GateMinBalance string     `json:"gateMinBalance"`
	SplitRecipient string     `json:"splitRecipient"`
	SplitBps       int64      `json:"splitBps"`
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign := model.CampaignModel{
		Name:           req.Name,
		Variant:        party.CampaignVariant(req.Variant),
		AssetContract:  req.AssetContract,
		AssetTokenId:   req.AssetTokenID,
		AuctionId:      req.AuctionID,
		ExpiresAt:      req.ExpiresAt,
		GateToken:      req.GateToken,
		SplitRecipient: req.SplitRecipient,
		SplitBps:       req.SplitBps,
	}
	if req.MaxPrice != "" {
		v, err := parseWei(req.MaxPrice)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "无效的价格上限")
			return
		}
		campaign.MaxPrice = v
	}
	if req.GateMinBalance != "" {
		v, err := parseWei(req.GateMinBalance)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "无效的门槛余额")
			return
		}
		campaign.GateMinBalance = v
	}

	// 调用logic层创建活动
	if err := h.campaignLogic.CreateCampaign(&campaign); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "活动创建成功", ToCampaignResponse(&campaign))
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	campaigns, err := h.campaignLogic.GetCampaigns()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动列表成功", GetCampaignsResponse{
		Campaigns: ToCampaignResponseList(campaigns),
	})
}

// GetCampaign 获取单个活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动详情成功", ToCampaignResponse(campaign))
}

// GetCampaignStats 获取活动统计信息
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	stats, err := h.campaignLogic.GetCampaignStats(id)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动统计成功", GetCampaignStatsResponse{Stats: stats})
}

// parseCampaignId 解析路径里的活动ID，失败时已写入响应
func parseCampaignId(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, err
	}
	return id, nil
}
