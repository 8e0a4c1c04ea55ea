package handler

import (
	"net/http"

	"github.com/blues/pas/internal/logic"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// AcquireHandler 收购动作处理器：出价、直购、收束、逾期
type AcquireHandler struct {
	auctionLogic  *logic.AuctionLogic
	buyLogic      *logic.BuyLogic
	campaignLogic *logic.CampaignLogic
}

// NewAcquireHandler 创建收购动作处理器
func NewAcquireHandler(auctionLogic *logic.AuctionLogic, buyLogic *logic.BuyLogic, campaignLogic *logic.CampaignLogic) *AcquireHandler {
	return &AcquireHandler{
		auctionLogic:  auctionLogic,
		buyLogic:      buyLogic,
		campaignLogic: campaignLogic,
	}
}

// Bid 以最大可用金额出价
func (h *AcquireHandler) Bid(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	if err := h.auctionLogic.Bid(c.Request.Context(), id); err != nil {
		FailWith(c, err)
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "出价成功", ToCampaignResponse(campaign))
}

// BuyRequest 直购请求
type BuyRequest struct {
	Spend          string `json:"spend" binding:"required"`
	TargetContract string `json:"targetContract" binding:"required"`
	CallData       string `json:"callData"` // hex 编码
}

// Buy 执行一次限价直购
func (h *AcquireHandler) Buy(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	spend, err := parseWei(req.Spend)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的购买金额")
		return
	}

	if err := h.buyLogic.Buy(c.Request.Context(), id, spend, req.TargetContract, common.FromHex(req.CallData)); err != nil {
		FailWith(c, err)
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "购买成功", ToCampaignResponse(campaign))
}

// Finalize 收束竞拍活动
func (h *AcquireHandler) Finalize(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	if err := h.auctionLogic.Finalize(c.Request.Context(), id); err != nil {
		FailWith(c, err)
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "活动收束成功", ToCampaignResponse(campaign))
}

// Expire 逾期出口，按活动方式分发
func (h *AcquireHandler) Expire(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		FailWith(c, err)
		return
	}

	switch campaign.Variant {
	case party.VariantAuction:
		err = h.auctionLogic.Expire(c.Request.Context(), id)
	default:
		err = h.buyLogic.Expire(c.Request.Context(), id)
	}
	if err != nil {
		FailWith(c, err)
		return
	}

	campaign, err = h.campaignLogic.GetCampaign(id)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "活动已逾期关闭", ToCampaignResponse(campaign))
}
