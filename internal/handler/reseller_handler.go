package handler

import (
	"net/http"

	"github.com/blues/pas/internal/logic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// ResellerHandler 转售投票处理器
type ResellerHandler struct {
	resellerLogic *logic.ResellerLogic
}

// NewResellerHandler 创建转售投票处理器
func NewResellerHandler(resellerLogic *logic.ResellerLogic) *ResellerHandler {
	return &ResellerHandler{
		resellerLogic: resellerLogic,
	}
}

// SupportResellerRequest 支持转售渠道请求
type SupportResellerRequest struct {
	Voter    string `json:"voter" binding:"required"`
	Reseller string `json:"reseller" binding:"required"`
	CallData string `json:"callData"` // hex 编码
}

// SupportReseller 按份额权重支持一个转售渠道
func (h *ResellerHandler) SupportReseller(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req SupportResellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.resellerLogic.SupportReseller(c.Request.Context(), id, req.Voter, req.Reseller, common.FromHex(req.CallData)); err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "投票成功", nil)
}

// GetVotes 获取活动的投票记录
func (h *ResellerHandler) GetVotes(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	votes, err := h.resellerLogic.GetVotes(id)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取投票记录成功", ToResellerVoteResponseList(votes))
}
