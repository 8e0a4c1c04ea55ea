package handler

import (
	"net/http"

	"github.com/blues/pas/internal/logic"
	"github.com/gin-gonic/gin"
)

// ClaimHandler 提领处理器
type ClaimHandler struct {
	claimLogic *logic.ClaimLogic
}

// NewClaimHandler 创建提领处理器
func NewClaimHandler(claimLogic *logic.ClaimLogic) *ClaimHandler {
	return &ClaimHandler{
		claimLogic: claimLogic,
	}
}

// GetClaimAmounts 提领预览：活动收束后可领的份额与退款
func (h *ClaimHandler) GetClaimAmounts(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}
	address := c.Param("address")

	amounts, err := h.claimLogic.GetClaimAmounts(id, address)
	if err != nil {
		FailWith(c, err)
		return
	}

	ethUsed, err := h.claimLogic.TotalEthUsed(id, address)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取提领预览成功", ClaimAmountsResponse{
		TokenAmount: amounts.TokenAmount.String(),
		EthAmount:   amounts.EthAmount.String(),
		EthUsed:     ethUsed.String(),
	})
}

// ClaimRequest 提领请求
type ClaimRequest struct {
	Address string `json:"address" binding:"required"`
}

// Claim 执行提领
func (h *ClaimHandler) Claim(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.claimLogic.Claim(c.Request.Context(), id, req.Address)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "提领成功", ToClaimRecordResponse(record))
}
