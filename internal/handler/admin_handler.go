package handler

import (
	"net/http"

	"github.com/blues/pas/internal/logic"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// AdminHandler 运维处理器：白名单维护与应急通道，仅操作员可用
type AdminHandler struct {
	allowListLogic *logic.AllowListLogic
	emergencyLogic *logic.EmergencyLogic
	operator       string
}

// NewAdminHandler 创建运维处理器
func NewAdminHandler(allowListLogic *logic.AllowListLogic, emergencyLogic *logic.EmergencyLogic, operator string) *AdminHandler {
	return &AdminHandler{
		allowListLogic: allowListLogic,
		emergencyLogic: emergencyLogic,
		operator:       operator,
	}
}

// AllowListRequest 白名单变更请求
type AllowListRequest struct {
	Address string `json:"address" binding:"required"`
	Kind    string `json:"kind" binding:"required"`
}

// Allow 加入白名单
func (h *AdminHandler) Allow(c *gin.Context) {
	var req AllowListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.allowListLogic.Allow(req.Address, party.AllowListKind(req.Kind)); err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "白名单已更新", nil)
}

// Disallow 移出白名单
func (h *AdminHandler) Disallow(c *gin.Context) {
	var req AllowListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.allowListLogic.Disallow(req.Address, party.AllowListKind(req.Kind)); err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "白名单已更新", nil)
}

// ListAllowed 列出白名单条目
func (h *AdminHandler) ListAllowed(c *gin.Context) {
	kind := party.AllowListKind(c.DefaultQuery("kind", string(party.AllowKindBuyTarget)))

	entries, err := h.allowListLogic.List(kind)
	if err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取白名单成功", ToAllowListResponseList(entries))
}

// EmergencyWithdrawRequest 应急提款请求
type EmergencyWithdrawRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// EmergencyWithdraw 应急提款
func (h *AdminHandler) EmergencyWithdraw(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req EmergencyWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseWei(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提款金额")
		return
	}

	if err := h.emergencyLogic.EmergencyWithdrawEth(c.Request.Context(), h.operator, id, amount); err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "应急提款成功", nil)
}

// EmergencyCallRequest 应急调用请求
type EmergencyCallRequest struct {
	Target   string `json:"target" binding:"required"`
	CallData string `json:"callData"` // hex 编码
}

// EmergencyCall 应急外部调用
func (h *AdminHandler) EmergencyCall(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req EmergencyCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.emergencyLogic.EmergencyCall(c.Request.Context(), h.operator, id, req.Target, common.FromHex(req.CallData)); err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "应急调用成功", nil)
}

// EmergencyForceLost 强制关闭活动
func (h *AdminHandler) EmergencyForceLost(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	if err := h.emergencyLogic.EmergencyForceLost(c.Request.Context(), h.operator, id); err != nil {
		FailWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "活动已强制关闭", nil)
}
