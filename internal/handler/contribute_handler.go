package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/pas/internal/logic"
	"github.com/gin-gonic/gin"
)

// ContributeHandler 贡献处理器
type ContributeHandler struct {
	contributeLogic *logic.ContributeLogic
}

// NewContributeHandler 创建贡献处理器
func NewContributeHandler(contributeLogic *logic.ContributeLogic) *ContributeHandler {
	return &ContributeHandler{
		contributeLogic: contributeLogic,
	}
}

// ContributeRequest 贡献入账请求
type ContributeRequest struct {
	Address  string `json:"address" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	TxHash   string `json:"txHash"`
	BlockNum int64  `json:"blockNum"`
}

// Contribute 记录一笔贡献入账
func (h *ContributeHandler) Contribute(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseWei(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的贡献金额")
		return
	}

	record, err := h.contributeLogic.Contribute(c.Request.Context(), id, req.Address, amount, req.TxHash, req.BlockNum)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "贡献入账成功", ToContributeRecordResponse(record))
}

// GetContributor 获取贡献者账本
func (h *ContributeHandler) GetContributor(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}
	address := c.Param("address")

	contributor, err := h.contributeLogic.GetContributor(id, address)
	if err != nil {
		FailWith(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取贡献者成功", ToContributorResponse(contributor))
}

// GetCampaignContributions 获取活动贡献流水
func (h *ContributeHandler) GetCampaignContributions(c *gin.Context) {
	id, err := parseCampaignId(c)
	if err != nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.contributeLogic.GetCampaignContributions(id, page, pageSize)
	if err != nil {
		FailWith(c, err)
		return
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取贡献流水成功", GetCampaignContributionsResponse{
		Records:    ToContributeRecordResponseList(records),
		Pagination: pagination,
	})
}
