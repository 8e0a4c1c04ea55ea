package handler

import (
	"errors"
	"net/http"

	"github.com/blues/pas/internal/party"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FailWith 按业务错误选择状态码返回
func FailWith(c *gin.Context, err error) {
	ErrorResponse(c, statusFor(err), err.Error())
}

// statusFor 业务哨兵错误到 HTTP 状态码的映射，未识别的错误归为 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, party.ErrCampaignNotFound),
		errors.Is(err, party.ErrNotContributor):
		return http.StatusNotFound
	case errors.Is(err, party.ErrZeroContribution),
		errors.Is(err, party.ErrWrongVariant),
		errors.Is(err, party.ErrContributionCap),
		errors.Is(err, party.ErrPriceTooHigh),
		errors.Is(err, party.ErrInsufficientFunds),
		errors.Is(err, party.ErrTargetNotAllowed),
		errors.Is(err, party.ErrNoVotingPower),
		errors.Is(err, party.ErrResellerNotApproved):
		return http.StatusBadRequest
	case errors.Is(err, party.ErrOnlyOperator),
		errors.Is(err, party.ErrNotGateHolder):
		return http.StatusForbidden
	case errors.Is(err, party.ErrCampaignNotActive),
		errors.Is(err, party.ErrAuctionNotActive),
		errors.Is(err, party.ErrAuctionStillOpen),
		errors.Is(err, party.ErrAlreadyHighestBidder),
		errors.Is(err, party.ErrNotTimedOut),
		errors.Is(err, party.ErrExpireWhileLeading),
		errors.Is(err, party.ErrNotFinalized),
		errors.Is(err, party.ErrSettlementPending),
		errors.Is(err, party.ErrAlreadyClaimed),
		errors.Is(err, party.ErrVotingNotOpen),
		errors.Is(err, party.ErrAlreadySupported),
		errors.Is(err, party.ErrOperationInFlight):
		return http.StatusConflict
	case errors.Is(err, party.ErrBuyFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
