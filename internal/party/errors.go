package party

import "errors"

// 所有前置条件错误都是稳定的哨兵错误，外层用 errors.Is 判断并映射为 HTTP 状态码。
// 错误文案与链上 revert reason 保持一致的风格，便于前端和索引服务对齐。
var (
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrCampaignNotActive = errors.New("campaign not active")

	// 贡献
	ErrZeroContribution = errors.New("must contribute more than 0")
	ErrNotGateHolder    = errors.New("must hold tokens to contribute")
	ErrContributionCap  = errors.New("cannot contribute more than max")

	// 竞拍
	ErrAuctionNotActive     = errors.New("auction not active")
	ErrAuctionStillOpen     = errors.New("auction still open")
	ErrAlreadyHighestBidder = errors.New("already highest bidder")
	ErrWrongVariant         = errors.New("operation not supported by campaign variant")

	// 直购
	ErrTargetNotAllowed  = errors.New("target not on allow list")
	ErrPriceTooHigh      = errors.New("price too high")
	ErrInsufficientFunds = errors.New("insufficient funds to buy token plus fee")
	ErrBuyFailed         = errors.New("failed to buy token")
	ErrOperationInFlight = errors.New("campaign operation already in flight")

	// 过期
	ErrNotTimedOut        = errors.New("campaign has not timed out")
	ErrExpireWhileLeading = errors.New("cannot expire while leading the auction")

	// Claim
	ErrNotFinalized      = errors.New("amounts undetermined while campaign active")
	ErrSettlementPending = errors.New("settlement pending")
	ErrNotContributor    = errors.New("not a contributor")
	ErrAlreadyClaimed    = errors.New("already claimed")

	// 治理与应急
	ErrOnlyOperator        = errors.New("only operator")
	ErrVotingNotOpen       = errors.New("voting not open")
	ErrNoVotingPower       = errors.New("no voting power")
	ErrResellerNotApproved = errors.New("reseller not approved")
	ErrAlreadySupported    = errors.New("already supported this reseller")
)
