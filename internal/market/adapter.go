package market

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Adapter 市场适配器能力面：把引擎抽象的出价/结束调用翻译成具体拍卖行的合约调用，
// 并向引擎回报价格与赢家状态。引擎不感知具体市场，一个实现对应一个拍卖协议。
// 所有调用都视为不可信但合作的外部依赖，意外失败原样向上传播。
type Adapter interface {
	// CurrentPrice 当前最高出价
	CurrentPrice(ctx context.Context, auctionId string) (decimal.Decimal, error)
	// AuctionOpen 拍卖是否仍在进行
	AuctionOpen(ctx context.Context, auctionId string) (bool, error)
	// HighestBidder 当前最高出价人
	HighestBidder(ctx context.Context, auctionId string) (common.Address, error)
	// PlaceBid 以指定金额出价
	PlaceBid(ctx context.Context, auctionId string, amount decimal.Decimal) error
	// Finalized 外部拍卖是否已被结算（可能被第三方抢先结算）
	Finalized(ctx context.Context, auctionId string) (bool, error)
	// FinalizeAuction 触发外部拍卖自身的结算
	FinalizeAuction(ctx context.Context, auctionId string) error
	// IsWinner bidder 是否为拍卖记录的赢家
	IsWinner(ctx context.Context, auctionId string, bidder common.Address) (bool, error)
}
