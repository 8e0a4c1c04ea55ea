package logic

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ChainClient 业务层消费的链客户端能力面，实现为 internal/ethereum 的托管钱包客户端，
// 测试中用内存假实现替换。
type ChainClient interface {
	CustodyAddress() common.Address
	EthBalance(ctx context.Context, addr common.Address) (decimal.Decimal, error)
	TokenBalance(ctx context.Context, token, holder common.Address) (decimal.Decimal, error)
	TransferToken(ctx context.Context, token, to common.Address, amount decimal.Decimal) error
	// TransferETH 直接转账失败时退为 WETH，返回是否走了回退路径
	TransferETH(ctx context.Context, to common.Address, amount decimal.Decimal) (bool, error)
	OwnerOf(ctx context.Context, nftContract common.Address, tokenId string) (common.Address, error)
	TransferNFT(ctx context.Context, nftContract common.Address, tokenId string, to common.Address) error
	Call(ctx context.Context, target common.Address, data []byte, value decimal.Decimal) error
}
