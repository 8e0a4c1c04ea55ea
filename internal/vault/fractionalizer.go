package vault

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Asset 目标资产引用
type Asset struct {
	Contract common.Address
	TokenId  string
}

// Result 份额化结果
type Result struct {
	ShareToken  common.Address  // 份额代币合约
	TotalSupply decimal.Decimal // 铸造总量
}

// Fractionalizer 份额化协作方：接收资产与转售底价，铸造份额代币并返回其引用。
// 铸造总量由引擎指定为 totalSpent * tokenScale。
type Fractionalizer interface {
	Fractionalize(ctx context.Context, asset Asset, supply, reservePrice decimal.Decimal) (Result, error)
}
