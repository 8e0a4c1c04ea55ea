package market

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

// 市场适配器合约ABI定义（统一适配层）
const adapterABI = `[
	{"inputs":[{"name":"auctionId","type":"uint256"}],"name":"getCurrentPrice","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"auctionId","type":"uint256"}],"name":"isOpen","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"auctionId","type":"uint256"}],"name":"getHighestBidder","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"auctionId","type":"uint256"}],"name":"isFinalized","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"auctionId","type":"uint256"},{"name":"bidder","type":"address"}],"name":"isWinner","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"auctionId","type":"uint256"}],"name":"bid","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"auctionId","type":"uint256"}],"name":"finalize","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// ContractAdapter 基于链上适配器合约的市场适配器实现
type ContractAdapter struct {
	contract *bind.BoundContract
	address  common.Address
	auth     *bind.TransactOpts
}

// NewContractAdapter 创建市场适配器实例
func NewContractAdapter(client *ethclient.Client, address common.Address, auth *bind.TransactOpts) (*ContractAdapter, error) {
	parsedABI, err := abi.JSON(strings.NewReader(adapterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse adapter ABI: %w", err)
	}

	return &ContractAdapter{
		contract: bind.NewBoundContract(address, parsedABI, client, client, client),
		address:  address,
		auth:     auth,
	}, nil
}

// GetAddress 获取适配器合约地址
func (a *ContractAdapter) GetAddress() common.Address {
	return a.address
}

// CurrentPrice 当前最高出价
func (a *ContractAdapter) CurrentPrice(ctx context.Context, auctionId string) (decimal.Decimal, error) {
	id, err := parseAuctionId(auctionId)
	if err != nil {
		return decimal.Zero, err
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := a.contract.Call(opts, &out, "getCurrentPrice", id); err != nil {
		return decimal.Zero, fmt.Errorf("getCurrentPrice failed: %w", err)
	}
	price := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return decimal.NewFromBigInt(price, 0), nil
}

// AuctionOpen 拍卖是否仍在进行
func (a *ContractAdapter) AuctionOpen(ctx context.Context, auctionId string) (bool, error) {
	id, err := parseAuctionId(auctionId)
	if err != nil {
		return false, err
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := a.contract.Call(opts, &out, "isOpen", id); err != nil {
		return false, fmt.Errorf("isOpen failed: %w", err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// HighestBidder 当前最高出价人
func (a *ContractAdapter) HighestBidder(ctx context.Context, auctionId string) (common.Address, error) {
	id, err := parseAuctionId(auctionId)
	if err != nil {
		return common.Address{}, err
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := a.contract.Call(opts, &out, "getHighestBidder", id); err != nil {
		return common.Address{}, fmt.Errorf("getHighestBidder failed: %w", err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// PlaceBid 以指定金额出价
func (a *ContractAdapter) PlaceBid(ctx context.Context, auctionId string, amount decimal.Decimal) error {
	id, err := parseAuctionId(auctionId)
	if err != nil {
		return err
	}

	auth := *a.auth
	auth.Context = ctx
	auth.Value = amount.BigInt()
	if _, err := a.contract.Transact(&auth, "bid", id); err != nil {
		return fmt.Errorf("bid failed: %w", err)
	}
	return nil
}

// Finalized 外部拍卖是否已被结算
func (a *ContractAdapter) Finalized(ctx context.Context, auctionId string) (bool, error) {
	id, err := parseAuctionId(auctionId)
	if err != nil {
		return false, err
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := a.contract.Call(opts, &out, "isFinalized", id); err != nil {
		return false, fmt.Errorf("isFinalized failed: %w", err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// FinalizeAuction 触发外部拍卖自身的结算
func (a *ContractAdapter) FinalizeAuction(ctx context.Context, auctionId string) error {
	id, err := parseAuctionId(auctionId)
	if err != nil {
		return err
	}

	auth := *a.auth
	auth.Context = ctx
	auth.Value = nil
	if _, err := a.contract.Transact(&auth, "finalize", id); err != nil {
		return fmt.Errorf("finalize failed: %w", err)
	}
	return nil
}

// IsWinner bidder 是否为拍卖记录的赢家
func (a *ContractAdapter) IsWinner(ctx context.Context, auctionId string, bidder common.Address) (bool, error) {
	id, err := parseAuctionId(auctionId)
	if err != nil {
		return false, err
	}

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := a.contract.Call(opts, &out, "isWinner", id, bidder); err != nil {
		return false, fmt.Errorf("isWinner failed: %w", err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// parseAuctionId 解析拍卖ID
func parseAuctionId(auctionId string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(auctionId, 10)
	if !ok {
		return nil, fmt.Errorf("invalid auction id: %s", auctionId)
	}
	return id, nil
}
