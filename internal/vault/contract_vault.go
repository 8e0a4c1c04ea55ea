package vault

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// 金库合约ABI定义（份额化入口）
const vaultABI = `[
	{"inputs":[{"name":"nftContract","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"supply","type":"uint256"},{"name":"reservePrice","type":"uint256"}],"name":"fractionalize","outputs":[{"name":"","type":"address"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"nftContract","type":"address"},{"name":"tokenId","type":"uint256"}],"name":"shareTokenOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

// ContractVault 基于链上金库合约的份额化实现
type ContractVault struct {
	contract *bind.BoundContract
	address  common.Address
	auth     *bind.TransactOpts
}

// NewContractVault 创建金库实例
func NewContractVault(backend bind.ContractBackend, address common.Address, auth *bind.TransactOpts) (*ContractVault, error) {
	parsedABI, err := abi.JSON(strings.NewReader(vaultABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse vault ABI: %w", err)
	}

	return &ContractVault{
		contract: bind.NewBoundContract(address, parsedABI, backend, backend, backend),
		address:  address,
		auth:     auth,
	}, nil
}

// GetAddress 获取金库合约地址
func (v *ContractVault) GetAddress() common.Address {
	return v.address
}

// Fractionalize 将资产托管给金库并铸造份额代币
func (v *ContractVault) Fractionalize(ctx context.Context, asset Asset, supply, reservePrice decimal.Decimal) (Result, error) {
	tokenId, ok := new(big.Int).SetString(asset.TokenId, 10)
	if !ok {
		return Result{}, fmt.Errorf("invalid token id: %s", asset.TokenId)
	}

	auth := *v.auth
	auth.Context = ctx
	if _, err := v.contract.Transact(&auth, "fractionalize",
		asset.Contract, tokenId, supply.BigInt(), reservePrice.BigInt()); err != nil {
		return Result{}, fmt.Errorf("fractionalize failed: %w", err)
	}

	// 铸造的份额代币地址通过金库的只读接口取回
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := v.contract.Call(opts, &out, "shareTokenOf", asset.Contract, tokenId); err != nil {
		return Result{}, fmt.Errorf("shareTokenOf failed: %w", err)
	}
	shareToken := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)

	return Result{ShareToken: shareToken, TotalSupply: supply}, nil
}
