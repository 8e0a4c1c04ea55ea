package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/blues/pas/internal/config"
	"github.com/blues/pas/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

// ERC20 ABI（transfer/balanceOf，WETH 额外带 deposit）
const erc20ABI = `[
	{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"}
]`

// ERC721 ABI（ownerOf/transferFrom）
const erc721ABI = `[
	{"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"name":"transferFrom","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// Client 托管钱包链客户端，活动资金与资产的唯一出入口
type Client struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	chainId    *big.Int
	wethAddr   common.Address
	startBlock int64
	erc20ABI   abi.ABI
	erc721ABI  abi.ABI
}

func Init(cfg config.ChainConfig) (*Client, error) {
	// 连接以太坊客户端
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	parsed20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}
	parsed721, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc721 ABI: %w", err)
	}

	return &Client{
		client:     client,
		privateKey: privateKey,
		chainId:    big.NewInt(cfg.ChainId),
		wethAddr:   common.HexToAddress(cfg.WethAddr),
		startBlock: cfg.StartBlock,
		erc20ABI:   parsed20,
		erc721ABI:  parsed721,
	}, nil
}

// Raw 获取底层 ethclient
func (c *Client) Raw() *ethclient.Client {
	return c.client
}

// GetStartBlock 获取日志监控起始区块
func (c *Client) GetStartBlock() int64 {
	return c.startBlock
}

// CustodyAddress 托管钱包地址
func (c *Client) CustodyAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// GetAuth 获取交易授权
func (c *Client) GetAuth() (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	return auth, nil
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// FilterLogs 获取指定区块范围内指定合约的日志
func (c *Client) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	return c.client.FilterLogs(ctx, query)
}

// EthBalance 查询地址 ETH 余额
func (c *Client) EthBalance(ctx context.Context, addr common.Address) (decimal.Decimal, error) {
	bal, err := c.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(bal, 0), nil
}

// TokenBalance 查询 ERC20 余额
func (c *Client) TokenBalance(ctx context.Context, token, holder common.Address) (decimal.Decimal, error) {
	contract := bind.NewBoundContract(token, c.erc20ABI, c.client, c.client, c.client)

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := contract.Call(opts, &out, "balanceOf", holder); err != nil {
		return decimal.Zero, fmt.Errorf("balanceOf failed: %w", err)
	}
	bal := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return decimal.NewFromBigInt(bal, 0), nil
}

// TransferToken 转出 ERC20
func (c *Client) TransferToken(ctx context.Context, token, to common.Address, amount decimal.Decimal) error {
	contract := bind.NewBoundContract(token, c.erc20ABI, c.client, c.client, c.client)

	auth, err := c.GetAuth()
	if err != nil {
		return err
	}
	auth.Context = ctx
	if _, err := contract.Transact(auth, "transfer", to, amount.BigInt()); err != nil {
		return fmt.Errorf("token transfer failed: %w", err)
	}
	return nil
}

// TransferETH 向 to 转出 ETH。直接转账失败（典型如收款方为不可收款合约）时
// 退为先包装成 WETH 再转 WETH，保证退款不会被收款方卡死。
// 返回是否走了 WETH 回退路径。
func (c *Client) TransferETH(ctx context.Context, to common.Address, amount decimal.Decimal) (bool, error) {
	if err := c.sendEth(ctx, to, amount.BigInt(), nil); err == nil {
		return false, nil
	} else {
		logger.Warn("Direct ETH transfer to %s failed, falling back to WETH: %v", to.Hex(), err)
	}

	weth := bind.NewBoundContract(c.wethAddr, c.erc20ABI, c.client, c.client, c.client)

	// 包装
	auth, err := c.GetAuth()
	if err != nil {
		return false, err
	}
	auth.Context = ctx
	auth.Value = amount.BigInt()
	if _, err := weth.Transact(auth, "deposit"); err != nil {
		return false, fmt.Errorf("weth deposit failed: %w", err)
	}

	// 转出 WETH
	auth.Value = nil
	if _, err := weth.Transact(auth, "transfer", to, amount.BigInt()); err != nil {
		return false, fmt.Errorf("weth transfer failed: %w", err)
	}
	return true, nil
}

// OwnerOf 查询 NFT 当前所有者
func (c *Client) OwnerOf(ctx context.Context, nftContract common.Address, tokenId string) (common.Address, error) {
	id, ok := new(big.Int).SetString(tokenId, 10)
	if !ok {
		return common.Address{}, fmt.Errorf("invalid token id: %s", tokenId)
	}

	contract := bind.NewBoundContract(nftContract, c.erc721ABI, c.client, c.client, c.client)

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := contract.Call(opts, &out, "ownerOf", id); err != nil {
		return common.Address{}, fmt.Errorf("ownerOf failed: %w", err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// TransferNFT 将托管的 NFT 转给 to
func (c *Client) TransferNFT(ctx context.Context, nftContract common.Address, tokenId string, to common.Address) error {
	id, ok := new(big.Int).SetString(tokenId, 10)
	if !ok {
		return fmt.Errorf("invalid token id: %s", tokenId)
	}

	contract := bind.NewBoundContract(nftContract, c.erc721ABI, c.client, c.client, c.client)

	auth, err := c.GetAuth()
	if err != nil {
		return err
	}
	auth.Context = ctx
	if _, err := contract.Transact(auth, "transferFrom", c.CustodyAddress(), to, id); err != nil {
		return fmt.Errorf("nft transfer failed: %w", err)
	}
	return nil
}

// Call 对目标合约做一次带值外部调用（直购、应急调用、转售转交的后续调用）
func (c *Client) Call(ctx context.Context, target common.Address, data []byte, value decimal.Decimal) error {
	return c.sendEth(ctx, target, value.BigInt(), data)
}

// sendEth 发送一笔原生交易；gas 估算失败视为调用必然回滚，直接报错
func (c *Client) sendEth(ctx context.Context, to common.Address, value *big.Int, data []byte) error {
	from := c.CustodyAddress()

	nonce, err := c.client.PendingNonceAt(ctx, from)
	if err != nil {
		return fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch gas price: %w", err)
	}

	msg := ethereum.CallMsg{From: from, To: &to, Value: value, Data: data}
	gasLimit, err := c.client.EstimateGas(ctx, msg)
	if err != nil {
		return fmt.Errorf("gas estimation failed: %w", err)
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainId), c.privateKey)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	return nil
}
