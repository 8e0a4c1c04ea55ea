package monitor

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/blues/pas/internal/ethereum"
	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// 市场合约的出价事件签名：Bid(uint256 auctionId, address bidder, uint256 amount)
var bidEventSig = crypto.Keccak256Hash([]byte("Bid(uint256,address,uint256)"))

// 单次轮询的最大区块跨度，避免一次 FilterLogs 拉取过多
const maxBlockSpan = 2000

// AuctionMonitor 市场出价日志监控器：发现托管地址之外的出价后清掉
// 对应活动的领先标记并落 Outbid 事件，供前端与看护任务感知被反超。
type AuctionMonitor struct {
	ethClient  *ethereum.Client
	db         *gorm.DB
	marketAddr common.Address
	pool       *ants.Pool
	lastBlock  uint64
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
}

// NewAuctionMonitor 创建出价监控器
func NewAuctionMonitor(ethClient *ethereum.Client, db *gorm.DB, marketAddr string) (*AuctionMonitor, error) {
	ctx, cancel := context.WithCancel(context.Background())

	pool, err := ants.NewPool(8)
	if err != nil {
		cancel()
		return nil, err
	}

	return &AuctionMonitor{
		ethClient:  ethClient,
		db:         db,
		marketAddr: common.HexToAddress(marketAddr),
		pool:       pool,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start 启动监控
func (m *AuctionMonitor) Start() error {
	if err := m.loadLastBlock(); err != nil {
		logger.Warn("Failed to load monitor checkpoint, starting from config: %v", err)
	}
	logger.Info("Starting auction monitor from block %d", m.lastBlock)

	go m.loop()
	return nil
}

// Stop 停止监控
func (m *AuctionMonitor) Stop() {
	m.cancel()
	m.pool.Release()
}

// loadLastBlock 从事件表恢复断点，没有断点则用配置的起始区块
func (m *AuctionMonitor) loadLastBlock() error {
	var last int64
	err := m.db.Model(&model.EventModel{}).
		Where("name = ?", model.EventOutbid).
		Select("COALESCE(MAX(block_num), 0)").Scan(&last).Error
	if err != nil {
		m.lastBlock = uint64(m.ethClient.GetStartBlock())
		return err
	}
	if last == 0 {
		last = m.ethClient.GetStartBlock()
	}
	m.lastBlock = uint64(last)
	return nil
}

// loop 监控循环
func (m *AuctionMonitor) loop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Auction monitor stopped")
			return
		case <-ticker.C:
			if err := m.processNewBlocks(); err != nil {
				logger.Error("Auction monitor error: %v", err)
			}
		}
	}
}

// processNewBlocks 拉取并分发新区块里的市场日志
func (m *AuctionMonitor) processNewBlocks() error {
	current, err := m.ethClient.GetLatestBlock(m.ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	from := m.lastBlock + 1
	m.mu.Unlock()
	if from > current {
		return nil
	}
	to := current
	if to-from > maxBlockSpan {
		to = from + maxBlockSpan
	}

	logs, err := m.ethClient.FilterLogs(m.ctx, from, to, []common.Address{m.marketAddr})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, lg := range logs {
		lg := lg
		wg.Add(1)
		if err := m.pool.Submit(func() {
			defer wg.Done()
			m.handleLog(lg)
		}); err != nil {
			wg.Done()
			logger.Error("Failed to submit log to pool: %v", err)
		}
	}
	wg.Wait()

	m.mu.Lock()
	m.lastBlock = to
	m.mu.Unlock()
	return nil
}

// handleLog 处理一条市场日志，只关心出价事件
func (m *AuctionMonitor) handleLog(lg types.Log) {
	if len(lg.Topics) == 0 || lg.Topics[0] != bidEventSig {
		return
	}
	auctionId, bidder, ok := parseBidLog(lg)
	if !ok {
		logger.Warn("Skipping malformed bid log at block %d", lg.BlockNumber)
		return
	}

	// 托管地址自己的出价不算被反超
	if bidder == m.ethClient.CustodyAddress() {
		return
	}

	var campaign model.CampaignModel
	err := m.db.Where("variant = ? AND status = ? AND auction_id = ? AND leading = ?",
		party.VariantAuction, party.StatusActive, auctionId, true).First(&campaign).Error
	if err != nil {
		return
	}

	if err := m.markOutbid(&campaign, bidder, lg); err != nil {
		logger.Error("Failed to record outbid for campaign %d: %v", campaign.Id, err)
		return
	}
	logger.Info("Campaign %d outbid on auction %s by %s", campaign.Id, auctionId, bidder.Hex())
}

// markOutbid 清掉领先标记并落事件流水，同一事务完成
func (m *AuctionMonitor) markOutbid(campaign *model.CampaignModel, bidder common.Address, lg types.Log) error {
	tx := m.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(campaign).Update("leading", false).Error; err != nil {
		tx.Rollback()
		return err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"auction_id": campaign.AuctionId,
		"bidder":     strings.ToLower(bidder.Hex()),
	})
	event := model.EventModel{
		Id:         uuid.NewString(),
		CampaignId: campaign.Id,
		Name:       model.EventOutbid,
		Data:       string(payload),
		TxHash:     lg.TxHash.Hex(),
		BlockNum:   int64(lg.BlockNumber),
		LogIndex:   int64(lg.Index),
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// parseBidLog 解析出价日志：topics 携带拍卖ID与出价人
func parseBidLog(lg types.Log) (auctionId string, bidder common.Address, ok bool) {
	if len(lg.Topics) < 3 {
		return "", common.Address{}, false
	}
	auctionId = lg.Topics[1].Big().String()
	bidder = common.BytesToAddress(lg.Topics[2].Bytes())
	return auctionId, bidder, true
}
