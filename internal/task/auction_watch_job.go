package task

import (
	"context"
	"errors"
	"time"

	"github.com/blues/pas/internal/config"
	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/logic"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// AuctionWatchJob 竞拍看护任务：外部拍卖结束后自动收束活动，
// 贡献者不必手动触发 finalize
type AuctionWatchJob struct {
	db           *gorm.DB
	config       *config.Config
	auctionLogic *logic.AuctionLogic
}

// NewAuctionWatchJob 创建竞拍看护任务
func NewAuctionWatchJob(db *gorm.DB, cfg *config.Config, auctionLogic *logic.AuctionLogic) *AuctionWatchJob {
	return &AuctionWatchJob{
		db:           db,
		config:       cfg,
		auctionLogic: auctionLogic,
	}
}

// GetName 获取任务名称
func (j *AuctionWatchJob) GetName() string {
	return "auction_watcher"
}

// GetSchedule 获取调度配置
func (j *AuctionWatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *AuctionWatchJob) Execute() {
	var campaigns []model.CampaignModel
	err := j.db.Where("variant = ? AND status = ?", party.VariantAuction, party.StatusActive).
		Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch active auction campaigns: %v", err)
		return
	}

	ctx := context.Background()
	finalized := 0
	for _, campaign := range campaigns {
		err := j.auctionLogic.Finalize(ctx, campaign.Id)
		switch {
		case err == nil:
			finalized++
		case errors.Is(err, party.ErrAuctionStillOpen),
			errors.Is(err, party.ErrOperationInFlight):
			// 拍卖还在进行或有并发操作，下一轮再看
		default:
			logger.Error("Auction watcher failed to finalize campaign %d: %v", campaign.Id, err)
		}
	}

	if finalized > 0 {
		logger.Info("Auction watcher finalized %d campaigns", finalized)
	}
}
