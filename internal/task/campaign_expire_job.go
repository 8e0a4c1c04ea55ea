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

// CampaignExpireJob 逾期关闭任务：过了逾期时间的活动自动转 LOST，
// 竞拍模式下领先中的活动会被跳过
type CampaignExpireJob struct {
	db           *gorm.DB
	config       *config.Config
	auctionLogic *logic.AuctionLogic
	buyLogic     *logic.BuyLogic
}

// NewCampaignExpireJob 创建逾期关闭任务
func NewCampaignExpireJob(db *gorm.DB, cfg *config.Config, auctionLogic *logic.AuctionLogic, buyLogic *logic.BuyLogic) *CampaignExpireJob {
	return &CampaignExpireJob{
		db:           db,
		config:       cfg,
		auctionLogic: auctionLogic,
		buyLogic:     buyLogic,
	}
}

// GetName 获取任务名称
func (j *CampaignExpireJob) GetName() string {
	return "campaign_expirer"
}

// GetSchedule 获取调度配置
func (j *CampaignExpireJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignExpireJob) Execute() {
	var campaigns []model.CampaignModel
	err := j.db.Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
		party.StatusActive, time.Now()).Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch expired campaigns: %v", err)
		return
	}

	ctx := context.Background()
	closed := 0
	for _, campaign := range campaigns {
		var expireErr error
		if campaign.Variant == party.VariantAuction {
			expireErr = j.auctionLogic.Expire(ctx, campaign.Id)
		} else {
			expireErr = j.buyLogic.Expire(ctx, campaign.Id)
		}

		switch {
		case expireErr == nil:
			closed++
		case errors.Is(expireErr, party.ErrExpireWhileLeading),
			errors.Is(expireErr, party.ErrOperationInFlight):
			// 领先中的活动等 finalize，有并发操作的下一轮再看
		default:
			logger.Error("Expirer failed to close campaign %d: %v", campaign.Id, expireErr)
		}
	}

	if closed > 0 {
		logger.Info("Campaign expirer closed %d campaigns", closed)
	}
}
