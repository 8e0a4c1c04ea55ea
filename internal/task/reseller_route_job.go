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

// ResellerRouteJob 转售路由重试任务：渠道已获批准但资产移交未完成的
// 活动会留在 asset_routed_at 为空的状态，这里接续重放移交。
type ResellerRouteJob struct {
	db            *gorm.DB
	config        *config.Config
	resellerLogic *logic.ResellerLogic
}

// NewResellerRouteJob 创建转售路由重试任务
func NewResellerRouteJob(db *gorm.DB, cfg *config.Config, resellerLogic *logic.ResellerLogic) *ResellerRouteJob {
	return &ResellerRouteJob{
		db:            db,
		config:        cfg,
		resellerLogic: resellerLogic,
	}
}

// GetName 获取任务名称
func (j *ResellerRouteJob) GetName() string {
	return "reseller_router"
}

// GetSchedule 获取调度配置
func (j *ResellerRouteJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ResellerRouteJob) Execute() {
	var campaigns []model.CampaignModel
	err := j.db.Where("status = ? AND approved_reseller <> '' AND asset_routed_at IS NULL", party.StatusWon).
		Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch unrouted campaigns: %v", err)
		return
	}

	ctx := context.Background()
	for i := range campaigns {
		err := j.resellerLogic.RouteApproved(ctx, campaigns[i].Id)
		if err != nil && !errors.Is(err, party.ErrOperationInFlight) {
			logger.Error("Reseller route retry failed for campaign %d: %v", campaigns[i].Id, err)
		}
	}
}
