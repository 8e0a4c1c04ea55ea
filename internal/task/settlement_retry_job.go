package task

import (
	"context"
	"time"

	"github.com/blues/pas/internal/config"
	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/logic"
	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// SettlementRetryJob 结算重试任务：WON 闭锁后结算失败的活动会留在
// settled_at 为空的状态，这里接续重跑直到结算完成。结算引擎是幂等的，
// 重复执行不会重复计提费用。
type SettlementRetryJob struct {
	db          *gorm.DB
	config      *config.Config
	settleLogic *logic.SettleLogic
}

// NewSettlementRetryJob 创建结算重试任务
func NewSettlementRetryJob(db *gorm.DB, cfg *config.Config, settleLogic *logic.SettleLogic) *SettlementRetryJob {
	return &SettlementRetryJob{
		db:          db,
		config:      cfg,
		settleLogic: settleLogic,
	}
}

// GetName 获取任务名称
func (j *SettlementRetryJob) GetName() string {
	return "settlement_retrier"
}

// GetSchedule 获取调度配置
func (j *SettlementRetryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *SettlementRetryJob) Execute() {
	var campaigns []model.CampaignModel
	err := j.db.Where("status = ? AND settled_at IS NULL", party.StatusWon).
		Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch unsettled campaigns: %v", err)
		return
	}

	ctx := context.Background()
	settled := 0
	for i := range campaigns {
		if err := j.settleLogic.Settle(ctx, &campaigns[i]); err != nil {
			logger.Error("Settlement retry failed for campaign %d: %v", campaigns[i].Id, err)
			continue
		}
		settled++
	}

	if settled > 0 {
		logger.Info("Settlement retrier settled %d campaigns", settled)
	}
}
