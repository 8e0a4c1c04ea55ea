package task

import (
	"github.com/blues/pas/internal/config"
	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/logic"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// TaskManager 任务管理器
type TaskManager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	config    *config.Config
}

// NewTaskManager 创建新的任务管理器
func NewTaskManager(db *gorm.DB, cfg *config.Config) *TaskManager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &TaskManager{
		scheduler: s,
		db:        db,
		config:    cfg,
	}
}

// Start 启动任务管理器并注册所有任务
func Start(db *gorm.DB, cfg *config.Config, auctionLogic *logic.AuctionLogic, buyLogic *logic.BuyLogic, settleLogic *logic.SettleLogic, resellerLogic *logic.ResellerLogic) *TaskManager {
	manager := NewTaskManager(db, cfg)

	manager.RegisterJob(NewAuctionWatchJob(db, cfg, auctionLogic))
	manager.RegisterJob(NewCampaignExpireJob(db, cfg, auctionLogic, buyLogic))
	manager.RegisterJob(NewSettlementRetryJob(db, cfg, settleLogic))
	manager.RegisterJob(NewResellerRouteJob(db, cfg, resellerLogic))

	manager.scheduler.Start()
	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJob 注册单个任务，单例模式防止跑批重入
func (m *TaskManager) RegisterJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *TaskManager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
