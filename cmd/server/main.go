package main

import (
	"log"

	"github.com/blues/pas/internal/config"
	"github.com/blues/pas/internal/database"
	"github.com/blues/pas/internal/ethereum"
	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/logic"
	"github.com/blues/pas/internal/market"
	"github.com/blues/pas/internal/monitor"
	"github.com/blues/pas/internal/router"
	"github.com/blues/pas/internal/task"
	"github.com/blues/pas/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()
	logger.Setup(cfg.Log)

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化托管钱包链客户端
	ethClient, err := ethereum.Init(cfg.Chain)
	if err != nil {
		log.Fatalf("Failed to initialize ethereum client: %v", err)
	}

	auth, err := ethClient.GetAuth()
	if err != nil {
		log.Fatalf("Failed to build transactor: %v", err)
	}

	// 市场适配器与份额化金库
	adapter, err := market.NewContractAdapter(ethClient.Raw(), common.HexToAddress(cfg.Chain.MarketAddr), auth)
	if err != nil {
		log.Fatalf("Failed to initialize market adapter: %v", err)
	}
	fractionalizer, err := vault.NewContractVault(ethClient.Raw(), common.HexToAddress(cfg.Chain.VaultAddr), auth)
	if err != nil {
		log.Fatalf("Failed to initialize vault: %v", err)
	}

	// 业务逻辑
	campaignLogic := logic.NewCampaignLogic(db, cfg.Campaign)
	contributeLogic := logic.NewContributeLogic(db, ethClient)
	allowListLogic := logic.NewAllowListLogic(db)
	settleLogic := logic.NewSettleLogic(db, ethClient, fractionalizer, common.HexToAddress(cfg.Campaign.FeeRecipient))
	auctionLogic := logic.NewAuctionLogic(db, ethClient, adapter, settleLogic, campaignLogic)
	buyLogic := logic.NewBuyLogic(db, ethClient, settleLogic, campaignLogic, allowListLogic)
	claimLogic := logic.NewClaimLogic(db, ethClient, settleLogic, campaignLogic)
	resellerLogic := logic.NewResellerLogic(db, ethClient, allowListLogic, campaignLogic)
	emergencyLogic := logic.NewEmergencyLogic(db, ethClient, campaignLogic, cfg.Campaign.Operator)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(&router.Logics{
		Campaign:   campaignLogic,
		Contribute: contributeLogic,
		Auction:    auctionLogic,
		Buy:        buyLogic,
		Claim:      claimLogic,
		Reseller:   resellerLogic,
		AllowList:  allowListLogic,
		Emergency:  emergencyLogic,
	}, cfg)

	// 启动定时任务
	task.Start(db, cfg, auctionLogic, buyLogic, settleLogic, resellerLogic)

	// 启动出价日志监控
	auctionMonitor, err := monitor.NewAuctionMonitor(ethClient, db, cfg.Chain.MarketAddr)
	if err != nil {
		log.Fatalf("Failed to create auction monitor: %v", err)
	}
	if err := auctionMonitor.Start(); err != nil {
		log.Fatalf("Failed to start auction monitor: %v", err)
	}

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
