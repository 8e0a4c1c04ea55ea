package router

import (
	"crypto/subtle"

	"github.com/blues/pas/internal/config"
	"github.com/blues/pas/internal/handler"
	"github.com/blues/pas/internal/logic"
	"github.com/gin-gonic/gin"
)

// Logics 路由依赖的业务逻辑集合
type Logics struct {
	Campaign   *logic.CampaignLogic
	Contribute *logic.ContributeLogic
	Auction    *logic.AuctionLogic
	Buy        *logic.BuyLogic
	Claim      *logic.ClaimLogic
	Reseller   *logic.ResellerLogic
	AllowList  *logic.AllowListLogic
	Emergency  *logic.EmergencyLogic
}

func Setup(logics *Logics, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "pooled-acquisition-service",
		})
	})

	campaignHandler := handler.NewCampaignHandler(logics.Campaign)
	contributeHandler := handler.NewContributeHandler(logics.Contribute)
	acquireHandler := handler.NewAcquireHandler(logics.Auction, logics.Buy, logics.Campaign)
	claimHandler := handler.NewClaimHandler(logics.Claim)
	resellerHandler := handler.NewResellerHandler(logics.Reseller)
	adminHandler := handler.NewAdminHandler(logics.AllowList, logics.Emergency, cfg.Campaign.Operator)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/stats", campaignHandler.GetCampaignStats)

			campaigns.POST("/:id/contributions", contributeHandler.Contribute)
			campaigns.GET("/:id/contributions", contributeHandler.GetCampaignContributions)
			campaigns.GET("/:id/contributors/:address", contributeHandler.GetContributor)

			campaigns.POST("/:id/bid", acquireHandler.Bid)
			campaigns.POST("/:id/buy", acquireHandler.Buy)
			campaigns.POST("/:id/finalize", acquireHandler.Finalize)
			campaigns.POST("/:id/expire", acquireHandler.Expire)

			campaigns.GET("/:id/claims/:address", claimHandler.GetClaimAmounts)
			campaigns.POST("/:id/claims", claimHandler.Claim)

			campaigns.POST("/:id/reseller-votes", resellerHandler.SupportReseller)
			campaigns.GET("/:id/reseller-votes", resellerHandler.GetVotes)
		}

		// 运维接口需要操作员令牌
		admin := v1.Group("/admin", operatorAuthMiddleware(cfg.Campaign.OperatorToken))
		{
			admin.GET("/allowlist", adminHandler.ListAllowed)
			admin.POST("/allowlist", adminHandler.Allow)
			admin.DELETE("/allowlist", adminHandler.Disallow)

			admin.POST("/campaigns/:id/emergency-withdraw", adminHandler.EmergencyWithdraw)
			admin.POST("/campaigns/:id/emergency-call", adminHandler.EmergencyCall)
			admin.POST("/campaigns/:id/force-lost", adminHandler.EmergencyForceLost)
		}
	}

	return r
}

// 操作员令牌鉴权中间件
func operatorAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Operator-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(403, gin.H{"error": "only operator"})
			return
		}
		c.Next()
	}
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Operator-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
