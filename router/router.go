package router

import (
	"time"

	"couplefin/api"
	"couplefin/config"
	_ "couplefin/docs"
	"couplefin/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)
		}

		// 需要 JWT 认证、但不要求已配对的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 情侣配对
			coupleHandler := api.NewCoupleHandler(cfg)
			couple := authorized.Group("/couple")
			{
				couple.POST("", coupleHandler.Create)
				couple.POST("/invite", coupleHandler.Invite)
				couple.POST("/accept", coupleHandler.Accept)
				couple.GET("", coupleHandler.Get)
				couple.PUT("/allowances", coupleHandler.UpdateAllowance)
				couple.POST("/allowances/reset", coupleHandler.ResetAllowances)
			}

			// 游戏化按用户维度，不依赖租户上下文
			gameHandler := api.NewGameHandler()
			game := authorized.Group("/game")
			{
				game.GET("/profile", gameHandler.GetProfile)
				game.GET("/xp-events", gameHandler.ListXPEvents)
			}
		}

		// 要求租户上下文（已创建情侣）的路由
		tenant := v1.Group("")
		tenant.Use(middleware.JWTAuth(), middleware.TenantContext())
		{
			accountHandler := api.NewAccountHandler(cfg)
			accounts := tenant.Group("/accounts")
			{
				accounts.POST("", accountHandler.Create)
				accounts.GET("", accountHandler.List)
				accounts.GET("/balance", accountHandler.TotalBalance)
				accounts.GET("/:id", accountHandler.Get)
				accounts.PUT("/:id", accountHandler.Update)
				accounts.DELETE("/:id", accountHandler.Delete)
			}

			categoryHandler := api.NewCategoryHandler()
			categories := tenant.Group("/categories")
			{
				categories.POST("", categoryHandler.Create)
				categories.GET("", categoryHandler.List)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			transactionHandler := api.NewTransactionHandler(cfg)
			transactions := tenant.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.List)
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.POST("/:id/settle", transactionHandler.Settle)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			summaryHandler := api.NewSummaryHandler()
			tenant.GET("/statistics/summary", summaryHandler.Summary)

			exportHandler := api.NewExportHandler()
			tenant.GET("/export/excel", exportHandler.ExportExcel)

			subscriptionHandler := api.NewSubscriptionHandler(cfg)
			tenant.GET("/plans", subscriptionHandler.ListPlans)
			subscription := tenant.Group("/subscription")
			{
				subscription.GET("", subscriptionHandler.Get)
				subscription.POST("", subscriptionHandler.Subscribe)
				subscription.POST("/cancel", subscriptionHandler.Cancel)
				subscription.POST("/portal", subscriptionHandler.Portal)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
