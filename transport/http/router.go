package http

import (
	"github.com/gin-gonic/gin"

	"github.com/gridmesh/station/service"
)

// SetupRouter sets up the Gin router for the dashboard API.
func SetupRouter(handlers *Handlers, coordinator *service.Coordinator) *gin.Engine {
	router := gin.Default()

	// Session routes
	session := router.Group("/session")
	{
		session.GET("", handlers.Session)
		session.POST("/connect", handlers.Connect)
		session.POST("/authenticate", handlers.Authenticate)
		session.POST("/disconnect", handlers.Disconnect)
		session.POST("/refresh", handlers.Refresh)
		session.POST("/network", handlers.SelectNetwork)
	}

	router.GET("/networks", handlers.Networks)

	// Staking routes require an authenticated session and an injected provider
	staking := router.Group("/staking")
	staking.Use(RequireAuth(coordinator))
	{
		staking.GET("/:network/min", handlers.MinStakeAmounts)
		staking.GET("/:network/node/:address", handlers.StakingInfo)
		staking.GET("/:network/delegations/:delegator", handlers.DelegatorStakes)
		staking.POST("/:network/stake", handlers.Stake)
		staking.POST("/:network/unstake", handlers.Unstake)
		staking.POST("/:network/try-unstake", handlers.TryUnstake)
		staking.POST("/:network/force-unstake", handlers.ForceUnstake)
	}

	return router
}
