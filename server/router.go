package server

import (
	"net/http"
	"time"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	httpHandler "channelhub/interfaces/http"
	"channelhub/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	integrationHandler httpHandler.IIntegrationHandler,
	subAccountHandler httpHandler.ISubAccountHandler,
	alertHandler httpHandler.IAlertHandler,
	userRepository repository.IUser,
	frontendURL string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider redirects land here unauthenticated; the state nonce carries
	// the user identity.
	router.GET("/auth/:platform/callback", integrationHandler.Callback)

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	api.GET("/userDetails", userHandler.Me)

	integrations := api.Group("/integrations")
	{
		integrations.GET("/status", integrationHandler.Status)
		platform := integrations.Group("/:platform")
		{
			platform.GET("/connect", integrationHandler.Connect)
			platform.POST("/sync", integrationHandler.Sync)
			platform.GET("/data", integrationHandler.Data)
			platform.GET("/data/export", integrationHandler.Export)
			platform.POST("/disconnect", integrationHandler.Disconnect)
			platform.GET("/accounts", subAccountHandler.List)
			platform.GET("/accounts/data", subAccountHandler.ListWithData)
			platform.POST("/accounts/:subAccountId/toggle", subAccountHandler.Toggle)
		}
	}

	// Per-platform aliases kept for the dashboard's older fetch paths.
	shopify := api.Group("/shopify")
	{
		shopify.GET("/shops", withPlatform(model.PlatformShopify, subAccountHandler.ListWithData))
		shopify.POST("/connect-shop/:subAccountId", withPlatform(model.PlatformShopify, subAccountHandler.Toggle))
		shopify.GET("/orders", withParams(model.PlatformShopify, model.DataTypeOrder, integrationHandler.Data))
	}
	facebook := api.Group("/facebook")
	{
		facebook.GET("/ads", withPlatform(model.PlatformFacebookAds, subAccountHandler.ListWithData))
		facebook.POST("/connect-account/:subAccountId", withPlatform(model.PlatformFacebookAds, subAccountHandler.Toggle))
	}
	api.GET("/google/campaigns", withParams(model.PlatformGoogleAds, model.DataTypeCampaign, integrationHandler.Data))
	api.GET("/analytics/report", withParams(model.PlatformGoogleAnalytics, model.DataTypeAnalytics, integrationHandler.Data))
	api.GET("/amazon/orders", withParams(model.PlatformAmazonSeller, model.DataTypeOrder, integrationHandler.Data))
	api.GET("/flipkart/orders", withParams(model.PlatformFlipkart, model.DataTypeOrder, integrationHandler.Data))

	alerts := api.Group("/alerts")
	{
		alerts.GET("", alertHandler.List)
		alerts.POST("/:alertId/read", alertHandler.MarkRead)
		alerts.GET("/stream", alertHandler.Stream)
	}

	return router
}

// withPlatform pins the :platform route param for alias routes.
func withPlatform(platform string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "platform", Value: platform})
		h(c)
	}
}

// withParams pins both the platform and the data type filter.
func withParams(platform, dataType string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "platform", Value: platform})
		q := c.Request.URL.Query()
		q.Set("type", dataType)
		c.Request.URL.RawQuery = q.Encode()
		h(c)
	}
}
