package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"smartbuy-backend/config"
	"smartbuy-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	limiters := mw.NewClientLimiters(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, 10*time.Minute)
	rateLimiter := mw.RateLimiter(limiters, mw.ClientIP)

	responses := mw.NewResponseCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	caching := responses.Handler()

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/layout", caching, h.GetLayout)

		api.GET("/session", h.GetSession)
		api.POST("/session/start", h.StartSession)
		api.POST("/session/pause", h.PauseSession)
		api.POST("/session/continue", h.ContinueSession)
		api.POST("/session/capture", h.CaptureSession)

		api.POST("/items", h.AddItem)
		api.POST("/items/:id/collect", h.CollectItem)
		api.POST("/recommendations/:id/accept", h.AcceptRecommendation)
		api.POST("/recommendations/:id/dismiss", h.DismissRecommendation)
		api.POST("/assistance", h.RequestAssistance)

		// A successful checkout drops the cached receipt.
		api.POST("/checkout", responses.InvalidateOnSuccess("/api/receipt"), h.PostCheckout)
		api.GET("/receipt", caching, h.GetReceipt)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
