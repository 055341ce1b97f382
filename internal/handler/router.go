package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wzgate/estatechat/internal/middleware"
)

type RouterDeps struct {
	Chat            *ChatHandler
	Index           *IndexHandler
	APIKey          string
	RateLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.Use(middleware.APIKey(deps.APIKey))

	chatGroup := api.Group("")
	if deps.RateLimitWindow > 0 {
		chatGroup.Use(middleware.RateLimit(deps.RateLimitWindow))
	}
	chatGroup.POST("/chat", deps.Chat.Chat)

	api.GET("/index/info", deps.Index.Info)
	api.POST("/index/upload", deps.Index.Upload)
	api.POST("/index/rebuild", deps.Index.Rebuild)
	api.GET("/index/rebuild/status", deps.Index.RebuildStatus)
}
