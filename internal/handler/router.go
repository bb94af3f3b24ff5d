package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/typeq/typeq/internal/middleware"
)

type RouterDeps struct {
	Suggest        *SuggestHandler
	Documents      *DocumentHandler
	Health         *HealthHandler
	JWTSecret      []byte
	SuggestRateGap time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", deps.Health.Check)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	suggestGroup := authGroup.Group("")
	if deps.SuggestRateGap > 0 {
		suggestGroup.Use(middleware.RateLimit(deps.SuggestRateGap))
	}
	suggestGroup.POST("/suggest", deps.Suggest.Suggest)
	authGroup.POST("/suggest/accept", deps.Suggest.Accept)

	authGroup.POST("/documents/train", deps.Documents.Train)
	authGroup.POST("/documents/:name/append", deps.Documents.Append)
	authGroup.POST("/documents/:name/retrain", deps.Documents.Retrain)
	authGroup.GET("/documents/:name", deps.Documents.Get)
	authGroup.GET("/documents/:name/chunks", deps.Documents.Chunks)
	authGroup.GET("/documents/:name/original", deps.Documents.Original)
	authGroup.DELETE("/documents/:name", deps.Documents.Delete)
	authGroup.GET("/documents", deps.Documents.List)
}
