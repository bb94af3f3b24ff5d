package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/typeq/typeq/internal/ai"
	"github.com/typeq/typeq/internal/middleware"
	"github.com/typeq/typeq/internal/pkg/errcode"
	appErr "github.com/typeq/typeq/internal/pkg/errors"
	"github.com/typeq/typeq/internal/pkg/response"
)

func getClientID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextClientIDKey)
	clientID, _ := value.(string)
	return clientID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_id", getClientID(c)),
		zap.Error(err),
	)
	switch {
	case appErr.IsNotFound(err):
		response.Error(c, errcode.ErrNotFound, "not found")
	case appErr.IsStale(err):
		response.Error(c, errcode.ErrStaleRequest, "superseded by a newer request")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case errors.Is(err, appErr.ErrRetrieval):
		response.Error(c, errcode.ErrRetrieval, "retrieval failed")
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, errcode.ErrAIUnavailable, "ai not configured")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
