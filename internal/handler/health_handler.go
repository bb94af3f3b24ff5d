package handler

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/typeq/typeq/internal/pkg/errcode"
	"github.com/typeq/typeq/internal/pkg/response"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			response.Error(c, errcode.ErrInternal, "database unreachable")
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}
