package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/typeq/typeq/internal/model"
	"github.com/typeq/typeq/internal/pkg/errcode"
	"github.com/typeq/typeq/internal/pkg/response"
	"github.com/typeq/typeq/internal/service"
)

const maxUploadBytes = 8 << 20

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

type trainRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
	Strategy string `json:"strategy"`
}

type appendRequest struct {
	Text string `json:"text"`
}

type retrainRequest struct {
	Strategy string `json:"strategy"`
}

// Train accepts either a JSON body or a multipart upload with a "file"
// part plus an optional "strategy" field.
func (h *DocumentHandler) Train(c *gin.Context) {
	filename, text, strategy, ok := h.readTrainInput(c)
	if !ok {
		return
	}
	result, err := h.documents.Train(c.Request.Context(), filename, text, model.ChunkStrategy(strategy))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *DocumentHandler) readTrainInput(c *gin.Context) (filename, text, strategy string, ok bool) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, err := c.FormFile("file")
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "file is required")
			return "", "", "", false
		}
		if file.Size > maxUploadBytes {
			response.Error(c, errcode.ErrInvalid, "file too large")
			return "", "", "", false
		}
		opened, err := file.Open()
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "failed to open file")
			return "", "", "", false
		}
		defer opened.Close()
		data, err := io.ReadAll(io.LimitReader(opened, maxUploadBytes))
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "failed to read file")
			return "", "", "", false
		}
		return file.Filename, string(data), c.PostForm("strategy"), true
	}
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return "", "", "", false
	}
	if req.Filename == "" || req.Text == "" {
		response.Error(c, errcode.ErrInvalid, "filename and text required")
		return "", "", "", false
	}
	return req.Filename, req.Text, req.Strategy, true
}

func (h *DocumentHandler) Append(c *gin.Context) {
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		response.Error(c, errcode.ErrInvalid, "text required")
		return
	}
	result, err := h.documents.Append(c.Request.Context(), c.Param("name"), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *DocumentHandler) Retrain(c *gin.Context) {
	var req retrainRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.documents.Retrain(c.Request.Context(), c.Param("name"), model.ChunkStrategy(req.Strategy))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Forget(c.Request.Context(), c.Param("name")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	detail, err := h.documents.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *DocumentHandler) Chunks(c *gin.Context) {
	chunks, err := h.documents.Chunks(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": chunks})
}

// Original streams the upload as it was received, before flattening.
func (h *DocumentHandler) Original(c *gin.Context) {
	f, err := h.documents.OpenOriginal(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	defer f.Close()
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}

func (h *DocumentHandler) List(c *gin.Context) {
	stats, err := h.documents.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": stats})
}
