package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/typeq/typeq/internal/model"
	"github.com/typeq/typeq/internal/pkg/errcode"
	"github.com/typeq/typeq/internal/pkg/response"
	"github.com/typeq/typeq/internal/service"
	"github.com/typeq/typeq/internal/suggest"
)

type SuggestHandler struct {
	suggestions *service.SuggestService
	learner     *service.LearnService
}

func NewSuggestHandler(suggestions *service.SuggestService, learner *service.LearnService) *SuggestHandler {
	return &SuggestHandler{suggestions: suggestions, learner: learner}
}

type suggestRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	Seq       uint64 `json:"seq"`
}

type acceptRequest struct {
	AcceptedText string `json:"accepted_text"`
	Context      string `json:"context"`
	Source       string `json:"source"`
}

type acceptResponse struct {
	*service.LearnResult
	Overlap int `json:"overlap"`
}

func (h *SuggestHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Text == "" {
		response.Error(c, errcode.ErrInvalid, "text required")
		return
	}
	result, err := h.suggestions.Suggest(c.Request.Context(), service.SuggestRequest{
		Text:      req.Text,
		SessionID: req.SessionID,
		Seq:       req.Seq,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Accept records an accepted suggestion. The overlap field tells the
// client how many characters of the suggestion were already typed and
// must not be inserted again.
func (h *SuggestHandler) Accept(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.AcceptedText == "" {
		response.Error(c, errcode.ErrInvalid, "accepted_text required")
		return
	}
	result, err := h.learner.Learn(c.Request.Context(), service.LearnRequest{
		AcceptedText: req.AcceptedText,
		Context:      req.Context,
		Source:       model.SuggestionSource(req.Source),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, acceptResponse{
		LearnResult: result,
		Overlap:     suggest.Overlap(req.Context, req.AcceptedText),
	})
}
