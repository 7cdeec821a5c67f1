package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal/internal/service"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
	"github.com/noah-isme/campus-portal/pkg/response"
)

type chatService interface {
	Relay(ctx context.Context, action string, req service.ChatRequest) (service.ChatReply, error)
}

// ChatHandler exposes the chatbot relay.
type ChatHandler struct {
	chat chatService
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(chat chatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Relay godoc
// @Summary Translate or summarize text
// @Tags Chat
// @Accept json
// @Produce json
// @Param action path string true "translate or summarize"
// @Param payload body service.ChatRequest true "Text"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /api/chat/{action} [post]
func (h *ChatHandler) Relay(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	reply, err := h.chat.Relay(c.Request.Context(), c.Param("action"), req)
	if err != nil {
		if service.IsChatFailure(err) {
			c.JSON(http.StatusBadGateway, response.Envelope{Data: reply, Error: appErrors.FromError(err)})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reply)
}
