package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const graphqlProxyError = "Error proxying to GraphQL"

type graphqlProxy interface {
	Forward(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
}

// GraphQLHandler relays GraphQL requests to the gateway.
type GraphQLHandler struct {
	proxy graphqlProxy
}

// NewGraphQLHandler constructs GraphQLHandler.
func NewGraphQLHandler(proxy graphqlProxy) *GraphQLHandler {
	return &GraphQLHandler{proxy: proxy}
}

// Proxy godoc
// @Summary Forward a GraphQL request
// @Tags GraphQL
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/graphql [post]
func (h *GraphQLHandler) Proxy(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || !json.Valid(raw) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": graphqlProxyError})
		return
	}
	body, err := h.proxy.Forward(c.Request.Context(), raw)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": graphqlProxyError})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
