package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/vidtube/internal/middleware"
	"github.com/vidtube/vidtube/internal/services"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	state, err := h.subscriptionService.Toggle(c.Request.Context(), c.Param("channelId"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": state})
}

func (h *SubscriptionHandler) Subscribers(c *gin.Context) {
	page, err := h.subscriptionService.Subscribers(c.Request.Context(), c.Param("channelId"), bindPage(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscribers": page.Items,
		"page_info":   page.PageInfo,
	})
}

func (h *SubscriptionHandler) Subscribed(c *gin.Context) {
	page, err := h.subscriptionService.Subscribed(c.Request.Context(), middleware.GetUserID(c), bindPage(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"channels":  page.Items,
		"page_info": page.PageInfo,
	})
}
