package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/vidtube/internal/middleware"
	"github.com/vidtube/vidtube/internal/services"
)

type VideoHandler struct {
	videoService *services.VideoService
}

func NewVideoHandler(videoService *services.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

func (h *VideoHandler) Publish(c *gin.Context) {
	var req services.PublishVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	videoFile, err := formFile(c, "video_file")
	if err != nil {
		respondBindError(c, err)
		return
	}
	thumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		respondBindError(c, err)
		return
	}

	video, err := h.videoService.Publish(c.Request.Context(), middleware.GetUserID(c), &req, videoFile, thumbnail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Video published successfully",
		"video":   video,
	})
}

func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.videoService.Get(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *VideoHandler) List(c *gin.Context) {
	var query struct {
		Query    string `form:"query"`
		OwnerID  string `form:"owner_id"`
		SortBy   string `form:"sort_by"`
		SortDesc bool   `form:"sort_desc"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.videoService.List(c.Request.Context(), &services.ListVideosRequest{
		Page:     bindPage(c),
		Query:    query.Query,
		OwnerID:  query.OwnerID,
		SortBy:   query.SortBy,
		SortDesc: query.SortDesc,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videos":    page.Items,
		"page_info": page.PageInfo,
	})
}

func (h *VideoHandler) Update(c *gin.Context) {
	var req services.UpdateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	thumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		respondBindError(c, err)
		return
	}

	video, err := h.videoService.Update(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), &req, thumbnail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Video updated successfully",
		"video":   video,
	})
}

func (h *VideoHandler) TogglePublish(c *gin.Context) {
	video, err := h.videoService.TogglePublish(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Publish status toggled",
		"video":   video,
	})
}

func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.videoService.Delete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

func (h *VideoHandler) ChannelVideos(c *gin.Context) {
	videos, err := h.videoService.ChannelVideos(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}
