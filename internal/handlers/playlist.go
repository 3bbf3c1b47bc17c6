package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/vidtube/internal/middleware"
	"github.com/vidtube/vidtube/internal/services"
)

type PlaylistHandler struct {
	playlistService *services.PlaylistService
}

func NewPlaylistHandler(playlistService *services.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlistService: playlistService}
}

func (h *PlaylistHandler) Create(c *gin.Context) {
	var req services.CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	playlist, err := h.playlistService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Playlist created successfully",
		"playlist": playlist,
	})
}

func (h *PlaylistHandler) Get(c *gin.Context) {
	detail, err := h.playlistService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"playlist": detail.Playlist,
		"videos":   detail.Videos,
	})
}

func (h *PlaylistHandler) ListByUser(c *gin.Context) {
	playlists, err := h.playlistService.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playlists": playlists})
}

func (h *PlaylistHandler) Update(c *gin.Context) {
	var req services.UpdatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	playlist, err := h.playlistService.Update(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Playlist updated successfully",
		"playlist": playlist,
	})
}

func (h *PlaylistHandler) Delete(c *gin.Context) {
	if err := h.playlistService.Delete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Playlist deleted successfully"})
}

func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	if err := h.playlistService.AddVideo(c.Request.Context(), c.Param("id"), c.Param("videoId"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video added to playlist"})
}

func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	if err := h.playlistService.RemoveVideo(c.Request.Context(), c.Param("id"), c.Param("videoId"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video removed from playlist"})
}
