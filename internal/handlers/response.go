package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/services"
)

// respondError maps the error taxonomy onto HTTP statuses; anything outside
// the taxonomy is a 500 with a generic body so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrDependency):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// formFile converts an optional multipart form file into a service upload.
// A missing file returns (nil, nil); the caller decides whether it was
// required. The consuming service closes the file.
func formFile(c *gin.Context, field string) (*services.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// gin wraps the missing-file case and bare requests without a
		// multipart body both end up here
		return nil, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &services.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}, nil
}

func bindPage(c *gin.Context) services.PageRequest {
	var page services.PageRequest
	_ = c.ShouldBindQuery(&page)
	return page
}
