package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/middleware"
	"github.com/andcook/andcook/backend/internal/service"
)

// multipartOverhead is allowed on top of the file size for headers and
// boundaries.
const multipartOverhead = 64 << 10

type ImageHandler struct {
	images   service.IImageService
	maxBytes int64
}

func NewImageHandler(images service.IImageService, maxBytes int64) *ImageHandler {
	return &ImageHandler{images: images, maxBytes: maxBytes}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc, limits Limiters) {
	router.POST("/upload", auth, limit(limits.Upload, "upload"), h.Upload)
}

// Upload accepts one image in the multipart field "file".
func (h *ImageHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apperror.Newf(apperror.ErrTooLarge, "File exceeds the %d MB limit", h.maxBytes>>20))
			return
		}
		respondError(c, apperror.New(apperror.ErrValidation, "No file uploaded"))
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		respondError(c, apperror.Newf(apperror.ErrTooLarge, "File exceeds the %d MB limit", h.maxBytes>>20))
		return
	}

	url, err := h.images.Upload(c.Request.Context(), middleware.GetPrincipal(c), header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully", "url": url})
}
