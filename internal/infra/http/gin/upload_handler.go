package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"findy/internal/infra/storage/s3"
)

const maxUploadBytes = 8 << 20

type UploadHandler struct {
	Uploader s3.Uploader
	Logger   *slog.Logger
}

// Upload accepts one multipart image and returns its public URL.
func (h UploadHandler) Upload(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		respondFail(c, http.StatusBadRequest, "image file is required")
		return
	}
	if file.Size > maxUploadBytes {
		respondFail(c, http.StatusBadRequest, "image exceeds the 8MB limit")
		return
	}
	reader, err := file.Open()
	if err != nil {
		respondFail(c, http.StatusBadRequest, "could not read image")
		return
	}
	defer reader.Close()

	key := s3.ImageKey(string(p.ID), file.Filename)
	url, err := h.Uploader.Upload(c.Request.Context(), key, reader, file.Header.Get("Content-Type"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("image upload failed", "error", err)
		}
		respondFail(c, http.StatusInternalServerError, "upload failed")
		return
	}
	respondData(c, http.StatusCreated, gin.H{"url": url})
}
