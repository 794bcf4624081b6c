package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openinvite/backend/internal/storage"
)

// UploadHandler 媒体上传 Handler
type UploadHandler struct {
	uploader *storage.Uploader
}

// NewUploadHandler 创建 Handler
func NewUploadHandler(uploader *storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload multipart 表单上传，字段名 file
// 对象名取随机 UUID 加原扩展名，避免用户文件名冲突与注入
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer src.Close()

	name := uuid.New().String() + filepath.Ext(file.Filename)
	contentType := file.Header.Get("Content-Type")
	url, err := h.uploader.Upload(c.Request.Context(), name, src, contentType, file.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"url": url}})
}
