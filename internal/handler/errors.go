package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/render"
	"github.com/openinvite/backend/internal/repository"
	"github.com/openinvite/backend/internal/service"
	"github.com/openinvite/backend/internal/session"
	"github.com/openinvite/backend/internal/storage"
)

// 错误分类码。前端依据 kind 决定提示方式：
// transient 可重试，validation 改输入，not_found 终态，asset 资源问题
const (
	kindTransient  = "transient"
	kindValidation = "validation"
	kindNotFound   = "not_found"
	kindAsset      = "asset"
)

// respondError 将服务层错误映射为响应分类
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, session.ErrElementNotFound),
		errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": kindNotFound})
	case errors.Is(err, render.ErrNotPublished):
		// 未发布与不存在对外不区分
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "kind": kindNotFound})
	case errors.Is(err, service.ErrSlugExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": kindValidation})
	case errors.Is(err, service.ErrTemplateInvalid),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, model.ErrUnknownElementKind),
		errors.Is(err, model.ErrConfigKindMismatch),
		errors.Is(err, model.ErrConfigMissing),
		errors.Is(err, model.ErrOverlayOutOfRange),
		errors.Is(err, model.ErrDuplicateSectionKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kindValidation})
	case errors.Is(err, storage.ErrContentType),
		errors.Is(err, storage.ErrTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kindAsset})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": kindTransient})
	}
}

// respondBadRequest 请求体/参数解析失败
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kindValidation})
}
