package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/service"
)

// DesignHandler 设计编辑 Handler：区块与元素的编辑入口
type DesignHandler struct {
	designService *service.DesignService
}

// NewDesignHandler 创建 Handler
func NewDesignHandler(designService *service.DesignService) *DesignHandler {
	return &DesignHandler{designService: designService}
}

// UpsertSection 更新区块设计，区块不存在时按需创建
func (h *DesignHandler) UpsertSection(c *gin.Context) {
	var req service.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	section, err := h.designService.UpsertSection(c.Request.Context(), c.Param("id"), c.Param("type"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": section})
}

// AddElement 向区块添加元素
func (h *DesignHandler) AddElement(c *gin.Context) {
	var el model.TemplateElement
	if err := c.ShouldBindJSON(&el); err != nil {
		respondBadRequest(c, err)
		return
	}

	added, err := h.designService.AddElement(c.Request.Context(), c.Param("id"), c.Param("type"), el)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": added})
}

// UpdateElement 部分更新元素
func (h *DesignHandler) UpdateElement(c *gin.Context) {
	var req service.UpdateElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	updated, err := h.designService.UpdateElement(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// CommitPosition 拖拽结束的位置提交
func (h *DesignHandler) CommitPosition(c *gin.Context) {
	var req service.MoveElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.designService.CommitElementPosition(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "moved"})
}

// RemoveElement 删除元素
func (h *DesignHandler) RemoveElement(c *gin.Context) {
	if err := h.designService.RemoveElement(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// CloseSession 关闭模板的编辑会话
func (h *DesignHandler) CloseSession(c *gin.Context) {
	h.designService.CloseSession(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "closed"})
}
