package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openinvite/backend/internal/service"
)

// TemplateHandler 模板生命周期 Handler
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler 创建 Handler
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create 创建草稿模板
func (h *TemplateHandler) Create(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	tpl, err := h.templateService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": tpl})
}

// List 获取模板列表
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

// Get 获取完整装配的模板（含区块与元素）
func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.templateService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tpl})
}

// Update 部分更新模板元数据
func (h *TemplateHandler) Update(c *gin.Context) {
	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	tpl, err := h.templateService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tpl})
}

// Clone 克隆模板为新草稿
func (h *TemplateHandler) Clone(c *gin.Context) {
	var req struct {
		Slug string `json:"slug" binding:"max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	tpl, err := h.templateService.Clone(c.Request.Context(), c.Param("id"), req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": tpl})
}

// Publish 发布模板
func (h *TemplateHandler) Publish(c *gin.Context) {
	if err := h.templateService.Publish(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "published"})
}

// Unpublish 撤回发布
func (h *TemplateHandler) Unpublish(c *gin.Context) {
	if err := h.templateService.Unpublish(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unpublished"})
}

// Delete 删除模板
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templateService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
