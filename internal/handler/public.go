package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/service"
)

// PublicHandler 公开访问 Handler
type PublicHandler struct {
	publicService *service.PublicService
}

// NewPublicHandler 创建 Handler
func NewPublicHandler(publicService *service.PublicService) *PublicHandler {
	return &PublicHandler{publicService: publicService}
}

// Plan 按 slug 返回渲染计划。视口尺寸经 w/h 查询参数传入，
// 缺省按常见移动端视口处理
func (h *PublicHandler) Plan(c *gin.Context) {
	vp := canvas.Viewport{Width: 390, Height: 844}
	if w, err := strconv.ParseFloat(c.Query("w"), 64); err == nil {
		vp.Width = w
	}
	if hh, err := strconv.ParseFloat(c.Query("h"), 64); err == nil {
		vp.Height = hh
	}

	plan, err := h.publicService.Plan(c.Request.Context(), c.Param("slug"), vp)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plan})
}

// MediaProxy 受限域名媒体中转。当前部署由边缘网关承接实际回源，
// 应用侧只保留路径占位并作 302 透传
func (h *PublicHandler) MediaProxy(c *gin.Context) {
	src := c.Query("src")
	if src == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing src", "kind": kindValidation})
		return
	}
	c.Redirect(http.StatusFound, src)
}
