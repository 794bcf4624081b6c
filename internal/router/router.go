package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/openinvite/backend/config"
	"github.com/openinvite/backend/internal/handler"
)

// Setup 装配路由：/api 编辑器接口、/p 公开接口、/media 媒体中转
func Setup(
	cfg *config.Config,
	templateHandler *handler.TemplateHandler,
	designHandler *handler.DesignHandler,
	publicHandler *handler.PublicHandler,
	uploadHandler *handler.UploadHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	api := r.Group("/api")
	{
		templates := api.Group("/templates")
		{
			templates.POST("", templateHandler.Create)
			templates.GET("", templateHandler.List)
			templates.GET("/:id", templateHandler.Get)
			templates.PUT("/:id", templateHandler.Update)
			templates.DELETE("/:id", templateHandler.Delete)
			templates.POST("/:id/clone", templateHandler.Clone)
			templates.POST("/:id/publish", templateHandler.Publish)
			templates.POST("/:id/unpublish", templateHandler.Unpublish)
			templates.POST("/:id/session/close", designHandler.CloseSession)
			templates.PUT("/:id/sections/:type", designHandler.UpsertSection)
			templates.POST("/:id/sections/:type/elements", designHandler.AddElement)
		}

		elements := api.Group("/elements")
		{
			elements.PUT("/:id", designHandler.UpdateElement)
			elements.PUT("/:id/position", designHandler.CommitPosition)
			elements.DELETE("/:id", designHandler.RemoveElement)
		}

		api.POST("/uploads", uploadHandler.Upload)
	}

	r.GET("/p/:slug/plan", publicHandler.Plan)
	r.GET("/media/proxy", publicHandler.MediaProxy)

	return r
}
