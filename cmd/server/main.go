package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"k8s.io/klog/v2"

	"github.com/openinvite/backend/config"
	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/handler"
	"github.com/openinvite/backend/internal/pkg/database"
	"github.com/openinvite/backend/internal/render"
	"github.com/openinvite/backend/internal/repository"
	"github.com/openinvite/backend/internal/router"
	"github.com/openinvite/backend/internal/service"
	"github.com/openinvite/backend/internal/storage"
	"github.com/openinvite/backend/internal/syncer"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	cfg := config.GetConfig()

	if cfg.Database.Type == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化 Repository
	templateRepo := repository.NewTemplateRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	elementRepo := repository.NewElementRepository(db)

	// 初始化持久化同步器
	sync, err := syncer.New(templateRepo, sectionRepo, elementRepo, syncer.Options{
		MaxAttempts: cfg.Sync.MaxAttempts,
		BaseDelay:   cfg.Sync.BaseDelay,
		BatchSize:   cfg.Sync.BatchSize,
		MaxWorkers:  cfg.Sync.MaxWorkers,
	})
	if err != nil {
		log.Fatalf("Failed to initialize syncer: %v", err)
	}
	defer sync.Close()

	// 逻辑画布与渲染器
	cv := canvas.Canvas{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height}
	layoutOpts := canvas.Options{
		DesktopBreakpoint: cfg.Canvas.DesktopBreakpoint,
		MaxFrameWidth:     cfg.Canvas.MaxFrameWidth,
	}
	proxy := storage.NewProxyRewriter(cfg.Storage.ProxyPath, cfg.Storage.ProxyHosts)
	renderer := render.New(cv, layoutOpts, proxy)
	uploader := storage.NewUploader(cfg.Storage.Endpoint, cfg.Storage.APIKey, cfg.Storage.Bucket)

	// 初始化 Service
	templateService := service.NewTemplateService(templateRepo, sync)
	designService := service.NewDesignService(sync, cv)
	publicService := service.NewPublicService(sync, renderer)

	// 初始化 Handler
	templateHandler := handler.NewTemplateHandler(templateService)
	designHandler := handler.NewDesignHandler(designService)
	publicHandler := handler.NewPublicHandler(publicService)
	uploadHandler := handler.NewUploadHandler(uploader)

	// 设置路由
	r := router.Setup(cfg, templateHandler, designHandler, publicHandler, uploadHandler)

	color.Green("openinvite backend listening on :%s (db=%s)", cfg.Server.Port, cfg.Database.Type)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
