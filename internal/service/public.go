package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/render"
	"github.com/openinvite/backend/internal/repository"
	"github.com/openinvite/backend/internal/syncer"
)

// PublicService 公开访问路径：按 slug 装配已发布模板并构建渲染计划
type PublicService struct {
	sync     *syncer.Syncer
	renderer *render.Renderer
}

// NewPublicService 创建公开访问服务
func NewPublicService(sync *syncer.Syncer, renderer *render.Renderer) *PublicService {
	return &PublicService{sync: sync, renderer: renderer}
}

// Plan 构建公开渲染计划
// 未发布与不存在对外同义：都不暴露任何数据
func (s *PublicService) Plan(ctx context.Context, slug string, vp canvas.Viewport) (*render.Plan, error) {
	tpl, err := s.sync.HydrateBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to hydrate template: %w", err)
	}
	plan, err := s.renderer.BuildPlan(tpl, vp)
	if err != nil {
		return nil, err
	}
	return plan, nil
}
