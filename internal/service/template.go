package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/repository"
	"github.com/openinvite/backend/internal/syncer"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrSlugExists       = errors.New("template slug already exists")
	ErrTemplateInvalid  = errors.New("invalid template data")
)

// CreateTemplateRequest 创建模板请求
type CreateTemplateRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=255"`
	Slug         string   `json:"slug" binding:"max=100"`
	GlobalTheme  string   `json:"global_theme" binding:"max=100"`
	SectionOrder []string `json:"section_order"`
}

// UpdateTemplateRequest 更新模板请求，指针字段缺省表示保持原值
type UpdateTemplateRequest struct {
	Name           string                `json:"name,omitempty"`
	Thumbnail      *string               `json:"thumbnail,omitempty"`
	GlobalTheme    *string               `json:"global_theme,omitempty"`
	SectionOrder   []string              `json:"section_order,omitempty"`
	CustomSections []model.CustomSection `json:"custom_sections,omitempty"`
	EventDate      *string               `json:"event_date,omitempty"` // RFC3339
}

// TemplateService 模板生命周期服务接口
type TemplateService interface {
	Create(ctx context.Context, req CreateTemplateRequest) (*model.Template, error)
	List(ctx context.Context) ([]model.Template, error)
	Get(ctx context.Context, id string) (*model.Template, error)
	Update(ctx context.Context, id string, req UpdateTemplateRequest) (*model.Template, error)
	Clone(ctx context.Context, id, newSlug string) (*model.Template, error)
	Publish(ctx context.Context, id string) error
	Unpublish(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type templateService struct {
	templateRepo repository.TemplateRepository
	sync         *syncer.Syncer
}

// NewTemplateService 创建服务实例
func NewTemplateService(templateRepo repository.TemplateRepository, sync *syncer.Syncer) TemplateService {
	return &templateService{templateRepo: templateRepo, sync: sync}
}

// Create 创建草稿模板
func (s *templateService) Create(ctx context.Context, req CreateTemplateRequest) (*model.Template, error) {
	if req.Slug != "" {
		if existing, err := s.templateRepo.GetBySlug(req.Slug); err == nil && existing != nil {
			return nil, ErrSlugExists
		}
	}

	tpl := &model.Template{
		ID:           uuid.New().String(),
		Slug:         req.Slug,
		Name:         req.Name,
		Status:       model.TemplateStatusDraft,
		GlobalTheme:  req.GlobalTheme,
		SectionOrder: req.SectionOrder,
	}
	if tpl.Slug == "" {
		tpl.Slug = tpl.ID
	}
	if len(tpl.SectionOrder) == 0 {
		tpl.SectionOrder = []string{model.SectionCover, model.SectionEvent, model.SectionRSVP}
	}
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
	}

	if err := s.templateRepo.Create(tpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tpl, nil
}

// List 获取模板列表（不含区块与元素）
func (s *templateService) List(ctx context.Context) ([]model.Template, error) {
	templates, err := s.templateRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// Get 获取完整装配的模板
func (s *templateService) Get(ctx context.Context, id string) (*model.Template, error) {
	tpl, err := s.sync.Hydrate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to hydrate template: %w", err)
	}
	return tpl, nil
}

// Update 部分更新模板元数据，缺省字段保持原值
func (s *templateService) Update(ctx context.Context, id string, req UpdateTemplateRequest) (*model.Template, error) {
	tpl, err := s.templateRepo.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if req.Name != "" {
		tpl.Name = req.Name
	}
	if req.Thumbnail != nil {
		tpl.Thumbnail = *req.Thumbnail
	}
	if req.GlobalTheme != nil {
		tpl.GlobalTheme = *req.GlobalTheme
	}
	if req.SectionOrder != nil {
		tpl.SectionOrder = req.SectionOrder
	}
	if req.CustomSections != nil {
		tpl.CustomSections = req.CustomSections
	}
	if req.EventDate != nil {
		eventDate, err := parseEventDate(*req.EventDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
		}
		tpl.EventDate = eventDate
	}
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
	}

	if err := s.templateRepo.Save(tpl); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return tpl, nil
}

// Clone 从母版深拷贝出新草稿：区块与元素逐个换新 ID，发布状态不继承
func (s *templateService) Clone(ctx context.Context, id, newSlug string) (*model.Template, error) {
	if newSlug != "" {
		if existing, err := s.templateRepo.GetBySlug(newSlug); err == nil && existing != nil {
			return nil, ErrSlugExists
		}
	}

	source, err := s.sync.Hydrate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to hydrate source template: %w", err)
	}

	cloned := *source
	cloned.ID = uuid.New().String()
	cloned.Slug = newSlug
	if cloned.Slug == "" {
		cloned.Slug = cloned.ID
	}
	cloned.Status = model.TemplateStatusDraft
	cloned.SectionOrder = append([]string(nil), source.SectionOrder...)
	cloned.Sections = nil

	if err := s.templateRepo.Create(&cloned); err != nil {
		return nil, fmt.Errorf("failed to create cloned template: %w", err)
	}

	for i := range source.Sections {
		sec := source.Sections[i]
		sec.ID = uuid.New().String()
		sec.TemplateID = cloned.ID
		elements := sec.Elements
		sec.Elements = nil
		if err := s.sync.SaveSection(ctx, &sec); err != nil {
			return nil, fmt.Errorf("failed to clone section %q: %w", sec.Type, err)
		}
		for j := range elements {
			el := elements[j]
			el.ID = uuid.New().String()
			el.SectionID = sec.ID
			if err := s.sync.SaveElement(ctx, &el); err != nil {
				return nil, fmt.Errorf("failed to clone element in %q: %w", sec.Type, err)
			}
		}
	}
	return s.sync.Hydrate(ctx, cloned.ID)
}

// Publish 发布模板。发布前做整模板校验，脏数据不允许进入公开态
func (s *templateService) Publish(ctx context.Context, id string) error {
	tpl, err := s.sync.Hydrate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to hydrate template: %w", err)
	}
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
	}
	if err := s.templateRepo.UpdateStatus(id, model.TemplateStatusPublished); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to publish template: %w", err)
	}
	return nil
}

// Unpublish 撤回发布，公开路径立即不可见
func (s *templateService) Unpublish(ctx context.Context, id string) error {
	if err := s.templateRepo.UpdateStatus(id, model.TemplateStatusDraft); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to unpublish template: %w", err)
	}
	return nil
}

// Delete 删除模板，区块与元素随外键级联删除
func (s *templateService) Delete(ctx context.Context, id string) error {
	if _, err := s.templateRepo.Get(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to get template: %w", err)
	}
	if err := s.templateRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}
