package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openinvite/backend/internal/model"
)

// templateRepository 实现
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建 Repository 实例
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// Create 创建模板
func (r *templateRepository) Create(tpl *model.Template) error {
	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}
	if tpl.Slug == "" {
		tpl.Slug = tpl.ID
	}
	if tpl.Status == "" {
		tpl.Status = model.TemplateStatusDraft
	}
	return r.db.Create(tpl).Error
}

// List 获取模板列表（不含区块与元素）
func (r *templateRepository) List() ([]model.Template, error) {
	var templates []model.Template
	result := r.db.Order("updated_at DESC, id ASC").Find(&templates)
	return templates, result.Error
}

// Get 按 ID 获取模板行（区块与元素由同步器分批装配）
func (r *templateRepository) Get(id string) (*model.Template, error) {
	var tpl model.Template
	result := r.db.First(&tpl, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &tpl, nil
}

// GetBySlug 按 slug 获取模板行（公开访问路径）
func (r *templateRepository) GetBySlug(slug string) (*model.Template, error) {
	var tpl model.Template
	result := r.db.First(&tpl, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &tpl, nil
}

// Save 整行保存模板
func (r *templateRepository) Save(tpl *model.Template) error {
	return r.db.Omit("Sections").Save(tpl).Error
}

// UpdateStatus 只更新生命周期状态，其余字段保持原值
func (r *templateRepository) UpdateStatus(id string, status model.TemplateStatus) error {
	result := r.db.Model(&model.Template{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除模板（级联删除区块与元素）
func (r *templateRepository) Delete(id string) error {
	return r.db.Delete(&model.Template{}, "id = ?", id).Error
}
