package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openinvite/backend/internal/model"
)

// sectionRepository 实现
type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository 创建 Repository 实例
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

// Get 按 ID 取区块
func (r *sectionRepository) Get(id string) (*model.SectionDesign, error) {
	var section model.SectionDesign
	result := r.db.First(&section, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &section, nil
}

// GetByTemplate 获取模板下所有区块行（不含元素）
func (r *sectionRepository) GetByTemplate(templateID string) ([]model.SectionDesign, error) {
	var sections []model.SectionDesign
	result := r.db.Where("template_id = ?", templateID).Order("id ASC").Find(&sections)
	return sections, result.Error
}

// GetByTemplateAndType 按 (template_id, type) 取区块
func (r *sectionRepository) GetByTemplateAndType(templateID, sectionType string) (*model.SectionDesign, error) {
	var section model.SectionDesign
	result := r.db.Where("template_id = ? AND type = ?", templateID, sectionType).First(&section)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &section, nil
}

// Upsert 以 (template_id, type) 为键：无行则插入，有行则按列集合更新
// 更新只触达 SectionUpdateColumns 列出的列，载荷中省略的字段不会被清空
func (r *sectionRepository) Upsert(section *model.SectionDesign) error {
	existing, err := r.GetByTemplateAndType(section.TemplateID, section.Type)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if section.ID == "" {
			section.ID = uuid.New().String()
		}
		return r.db.Omit("Elements").Create(section).Error
	}

	section.ID = existing.ID
	return r.db.Model(&model.SectionDesign{}).
		Where("id = ?", existing.ID).
		Select(model.SectionUpdateColumns).
		Updates(section).Error
}

// Delete 删除区块（级联删除元素）
func (r *sectionRepository) Delete(id string) error {
	return r.db.Delete(&model.SectionDesign{}, "id = ?", id).Error
}
