package repository

import (
	"errors"

	"github.com/openinvite/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// TemplateRepository 模板 Repository 接口
type TemplateRepository interface {
	Create(tpl *model.Template) error
	List() ([]model.Template, error)
	Get(id string) (*model.Template, error)
	GetBySlug(slug string) (*model.Template, error)
	Save(tpl *model.Template) error
	UpdateStatus(id string, status model.TemplateStatus) error
	Delete(id string) error
}

// SectionRepository 区块 Repository 接口
// Upsert 以 (template_id, type) 为键：无则插入，有则按列集合更新
type SectionRepository interface {
	Get(id string) (*model.SectionDesign, error)
	GetByTemplate(templateID string) ([]model.SectionDesign, error)
	GetByTemplateAndType(templateID, sectionType string) (*model.SectionDesign, error)
	Upsert(section *model.SectionDesign) error
	Delete(id string) error
}

// ElementRepository 元素 Repository 接口
// ListBySectionIDs 支撑同步器的分批读取
type ElementRepository interface {
	Get(id string) (*model.TemplateElement, error)
	ListBySectionIDs(sectionIDs []string) ([]model.TemplateElement, error)
	Create(el *model.TemplateElement) error
	Save(el *model.TemplateElement) error
	Delete(id string) error
}
