package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// TemplateStatus 模板生命周期状态
type TemplateStatus string

const (
	TemplateStatusDraft     TemplateStatus = "draft"
	TemplateStatusPublished TemplateStatus = "published"
)

// sectionOrderSentinel 未出现在 sectionOrder 中的区块类型的排序哨兵值
// 这类区块稳定排在最后，而不是报错
const sectionOrderSentinel = 1 << 20

var (
	ErrUnknownElementKind  = errors.New("unknown element kind")
	ErrDuplicateSectionKey = errors.New("duplicate key in section order")
	ErrInvalidStatus       = errors.New("invalid template status")
	ErrOverlayOutOfRange   = errors.New("overlay opacity out of [0,1]")
)

var validate = validator.New()

// CustomSection 用户自定义区块声明
type CustomSection struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Template 请柬模板
// SectionOrder 是权威渲染顺序，与 Sections 的存储顺序无关
type Template struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	Slug      string         `json:"slug" gorm:"size:100;uniqueIndex"`
	Name      string         `json:"name" gorm:"size:255;not null" validate:"required"`
	Thumbnail string         `json:"thumbnail" gorm:"size:1000"`
	Status    TemplateStatus `json:"status" gorm:"size:50;default:draft"`

	SectionOrder   []string        `json:"section_order" gorm:"column:section_order;serializer:json"`
	CustomSections []CustomSection `json:"custom_sections,omitempty" gorm:"serializer:json"`
	GlobalTheme    string          `json:"global_theme" gorm:"size:100"`
	EventDate      *time.Time      `json:"event_date"`

	Sections []SectionDesign `json:"sections,omitempty" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate 校验模板不变量：状态合法、sectionOrder 无重复、区块与元素各自合法
func (t *Template) Validate() error {
	if err := validate.Struct(t); err != nil {
		return err
	}
	if t.Status != TemplateStatusDraft && t.Status != TemplateStatusPublished {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	seen := make(map[string]bool, len(t.SectionOrder))
	for _, key := range t.SectionOrder {
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateSectionKey, key)
		}
		seen[key] = true
	}
	for i := range t.Sections {
		s := &t.Sections[i]
		if s.OverlayOpacity < 0 || s.OverlayOpacity > 1 {
			return fmt.Errorf("%w: section %q has %v", ErrOverlayOutOfRange, s.Type, s.OverlayOpacity)
		}
		for j := range s.Elements {
			if err := s.Elements[j].Validate(); err != nil {
				return fmt.Errorf("section %q element %q: %w", s.Type, s.Elements[j].ID, err)
			}
		}
	}
	return nil
}

// Published 模板是否处于已发布状态
func (t *Template) Published() bool {
	return t.Status == TemplateStatusPublished
}

// SectionByType 按类型取区块，不存在返回 nil
func (t *Template) SectionByType(sectionType string) *SectionDesign {
	for i := range t.Sections {
		if t.Sections[i].Type == sectionType {
			return &t.Sections[i]
		}
	}
	return nil
}

// sectionSortIndex 区块类型在 sectionOrder 中的序号，缺失返回哨兵值
func (t *Template) sectionSortIndex(sectionType string) int {
	for i, key := range t.SectionOrder {
		if key == sectionType {
			return i
		}
	}
	return sectionOrderSentinel
}

// OrderedSections 按 sectionOrder 展开区块序列
// sectionOrder 引用但无数据的类型展开为空默认区块；
// 有数据但未列入 sectionOrder 的区块稳定排在最后
func (t *Template) OrderedSections() []SectionDesign {
	ordered := make([]SectionDesign, 0, len(t.SectionOrder)+len(t.Sections))
	listed := make(map[string]bool, len(t.SectionOrder))

	for _, key := range t.SectionOrder {
		if listed[key] {
			continue // 重复键只展开一次，存量脏数据不致渲染崩溃
		}
		listed[key] = true
		if s := t.SectionByType(key); s != nil {
			ordered = append(ordered, *s)
		} else {
			ordered = append(ordered, EmptySection(t.ID, key))
		}
	}
	for i := range t.Sections {
		if !listed[t.Sections[i].Type] {
			ordered = append(ordered, t.Sections[i])
		}
	}
	return ordered
}
