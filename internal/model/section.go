package model

import (
	"time"
)

// 常用区块类型。区块按需创建，首次编辑某类型时才落库
const (
	SectionCover   = "cover"
	SectionOpening = "opening"
	SectionEvent   = "event"
	SectionGallery = "gallery"
	SectionStory   = "story"
	SectionRSVP    = "rsvp"
	SectionWishes  = "wishes"
	SectionGift    = "gift"
	SectionClosing = "closing"
)

// OpenInvitationConfig 封面"打开请柬"入口配置
type OpenInvitationConfig struct {
	Enabled         bool   `json:"enabled"`
	Label           string `json:"label,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	IconKey         string `json:"iconKey,omitempty"`
}

// SectionDesign 模板区块
// 元素存储顺序不承载语义，绘制顺序由 z_index 派生
type SectionDesign struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	TemplateID string `json:"template_id" gorm:"size:36;index:idx_sections_template_type,unique;not null"`
	Type       string `json:"type" gorm:"size:50;index:idx_sections_template_type,unique;not null" validate:"required"`

	IsVisible       bool    `json:"is_visible" gorm:"default:true"`
	BackgroundColor string  `json:"background_color" gorm:"size:50"`
	BackgroundURL   string  `json:"background_url" gorm:"size:1000"`
	OverlayOpacity  float64 `json:"overlay_opacity" validate:"gte=0,lte=1"`
	Animation       string  `json:"animation" gorm:"size:50"`
	PageTitle       string  `json:"page_title" gorm:"size:255"`

	OpenInvitation *OpenInvitationConfig `json:"open_invitation_config,omitempty" gorm:"column:open_invitation_config;serializer:json"`

	Elements []TemplateElement `json:"elements,omitempty" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmptySection 渲染期空区块默认值
// sectionOrder 引用了不存在的区块类型时按此渲染（仅背景，无元素）
func EmptySection(templateID, sectionType string) SectionDesign {
	return SectionDesign{
		TemplateID: templateID,
		Type:       sectionType,
		IsVisible:  true,
	}
}

// SectionUpdateColumns 区块部分更新允许的列集合
var SectionUpdateColumns = []string{
	"is_visible",
	"background_color", "background_url", "overlay_opacity",
	"animation", "page_title", "open_invitation_config",
}
