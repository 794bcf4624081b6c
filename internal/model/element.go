package model

import (
	"time"
)

// TemplateElement 画布元素
// 几何量一律使用逻辑画布单位，z_index 决定绘制顺序（相同值按插入顺序）
// 存量数据允许越界几何，仅编辑器在拖拽时执行钳制
type TemplateElement struct {
	ID        string      `json:"id" gorm:"primaryKey;size:36"`
	SectionID string      `json:"section_id" gorm:"size:36;index;not null"`
	Type      ElementKind `json:"type" gorm:"size:50;not null" validate:"required"`
	Name      string      `json:"name" gorm:"size:255"`

	PositionX float64 `json:"position_x" gorm:"column:position_x"`
	PositionY float64 `json:"position_y" gorm:"column:position_y"`
	Width     float64 `json:"width" validate:"gte=0"`
	Height    float64 `json:"height" validate:"gte=0"`
	ZIndex    int     `json:"z_index" gorm:"column:z_index;default:0"`
	// Seq 区块内单调递增的插入序号，z_index 相同时据此裁决绘制顺序
	Seq int64 `json:"-" gorm:"column:seq;index"`

	Rotation       float64 `json:"rotation"`
	FlipHorizontal bool    `json:"flip_horizontal"`
	FlipVertical   bool    `json:"flip_vertical"`

	// 入场动画与循环动画彼此独立，取值来自两个不相交的封闭集合
	Animation         string  `json:"animation" gorm:"size:50"`
	LoopAnimation     string  `json:"loop_animation" gorm:"size:50"`
	AnimationDelay    float64 `json:"animation_delay"`
	AnimationSpeed    float64 `json:"animation_speed"`
	AnimationDuration float64 `json:"animation_duration"`

	Content  string `json:"content" gorm:"type:text"`
	ImageURL string `json:"image_url" gorm:"size:1000"`

	// 类型专属配置列，JSON 存储，恰好一列与 Type 对应且非空
	ImageStyle     *ImageStyle     `json:"image_style,omitempty" gorm:"serializer:json"`
	TextStyle      *TextStyle      `json:"text_style,omitempty" gorm:"serializer:json"`
	IconStyle      *IconStyle      `json:"icon_style,omitempty" gorm:"serializer:json"`
	CountdownStyle *CountdownStyle `json:"countdown_style,omitempty" gorm:"serializer:json"`
	FormStyle      *FormStyle      `json:"form_style,omitempty" gorm:"serializer:json"`
	WishesStyle    *WishesStyle    `json:"wishes_style,omitempty" gorm:"serializer:json"`
	ButtonConfig   *ButtonConfig   `json:"button_config,omitempty" gorm:"serializer:json"`
	ShapeStyle     *ShapeStyle     `json:"shape_style,omitempty" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate 校验元素：类型合法且配置列与类型匹配
func (e *TemplateElement) Validate() error {
	if !e.Type.Valid() {
		return ErrUnknownElementKind
	}
	if _, err := e.Config(); err != nil {
		return err
	}
	return nil
}

// ElementUpdateColumns 元素部分更新允许的列集合
// 显式列出双向字段映射的更新侧，未出现在更新载荷中的字段保持原值
var ElementUpdateColumns = []string{
	"name",
	"position_x", "position_y", "width", "height", "z_index",
	"rotation", "flip_horizontal", "flip_vertical",
	"animation", "loop_animation",
	"animation_delay", "animation_speed", "animation_duration",
	"content", "image_url",
	"image_style", "text_style", "icon_style", "countdown_style",
	"form_style", "wishes_style", "button_config", "shape_style",
}
