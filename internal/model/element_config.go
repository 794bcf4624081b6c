package model

import (
	"errors"
	"fmt"
)

// ElementKind 元素类型（封闭集合）
type ElementKind string

const (
	ElementImage                ElementKind = "image"
	ElementText                 ElementKind = "text"
	ElementIcon                 ElementKind = "icon"
	ElementCountdown            ElementKind = "countdown"
	ElementRSVPForm             ElementKind = "rsvp_form"
	ElementGuestWishes          ElementKind = "guest_wishes"
	ElementOpenInvitationButton ElementKind = "open_invitation_button"
	ElementShape                ElementKind = "shape"
)

// ElementKinds 所有合法元素类型
var ElementKinds = []ElementKind{
	ElementImage,
	ElementText,
	ElementIcon,
	ElementCountdown,
	ElementRSVPForm,
	ElementGuestWishes,
	ElementOpenInvitationButton,
	ElementShape,
}

func (k ElementKind) Valid() bool {
	for _, kind := range ElementKinds {
		if k == kind {
			return true
		}
	}
	return false
}

var (
	// ErrConfigKindMismatch 配置对象与元素类型不匹配
	ErrConfigKindMismatch = errors.New("element config kind mismatch")
	// ErrConfigMissing 元素缺少与其类型对应的配置
	ErrConfigMissing = errors.New("element config missing for kind")
)

// ElementConfig 元素类型专属配置的和类型（tagged union）
// 每种元素类型恰好对应一种配置结构，类型不匹配的配置为非法状态
type ElementConfig interface {
	ConfigKind() ElementKind
}

// ImageStyle 图片元素配置
type ImageStyle struct {
	ObjectFit    string  `json:"objectFit,omitempty"`
	BorderRadius float64 `json:"borderRadius,omitempty"`
	Opacity      float64 `json:"opacity,omitempty"`
}

// TextStyle 文本元素配置
type TextStyle struct {
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	FontWeight    string  `json:"fontWeight,omitempty"`
	FontStyle     string  `json:"fontStyle,omitempty"`
	Color         string  `json:"color,omitempty"`
	TextAlign     string  `json:"textAlign,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
}

// IconStyle 图标元素配置
type IconStyle struct {
	IconKey string  `json:"iconKey,omitempty"`
	Size    float64 `json:"size,omitempty"`
	Color   string  `json:"color,omitempty"`
}

// CountdownStyle 倒计时元素配置
type CountdownStyle struct {
	ShowDays        bool   `json:"showDays"`
	ShowHours       bool   `json:"showHours"`
	ShowMinutes     bool   `json:"showMinutes"`
	ShowSeconds     bool   `json:"showSeconds"`
	DigitColor      string `json:"digitColor,omitempty"`
	LabelColor      string `json:"labelColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
}

// FormStyle RSVP 表单元素配置
type FormStyle struct {
	InputBackground string `json:"inputBackground,omitempty"`
	InputTextColor  string `json:"inputTextColor,omitempty"`
	ButtonColor     string `json:"buttonColor,omitempty"`
	ButtonTextColor string `json:"buttonTextColor,omitempty"`
	ButtonLabel     string `json:"buttonLabel,omitempty"`
	ShowGuestCount  bool   `json:"showGuestCount"`
}

// WishesStyle 宾客留言元素配置
type WishesStyle struct {
	CardBackground string `json:"cardBackground,omitempty"`
	NameColor      string `json:"nameColor,omitempty"`
	MessageColor   string `json:"messageColor,omitempty"`
	MaxVisible     int    `json:"maxVisible,omitempty"`
}

// ButtonConfig 打开请柬按钮配置（封面专用）
type ButtonConfig struct {
	Label           string `json:"label,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BorderRadius    int    `json:"borderRadius,omitempty"`
	IconKey         string `json:"iconKey,omitempty"`
}

// ShapeStyle 装饰形状元素配置
type ShapeStyle struct {
	Shape       string  `json:"shape,omitempty"` // rectangle, circle, line
	FillColor   string  `json:"fillColor,omitempty"`
	StrokeColor string  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

func (ImageStyle) ConfigKind() ElementKind     { return ElementImage }
func (TextStyle) ConfigKind() ElementKind      { return ElementText }
func (IconStyle) ConfigKind() ElementKind      { return ElementIcon }
func (CountdownStyle) ConfigKind() ElementKind { return ElementCountdown }
func (FormStyle) ConfigKind() ElementKind      { return ElementRSVPForm }
func (WishesStyle) ConfigKind() ElementKind    { return ElementGuestWishes }
func (ButtonConfig) ConfigKind() ElementKind   { return ElementOpenInvitationButton }
func (ShapeStyle) ConfigKind() ElementKind     { return ElementShape }

// Config 返回与元素类型匹配的配置对象
// 类型对应的配置列为空时返回 (nil, ErrConfigMissing)
func (e *TemplateElement) Config() (ElementConfig, error) {
	switch e.Type {
	case ElementImage:
		if e.ImageStyle != nil {
			return *e.ImageStyle, nil
		}
	case ElementText:
		if e.TextStyle != nil {
			return *e.TextStyle, nil
		}
	case ElementIcon:
		if e.IconStyle != nil {
			return *e.IconStyle, nil
		}
	case ElementCountdown:
		if e.CountdownStyle != nil {
			return *e.CountdownStyle, nil
		}
	case ElementRSVPForm:
		if e.FormStyle != nil {
			return *e.FormStyle, nil
		}
	case ElementGuestWishes:
		if e.WishesStyle != nil {
			return *e.WishesStyle, nil
		}
	case ElementOpenInvitationButton:
		if e.ButtonConfig != nil {
			return *e.ButtonConfig, nil
		}
	case ElementShape:
		if e.ShapeStyle != nil {
			return *e.ShapeStyle, nil
		}
	default:
		return nil, fmt.Errorf("unknown element kind %q", e.Type)
	}
	return nil, ErrConfigMissing
}

// SetConfig 设置元素配置，类型不匹配返回 ErrConfigKindMismatch
// 设置时清空其余配置列，保证恰好一列非空
func (e *TemplateElement) SetConfig(c ElementConfig) error {
	if c == nil {
		return ErrConfigMissing
	}
	if c.ConfigKind() != e.Type {
		return fmt.Errorf("%w: element is %q, config is %q", ErrConfigKindMismatch, e.Type, c.ConfigKind())
	}

	e.clearConfigs()
	switch v := c.(type) {
	case ImageStyle:
		e.ImageStyle = &v
	case TextStyle:
		e.TextStyle = &v
	case IconStyle:
		e.IconStyle = &v
	case CountdownStyle:
		e.CountdownStyle = &v
	case FormStyle:
		e.FormStyle = &v
	case WishesStyle:
		e.WishesStyle = &v
	case ButtonConfig:
		e.ButtonConfig = &v
	case ShapeStyle:
		e.ShapeStyle = &v
	default:
		return fmt.Errorf("unsupported element config %T", c)
	}
	return nil
}

func (e *TemplateElement) clearConfigs() {
	e.ImageStyle = nil
	e.TextStyle = nil
	e.IconStyle = nil
	e.CountdownStyle = nil
	e.FormStyle = nil
	e.WishesStyle = nil
	e.ButtonConfig = nil
	e.ShapeStyle = nil
}
