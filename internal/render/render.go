// Package render 构建公开访问态的渲染计划：一份 JSON 可序列化的结构，
// 宿主端（DOM/CSS 或编辑器预览）按计划里的数字直接摆放，不再做二次计算。
package render

import (
	"errors"
	"sort"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"k8s.io/klog/v2"

	"github.com/openinvite/backend/internal/animation"
	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/storage"
)

// ErrNotPublished 未发布模板不对公开路径提供任何数据
var ErrNotPublished = errors.New("template not published")

// Plan 一次公开渲染的完整计划
type Plan struct {
	TemplateID string        `json:"template_id"`
	Slug       string        `json:"slug"`
	Name       string        `json:"name"`
	Theme      string        `json:"theme,omitempty"`
	Layout     canvas.Layout `json:"layout"`
	Sections   []SectionPlan `json:"sections"`
}

// SectionPlan 单个区块的渲染计划
type SectionPlan struct {
	Type            string                      `json:"type"`
	PageTitle       string                      `json:"page_title,omitempty"`
	BackgroundColor string                      `json:"background_color,omitempty"`
	BackgroundURL   string                      `json:"background_url,omitempty"`
	OverlayOpacity  float64                     `json:"overlay_opacity"`
	Animation       string                      `json:"animation,omitempty"`
	Height          float64                     `json:"height"`
	OpenInvitation  *model.OpenInvitationConfig `json:"open_invitation,omitempty"`
	Elements        []ElementPlan               `json:"elements"`
}

// ElementPlan 单个元素的渲染计划，几何量已换算为目标像素
type ElementPlan struct {
	ID       string            `json:"id"`
	Kind     model.ElementKind `json:"kind"`
	Frame    canvas.Rect       `json:"frame"`
	ZIndex   int               `json:"z_index"`
	Rotation float64           `json:"rotation,omitempty"`
	FlipH    bool              `json:"flip_h,omitempty"`
	FlipV    bool              `json:"flip_v,omitempty"`

	Content  string `json:"content,omitempty"`
	ImageURL string `json:"image_url,omitempty"`

	Animation animation.ElementAnimation `json:"animation"`
	Countdown *Countdown                 `json:"countdown,omitempty"`
	Config    model.ElementConfig        `json:"config,omitempty"`
}

// Countdown 倒计时元素在本次请求时刻的剩余量
type Countdown struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// Renderer 渲染计划构建器
type Renderer struct {
	canvas    canvas.Canvas
	opts      canvas.Options
	sanitizer *bluemonday.Policy
	proxy     *storage.ProxyRewriter
	now       func() time.Time
}

// New proxy 可为 nil（不做受限域名改写）
func New(c canvas.Canvas, opts canvas.Options, proxy *storage.ProxyRewriter) *Renderer {
	return &Renderer{
		canvas:    c,
		opts:      opts,
		sanitizer: bluemonday.UGCPolicy(),
		proxy:     proxy,
		now:       time.Now,
	}
}

// BuildPlan 为已发布模板构建渲染计划
// 未发布模板返回 ErrNotPublished，不输出任何部分数据；
// 区块按 sectionOrder 展开，isVisible=false 的区块整体剔除
func (r *Renderer) BuildPlan(tpl *model.Template, vp canvas.Viewport) (*Plan, error) {
	if !tpl.Published() {
		return nil, ErrNotPublished
	}

	layout := r.canvas.Resolve(vp, r.opts)
	plan := &Plan{
		TemplateID: tpl.ID,
		Slug:       tpl.Slug,
		Name:       tpl.Name,
		Theme:      tpl.GlobalTheme,
		Layout:     layout,
	}

	for _, section := range tpl.OrderedSections() {
		if !section.IsVisible {
			continue
		}
		plan.Sections = append(plan.Sections, r.buildSection(tpl, &section, layout))
	}
	klog.V(6).Infof("模板 %s 渲染计划: 模式 %s, 区块 %d", tpl.ID, layout.Mode, len(plan.Sections))
	return plan, nil
}

func (r *Renderer) buildSection(tpl *model.Template, section *model.SectionDesign, layout canvas.Layout) SectionPlan {
	sp := SectionPlan{
		Type:            section.Type,
		PageTitle:       section.PageTitle,
		BackgroundColor: section.BackgroundColor,
		BackgroundURL:   r.mediaURL(section.BackgroundURL),
		OverlayOpacity:  section.OverlayOpacity,
		Animation:       section.Animation,
		Height:          layout.SectionHeight,
		Elements:        []ElementPlan{},
	}
	if section.Type == model.SectionCover {
		sp.OpenInvitation = section.OpenInvitation
	}

	elements := append([]model.TemplateElement(nil), section.Elements...)
	sort.SliceStable(elements, func(i, j int) bool { return elements[i].ZIndex < elements[j].ZIndex })

	for i := range elements {
		sp.Elements = append(sp.Elements, r.buildElement(tpl, &elements[i], layout))
	}
	return sp
}

func (r *Renderer) buildElement(tpl *model.Template, el *model.TemplateElement, layout canvas.Layout) ElementPlan {
	ep := ElementPlan{
		ID:   el.ID,
		Kind: el.Type,
		Frame: layout.ScaleRect(canvas.Rect{
			X: el.PositionX, Y: el.PositionY,
			Width: el.Width, Height: el.Height,
		}),
		ZIndex:    el.ZIndex,
		Rotation:  el.Rotation,
		FlipH:     el.FlipHorizontal,
		FlipV:     el.FlipVertical,
		Content:   r.sanitizer.Sanitize(el.Content),
		ImageURL:  r.mediaURL(el.ImageURL),
		Animation: animation.Resolve(el),
	}
	if cfg, err := el.Config(); err == nil {
		ep.Config = cfg
	}
	if el.Type == model.ElementCountdown {
		ep.Countdown = r.countdown(tpl.EventDate)
	}
	return ep
}

// countdown 按请求时刻计算剩余时间，已过期或未设日期时给零值终态
func (r *Renderer) countdown(eventDate *time.Time) *Countdown {
	if eventDate == nil {
		return &Countdown{Expired: true}
	}
	remaining := eventDate.Sub(r.now())
	if remaining <= 0 {
		return &Countdown{Expired: true}
	}
	total := int(remaining.Seconds())
	return &Countdown{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

func (r *Renderer) mediaURL(raw string) string {
	if r.proxy == nil || raw == "" {
		return raw
	}
	rewritten, err := r.proxy.Rewrite(raw)
	if err != nil {
		klog.V(6).Infof("媒体 URL 改写失败，按原值输出: %v", err)
		return raw
	}
	return rewritten
}
