package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/repository"
	"github.com/openinvite/backend/internal/session"
	"github.com/openinvite/backend/internal/syncer"
)

// UpdateSectionRequest 区块部分更新请求，指针字段缺省表示保持原值
type UpdateSectionRequest struct {
	IsVisible       *bool                       `json:"is_visible,omitempty"`
	BackgroundColor *string                     `json:"background_color,omitempty"`
	BackgroundURL   *string                     `json:"background_url,omitempty"`
	OverlayOpacity  *float64                    `json:"overlay_opacity,omitempty"`
	Animation       *string                     `json:"animation,omitempty"`
	PageTitle       *string                     `json:"page_title,omitempty"`
	OpenInvitation  *model.OpenInvitationConfig `json:"open_invitation_config,omitempty"`
}

// UpdateElementRequest 元素部分更新请求
type UpdateElementRequest struct {
	Name              *string  `json:"name,omitempty"`
	PositionX         *float64 `json:"position_x,omitempty"`
	PositionY         *float64 `json:"position_y,omitempty"`
	Width             *float64 `json:"width,omitempty"`
	Height            *float64 `json:"height,omitempty"`
	ZIndex            *int     `json:"z_index,omitempty"`
	Rotation          *float64 `json:"rotation,omitempty"`
	FlipHorizontal    *bool    `json:"flip_horizontal,omitempty"`
	FlipVertical      *bool    `json:"flip_vertical,omitempty"`
	Animation         *string  `json:"animation,omitempty"`
	LoopAnimation     *string  `json:"loop_animation,omitempty"`
	AnimationDelay    *float64 `json:"animation_delay,omitempty"`
	AnimationSpeed    *float64 `json:"animation_speed,omitempty"`
	AnimationDuration *float64 `json:"animation_duration,omitempty"`
	Content           *string  `json:"content,omitempty"`
	ImageURL          *string  `json:"image_url,omitempty"`

	ImageStyle     *model.ImageStyle     `json:"image_style,omitempty"`
	TextStyle      *model.TextStyle      `json:"text_style,omitempty"`
	IconStyle      *model.IconStyle      `json:"icon_style,omitempty"`
	CountdownStyle *model.CountdownStyle `json:"countdown_style,omitempty"`
	FormStyle      *model.FormStyle      `json:"form_style,omitempty"`
	WishesStyle    *model.WishesStyle    `json:"wishes_style,omitempty"`
	ButtonConfig   *model.ButtonConfig   `json:"button_config,omitempty"`
	ShapeStyle     *model.ShapeStyle     `json:"shape_style,omitempty"`
}

// MoveElementRequest 拖拽提交请求
type MoveElementRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DesignService 设计编辑服务：按模板维护编辑会话，
// 每次操作经会话合并脏状态后立即 flush 到同步器
type DesignService struct {
	mutex    sync.Mutex
	sessions map[string]*session.Session
	sync     *syncer.Syncer
	canvas   canvas.Canvas
}

// NewDesignService 创建设计编辑服务
func NewDesignService(sync *syncer.Syncer, cv canvas.Canvas) *DesignService {
	return &DesignService{
		sessions: make(map[string]*session.Session),
		sync:     sync,
		canvas:   cv,
	}
}

// sessionFor 取模板的编辑会话，不存在则装配后创建
// 单编辑者模型：同一模板始终复用同一会话
func (s *DesignService) sessionFor(ctx context.Context, templateID string) (*session.Session, error) {
	s.mutex.Lock()
	if sess, ok := s.sessions[templateID]; ok && !sess.Closed() {
		s.mutex.Unlock()
		return sess, nil
	}
	s.mutex.Unlock()

	tpl, err := s.sync.Hydrate(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to hydrate template: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if sess, ok := s.sessions[templateID]; ok && !sess.Closed() {
		// 并发打开时丢弃后装配的副本
		return sess, nil
	}
	sess := session.New(tpl, s.canvas)
	s.sessions[templateID] = sess
	klog.V(6).Infof("模板 %s 编辑会话已打开", templateID)
	return sess, nil
}

// sessionForElement 按元素定位编辑会话：优先在已打开的会话中找，
// 找不到时经存储反查所属模板再打开会话
func (s *DesignService) sessionForElement(ctx context.Context, elementID string) (*session.Session, error) {
	s.mutex.Lock()
	for _, sess := range s.sessions {
		if !sess.Closed() && sess.HasElement(elementID) {
			s.mutex.Unlock()
			return sess, nil
		}
	}
	s.mutex.Unlock()

	templateID, err := s.sync.TemplateIDForElement(ctx, elementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, session.ErrElementNotFound
		}
		return nil, fmt.Errorf("failed to locate element: %w", err)
	}
	return s.sessionFor(ctx, templateID)
}

// CloseSession 关闭模板的编辑会话，在途读取结果随之作废
func (s *DesignService) CloseSession(templateID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if sess, ok := s.sessions[templateID]; ok {
		sess.Close()
		delete(s.sessions, templateID)
	}
}

// UpsertSection 更新区块设计，区块行不存在时由同步器懒创建
func (s *DesignService) UpsertSection(ctx context.Context, templateID, sectionType string, req UpdateSectionRequest) (*model.SectionDesign, error) {
	sess, err := s.sessionFor(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var next model.SectionDesign
	if existing := sess.Template().SectionByType(sectionType); existing != nil {
		next = *existing
	} else {
		next = model.EmptySection(templateID, sectionType)
	}
	applySectionUpdate(&next, req)
	if next.OverlayOpacity < 0 || next.OverlayOpacity > 1 {
		return nil, fmt.Errorf("%w: overlay opacity %v", ErrTemplateInvalid, next.OverlayOpacity)
	}

	if err := sess.UpsertSection(ctx, next); err != nil {
		return nil, err
	}
	if err := sess.Flush(ctx, s.sync); err != nil {
		return nil, fmt.Errorf("failed to flush section: %w", err)
	}
	return sess.Template().SectionByType(sectionType), nil
}

// AddElement 向区块添加元素
func (s *DesignService) AddElement(ctx context.Context, templateID, sectionType string, el model.TemplateElement) (*model.TemplateElement, error) {
	sess, err := s.sessionFor(ctx, templateID)
	if err != nil {
		return nil, err
	}
	added, err := sess.AddElement(ctx, sectionType, el)
	if err != nil {
		return nil, err
	}
	if err := sess.Flush(ctx, s.sync); err != nil {
		return nil, fmt.Errorf("failed to flush element: %w", err)
	}
	return added, nil
}

// UpdateElement 部分更新元素，缺省字段保持原值
func (s *DesignService) UpdateElement(ctx context.Context, elementID string, req UpdateElementRequest) (*model.TemplateElement, error) {
	sess, err := s.sessionForElement(ctx, elementID)
	if err != nil {
		return nil, err
	}
	var updated *model.TemplateElement
	err = sess.UpdateElement(ctx, elementID, func(el *model.TemplateElement) error {
		applyElementUpdate(el, req)
		updated = el
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := sess.Flush(ctx, s.sync); err != nil {
		return nil, fmt.Errorf("failed to flush element: %w", err)
	}
	return updated, nil
}

// CommitElementPosition 拖拽结束的一次性位置提交：钳制并取整后落库
// 拖拽过程中的逐帧位置不经过本服务，也从不持久化
func (s *DesignService) CommitElementPosition(ctx context.Context, elementID string, req MoveElementRequest) error {
	sess, err := s.sessionForElement(ctx, elementID)
	if err != nil {
		return err
	}
	if err := sess.MoveElement(elementID, req.X, req.Y); err != nil {
		return err
	}
	if err := sess.CommitMove(ctx, elementID); err != nil {
		return err
	}
	if err := sess.Flush(ctx, s.sync); err != nil {
		return fmt.Errorf("failed to flush move: %w", err)
	}
	return nil
}

// RemoveElement 删除元素
func (s *DesignService) RemoveElement(ctx context.Context, elementID string) error {
	sess, err := s.sessionForElement(ctx, elementID)
	if err != nil {
		return err
	}
	if err := sess.RemoveElement(ctx, elementID); err != nil {
		return err
	}
	if err := sess.Flush(ctx, s.sync); err != nil {
		return fmt.Errorf("failed to flush removal: %w", err)
	}
	return nil
}

func applySectionUpdate(sec *model.SectionDesign, req UpdateSectionRequest) {
	if req.IsVisible != nil {
		sec.IsVisible = *req.IsVisible
	}
	if req.BackgroundColor != nil {
		sec.BackgroundColor = *req.BackgroundColor
	}
	if req.BackgroundURL != nil {
		sec.BackgroundURL = *req.BackgroundURL
	}
	if req.OverlayOpacity != nil {
		sec.OverlayOpacity = *req.OverlayOpacity
	}
	if req.Animation != nil {
		sec.Animation = *req.Animation
	}
	if req.PageTitle != nil {
		sec.PageTitle = *req.PageTitle
	}
	if req.OpenInvitation != nil {
		sec.OpenInvitation = req.OpenInvitation
	}
}

func applyElementUpdate(el *model.TemplateElement, req UpdateElementRequest) {
	if req.Name != nil {
		el.Name = *req.Name
	}
	if req.PositionX != nil {
		el.PositionX = *req.PositionX
	}
	if req.PositionY != nil {
		el.PositionY = *req.PositionY
	}
	if req.Width != nil {
		el.Width = *req.Width
	}
	if req.Height != nil {
		el.Height = *req.Height
	}
	if req.ZIndex != nil {
		el.ZIndex = *req.ZIndex
	}
	if req.Rotation != nil {
		el.Rotation = *req.Rotation
	}
	if req.FlipHorizontal != nil {
		el.FlipHorizontal = *req.FlipHorizontal
	}
	if req.FlipVertical != nil {
		el.FlipVertical = *req.FlipVertical
	}
	if req.Animation != nil {
		el.Animation = *req.Animation
	}
	if req.LoopAnimation != nil {
		el.LoopAnimation = *req.LoopAnimation
	}
	if req.AnimationDelay != nil {
		el.AnimationDelay = *req.AnimationDelay
	}
	if req.AnimationSpeed != nil {
		el.AnimationSpeed = *req.AnimationSpeed
	}
	if req.AnimationDuration != nil {
		el.AnimationDuration = *req.AnimationDuration
	}
	if req.Content != nil {
		el.Content = *req.Content
	}
	if req.ImageURL != nil {
		el.ImageURL = *req.ImageURL
	}
	if req.ImageStyle != nil {
		el.ImageStyle = req.ImageStyle
	}
	if req.TextStyle != nil {
		el.TextStyle = req.TextStyle
	}
	if req.IconStyle != nil {
		el.IconStyle = req.IconStyle
	}
	if req.CountdownStyle != nil {
		el.CountdownStyle = req.CountdownStyle
	}
	if req.FormStyle != nil {
		el.FormStyle = req.FormStyle
	}
	if req.WishesStyle != nil {
		el.WishesStyle = req.WishesStyle
	}
	if req.ButtonConfig != nil {
		el.ButtonConfig = req.ButtonConfig
	}
	if req.ShapeStyle != nil {
		el.ShapeStyle = req.ShapeStyle
	}
}

// parseEventDate 解析 RFC3339 时间串，空串表示清除日期
func parseEventDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
