// Package session 管理单个编辑会话：内存中的文档模型、当前选中元素与
// 脏标记。编辑期间内存模型是唯一事实来源，持久化同步器只消费 Flush。
package session

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/model"
)

var (
	// ErrSessionClosed 会话已关闭，后续编辑与迟到的读取结果一律丢弃
	ErrSessionClosed = errors.New("editing session closed")
	// ErrElementNotFound 元素不在当前文档中
	ErrElementNotFound = errors.New("element not found in session")
)

// Flusher 同步器写入能力。只在 Flush 时调用，拖拽中间帧不会触达
type Flusher interface {
	SaveSection(ctx context.Context, section *model.SectionDesign) error
	SaveElement(ctx context.Context, element *model.TemplateElement) error
	DeleteElement(ctx context.Context, elementID string) error
}

// Session 编辑会话。单编辑者模型：同一时刻只有一个会话可变更文档
type Session struct {
	mutex  sync.Mutex
	tpl    *model.Template
	canvas canvas.Canvas
	bus    *Bus

	selected string

	dirtySections map[string]bool
	dirtyElements map[string]bool
	removed       []string

	// 按实体键串行化写入：同一实体的新写入要等待前一次落定
	inflight map[string]chan struct{}

	closed bool
}

// New 创建编辑会话
func New(tpl *model.Template, cv canvas.Canvas) *Session {
	return &Session{
		tpl:           tpl,
		canvas:        cv,
		bus:           NewBus(),
		dirtySections: make(map[string]bool),
		dirtyElements: make(map[string]bool),
		inflight:      make(map[string]chan struct{}),
	}
}

// Bus 返回会话事件总线
func (s *Session) Bus() *Bus { return s.bus }

// Template 返回会话持有的文档模型
func (s *Session) Template() *model.Template { return s.tpl }

// Canvas 返回逻辑画布
func (s *Session) Canvas() canvas.Canvas { return s.canvas }

// Closed 会话是否已关闭
func (s *Session) Closed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

// Close 关闭会话。此后所有编辑操作返回 ErrSessionClosed，
// 仍在途的读取结果由调用方依据 Closed 丢弃
func (s *Session) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
}

// Selected 当前选中元素 ID，空串表示无选中
func (s *Session) Selected() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.selected
}

// Select 选中单个元素（核心模型不支持多选）
func (s *Session) Select(ctx context.Context, elementID string) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrSessionClosed
	}
	if s.findElement(elementID) == nil {
		s.mutex.Unlock()
		return ErrElementNotFound
	}
	s.selected = elementID
	s.mutex.Unlock()
	return s.bus.Publish(ctx, Event{Kind: EventSelectionChanged, ElementID: elementID})
}

// ClearSelection 点击空白处清除选中
func (s *Session) ClearSelection(ctx context.Context) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrSessionClosed
	}
	s.selected = ""
	s.mutex.Unlock()
	return s.bus.Publish(ctx, Event{Kind: EventSelectionChanged})
}

// UpsertSection 更新或创建区块设计并标脏
func (s *Session) UpsertSection(ctx context.Context, section model.SectionDesign) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrSessionClosed
	}
	section.TemplateID = s.tpl.ID
	if existing := s.tpl.SectionByType(section.Type); existing != nil {
		section.ID = existing.ID
		section.Elements = existing.Elements
		*existing = section
	} else {
		if section.ID == "" {
			section.ID = uuid.New().String()
		}
		s.tpl.Sections = append(s.tpl.Sections, section)
	}
	s.dirtySections[section.Type] = true
	s.mutex.Unlock()
	return s.bus.Publish(ctx, Event{Kind: EventSectionUpdated, SectionType: section.Type})
}

// AddElement 向区块添加元素。区块不存在时按需在内存中创建（落库由同步器负责）
func (s *Session) AddElement(ctx context.Context, sectionType string, el model.TemplateElement) (*model.TemplateElement, error) {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil, ErrSessionClosed
	}
	if el.ID == "" {
		el.ID = uuid.New().String()
	}
	if err := el.Validate(); err != nil {
		s.mutex.Unlock()
		return nil, err
	}

	sec := s.tpl.SectionByType(sectionType)
	if sec == nil {
		created := model.EmptySection(s.tpl.ID, sectionType)
		created.ID = uuid.New().String()
		s.tpl.Sections = append(s.tpl.Sections, created)
		sec = s.tpl.SectionByType(sectionType)
		s.dirtySections[sectionType] = true
	}
	el.SectionID = sec.ID
	sec.Elements = append(sec.Elements, el)
	s.dirtyElements[el.ID] = true
	s.mutex.Unlock()

	if err := s.bus.Publish(ctx, Event{Kind: EventElementAdded, SectionType: sectionType, ElementID: el.ID}); err != nil {
		return nil, err
	}
	return s.findElementLocked(el.ID), nil
}

// MoveElement 拖拽中的连续位置更新，逐帧钳制在画布内
// 不标脏：拖拽中间帧不会被持久化，只有 CommitMove 产生一次离散编辑
func (s *Session) MoveElement(elementID string, x, y float64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	el := s.findElement(elementID)
	if el == nil {
		return ErrElementNotFound
	}
	r := s.canvas.ClampRect(canvas.Rect{X: x, Y: y, Width: el.Width, Height: el.Height})
	el.PositionX = r.X
	el.PositionY = r.Y
	return nil
}

// CommitMove 拖拽结束：位置取整到逻辑单位并标脏，作为一次离散编辑提交
func (s *Session) CommitMove(ctx context.Context, elementID string) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrSessionClosed
	}
	el := s.findElement(elementID)
	if el == nil {
		s.mutex.Unlock()
		return ErrElementNotFound
	}
	r := s.canvas.ClampRect(canvas.Rect{
		X:      math.Round(el.PositionX),
		Y:      math.Round(el.PositionY),
		Width:  el.Width,
		Height: el.Height,
	})
	el.PositionX = r.X
	el.PositionY = r.Y
	s.dirtyElements[elementID] = true
	s.mutex.Unlock()
	return s.bus.Publish(ctx, Event{Kind: EventElementMoved, ElementID: elementID})
}

// UpdateElement 应用一次元素编辑并标脏
func (s *Session) UpdateElement(ctx context.Context, elementID string, mutate func(*model.TemplateElement) error) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrSessionClosed
	}
	el := s.findElement(elementID)
	if el == nil {
		s.mutex.Unlock()
		return ErrElementNotFound
	}
	if err := mutate(el); err != nil {
		s.mutex.Unlock()
		return err
	}
	if err := el.Validate(); err != nil {
		s.mutex.Unlock()
		return err
	}
	s.dirtyElements[elementID] = true
	s.mutex.Unlock()
	return s.bus.Publish(ctx, Event{Kind: EventElementUpdated, ElementID: elementID})
}

// RemoveElement 删除元素
func (s *Session) RemoveElement(ctx context.Context, elementID string) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrSessionClosed
	}
	removed := false
	for i := range s.tpl.Sections {
		sec := &s.tpl.Sections[i]
		for j := range sec.Elements {
			if sec.Elements[j].ID == elementID {
				sec.Elements = append(sec.Elements[:j], sec.Elements[j+1:]...)
				removed = true
				break
			}
		}
		if removed {
			break
		}
	}
	if !removed {
		s.mutex.Unlock()
		return ErrElementNotFound
	}
	if s.selected == elementID {
		s.selected = ""
	}
	delete(s.dirtyElements, elementID)
	s.removed = append(s.removed, elementID)
	s.mutex.Unlock()
	return s.bus.Publish(ctx, Event{Kind: EventElementRemoved, ElementID: elementID})
}

// HasElement 元素是否属于当前文档
func (s *Session) HasElement(elementID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.findElement(elementID) != nil
}

// DirtyElementIDs 当前待持久化的元素 ID 集合（快照）
func (s *Session) DirtyElementIDs() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ids := make([]string, 0, len(s.dirtyElements))
	for id := range s.dirtyElements {
		ids = append(ids, id)
	}
	return ids
}

// Flush 将累计的脏状态写入同步器。快速连续编辑被合并：
// 每个实体只写当前最终状态，逐帧中间态从不落库
func (s *Session) Flush(ctx context.Context, flusher Flusher) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrSessionClosed
	}
	sections := make([]*model.SectionDesign, 0, len(s.dirtySections))
	for sectionType := range s.dirtySections {
		if sec := s.tpl.SectionByType(sectionType); sec != nil {
			copied := *sec
			copied.Elements = nil
			sections = append(sections, &copied)
		}
	}
	elements := make([]*model.TemplateElement, 0, len(s.dirtyElements))
	for id := range s.dirtyElements {
		if el := s.findElement(id); el != nil {
			copied := *el
			elements = append(elements, &copied)
		}
	}
	removed := append([]string(nil), s.removed...)
	s.dirtySections = make(map[string]bool)
	s.dirtyElements = make(map[string]bool)
	s.removed = nil
	s.mutex.Unlock()

	var errs []error
	var failedSections, failedElements, failedRemovals []string
	for _, sec := range sections {
		if err := s.serialized(ctx, "section:"+sec.Type, func() error {
			return flusher.SaveSection(ctx, sec)
		}); err != nil {
			errs = append(errs, err)
			failedSections = append(failedSections, sec.Type)
		}
	}
	for _, el := range elements {
		if err := s.serialized(ctx, "element:"+el.ID, func() error {
			return flusher.SaveElement(ctx, el)
		}); err != nil {
			errs = append(errs, err)
			failedElements = append(failedElements, el.ID)
		}
	}
	for _, id := range removed {
		if err := s.serialized(ctx, "element:"+id, func() error {
			return flusher.DeleteElement(ctx, id)
		}); err != nil {
			errs = append(errs, err)
			failedRemovals = append(failedRemovals, id)
		}
	}

	if len(errs) > 0 {
		// 写入失败的实体重新标脏，下一次 Flush 继续重试，
		// 内存模型与存储不会在失败后静默分叉
		s.mutex.Lock()
		for _, sectionType := range failedSections {
			s.dirtySections[sectionType] = true
		}
		for _, id := range failedElements {
			s.dirtyElements[id] = true
		}
		s.removed = append(s.removed, failedRemovals...)
		s.mutex.Unlock()
		return errors.Join(errs...)
	}
	klog.V(6).Infof("会话 flush 完成: sections=%d elements=%d removed=%d", len(sections), len(elements), len(removed))
	return s.bus.Publish(ctx, Event{Kind: EventFlushed})
}

// serialized 同一实体的写入按顺序执行，不同实体互不阻塞
func (s *Session) serialized(ctx context.Context, key string, write func() error) error {
	s.mutex.Lock()
	prev := s.inflight[key]
	done := make(chan struct{})
	s.inflight[key] = done
	s.mutex.Unlock()
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return write()
}

func (s *Session) findElement(elementID string) *model.TemplateElement {
	for i := range s.tpl.Sections {
		sec := &s.tpl.Sections[i]
		for j := range sec.Elements {
			if sec.Elements[j].ID == elementID {
				return &sec.Elements[j]
			}
		}
	}
	return nil
}

func (s *Session) findElementLocked(elementID string) *model.TemplateElement {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.findElement(elementID)
}
