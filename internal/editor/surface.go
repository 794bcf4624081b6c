package editor

import (
	"sort"
	"sync"

	"github.com/openinvite/backend/internal/canvas"
)

// NodeKind 画布节点的呈现类别
type NodeKind string

const (
	NodeElement     NodeKind = "element"
	NodePlaceholder NodeKind = "placeholder" // 图片加载中
	NodeBroken      NodeKind = "broken"      // 图片加载失败
)

// Node 画布上的一个可绘制节点
type Node struct {
	ID   string
	Rect canvas.Rect
	Z    int
	Kind NodeKind
}

// Surface 抽象渲染面。控制器只依赖该能力集，
// 同一套控制逻辑可以落在保留模式场景图或 DOM/CSS 渲染器上
type Surface interface {
	AddNode(node Node)
	RemoveNode(id string)
	MoveNode(id string, x, y float64)
	SetOutline(id string) // 选中描边，空串表示清除
	Clear()
	HitTest(x, y float64) string // 命中最上层节点，未命中返回空串
	NodeCount() int
}

// MemorySurface 内存场景图实现
// 按 z 升序绘制，z 相同按插入顺序；选中描边绘制在元素之上但不改变其 z
type MemorySurface struct {
	mutex   sync.Mutex
	nodes   map[string]*Node
	order   []string // 插入顺序，z 相同时的平局裁决
	outline string
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{nodes: make(map[string]*Node)}
}

func (s *MemorySurface) AddNode(node Node) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.nodes[node.ID]; !ok {
		s.order = append(s.order, node.ID)
	}
	copied := node
	s.nodes[node.ID] = &copied
}

func (s *MemorySurface) RemoveNode(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.nodes[id]; !ok {
		return
	}
	delete(s.nodes, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.outline == id {
		s.outline = ""
	}
}

func (s *MemorySurface) MoveNode(id string, x, y float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.Rect.X = x
		n.Rect.Y = y
	}
}

func (s *MemorySurface) SetOutline(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.outline = id
}

// Outline 当前描边节点
func (s *MemorySurface) Outline() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.outline
}

func (s *MemorySurface) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.nodes = make(map[string]*Node)
	s.order = nil
	s.outline = ""
}

func (s *MemorySurface) NodeCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.nodes)
}

// PaintOrder 返回绘制顺序：z 升序，z 相同按插入顺序（稳定）
func (s *MemorySurface) PaintOrder() []Node {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.nodes[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// HitTest 从最上层往下找第一个包含该点的节点
func (s *MemorySurface) HitTest(x, y float64) string {
	painted := s.PaintOrder()
	for i := len(painted) - 1; i >= 0; i-- {
		if painted[i].Rect.Contains(x, y) {
			return painted[i].ID
		}
	}
	return ""
}
