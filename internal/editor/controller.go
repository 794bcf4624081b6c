// Package editor 实现单区块元素集的直接操纵编辑：
// 选中、带边界钳制的拖拽、按 z_index 合成绘制与幂等重绘。
package editor

import (
	"context"
	"sort"

	"k8s.io/klog/v2"

	"github.com/openinvite/backend/internal/assets"
	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/session"
)

// Controller 交互画布控制器
// 图片按 URL 异步加载；单张图片失败只降级为占位节点，不影响其他元素
type Controller struct {
	session *session.Session
	surface Surface
	images  *assets.Cache // 可为 nil（纯几何测试场景）
}

func NewController(sess *session.Session, surface Surface, images *assets.Cache) *Controller {
	return &Controller{session: sess, surface: surface, images: images}
}

// RenderSection 全量重绘一个区块
// 幂等：先完整拆除上一次绘制状态再按 z 升序重建，输入不变则结果不变
func (c *Controller) RenderSection(sectionType string) error {
	tpl := c.session.Template()
	sec := tpl.SectionByType(sectionType)
	if sec == nil {
		empty := model.EmptySection(tpl.ID, sectionType)
		sec = &empty
	}

	c.surface.Clear()

	// 隐藏区块不参与任何渲染，连占位节点也不留
	if !sec.IsVisible {
		klog.V(6).Infof("区块 %s 不可见，跳过绘制", sectionType)
		return nil
	}

	elements := make([]model.TemplateElement, len(sec.Elements))
	copy(elements, sec.Elements)
	sort.SliceStable(elements, func(i, j int) bool { return elements[i].ZIndex < elements[j].ZIndex })

	for _, el := range elements {
		c.surface.AddNode(Node{
			ID:   el.ID,
			Rect: canvasRect(el),
			Z:    el.ZIndex,
			Kind: c.nodeKind(el),
		})
	}

	// 选中描边绘制在元素之上，但不改变其存储 z_index
	if selected := c.session.Selected(); selected != "" {
		for _, el := range elements {
			if el.ID == selected {
				c.surface.SetOutline(selected)
				break
			}
		}
	}
	klog.V(6).Infof("区块 %s 重绘完成, 元素 %d 个", sectionType, len(elements))
	return nil
}

// nodeKind 图片元素按加载状态降级为占位/失败节点
func (c *Controller) nodeKind(el model.TemplateElement) NodeKind {
	if el.Type != model.ElementImage || el.ImageURL == "" || c.images == nil {
		return NodeElement
	}
	c.images.Ensure(el.ImageURL)
	switch c.images.State(el.ImageURL) {
	case assets.StateReady:
		return NodeElement
	case assets.StateFailed:
		return NodeBroken
	default:
		return NodePlaceholder
	}
}

// Click 画布点击：命中元素则选中并描边，点击空白清除选中
func (c *Controller) Click(ctx context.Context, x, y float64) error {
	id := c.surface.HitTest(x, y)
	if id == "" {
		c.surface.SetOutline("")
		return c.session.ClearSelection(ctx)
	}
	if err := c.session.Select(ctx, id); err != nil {
		return err
	}
	c.surface.SetOutline(id)
	return nil
}

// DragMove 拖拽中的连续位置反馈，逐帧钳制在画布边界内
func (c *Controller) DragMove(elementID string, x, y float64) error {
	if err := c.session.MoveElement(elementID, x, y); err != nil {
		return err
	}
	// 回读钳制后的位置，保证画面与模型一致
	tpl := c.session.Template()
	for i := range tpl.Sections {
		for j := range tpl.Sections[i].Elements {
			el := &tpl.Sections[i].Elements[j]
			if el.ID == elementID {
				c.surface.MoveNode(elementID, el.PositionX, el.PositionY)
				return nil
			}
		}
	}
	return nil
}

func canvasRect(el model.TemplateElement) canvas.Rect {
	return canvas.Rect{X: el.PositionX, Y: el.PositionY, Width: el.Width, Height: el.Height}
}

// DragEnd 拖拽结束：位置取整提交为一次离散编辑
func (c *Controller) DragEnd(ctx context.Context, elementID string) error {
	if err := c.session.CommitMove(ctx, elementID); err != nil {
		return err
	}
	tpl := c.session.Template()
	for i := range tpl.Sections {
		for j := range tpl.Sections[i].Elements {
			el := &tpl.Sections[i].Elements[j]
			if el.ID == elementID {
				c.surface.MoveNode(elementID, el.PositionX, el.PositionY)
				return nil
			}
		}
	}
	return nil
}
