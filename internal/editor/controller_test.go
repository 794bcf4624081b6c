package editor

import (
	"context"
	"testing"

	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/session"
)

func testController() (*Controller, *MemorySurface, *session.Session) {
	tpl := &model.Template{
		ID:           "t1",
		Name:         "wedding",
		SectionOrder: []string{model.SectionCover},
		Sections: []model.SectionDesign{
			{ID: "s1", TemplateID: "t1", Type: model.SectionCover, IsVisible: true,
				Elements: []model.TemplateElement{
					{ID: "bg", SectionID: "s1", Type: model.ElementShape,
						PositionX: 0, PositionY: 0, Width: 375, Height: 667, ZIndex: 0,
						ShapeStyle: &model.ShapeStyle{Shape: "rectangle", FillColor: "#fff"}},
					{ID: "title", SectionID: "s1", Type: model.ElementText,
						PositionX: 50, PositionY: 100, Width: 200, Height: 40, ZIndex: 2,
						TextStyle: &model.TextStyle{FontSize: 24}},
					{ID: "deco", SectionID: "s1", Type: model.ElementShape,
						PositionX: 60, PositionY: 110, Width: 100, Height: 20, ZIndex: 1,
						ShapeStyle: &model.ShapeStyle{Shape: "line"}},
				}},
		},
	}
	sess := session.New(tpl, canvas.Canvas{Width: 375, Height: 667})
	surface := NewMemorySurface()
	return NewController(sess, surface, nil), surface, sess
}

func TestRenderSectionPaintsByZIndex(t *testing.T) {
	c, surface, _ := testController()

	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("RenderSection error: %v", err)
	}

	order := surface.PaintOrder()
	if len(order) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(order))
	}
	if order[0].ID != "bg" || order[1].ID != "deco" || order[2].ID != "title" {
		t.Fatalf("unexpected paint order: %s, %s, %s", order[0].ID, order[1].ID, order[2].ID)
	}
}

func TestRenderSectionIdempotent(t *testing.T) {
	c, surface, _ := testController()

	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("first render: %v", err)
	}
	first := surface.PaintOrder()

	// 重复重绘不得累积状态
	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("second render: %v", err)
	}
	second := surface.PaintOrder()

	if surface.NodeCount() != 3 {
		t.Fatalf("repaint accumulated nodes: %d", surface.NodeCount())
	}
	if len(first) != len(second) {
		t.Fatalf("paint order changed across identical renders")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("node %d differs across renders: %#v vs %#v", i, first[i], second[i])
		}
	}
}

func TestRenderSectionSkipsHidden(t *testing.T) {
	c, surface, sess := testController()

	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("render visible: %v", err)
	}
	if surface.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes while visible, got %d", surface.NodeCount())
	}

	// 隐藏区块必须整体退出渲染，之前的绘制状态也要拆除
	sess.Template().Sections[0].IsVisible = false
	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("render hidden: %v", err)
	}
	if surface.NodeCount() != 0 {
		t.Fatalf("hidden section must paint nothing, got %d nodes", surface.NodeCount())
	}

	sess.Template().Sections[0].IsVisible = true
	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("render re-shown: %v", err)
	}
	if surface.NodeCount() != 3 {
		t.Fatalf("re-shown section must paint again, got %d nodes", surface.NodeCount())
	}
}

func TestClickSelectsTopmost(t *testing.T) {
	c, surface, sess := testController()
	ctx := context.Background()

	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("render: %v", err)
	}

	// (70,115) 同时落在 bg、deco、title 内，应命中 z 最高的 title
	if err := c.Click(ctx, 70, 115); err != nil {
		t.Fatalf("click: %v", err)
	}
	if sess.Selected() != "title" {
		t.Fatalf("expected topmost element selected, got %q", sess.Selected())
	}
	if surface.Outline() != "title" {
		t.Fatalf("expected outline on selection")
	}
	// 选中不改变存储 z_index
	if sess.Template().Sections[0].Elements[1].ZIndex != 2 {
		t.Fatalf("selection must not change z index")
	}
}

func TestClickEmptyClearsSelection(t *testing.T) {
	c, surface, sess := testController()
	ctx := context.Background()

	tpl := sess.Template()
	// 缩小背景，留出真正的空白区域
	tpl.Sections[0].Elements[0].Width = 100
	tpl.Sections[0].Elements[0].Height = 100

	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := c.Click(ctx, 70, 115); err != nil {
		t.Fatalf("click: %v", err)
	}
	if sess.Selected() == "" {
		t.Fatalf("expected a selection first")
	}

	if err := c.Click(ctx, 360, 650); err != nil {
		t.Fatalf("click empty: %v", err)
	}
	if sess.Selected() != "" {
		t.Fatalf("click on empty canvas must clear selection")
	}
	if surface.Outline() != "" {
		t.Fatalf("outline must be cleared")
	}
}

func TestDragClampsEachFrame(t *testing.T) {
	c, surface, sess := testController()
	ctx := context.Background()

	if err := c.RenderSection(model.SectionCover); err != nil {
		t.Fatalf("render: %v", err)
	}

	// 把 title (200x40) 拖出右下边界
	if err := c.DragMove("title", 900, 900); err != nil {
		t.Fatalf("drag move: %v", err)
	}
	for _, n := range surface.PaintOrder() {
		if n.ID != "title" {
			continue
		}
		if n.Rect.X != 375-200 || n.Rect.Y != 667-40 {
			t.Fatalf("frame position not clamped: %#v", n.Rect)
		}
	}

	if err := c.DragEnd(ctx, "title"); err != nil {
		t.Fatalf("drag end: %v", err)
	}
	el := sess.Template().Sections[0].Elements[1]
	if el.PositionX != 175 || el.PositionY != 627 {
		t.Fatalf("unexpected committed position %v,%v", el.PositionX, el.PositionY)
	}
}
