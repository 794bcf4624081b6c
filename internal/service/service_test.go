package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/openinvite/backend/internal/canvas"
	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/render"
	"github.com/openinvite/backend/internal/repository"
	"github.com/openinvite/backend/internal/syncer"
)

var testCanvas = canvas.Canvas{Width: 375, Height: 667}

type stack struct {
	templates TemplateService
	design    *DesignService
	public    *PublicService
}

func testStack(t *testing.T) *stack {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&model.Template{}, &model.SectionDesign{}, &model.TemplateElement{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	sync, err := syncer.New(
		repository.NewTemplateRepository(db),
		repository.NewSectionRepository(db),
		repository.NewElementRepository(db),
		syncer.Options{BaseDelay: time.Millisecond},
	)
	if err != nil {
		t.Fatalf("failed to create syncer: %v", err)
	}
	t.Cleanup(sync.Close)

	renderer := render.New(testCanvas, canvas.Options{DesktopBreakpoint: 1024, MaxFrameWidth: 420}, nil)
	return &stack{
		templates: NewTemplateService(repository.NewTemplateRepository(db), sync),
		design:    NewDesignService(sync, testCanvas),
		public:    NewPublicService(sync, renderer),
	}
}

func createTemplate(t *testing.T, s *stack) *model.Template {
	t.Helper()
	tpl, err := s.templates.Create(context.Background(), CreateTemplateRequest{
		Name: "Ayu & Budi", Slug: "ayu-budi",
	})
	if err != nil {
		t.Fatalf("create template error: %v", err)
	}
	return tpl
}

func TestTemplateLifecycle(t *testing.T) {
	s := testStack(t)
	ctx := context.Background()

	tpl := createTemplate(t, s)
	if tpl.Status != model.TemplateStatusDraft {
		t.Fatalf("new template must start as draft, got %s", tpl.Status)
	}
	if len(tpl.SectionOrder) == 0 {
		t.Fatalf("new template must get a default section order")
	}

	got, err := s.templates.Get(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Slug != "ayu-budi" {
		t.Fatalf("unexpected slug %s", got.Slug)
	}

	// slug 冲突
	if _, err := s.templates.Create(ctx, CreateTemplateRequest{Name: "x", Slug: "ayu-budi"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}

	if err := s.templates.Delete(ctx, tpl.ID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := s.templates.Get(ctx, tpl.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound after delete, got %v", err)
	}
}

func TestUpdateTemplatePreservesOmittedFields(t *testing.T) {
	s := testStack(t)
	ctx := context.Background()
	tpl := createTemplate(t, s)

	theme := "classic-gold"
	if _, err := s.templates.Update(ctx, tpl.ID, UpdateTemplateRequest{GlobalTheme: &theme}); err != nil {
		t.Fatalf("update error: %v", err)
	}

	eventDate := "2026-10-10T09:00:00Z"
	updated, err := s.templates.Update(ctx, tpl.ID, UpdateTemplateRequest{EventDate: &eventDate})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if updated.GlobalTheme != "classic-gold" {
		t.Fatalf("omitted theme must survive, got %q", updated.GlobalTheme)
	}
	if updated.EventDate == nil || !updated.EventDate.Equal(time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("event date not applied: %v", updated.EventDate)
	}
}

func TestUpsertSectionPartialUpdate(t *testing.T) {
	s := testStack(t)
	ctx := context.Background()
	tpl := createTemplate(t, s)

	color := "#fdf6ee"
	if _, err := s.design.UpsertSection(ctx, tpl.ID, model.SectionCover, UpdateSectionRequest{BackgroundColor: &color}); err != nil {
		t.Fatalf("first upsert error: %v", err)
	}

	hidden := false
	if _, err := s.design.UpsertSection(ctx, tpl.ID, model.SectionCover, UpdateSectionRequest{IsVisible: &hidden}); err != nil {
		t.Fatalf("second upsert error: %v", err)
	}

	got, err := s.templates.Get(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	cover := got.SectionByType(model.SectionCover)
	if cover == nil {
		t.Fatalf("cover section missing after upsert")
	}
	if cover.BackgroundColor != "#fdf6ee" {
		t.Fatalf("omitted background must survive partial update, got %q", cover.BackgroundColor)
	}
	if cover.IsVisible {
		t.Fatalf("visibility update not applied")
	}

	bad := 1.5
	if _, err := s.design.UpsertSection(ctx, tpl.ID, model.SectionCover, UpdateSectionRequest{OverlayOpacity: &bad}); err == nil {
		t.Fatalf("overlay opacity out of range must be rejected")
	}
}

func TestElementEditingRoundTrip(t *testing.T) {
	s := testStack(t)
	ctx := context.Background()
	tpl := createTemplate(t, s)

	el, err := s.design.AddElement(ctx, tpl.ID, model.SectionCover, model.TemplateElement{
		Type: model.ElementText, Name: "headline",
		PositionX: 100, PositionY: 200, Width: 175, Height: 40,
		Content:   "Ayu & Budi",
		TextStyle: &model.TextStyle{FontSize: 24},
	})
	if err != nil {
		t.Fatalf("add element error: %v", err)
	}

	content := "Undangan Pernikahan"
	updated, err := s.design.UpdateElement(ctx, el.ID, UpdateElementRequest{Content: &content})
	if err != nil {
		t.Fatalf("update element error: %v", err)
	}
	if updated.PositionX != 100 || updated.Width != 175 {
		t.Fatalf("omitted geometry must survive: %+v", updated)
	}

	// 拖拽提交：越界位置钳制、取整
	if err := s.design.CommitElementPosition(ctx, el.ID, MoveElementRequest{X: 350.6, Y: -20}); err != nil {
		t.Fatalf("commit position error: %v", err)
	}

	got, err := s.templates.Get(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	persisted := got.SectionByType(model.SectionCover).Elements[0]
	if persisted.Content != "Undangan Pernikahan" {
		t.Fatalf("content not persisted: %q", persisted.Content)
	}
	if persisted.PositionX != 200 || persisted.PositionY != 0 {
		t.Fatalf("committed position must be clamped and rounded, got (%v, %v)",
			persisted.PositionX, persisted.PositionY)
	}

	if err := s.design.RemoveElement(ctx, el.ID); err != nil {
		t.Fatalf("remove error: %v", err)
	}
	got, err = s.templates.Get(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if n := len(got.SectionByType(model.SectionCover).Elements); n != 0 {
		t.Fatalf("expected no elements after removal, got %d", n)
	}
}

func TestCloneTemplateDeepCopies(t *testing.T) {
	s := testStack(t)
	ctx := context.Background()
	tpl := createTemplate(t, s)

	color := "#fdf6ee"
	if _, err := s.design.UpsertSection(ctx, tpl.ID, model.SectionCover, UpdateSectionRequest{BackgroundColor: &color}); err != nil {
		t.Fatalf("upsert section error: %v", err)
	}
	el, err := s.design.AddElement(ctx, tpl.ID, model.SectionCover, model.TemplateElement{
		Type: model.ElementText, PositionX: 10, PositionY: 20, Width: 100, Height: 30,
		Content: "Ayu & Budi", TextStyle: &model.TextStyle{FontSize: 24},
	})
	if err != nil {
		t.Fatalf("add element error: %v", err)
	}
	if err := s.templates.Publish(ctx, tpl.ID); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	clone, err := s.templates.Clone(ctx, tpl.ID, "ayu-budi-v2")
	if err != nil {
		t.Fatalf("clone error: %v", err)
	}
	if clone.ID == tpl.ID {
		t.Fatalf("clone must get a fresh id")
	}
	if clone.Status != model.TemplateStatusDraft {
		t.Fatalf("clone must start as draft, got %s", clone.Status)
	}
	cover := clone.SectionByType(model.SectionCover)
	if cover == nil || cover.BackgroundColor != "#fdf6ee" {
		t.Fatalf("section design not carried over: %+v", cover)
	}
	if len(cover.Elements) != 1 || cover.Elements[0].Content != "Ayu & Budi" {
		t.Fatalf("elements not carried over: %+v", cover.Elements)
	}
	if cover.Elements[0].ID == el.ID {
		t.Fatalf("cloned element must get a fresh id")
	}

	// 改克隆不影响母版
	moved := "Moved"
	if _, err := s.design.UpdateElement(ctx, cover.Elements[0].ID, UpdateElementRequest{Content: &moved}); err != nil {
		t.Fatalf("update cloned element error: %v", err)
	}
	original, err := s.templates.Get(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if original.SectionByType(model.SectionCover).Elements[0].Content != "Ayu & Budi" {
		t.Fatalf("editing the clone must not touch the source template")
	}

	if _, err := s.templates.Clone(ctx, tpl.ID, "ayu-budi-v2"); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists for duplicate clone slug, got %v", err)
	}
}

func TestPublicPlanOnlyForPublished(t *testing.T) {
	s := testStack(t)
	ctx := context.Background()
	tpl := createTemplate(t, s)
	vp := canvas.Viewport{Width: 390, Height: 844}

	if _, err := s.public.Plan(ctx, tpl.Slug, vp); !errors.Is(err, render.ErrNotPublished) {
		t.Fatalf("draft must not render publicly, got %v", err)
	}

	if err := s.templates.Publish(ctx, tpl.ID); err != nil {
		t.Fatalf("publish error: %v", err)
	}
	plan, err := s.public.Plan(ctx, tpl.Slug, vp)
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}
	if plan.Slug != tpl.Slug || len(plan.Sections) == 0 {
		t.Fatalf("unexpected plan: %+v", plan)
	}

	if err := s.templates.Unpublish(ctx, tpl.ID); err != nil {
		t.Fatalf("unpublish error: %v", err)
	}
	// 撤回发布后会话缓存失效，重新装配拿到 draft 状态
	s.design.CloseSession(tpl.ID)
	if _, err := s.public.Plan(ctx, tpl.Slug, vp); !errors.Is(err, render.ErrNotPublished) {
		t.Fatalf("unpublished template must not render, got %v", err)
	}

	if _, err := s.public.Plan(ctx, "no-such-slug", vp); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("unknown slug must map to not found, got %v", err)
	}
}
