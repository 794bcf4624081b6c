package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gorm.io/gorm"

	"github.com/openinvite/backend/internal/model"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := db.AutoMigrate(&model.Template{}, &model.SectionDesign{}, &model.TemplateElement{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

func TestTemplateRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewTemplateRepository(db)

	eventDate := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	tpl := &model.Template{
		Name:         "Rustic Wedding",
		Thumbnail:    "https://cdn.example.com/thumb.webp",
		Status:       model.TemplateStatusDraft,
		SectionOrder: []string{model.SectionCover, model.SectionEvent, model.SectionRSVP},
		CustomSections: []model.CustomSection{
			{Type: "live_stream", Title: "Live", Icon: "video"},
		},
		GlobalTheme: "rustic-rose",
		EventDate:   &eventDate,
	}
	if err := repo.Create(tpl); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if tpl.ID == "" || tpl.Slug == "" {
		t.Fatalf("create should assign id and slug")
	}

	loaded, err := repo.Get(tpl.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	// 嵌套模型与关系存储之间的映射必须双向无损
	if diff := cmp.Diff(tpl, loaded, cmpopts.IgnoreFields(model.Template{}, "CreatedAt", "UpdatedAt", "Sections")); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateGetBySlug(t *testing.T) {
	db := testDB(t)
	repo := NewTemplateRepository(db)

	tpl := &model.Template{Name: "A", Slug: "our-wedding"}
	if err := repo.Create(tpl); err != nil {
		t.Fatalf("create error: %v", err)
	}

	loaded, err := repo.GetBySlug("our-wedding")
	if err != nil {
		t.Fatalf("get by slug error: %v", err)
	}
	if loaded.ID != tpl.ID {
		t.Fatalf("unexpected template %s", loaded.ID)
	}

	if _, err := repo.GetBySlug("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTemplateUpdateStatusLeavesFieldsUntouched(t *testing.T) {
	db := testDB(t)
	repo := NewTemplateRepository(db)

	tpl := &model.Template{
		Name:         "B",
		SectionOrder: []string{model.SectionCover},
		GlobalTheme:  "classic",
	}
	if err := repo.Create(tpl); err != nil {
		t.Fatalf("create error: %v", err)
	}

	if err := repo.UpdateStatus(tpl.ID, model.TemplateStatusPublished); err != nil {
		t.Fatalf("update status error: %v", err)
	}

	loaded, err := repo.Get(tpl.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if loaded.Status != model.TemplateStatusPublished {
		t.Fatalf("status not updated: %s", loaded.Status)
	}
	// 状态更新不得清掉其他字段
	if loaded.GlobalTheme != "classic" || len(loaded.SectionOrder) != 1 {
		t.Fatalf("unrelated fields were clobbered: %#v", loaded)
	}

	if err := repo.UpdateStatus("missing", model.TemplateStatusDraft); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
