package repository

import (
	"testing"

	"github.com/openinvite/backend/internal/model"
)

func TestSectionUpsertInsertsThenUpdates(t *testing.T) {
	db := testDB(t)
	repo := NewSectionRepository(db)

	sec := &model.SectionDesign{
		TemplateID:      "t1",
		Type:            model.SectionCover,
		IsVisible:       true,
		BackgroundColor: "#ffffff",
		OverlayOpacity:  0.3,
		OpenInvitation:  &model.OpenInvitationConfig{Enabled: true, Label: "Open"},
	}
	if err := repo.Upsert(sec); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	if sec.ID == "" {
		t.Fatalf("upsert should assign id on insert")
	}
	firstID := sec.ID

	// 同键再次 upsert：更新既有行而不是新建
	updated := &model.SectionDesign{
		TemplateID:      "t1",
		Type:            model.SectionCover,
		IsVisible:       false,
		BackgroundColor: "#000000",
		BackgroundURL:   "https://cdn.example.com/bg.jpg",
		OverlayOpacity:  0.7,
		OpenInvitation:  &model.OpenInvitationConfig{Enabled: true, Label: "Buka"},
	}
	if err := repo.Upsert(updated); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if updated.ID != firstID {
		t.Fatalf("upsert must reuse row id, got %s want %s", updated.ID, firstID)
	}

	all, err := repo.GetByTemplate("t1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 row, got %d", len(all))
	}
	got := all[0]
	if got.IsVisible || got.BackgroundColor != "#000000" || got.OverlayOpacity != 0.7 {
		t.Fatalf("update not applied: %#v", got)
	}
	if got.OpenInvitation == nil || got.OpenInvitation.Label != "Buka" {
		t.Fatalf("json config not updated: %#v", got.OpenInvitation)
	}
}

func TestSectionUpsertSeparateKeys(t *testing.T) {
	db := testDB(t)
	repo := NewSectionRepository(db)

	for _, key := range []struct{ tpl, typ string }{
		{"t1", model.SectionCover},
		{"t1", model.SectionEvent},
		{"t2", model.SectionCover},
	} {
		if err := repo.Upsert(&model.SectionDesign{TemplateID: key.tpl, Type: key.typ, IsVisible: true}); err != nil {
			t.Fatalf("upsert %v error: %v", key, err)
		}
	}

	t1, err := repo.GetByTemplate("t1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if len(t1) != 2 {
		t.Fatalf("expected 2 sections for t1, got %d", len(t1))
	}
	t2, err := repo.GetByTemplate("t2")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if len(t2) != 1 {
		t.Fatalf("expected 1 section for t2, got %d", len(t2))
	}
}
