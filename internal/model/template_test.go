package model

import (
	"errors"
	"testing"
)

func TestOrderedSectionsFollowsSectionOrder(t *testing.T) {
	tpl := &Template{
		ID:           "t1",
		Name:         "wedding",
		SectionOrder: []string{SectionCover, SectionEvent, SectionRSVP},
		Sections: []SectionDesign{
			{TemplateID: "t1", Type: SectionRSVP, IsVisible: true},
			{TemplateID: "t1", Type: SectionCover, IsVisible: true},
		},
	}

	ordered := tpl.OrderedSections()
	if len(ordered) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(ordered))
	}
	if ordered[0].Type != SectionCover || ordered[1].Type != SectionEvent || ordered[2].Type != SectionRSVP {
		t.Fatalf("unexpected order: %s, %s, %s", ordered[0].Type, ordered[1].Type, ordered[2].Type)
	}
	// event 无数据：渲染为空默认区块而不是报错
	if !ordered[1].IsVisible || len(ordered[1].Elements) != 0 || ordered[1].ID != "" {
		t.Fatalf("missing section should expand to empty default, got %#v", ordered[1])
	}
}

func TestOrderedSectionsUnlistedSortsLast(t *testing.T) {
	tpl := &Template{
		ID:           "t1",
		Name:         "wedding",
		SectionOrder: []string{SectionCover},
		Sections: []SectionDesign{
			{TemplateID: "t1", Type: SectionGallery, IsVisible: true},
			{TemplateID: "t1", Type: SectionCover, IsVisible: true},
		},
	}

	ordered := tpl.OrderedSections()
	if len(ordered) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(ordered))
	}
	if ordered[len(ordered)-1].Type != SectionGallery {
		t.Fatalf("unlisted section should sort last, got %s", ordered[len(ordered)-1].Type)
	}
}

func TestValidateDuplicateSectionOrder(t *testing.T) {
	tpl := &Template{
		ID:           "t1",
		Name:         "wedding",
		Status:       TemplateStatusDraft,
		SectionOrder: []string{SectionCover, SectionEvent, SectionCover},
	}
	if err := tpl.Validate(); !errors.Is(err, ErrDuplicateSectionKey) {
		t.Fatalf("expected ErrDuplicateSectionKey, got %v", err)
	}
}

func TestValidateOverlayOpacity(t *testing.T) {
	tpl := &Template{
		ID:     "t1",
		Name:   "wedding",
		Status: TemplateStatusDraft,
		Sections: []SectionDesign{
			{TemplateID: "t1", Type: SectionCover, OverlayOpacity: 1.2},
		},
	}
	if err := tpl.Validate(); !errors.Is(err, ErrOverlayOutOfRange) {
		t.Fatalf("expected ErrOverlayOutOfRange, got %v", err)
	}
}
