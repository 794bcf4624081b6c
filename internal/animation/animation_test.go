package animation

import (
	"testing"

	"github.com/openinvite/backend/internal/model"
)

func TestClassifyRejectsWrongSet(t *testing.T) {
	if got := ClassifyEntrance(LoopSway); got != EntranceNone {
		t.Fatalf("loop value in entrance slot should classify as none, got %q", got)
	}
	if got := ClassifyLoop(EntranceFade); got != LoopNone {
		t.Fatalf("entrance value in loop slot should classify as none, got %q", got)
	}
	if got := ClassifyEntrance("sparkle"); got != EntranceNone {
		t.Fatalf("unknown value should classify as none, got %q", got)
	}
}

func TestResolveBothSlots(t *testing.T) {
	el := &model.TemplateElement{
		ID:                "e1",
		Type:              model.ElementImage,
		Animation:         EntranceFade,
		LoopAnimation:     LoopSway,
		AnimationDelay:    0.5,
		AnimationDuration: 2,
	}
	a := Resolve(el)
	if a.Entrance == nil || a.Entrance.Name != EntranceFade {
		t.Fatalf("expected fade entrance, got %#v", a.Entrance)
	}
	if a.Entrance.Delay != 0.5 || a.Entrance.Duration != 2 {
		t.Fatalf("entrance timing not taken from element: %#v", a.Entrance)
	}
	if a.Loop == nil || a.Loop.Name != LoopSway {
		t.Fatalf("expected sway loop, got %#v", a.Loop)
	}
	// sway 周期为基准时长的 3 倍
	if a.Loop.Period != 6 {
		t.Fatalf("expected period 6, got %v", a.Loop.Period)
	}
}

func TestResolvePeriodMultipliers(t *testing.T) {
	cases := map[string]float64{
		LoopRotate: 4,
		LoopPulse:  2,
		LoopShake:  1,
	}
	for name, want := range cases {
		el := &model.TemplateElement{LoopAnimation: name, AnimationDuration: 1}
		a := Resolve(el)
		if a.Loop == nil || a.Loop.Period != want {
			t.Fatalf("%s: expected period %v, got %#v", name, want, a.Loop)
		}
	}
}

func TestResolveLegacyLoopInEntranceSlot(t *testing.T) {
	// 旧数据兼容：入场槽填了循环值且循环槽为空 => 仅循环、无入场
	el := &model.TemplateElement{Animation: LoopRotate, AnimationDuration: 1}
	a := Resolve(el)
	if a.Entrance != nil {
		t.Fatalf("expected no entrance, got %#v", a.Entrance)
	}
	if a.Loop == nil || a.Loop.Name != LoopRotate {
		t.Fatalf("expected rotate loop, got %#v", a.Loop)
	}
}

func TestResolveEntranceStyles(t *testing.T) {
	el := &model.TemplateElement{Animation: EntranceSlideUp, AnimationDuration: 1}
	a := Resolve(el)
	if a.Entrance.From.Opacity != 0 || a.Entrance.To.Opacity != 1 {
		t.Fatalf("unexpected opacity styles: %#v", a.Entrance)
	}
	if a.Entrance.From.TranslateY <= 0 {
		t.Fatalf("slide-up should start below final position: %#v", a.Entrance.From)
	}
}

func TestTrackerFiresOnce(t *testing.T) {
	tr := NewTracker(0)

	if tr.ObserveVisibility("e1", 0.05) {
		t.Fatalf("below threshold must not trigger")
	}
	if !tr.ObserveVisibility("e1", 0.2) {
		t.Fatalf("crossing threshold must trigger")
	}
	tr.MarkSettled("e1")

	// 离开视口后再次进入：不得重播
	if tr.ObserveVisibility("e1", 0) {
		t.Fatalf("observe after settle must not trigger")
	}
	if tr.ObserveVisibility("e1", 1) {
		t.Fatalf("re-entry must not replay entrance")
	}
	if tr.State("e1") != StateSettled {
		t.Fatalf("expected settled, got %s", tr.State("e1"))
	}
}

func TestTrackerEnteringBlocksRetrigger(t *testing.T) {
	tr := NewTracker(0.5)
	if !tr.ObserveVisibility("e1", 0.6) {
		t.Fatalf("expected trigger")
	}
	if tr.ObserveVisibility("e1", 0.9) {
		t.Fatalf("entering state must not re-trigger")
	}
}
