// Package animation 将元素声明的动画解析为入场（一次性）与循环（持续）
// 两类行为。两个槽位取值来自互不相交的封闭集合，放错集合的值按 none 处理。
package animation

import (
	"github.com/openinvite/backend/internal/model"
)

// 入场动画集合
const (
	EntranceNone       = "none"
	EntranceFade       = "fade"
	EntranceSlideUp    = "slide-up"
	EntranceSlideDown  = "slide-down"
	EntranceSlideLeft  = "slide-left"
	EntranceSlideRight = "slide-right"
	EntranceZoomIn     = "zoom-in"
	EntranceZoomOut    = "zoom-out"
	EntranceBounce     = "bounce"
)

// 循环动画集合
const (
	LoopNone   = "none"
	LoopSway   = "sway"
	LoopRotate = "rotate"
	LoopPulse  = "pulse"
	LoopFloat  = "float"
	LoopShake  = "shake"
)

var entranceSet = map[string]bool{
	EntranceFade:       true,
	EntranceSlideUp:    true,
	EntranceSlideDown:  true,
	EntranceSlideLeft:  true,
	EntranceSlideRight: true,
	EntranceZoomIn:     true,
	EntranceZoomOut:    true,
	EntranceBounce:     true,
}

// 循环动画周期 = 基准时长 × 类型系数
var loopPeriodMultiplier = map[string]float64{
	LoopSway:   3,
	LoopRotate: 4,
	LoopPulse:  2,
	LoopFloat:  3,
	LoopShake:  1,
}

// ClassifyEntrance 归类入场槽位取值，集合外的值一律归为 none
func ClassifyEntrance(name string) string {
	if entranceSet[name] {
		return name
	}
	return EntranceNone
}

// ClassifyLoop 归类循环槽位取值，集合外的值一律归为 none
func ClassifyLoop(name string) string {
	if _, ok := loopPeriodMultiplier[name]; ok {
		return name
	}
	return LoopNone
}

// Style 入场动画前/后样式快照
type Style struct {
	Opacity    float64 `json:"opacity"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
}

// Entrance 入场动画参数，触发一次后永久 settled
type Entrance struct {
	Name     string  `json:"name"`
	Delay    float64 `json:"delay"`
	Duration float64 `json:"duration"`
	From     Style   `json:"from"`
	To       Style   `json:"to"`
}

// Loop 循环动画参数，元素可见后持续生效
type Loop struct {
	Name      string  `json:"name"`
	Period    float64 `json:"period"`    // 单周期秒数
	Amplitude float64 `json:"amplitude"` // 摆动/位移幅度（逻辑单位或度）
}

// ElementAnimation 元素动画解析结果
// 入场与循环相互独立，可同时生效（先入场、后循环并行）
type ElementAnimation struct {
	Entrance *Entrance `json:"entrance,omitempty"`
	Loop     *Loop     `json:"loop,omitempty"`
}

// 入场位移距离（逻辑单位）
const slideDistance = 40

// 基准时长缺省 1 秒
const defaultBaseDuration = 1.0

// Resolve 解析元素的两个动画槽位
// 兼容旧数据：循环槽为空而入场槽填了循环集合的值时，按"仅循环、无入场"处理
func Resolve(el *model.TemplateElement) ElementAnimation {
	entranceName := ClassifyEntrance(el.Animation)
	loopName := ClassifyLoop(el.LoopAnimation)

	if loopName == LoopNone && el.LoopAnimation == "" {
		if legacy := ClassifyLoop(el.Animation); legacy != LoopNone {
			loopName = legacy
			entranceName = EntranceNone
		}
	}

	base := el.AnimationDuration
	if base <= 0 {
		base = defaultBaseDuration
	}
	speed := el.AnimationSpeed
	if speed <= 0 {
		speed = 1
	}

	var out ElementAnimation
	if entranceName != EntranceNone {
		out.Entrance = resolveEntrance(entranceName, el.AnimationDelay, base)
	}
	if loopName != LoopNone {
		out.Loop = &Loop{
			Name:      loopName,
			Period:    base * loopPeriodMultiplier[loopName] / speed,
			Amplitude: loopAmplitude(loopName),
		}
	}
	return out
}

func resolveEntrance(name string, delay, duration float64) *Entrance {
	e := &Entrance{
		Name:     name,
		Delay:    delay,
		Duration: duration,
		From:     Style{Opacity: 0, Scale: 1},
		To:       Style{Opacity: 1, Scale: 1},
	}
	switch name {
	case EntranceSlideUp:
		e.From.TranslateY = slideDistance
	case EntranceSlideDown:
		e.From.TranslateY = -slideDistance
	case EntranceSlideLeft:
		e.From.TranslateX = slideDistance
	case EntranceSlideRight:
		e.From.TranslateX = -slideDistance
	case EntranceZoomIn:
		e.From.Scale = 0.6
	case EntranceZoomOut:
		e.From.Scale = 1.4
	case EntranceBounce:
		e.From.TranslateY = -slideDistance
	}
	return e
}

func loopAmplitude(name string) float64 {
	switch name {
	case LoopSway:
		return 8 // 摆动角度（度）
	case LoopRotate:
		return 360
	case LoopPulse:
		return 0.08 // 缩放偏移
	case LoopFloat:
		return 12 // 垂直位移（逻辑单位）
	case LoopShake:
		return 4
	}
	return 0
}
