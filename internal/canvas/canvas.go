// Package canvas 实现逻辑画布坐标系与渲染目标之间的换算。
// 所有元素几何以固定逻辑画布（默认 375×667）为基准，任何渲染目标
// 只通过一个标量 scale 将逻辑单位映射到自己的像素空间。
package canvas

import "math"

// Mode 渲染布局模式
type Mode string

const (
	// ModeEditor 编辑器原生渲染，scale 恒为 1
	ModeEditor Mode = "editor"
	// ModeFrame 桌面"手机框"模式，画布居中且宽度封顶
	ModeFrame Mode = "frame"
	// ModeFullscreen 移动端全屏模式，区块高度取满视口
	ModeFullscreen Mode = "fullscreen"
)

// Canvas 逻辑画布尺寸
type Canvas struct {
	Width  float64
	Height float64
}

// Viewport 渲染目标视口（像素）
type Viewport struct {
	Width  float64
	Height float64
}

// Options 响应式布局参数
type Options struct {
	DesktopBreakpoint float64
	MaxFrameWidth     float64
}

// Layout 一次换算的结果。对相同输入，Resolve 恒返回相同 Layout
type Layout struct {
	Mode          Mode    `json:"mode"`
	Scale         float64 `json:"scale"`
	Width         float64 `json:"width"`          // 画布在目标中的实际像素宽度
	SectionHeight float64 `json:"section_height"` // 单个区块的像素高度
	OffsetX       float64 `json:"offset_x"`       // frame 模式下的水平居中偏移
}

// Resolve 依据视口尺寸计算布局
// 视口宽度钳制到至少 1，零或负尺寸不会产生 NaN/Inf
func (c Canvas) Resolve(vp Viewport, opts Options) Layout {
	w := math.Max(vp.Width, 1)
	h := math.Max(vp.Height, 1)

	if opts.DesktopBreakpoint > 0 && w >= opts.DesktopBreakpoint {
		frameWidth := math.Min(opts.MaxFrameWidth, 0.9*w)
		scale := frameWidth / c.Width
		return Layout{
			Mode:          ModeFrame,
			Scale:         scale,
			Width:         frameWidth,
			SectionHeight: scale * c.Height,
			OffsetX:       (w - frameWidth) / 2,
		}
	}

	scale := w / c.Width
	return Layout{
		Mode:          ModeFullscreen,
		Scale:         scale,
		Width:         w,
		SectionHeight: h,
	}
}

// EditorLayout 编辑器布局，逻辑单位即像素
func (c Canvas) EditorLayout() Layout {
	return Layout{
		Mode:          ModeEditor,
		Scale:         1,
		Width:         c.Width,
		SectionHeight: c.Height,
	}
}

// Px 将逻辑量换算为目标像素量，位置、尺寸、字号、图标尺寸一律适用
func (l Layout) Px(v float64) float64 {
	return v * l.Scale
}

// Rect 逻辑画布中的矩形
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScaleRect 将矩形整体换算到目标像素空间
func (l Layout) ScaleRect(r Rect) Rect {
	return Rect{
		X:      r.X * l.Scale,
		Y:      r.Y * l.Scale,
		Width:  r.Width * l.Scale,
		Height: r.Height * l.Scale,
	}
}

// ClampRect 将矩形钳制到画布边界内，使其完整包含于 [0,W]×[0,H]
// 超过画布大小的矩形沿对应轴固定在原点
func (c Canvas) ClampRect(r Rect) Rect {
	out := r
	if out.X < 0 {
		out.X = 0
	}
	if out.Y < 0 {
		out.Y = 0
	}
	if out.X+out.Width > c.Width {
		out.X = c.Width - out.Width
	}
	if out.Y+out.Height > c.Height {
		out.Y = c.Height - out.Height
	}
	if out.X < 0 {
		out.X = 0
	}
	if out.Y < 0 {
		out.Y = 0
	}
	return out
}

// Contains 点是否落在矩形内
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}
