package animation

import (
	"sync"

	"k8s.io/klog/v2"
)

// EntranceState 入场动画状态
type EntranceState string

const (
	// StateIdle 尚未进入视口
	StateIdle EntranceState = "idle"
	// StateEntering 已触发入场动画，正在播放
	StateEntering EntranceState = "entering"
	// StateSettled 入场已完成，本次挂载周期内不再重播
	StateSettled EntranceState = "settled"
)

// DefaultVisibilityThreshold 触发入场所需的包围盒可见比例
const DefaultVisibilityThreshold = 0.15

// Tracker 跟踪每个元素的入场状态机：idle -> entering -> settled
// settled 为终态，元素滚出视口再回来也不会重播入场动画
type Tracker struct {
	mutex     sync.Mutex
	threshold float64
	states    map[string]EntranceState
}

// NewTracker 创建入场状态跟踪器，threshold<=0 时取默认阈值
func NewTracker(threshold float64) *Tracker {
	if threshold <= 0 {
		threshold = DefaultVisibilityThreshold
	}
	return &Tracker{
		threshold: threshold,
		states:    make(map[string]EntranceState),
	}
}

// State 返回元素当前入场状态
func (t *Tracker) State(elementID string) EntranceState {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if s, ok := t.states[elementID]; ok {
		return s
	}
	return StateIdle
}

// ObserveVisibility 上报元素可见比例，首次达到阈值返回 true（触发入场）
// 已触发过的元素无论可见性如何变化都返回 false
func (t *Tracker) ObserveVisibility(elementID string, visibleFraction float64) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	state := t.states[elementID]
	if state == StateEntering || state == StateSettled {
		return false
	}
	if visibleFraction < t.threshold {
		return false
	}

	t.states[elementID] = StateEntering
	klog.V(6).Infof("元素 %s 入场动画触发, 可见比例 %.2f", elementID, visibleFraction)
	return true
}

// MarkSettled 入场动画播放完毕，进入终态
func (t *Tracker) MarkSettled(elementID string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.states[elementID] = StateSettled
}

// Reset 清空全部状态（对应一次新的挂载周期）
func (t *Tracker) Reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.states = make(map[string]EntranceState)
}
