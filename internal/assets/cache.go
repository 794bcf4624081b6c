// Package assets 提供进程级图片加载缓存。以解析后的 URL 为键，
// 同一 URL 的加载结果在所有渲染目标间共享只读，单会话生命周期内不做淘汰。
package assets

import (
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	// 注册图片解码器，按内容自动识别
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/panjf2000/ants/v2"
	"k8s.io/klog/v2"
)

// State 图片加载状态。loading 与 failed 在画布上呈现为不同的占位样式
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Image 一次加载的结果
type Image struct {
	State  State
	Width  int
	Height int
	Err    error
}

type entry struct {
	result Image
	done   chan struct{}
}

// Cache 按 URL 共享的图片缓存
// 加载失败最多做一次普通重试（不带凭据），之后进入终态 failed；
// 单个图片失败不阻塞其他元素的渲染
type Cache struct {
	mutex   sync.Mutex
	entries map[string]*entry
	pool    *ants.Pool
	client  *http.Client
}

// NewCache 创建缓存，加载任务运行在容量受限的协程池上
func NewCache(maxWorkers int) (*Cache, error) {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	pool, err := ants.NewPool(maxWorkers)
	if err != nil {
		return nil, err
	}
	return &Cache{
		entries: make(map[string]*entry),
		pool:    pool,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Release 释放协程池
func (c *Cache) Release() {
	c.pool.Release()
}

// Ensure 确保某 URL 的加载已发起。重复调用共享同一次加载
func (c *Cache) Ensure(url string) {
	if url == "" {
		return
	}
	c.mutex.Lock()
	if _, ok := c.entries[url]; ok {
		c.mutex.Unlock()
		return
	}
	e := &entry{result: Image{State: StateLoading}, done: make(chan struct{})}
	c.entries[url] = e
	c.mutex.Unlock()

	submit := func() { c.load(url, e) }
	if err := c.pool.Submit(submit); err != nil {
		// 池已关闭等情况：直接标失败，不影响其他元素
		c.finish(e, Image{State: StateFailed, Err: err})
	}
}

// State 返回 URL 当前状态，未发起过加载视为 loading 之前的未知态
func (c *Cache) State(url string) State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if e, ok := c.entries[url]; ok {
		return e.result.State
	}
	return StateLoading
}

// Get 返回加载结果，第二个返回值表示加载是否已结束
func (c *Cache) Get(url string) (Image, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return Image{State: StateLoading}, false
	}
	return e.result, e.result.State != StateLoading
}

// Done 返回该 URL 加载结束的通知通道（未发起过则先发起）
func (c *Cache) Done(url string) <-chan struct{} {
	c.Ensure(url)
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.entries[url].done
}

func (c *Cache) load(url string, e *entry) {
	img, err := c.fetch(url)
	if err != nil {
		klog.V(6).Infof("图片加载失败将重试一次: %s, %v", url, err)
		img, err = c.fetch(url)
	}
	if err != nil {
		klog.V(6).Infof("图片加载失败: %s, %v", url, err)
		c.finish(e, Image{State: StateFailed, Err: err})
		return
	}
	c.finish(e, img)
}

func (c *Cache) fetch(url string) (Image, error) {
	resp, err := c.client.Get(url)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return Image{}, fmt.Errorf("decode: %w", err)
	}
	return Image{State: StateReady, Width: cfg.Width, Height: cfg.Height}, nil
}

func (c *Cache) finish(e *entry, result Image) {
	c.mutex.Lock()
	e.result = result
	c.mutex.Unlock()
	close(e.done)
}
