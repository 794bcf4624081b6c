// Package syncer 是持久化同步器：在嵌套文档模型与扁平关系存储之间做
// 双向映射。读路径分批有界拉取并带退避重试，写路径消费会话的合并后脏状态。
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"k8s.io/klog/v2"

	"github.com/openinvite/backend/internal/model"
	"github.com/openinvite/backend/internal/repository"
)

// Options 同步策略参数。批大小与重试常量是针对具体后端的经验值，
// 部署到不同延迟特性的后端时应通过配置调整
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	BatchSize   int
	MaxWorkers  int
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 100 * time.Millisecond
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = 4
	}
	return o
}

// Syncer 持久化同步器
type Syncer struct {
	templates repository.TemplateRepository
	sections  repository.SectionRepository
	elements  repository.ElementRepository
	opts      Options
	pool      *ants.Pool
}

// New 创建同步器，元素批次拉取运行在容量受限的协程池上
func New(templates repository.TemplateRepository, sections repository.SectionRepository,
	elements repository.ElementRepository, opts Options) (*Syncer, error) {
	opts = opts.withDefaults()
	pool, err := ants.NewPool(opts.MaxWorkers)
	if err != nil {
		return nil, err
	}
	return &Syncer{
		templates: templates,
		sections:  sections,
		elements:  elements,
		opts:      opts,
		pool:      pool,
	}, nil
}

// Close 释放协程池
func (s *Syncer) Close() {
	s.pool.Release()
}

// Hydrate 按模板 ID 装配完整嵌套模型
func (s *Syncer) Hydrate(ctx context.Context, templateID string) (*model.Template, error) {
	var tpl *model.Template
	err := s.withRetry(ctx, "读取模板", func() error {
		var e error
		tpl, e = s.templates.Get(templateID)
		return e
	})
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, tpl)
}

// HydrateBySlug 按 slug 装配完整嵌套模型（公开读取路径）
func (s *Syncer) HydrateBySlug(ctx context.Context, slug string) (*model.Template, error) {
	var tpl *model.Template
	err := s.withRetry(ctx, "读取模板", func() error {
		var e error
		tpl, e = s.templates.GetBySlug(slug)
		return e
	})
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, tpl)
}

// assemble 读取区块与元素并装配
// 顺序保证：区块行全部取回之后才发出元素批次；各批次之间并发
func (s *Syncer) assemble(ctx context.Context, tpl *model.Template) (*model.Template, error) {
	var sections []model.SectionDesign
	err := s.withRetry(ctx, "读取区块", func() error {
		var e error
		sections, e = s.sections.GetByTemplate(tpl.ID)
		return e
	})
	if err != nil {
		return nil, err
	}

	sectionIDs := make([]string, 0, len(sections))
	for i := range sections {
		sectionIDs = append(sectionIDs, sections[i].ID)
	}

	elements, err := s.fetchElements(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}
	// 文档被关闭/导航离开时丢弃结果，不污染已失效的内存模型
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bySection := make(map[string][]model.TemplateElement, len(sections))
	for _, el := range elements {
		bySection[el.SectionID] = append(bySection[el.SectionID], el)
	}
	for i := range sections {
		sections[i].Elements = bySection[sections[i].ID]
	}
	tpl.Sections = sections
	klog.V(6).Infof("模板 %s 装配完成: 区块 %d, 元素 %d", tpl.ID, len(sections), len(elements))
	return tpl, nil
}

// fetchElements 把区块 ID 切成有界批次并发拉取
// 每批重试独立；任一批次最终失败则整体失败
func (s *Syncer) fetchElements(ctx context.Context, sectionIDs []string) ([]model.TemplateElement, error) {
	batches := chunkIDs(sectionIDs, s.opts.BatchSize)
	if len(batches) == 0 {
		return nil, nil
	}

	results := make([][]model.TemplateElement, len(batches))
	errs := make([]error, len(batches))
	var wg sync.WaitGroup

	for i, batch := range batches {
		i, batch := i, batch
		wg.Add(1)
		submit := func() {
			defer wg.Done()
			errs[i] = s.withRetry(ctx, "读取元素批次", func() error {
				var e error
				results[i], e = s.elements.ListBySectionIDs(batch)
				return e
			})
		}
		if err := s.pool.Submit(submit); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	var all []model.TemplateElement
	for _, part := range results {
		all = append(all, part...)
	}
	return all, nil
}

// SaveSection 区块 upsert：以 (template_id, type) 为键
func (s *Syncer) SaveSection(ctx context.Context, section *model.SectionDesign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.sections.Upsert(section)
}

// SaveElement 保存元素；新元素先按需落其所属区块行
func (s *Syncer) SaveElement(ctx context.Context, element *model.TemplateElement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.elements.Get(element.ID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return s.elements.Create(element)
	}
	return s.elements.Save(element)
}

// EnsureSection 元素落库前确保所属区块行存在（懒创建）
func (s *Syncer) EnsureSection(ctx context.Context, templateID, sectionType string) (*model.SectionDesign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	existing, err := s.sections.GetByTemplateAndType(templateID, sectionType)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	created := model.EmptySection(templateID, sectionType)
	if err := s.sections.Upsert(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// TemplateIDForElement 反查元素所属模板，供无会话上下文的元素路由定位文档
func (s *Syncer) TemplateIDForElement(ctx context.Context, elementID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	el, err := s.elements.Get(elementID)
	if err != nil {
		return "", err
	}
	sec, err := s.sections.Get(el.SectionID)
	if err != nil {
		return "", err
	}
	return sec.TemplateID, nil
}

// DeleteElement 删除元素
func (s *Syncer) DeleteElement(ctx context.Context, elementID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.elements.Delete(elementID)
}
