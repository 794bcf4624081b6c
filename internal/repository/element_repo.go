package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openinvite/backend/internal/model"
)

// elementRepository 实现
type elementRepository struct {
	db *gorm.DB
}

// NewElementRepository 创建 Repository 实例
func NewElementRepository(db *gorm.DB) ElementRepository {
	return &elementRepository{db: db}
}

// Get 按 ID 获取元素
func (r *elementRepository) Get(id string) (*model.TemplateElement, error) {
	var el model.TemplateElement
	result := r.db.First(&el, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &el, nil
}

// ListBySectionIDs 按区块 ID 集合取元素，供同步器分批调用
// 返回顺序按 z_index、seq 稳定排序，绘制平局由插入序号裁决
func (r *elementRepository) ListBySectionIDs(sectionIDs []string) ([]model.TemplateElement, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	var elements []model.TemplateElement
	result := r.db.Where("section_id IN ?", sectionIDs).
		Order("z_index ASC, seq ASC, id ASC").
		Find(&elements)
	return elements, result.Error
}

// Create 创建元素并分配区块内插入序号
func (r *elementRepository) Create(el *model.TemplateElement) error {
	if el.ID == "" {
		el.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if el.Seq == 0 {
			var max int64
			if err := tx.Model(&model.TemplateElement{}).
				Where("section_id = ?", el.SectionID).
				Select("COALESCE(MAX(seq), 0)").
				Scan(&max).Error; err != nil {
				return err
			}
			el.Seq = max + 1
		}
		return tx.Create(el).Error
	})
}

// Save 整行保存元素。会话内存模型是编辑期事实来源，
// 保存时写入全部映射列，未变更字段写回原值而非置空
func (r *elementRepository) Save(el *model.TemplateElement) error {
	return r.db.Save(el).Error
}

// Delete 删除元素
func (r *elementRepository) Delete(id string) error {
	return r.db.Delete(&model.TemplateElement{}, "id = ?", id).Error
}
