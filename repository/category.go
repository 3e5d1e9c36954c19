package repository

import (
	"couplefin/models"

	"gorm.io/gorm"
)

// CategoryRepository 分类数据访问
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) scoped(coupleID uint) *gorm.DB {
	return r.db.Model(&models.Category{}).Where("couple_id = ?", coupleID)
}

// Create 创建分类
func (r *CategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// CreateBatch 批量创建（配对时播种默认分类）
func (r *CategoryRepository) CreateBatch(categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.Create(&categories).Error
}

// FindByID 按ID查找，跨租户访问返回 NOT_FOUND
func (r *CategoryRepository) FindByID(coupleID, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("couple_id = ? AND id = ?", coupleID, id).First(&category).Error; err != nil {
		return nil, translateNotFound(err, "分类")
	}
	return &category, nil
}

// FindByName 按名称查找（唯一性校验用）
func (r *CategoryRepository) FindByName(coupleID uint, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("couple_id = ? AND name = ?", coupleID, name).First(&category).Error; err != nil {
		return nil, translateNotFound(err, "分类")
	}
	return &category, nil
}

// List 列出情侣的分类，txType 非空时仅返回适用该交易类型的分类
func (r *CategoryRepository) List(coupleID uint, txType string) ([]models.Category, error) {
	q := r.db.Where("couple_id = ?", coupleID)
	if txType != "" {
		q = q.Where("type = ? OR type IS NULL", txType)
	}
	var categories []models.Category
	if err := q.Order("is_default DESC, id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Save 保存分类（须先通过 FindByID 取到）
func (r *CategoryRepository) Save(category *models.Category) error {
	return r.db.Save(category).Error
}

// Delete 按ID软删除
func (r *CategoryRepository) Delete(coupleID, id uint) error {
	res := r.scoped(coupleID).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translateNotFound(gorm.ErrRecordNotFound, "分类")
	}
	return nil
}

// Count 情侣名下分类数量（套餐限额用）
func (r *CategoryRepository) Count(coupleID uint) (int64, error) {
	var n int64
	if err := r.scoped(coupleID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
