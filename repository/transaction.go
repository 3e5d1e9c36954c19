package repository

import (
	"time"

	"couplefin/models"

	"gorm.io/gorm"
)

// TransactionRepository 交易数据访问
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易仓库
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) scoped(coupleID uint) *gorm.DB {
	return r.db.Model(&models.Transaction{}).Where("couple_id = ?", coupleID)
}

// Create 创建交易
func (r *TransactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

// CreateGroup 创建交易组
func (r *TransactionRepository) CreateGroup(group *models.TransactionGroup) error {
	return r.db.Create(group).Error
}

// CreateBatch 批量创建（分期/周期展开用）
func (r *TransactionRepository) CreateBatch(txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.Create(&txs).Error
}

// FindByID 按ID查找，跨租户访问返回 NOT_FOUND
func (r *TransactionRepository) FindByID(coupleID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.Where("couple_id = ? AND id = ?", coupleID, id).First(&tx).Error; err != nil {
		return nil, translateNotFound(err, "交易")
	}
	return &tx, nil
}

// FindGroup 按ID查找交易组
func (r *TransactionRepository) FindGroup(coupleID, groupID uint) (*models.TransactionGroup, error) {
	var group models.TransactionGroup
	if err := r.db.Where("couple_id = ? AND id = ?", coupleID, groupID).First(&group).Error; err != nil {
		return nil, translateNotFound(err, "交易组")
	}
	return &group, nil
}

// ListFilter 列表过滤条件
type ListFilter struct {
	Type       string
	CategoryID uint
	AccountID  uint
	StartTime  time.Time
	EndTime    time.Time
	Page       int
	PageSize   int
}

// List 分页列出交易
func (r *TransactionRepository) List(coupleID uint, f ListFilter) ([]models.Transaction, int64, error) {
	q := r.scoped(coupleID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.AccountID != 0 {
		q = q.Where("account_id = ?", f.AccountID)
	}
	if !f.StartTime.IsZero() {
		q = q.Where("occurred_at >= ?", f.StartTime)
	}
	if !f.EndTime.IsZero() {
		q = q.Where("occurred_at <= ?", f.EndTime)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	offset := (f.Page - 1) * f.PageSize
	if err := q.Order("occurred_at DESC, id DESC").Offset(offset).Limit(f.PageSize).Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// ListByRange 列出时间范围内的交易（导出用）
func (r *TransactionRepository) ListByRange(coupleID uint, start, end time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.scoped(coupleID).
		Where("occurred_at >= ? AND occurred_at <= ?", start, end).
		Order("occurred_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// ListGroupMembers 按作用域列出组内受影响的交易。
// pivot 为本次操作选中的那一笔：
//   - THIS_ONLY: 仅 pivot
//   - THIS_AND_FUTURE: pivot 及 occurred_at 晚于它的各期
//   - ALL: 组内全部，包括已结清的历史各期
func (r *TransactionRepository) ListGroupMembers(coupleID uint, pivot *models.Transaction, scope string) ([]models.Transaction, error) {
	if scope == models.ScopeThisOnly || pivot.GroupID == nil {
		return []models.Transaction{*pivot}, nil
	}
	q := r.scoped(coupleID).Where("group_id = ?", *pivot.GroupID)
	if scope == models.ScopeThisAndFuture {
		q = q.Where("occurred_at >= ? OR installment_no >= ?", pivot.OccurredAt, pivot.InstallmentNo)
	}
	var txs []models.Transaction
	if err := q.Order("installment_no ASC, occurred_at ASC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// DeleteGroup 软删除交易组（组内成员全部删除后调用）
func (r *TransactionRepository) DeleteGroup(coupleID, groupID uint) error {
	return r.db.Where("couple_id = ?", coupleID).Delete(&models.TransactionGroup{}, groupID).Error
}

// Save 保存交易（须先通过 FindByID 取到）
func (r *TransactionRepository) Save(tx *models.Transaction) error {
	return r.db.Save(tx).Error
}

// Delete 软删除单笔交易
func (r *TransactionRepository) Delete(coupleID, id uint) error {
	res := r.scoped(coupleID).Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translateNotFound(gorm.ErrRecordNotFound, "交易")
	}
	return nil
}

// CountInMonth 当月交易数量（套餐限额用）
func (r *TransactionRepository) CountInMonth(coupleID uint, at time.Time) (int64, error) {
	start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	end := start.AddDate(0, 1, 0)
	var n int64
	err := r.scoped(coupleID).
		Where("occurred_at >= ? AND occurred_at < ?", start, end).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

// SumByType 按交易类型汇总金额
func (r *TransactionRepository) SumByType(coupleID uint, txType string, start, end time.Time) (models.Money, error) {
	q := r.scoped(coupleID).Where("type = ?", txType)
	if !start.IsZero() {
		q = q.Where("occurred_at >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("occurred_at <= ?", end)
	}
	var total models.Money
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
