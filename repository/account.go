package repository

import (
	"couplefin/models"

	"gorm.io/gorm"
)

// AccountRepository 账户数据访问
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账户仓库
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) scoped(coupleID uint) *gorm.DB {
	return r.db.Model(&models.Account{}).Where("couple_id = ?", coupleID)
}

// Create 创建账户
func (r *AccountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// FindByID 按ID查找，跨租户访问返回 NOT_FOUND
func (r *AccountRepository) FindByID(coupleID, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("couple_id = ? AND id = ?", coupleID, id).First(&account).Error; err != nil {
		return nil, translateNotFound(err, "账户")
	}
	return &account, nil
}

// List 列出情侣的全部账户
func (r *AccountRepository) List(coupleID uint) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.Where("couple_id = ?", coupleID).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save 保存账户（须先通过 FindByID 取到，保证租户归属）
func (r *AccountRepository) Save(account *models.Account) error {
	return r.db.Save(account).Error
}

// Delete 按ID软删除
func (r *AccountRepository) Delete(coupleID, id uint) error {
	res := r.scoped(coupleID).Where("id = ?", id).Delete(&models.Account{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translateNotFound(gorm.ErrRecordNotFound, "账户")
	}
	return nil
}

// Count 情侣名下账户数量（套餐限额用）
func (r *AccountRepository) Count(coupleID uint) (int64, error) {
	var n int64
	if err := r.scoped(coupleID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// TotalBalance 情侣名下全部账户余额合计
func (r *AccountRepository) TotalBalance(coupleID uint) (models.Money, error) {
	var total models.Money
	err := r.scoped(coupleID).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
