package repository

import (
	"time"

	"couplefin/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CoupleRepository 情侣（租户本体）数据访问。
// 情侣实体以自身 ID 为租户边界，FindByID 即租户校验
type CoupleRepository struct {
	db *gorm.DB
}

// NewCoupleRepository 创建情侣仓库
func NewCoupleRepository(db *gorm.DB) *CoupleRepository {
	return &CoupleRepository{db: db}
}

// Create 创建情侣
func (r *CoupleRepository) Create(couple *models.Couple) error {
	return r.db.Create(couple).Error
}

// FindByID 按ID查找
func (r *CoupleRepository) FindByID(id uint) (*models.Couple, error) {
	var couple models.Couple
	if err := r.db.First(&couple, id).Error; err != nil {
		return nil, translateNotFound(err, "情侣")
	}
	return &couple, nil
}

// FindByIDForUpdate 按ID查找并加行锁（额度扣减等读改写场景用）
func (r *CoupleRepository) FindByIDForUpdate(id uint) (*models.Couple, error) {
	var couple models.Couple
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&couple, id).Error; err != nil {
		return nil, translateNotFound(err, "情侣")
	}
	return &couple, nil
}

// Save 保存情侣
func (r *CoupleRepository) Save(couple *models.Couple) error {
	return r.db.Save(couple).Error
}

// CreateInvite 创建配对邀请
func (r *CoupleRepository) CreateInvite(invite *models.CoupleInvite) error {
	return r.db.Create(invite).Error
}

// FindInviteByToken 按令牌查找邀请
func (r *CoupleRepository) FindInviteByToken(token string) (*models.CoupleInvite, error) {
	var invite models.CoupleInvite
	if err := r.db.Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, translateNotFound(err, "邀请")
	}
	return &invite, nil
}

// SaveInvite 保存邀请
func (r *CoupleRepository) SaveInvite(invite *models.CoupleInvite) error {
	return r.db.Save(invite).Error
}

// ListDueForReset 列出在指定日期应重置额度的情侣（巡检任务用，跨租户）。
// 重置日大于当月天数的情侣在当月最后一天到期
func (r *CoupleRepository) ListDueForReset(t time.Time) ([]models.Couple, error) {
	day := t.Day()
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()

	q := r.db.Where("allowance_reset_day = ?", day)
	if day == lastDay {
		q = r.db.Where("allowance_reset_day >= ?", day)
	}

	var couples []models.Couple
	if err := q.Find(&couples).Error; err != nil {
		return nil, err
	}
	return couples, nil
}
