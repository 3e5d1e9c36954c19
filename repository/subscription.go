package repository

import (
	"time"

	"couplefin/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository 订阅数据访问
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository 创建订阅仓库
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert 写入订阅。couple_id 唯一索引 + ON DUPLICATE KEY 保证
// 并发首次订阅不会产生两行（每个情侣至多一条订阅）
func (r *SubscriptionRepository) Upsert(sub *models.Subscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "couple_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "status", "external_customer_id", "external_subscription_id", "current_period_end", "updated_at",
		}),
	}).Create(sub).Error
}

// FindByCouple 查找情侣的订阅
func (r *SubscriptionRepository) FindByCouple(coupleID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").Where("couple_id = ?", coupleID).First(&sub).Error
	if err != nil {
		return nil, translateNotFound(err, "订阅")
	}
	return &sub, nil
}

// Save 保存订阅（须先通过 FindByCouple 取到）。
// 预加载的套餐只读，不随订阅写回
func (r *SubscriptionRepository) Save(sub *models.Subscription) error {
	return r.db.Omit(clause.Associations).Save(sub).Error
}

// ListExpired 列出已过期但状态仍为 ACTIVE 的订阅（巡检任务用，跨租户）
func (r *SubscriptionRepository) ListExpired(now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.
		Where("status = ? AND current_period_end IS NOT NULL AND current_period_end < ?",
			models.SubscriptionStatusActive, now).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// PlanRepository 套餐数据访问（套餐为全局数据，不做租户过滤）
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository 创建套餐仓库
func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// List 列出全部套餐
func (r *PlanRepository) List() ([]models.Plan, error) {
	var plans []models.Plan
	if err := r.db.Order("monthly_price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindByCode 按代码查找套餐
func (r *PlanRepository) FindByCode(code string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.Where("code = ?", code).First(&plan).Error; err != nil {
		return nil, translateNotFound(err, "套餐")
	}
	return &plan, nil
}

// FindByID 按ID查找套餐
func (r *PlanRepository) FindByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, translateNotFound(err, "套餐")
	}
	return &plan, nil
}
