package models

import (
	"time"

	"gorm.io/gorm"
)

// 订阅状态
const (
	SubscriptionStatusActive   = "ACTIVE"
	SubscriptionStatusCanceled = "CANCELED"
	SubscriptionStatusExpired  = "EXPIRED"
)

// Subscription 订阅模型。couple_id 唯一索引保证每个情侣至多一条订阅，
// 首次并发创建依赖该约束 + upsert 去重
type Subscription struct {
	ID                     uint           `json:"id" gorm:"primaryKey"`
	CoupleID               uint           `json:"couple_id" gorm:"uniqueIndex;not null"`
	PlanID                 uint           `json:"plan_id" gorm:"index;not null"`
	Status                 string         `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	ExternalCustomerID     string         `json:"-" gorm:"size:100;index;default:''"`
	ExternalSubscriptionID string         `json:"-" gorm:"size:100;default:''"`
	CurrentPeriodEnd       *time.Time     `json:"current_period_end"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `json:"-" gorm:"index"`
	Plan                   Plan           `json:"plan" gorm:"foreignKey:PlanID"`
}

// TableName 设置表名
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive 订阅是否有效
func (s *Subscription) IsActive() bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	return s.CurrentPeriodEnd == nil || time.Now().Before(*s.CurrentPeriodEnd)
}
