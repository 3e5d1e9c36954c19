package models

import (
	"time"

	"gorm.io/gorm"
)

// 套餐代码
const (
	PlanCodeFree    = "FREE"
	PlanCodePremium = "PREMIUM"
)

// Plan 套餐模型。限额为 0 表示不限
type Plan struct {
	ID                      uint           `json:"id" gorm:"primaryKey"`
	Code                    string         `json:"code" gorm:"uniqueIndex;size:20;not null"`
	Name                    string         `json:"name" gorm:"size:50;not null"`
	MonthlyPrice            Money          `json:"monthly_price" gorm:"type:decimal(12,2);not null;default:0"`
	MaxAccounts             int            `json:"max_accounts" gorm:"not null;default:0"`
	MaxCategories           int            `json:"max_categories" gorm:"not null;default:0"`
	MaxTransactionsPerMonth int            `json:"max_transactions_per_month" gorm:"not null;default:0"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	DeletedAt               gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Plan) TableName() string {
	return "plans"
}

// AllowsAccounts 当前账户数量之下是否还允许新建
func (p *Plan) AllowsAccounts(current int64) bool {
	return p.MaxAccounts == 0 || current < int64(p.MaxAccounts)
}

// AllowsCategories 当前分类数量之下是否还允许新建
func (p *Plan) AllowsCategories(current int64) bool {
	return p.MaxCategories == 0 || current < int64(p.MaxCategories)
}

// AllowsTransactions 当月交易数量之下是否还允许新建
func (p *Plan) AllowsTransactions(currentMonth int64) bool {
	return p.MaxTransactionsPerMonth == 0 || currentMonth < int64(p.MaxTransactionsPerMonth)
}

// DefaultPlans 种子套餐
func DefaultPlans() []Plan {
	return []Plan{
		{Code: PlanCodeFree, Name: "免费版", MonthlyPrice: 0, MaxAccounts: 3, MaxCategories: 15, MaxTransactionsPerMonth: 200},
		{Code: PlanCodePremium, Name: "高级版", MonthlyPrice: 1900, MaxAccounts: 0, MaxCategories: 0, MaxTransactionsPerMonth: 0},
	}
}
