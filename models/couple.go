package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// 财务模式：情侣层面的财务可见性策略
const (
	// FinancialModelTransparent 完全透明：双方可见所有账目
	FinancialModelTransparent = "TRANSPARENT"
	// FinancialModelAutonomous 各自自治：仅共享账户可见
	FinancialModelAutonomous = "AUTONOMOUS"
	// FinancialModelCustom 自定义
	FinancialModelCustom = "CUSTOM"
)

// FinancialModels 所有合法的财务模式
func FinancialModels() []string {
	return []string{
		FinancialModelTransparent,
		FinancialModelAutonomous,
		FinancialModelCustom,
	}
}

// Couple 情侣（租户）模型。所有业务数据都以 couple_id 隔离
type Couple struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	FinancialModel string `json:"financial_model" gorm:"size:20;not null;default:TRANSPARENT"`
	PartnerOneID uint  `json:"partner_one_id" gorm:"index;not null"`
	PartnerTwoID *uint `json:"partner_two_id" gorm:"index"` // 受邀方接受邀请前为 NULL
	// 每月自由支配额度（零花钱），按成员分开记
	PartnerOneMonthly   Money `json:"partner_one_monthly" gorm:"type:decimal(12,2);not null;default:0"`
	PartnerOneRemaining Money `json:"partner_one_remaining" gorm:"type:decimal(12,2);not null;default:0"`
	PartnerTwoMonthly   Money `json:"partner_two_monthly" gorm:"type:decimal(12,2);not null;default:0"`
	PartnerTwoRemaining Money `json:"partner_two_remaining" gorm:"type:decimal(12,2);not null;default:0"`
	AllowanceResetDay   int   `json:"allowance_reset_day" gorm:"not null;default:1"` // 1-31
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Couple) TableName() string {
	return "couples"
}

// NewCouple 创建情侣实体，校验不变量并填充默认值
func NewCouple(partnerOneID uint, financialModel string, resetDay int) (*Couple, error) {
	if financialModel == "" {
		financialModel = FinancialModelTransparent
	}
	if !isValidFinancialModel(financialModel) {
		return nil, fmt.Errorf("无效的财务模式: %s", financialModel)
	}
	if resetDay == 0 {
		resetDay = 1
	}
	if resetDay < 1 || resetDay > 31 {
		return nil, fmt.Errorf("额度重置日必须在 1-31 之间: %d", resetDay)
	}
	return &Couple{
		PartnerOneID:      partnerOneID,
		FinancialModel:    financialModel,
		AllowanceResetDay: resetDay,
	}, nil
}

func isValidFinancialModel(m string) bool {
	for _, v := range FinancialModels() {
		if v == m {
			return true
		}
	}
	return false
}

// IsComplete 双方都已加入
func (c *Couple) IsComplete() bool {
	return c.PartnerTwoID != nil
}

// IsMember 判断用户是否属于该情侣
func (c *Couple) IsMember(userID uint) bool {
	if c.PartnerOneID == userID {
		return true
	}
	return c.PartnerTwoID != nil && *c.PartnerTwoID == userID
}

// AllowanceFor 返回成员的（每月额度, 剩余额度）
func (c *Couple) AllowanceFor(userID uint) (Money, Money, error) {
	switch {
	case c.PartnerOneID == userID:
		return c.PartnerOneMonthly, c.PartnerOneRemaining, nil
	case c.PartnerTwoID != nil && *c.PartnerTwoID == userID:
		return c.PartnerTwoMonthly, c.PartnerTwoRemaining, nil
	default:
		return 0, 0, fmt.Errorf("用户 %d 不属于该情侣", userID)
	}
}

// SetAllowance 设置成员的每月额度，剩余额度不超过每月额度
func (c *Couple) SetAllowance(userID uint, monthly Money) error {
	if monthly < 0 {
		return fmt.Errorf("每月额度不能为负数")
	}
	switch {
	case c.PartnerOneID == userID:
		c.PartnerOneMonthly = monthly
		if c.PartnerOneRemaining > monthly {
			c.PartnerOneRemaining = monthly
		}
	case c.PartnerTwoID != nil && *c.PartnerTwoID == userID:
		c.PartnerTwoMonthly = monthly
		if c.PartnerTwoRemaining > monthly {
			c.PartnerTwoRemaining = monthly
		}
	default:
		return fmt.Errorf("用户 %d 不属于该情侣", userID)
	}
	return nil
}

// SpendFree 从成员的自由支配额度中扣减
func (c *Couple) SpendFree(userID uint, amount Money) error {
	if amount <= 0 {
		return fmt.Errorf("扣减金额必须大于 0")
	}
	switch {
	case c.PartnerOneID == userID:
		if c.PartnerOneRemaining < amount {
			return fmt.Errorf("自由支配额度不足")
		}
		c.PartnerOneRemaining -= amount
	case c.PartnerTwoID != nil && *c.PartnerTwoID == userID:
		if c.PartnerTwoRemaining < amount {
			return fmt.Errorf("自由支配额度不足")
		}
		c.PartnerTwoRemaining -= amount
	default:
		return fmt.Errorf("用户 %d 不属于该情侣", userID)
	}
	return nil
}

// RestoreFree 回补成员的自由支配额度（删除/修改已记账的自由支出时用），
// 不超过每月额度上限
func (c *Couple) RestoreFree(userID uint, amount Money) {
	switch {
	case c.PartnerOneID == userID:
		c.PartnerOneRemaining += amount
		if c.PartnerOneRemaining > c.PartnerOneMonthly {
			c.PartnerOneRemaining = c.PartnerOneMonthly
		}
	case c.PartnerTwoID != nil && *c.PartnerTwoID == userID:
		c.PartnerTwoRemaining += amount
		if c.PartnerTwoRemaining > c.PartnerTwoMonthly {
			c.PartnerTwoRemaining = c.PartnerTwoMonthly
		}
	}
}

// ResetAllowances 月度重置：剩余额度恢复为每月额度
func (c *Couple) ResetAllowances() {
	c.PartnerOneRemaining = c.PartnerOneMonthly
	c.PartnerTwoRemaining = c.PartnerTwoMonthly
}

// ShouldResetOn 指定日期是否为该情侣的额度重置日。
// 重置日大于当月天数时，取当月最后一天
func (c *Couple) ShouldResetOn(t time.Time) bool {
	day := c.AllowanceResetDay
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return t.Day() == day
}
