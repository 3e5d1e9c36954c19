package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// 交易类型
const (
	TransactionTypeIncome  = "INCOME"
	TransactionTypeExpense = "EXPENSE"
)

// 交易组类型
const (
	// GroupKindRecurring 周期性交易（如房租）
	GroupKindRecurring = "RECURRING"
	// GroupKindInstallment 分期交易（固定期数）
	GroupKindInstallment = "INSTALLMENT"
)

// 批量编辑/删除的作用域
const (
	// ScopeThisOnly 仅当前这一笔
	ScopeThisOnly = "THIS_ONLY"
	// ScopeThisAndFuture 当前及未来各期（含周期模板）
	ScopeThisAndFuture = "THIS_AND_FUTURE"
	// ScopeAll 组内全部，包括已结清的历史各期
	ScopeAll = "ALL"
)

// UpdateScopes 所有合法的作用域
func UpdateScopes() []string {
	return []string{ScopeThisOnly, ScopeThisAndFuture, ScopeAll}
}

// IsValidUpdateScope 校验作用域取值
func IsValidUpdateScope(s string) bool {
	for _, v := range UpdateScopes() {
		if v == s {
			return true
		}
	}
	return false
}

// TransactionGroup 周期/分期交易组
type TransactionGroup struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CoupleID uint   `json:"couple_id" gorm:"index;not null"`
	Kind     string `json:"kind" gorm:"size:20;not null"`
	// 分期总期数；周期交易为 0
	TotalInstallments int            `json:"total_installments" gorm:"not null;default:0"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (TransactionGroup) TableName() string {
	return "transaction_groups"
}

// Transaction 交易记录模型
type Transaction struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	CoupleID    uint    `json:"couple_id" gorm:"index;not null"`
	AccountID   uint    `json:"account_id" gorm:"index;not null"`
	CategoryID  uint    `json:"category_id" gorm:"index;not null"`
	UserID      uint    `json:"user_id" gorm:"index;not null"` // 记账人
	Type        string  `json:"type" gorm:"size:10;not null"`
	Amount      Money   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description string  `json:"description" gorm:"size:255"`
	OccurredAt  time.Time `json:"occurred_at" gorm:"not null;index"`
	// 周期/分期交易的组归属；普通交易为 NULL
	GroupID       *uint          `json:"group_id" gorm:"index"`
	InstallmentNo int            `json:"installment_no" gorm:"not null;default:0"` // 组内序号，从 1 开始
	Settled       bool           `json:"settled" gorm:"not null;default:false"`    // 已结清（余额已入账）
	FreeSpending  bool           `json:"free_spending" gorm:"not null;default:false"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	Account       Account        `json:"-" gorm:"foreignKey:AccountID"`
	Category      Category       `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction 创建交易实体，校验类型与金额
func NewTransaction(coupleID, accountID, categoryID, userID uint, txType string, amount Money, description string, occurredAt time.Time) (*Transaction, error) {
	if txType != TransactionTypeIncome && txType != TransactionTypeExpense {
		return nil, fmt.Errorf("无效的交易类型: %s", txType)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("交易金额必须大于 0")
	}
	if len([]rune(description)) > 255 {
		return nil, fmt.Errorf("描述长度不能超过 255")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return &Transaction{
		CoupleID:    coupleID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		OccurredAt:  occurredAt,
	}, nil
}

// IsGrouped 是否属于周期/分期组
func (t *Transaction) IsGrouped() bool {
	return t.GroupID != nil
}
