package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// 账户类型
const (
	AccountTypeChecking   = "CHECKING"
	AccountTypeSavings    = "SAVINGS"
	AccountTypeCash       = "CASH"
	AccountTypeCreditCard = "CREDIT_CARD"
	AccountTypeInvestment = "INVESTMENT"
)

// AccountTypes 所有合法的账户类型
func AccountTypes() []string {
	return []string{
		AccountTypeChecking,
		AccountTypeSavings,
		AccountTypeCash,
		AccountTypeCreditCard,
		AccountTypeInvestment,
	}
}

// Account 账户模型。OwnerID 为 NULL 表示共同账户
type Account struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CoupleID  uint           `json:"couple_id" gorm:"index;not null"`
	OwnerID   *uint          `json:"owner_id" gorm:"index"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	Type      string         `json:"type" gorm:"size:20;not null"`
	Balance   Money          `json:"balance" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Couple    Couple         `json:"-" gorm:"foreignKey:CoupleID"`
}

// TableName 设置表名
func (Account) TableName() string {
	return "accounts"
}

// NewAccount 创建账户实体，校验名称与类型。
// ownerID 为 nil 时为共同账户
func NewAccount(coupleID uint, ownerID *uint, name, accountType string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 50 {
		return nil, fmt.Errorf("账户名称长度必须在 1-50 之间")
	}
	if !isValidAccountType(accountType) {
		return nil, fmt.Errorf("无效的账户类型: %s", accountType)
	}
	return &Account{
		CoupleID: coupleID,
		OwnerID:  ownerID,
		Name:     name,
		Type:     accountType,
	}, nil
}

func isValidAccountType(t string) bool {
	for _, v := range AccountTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// IsJoint 是否为共同账户
func (a *Account) IsJoint() bool {
	return a.OwnerID == nil
}

// CanBeDeleted 仅余额为零的账户可删除
func (a *Account) CanBeDeleted() bool {
	return a.Balance == 0
}

// Post 记账对余额的影响：收入增加余额，支出减少余额
func (a *Account) Post(txType string, amount Money) {
	if txType == TransactionTypeIncome {
		a.Balance += amount
	} else {
		a.Balance -= amount
	}
}

// Unpost 撤销记账对余额的影响
func (a *Account) Unpost(txType string, amount Money) {
	if txType == TransactionTypeIncome {
		a.Balance -= amount
	} else {
		a.Balance += amount
	}
}
