package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// 分类默认值
const (
	DefaultCategoryIcon  = "Circle"
	DefaultCategoryColor = "#6b7280"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category 收支分类模型。Type 为 NULL 表示收入/支出通用
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CoupleID  uint           `json:"couple_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	Icon      string         `json:"icon" gorm:"size:50;not null;default:Circle"`
	Color     string         `json:"color" gorm:"size:10;not null;default:#6b7280"`
	Type      *string        `json:"type" gorm:"size:10"`
	IsDefault bool           `json:"is_default" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Couple    Couple         `json:"-" gorm:"foreignKey:CoupleID"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// NewCategory 创建分类实体，校验约束并填充默认值。
// catType 为 nil 表示通用分类
func NewCategory(coupleID uint, name, icon, color string, catType *string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 50 {
		return nil, fmt.Errorf("分类名称长度必须在 1-50 之间")
	}
	if icon == "" {
		icon = DefaultCategoryIcon
	}
	if color == "" {
		color = DefaultCategoryColor
	}
	if !hexColorPattern.MatchString(color) {
		return nil, fmt.Errorf("颜色必须为十六进制格式，如 #6b7280: %s", color)
	}
	if catType != nil {
		if *catType != TransactionTypeIncome && *catType != TransactionTypeExpense {
			return nil, fmt.Errorf("无效的分类类型: %s", *catType)
		}
	}
	return &Category{
		CoupleID: coupleID,
		Name:     name,
		Icon:     icon,
		Color:    color,
		Type:     catType,
	}, nil
}

// CanBeDeleted 默认分类不可删除
func (c *Category) CanBeDeleted() bool {
	return !c.IsDefault
}

// IsApplicableToTransactionType 分类是否适用于指定交易类型。
// Type 为 NULL 的分类对收入和支出都适用
func (c *Category) IsApplicableToTransactionType(txType string) bool {
	if c.Type == nil {
		return txType == TransactionTypeIncome || txType == TransactionTypeExpense
	}
	return *c.Type == txType
}

// DefaultCategorySeed 默认分类种子定义
type DefaultCategorySeed struct {
	Name  string
	Icon  string
	Color string
	Type  *string
}

// DefaultCategories 每个情侣创建时的默认分类集合
func DefaultCategories() []DefaultCategorySeed {
	income := TransactionTypeIncome
	expense := TransactionTypeExpense
	return []DefaultCategorySeed{
		{"餐饮", "Utensils", "#ef4444", &expense},
		{"交通", "Car", "#3b82f6", &expense},
		{"购物", "ShoppingBag", "#a855f7", &expense},
		{"娱乐", "Gamepad2", "#ec4899", &expense},
		{"住房", "Home", "#14b8a6", &expense},
		{"医疗", "HeartPulse", "#10b981", &expense},
		{"工资", "Banknote", "#10b981", &income},
		{"理财", "TrendingUp", "#f59e0b", &income},
		{"其他", DefaultCategoryIcon, DefaultCategoryColor, nil},
	}
}
