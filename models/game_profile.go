package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// UserGameProfile 用户游戏化档案。user_id 唯一索引保证每个用户一条，
// 首次并发加经验依赖该约束 + upsert 去重
type UserGameProfile struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	CurrentXP int64          `json:"current_xp" gorm:"not null;default:0"`
	TotalXP   int64          `json:"total_xp" gorm:"not null;default:0"`
	Level     int            `json:"level" gorm:"not null;default:1"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (UserGameProfile) TableName() string {
	return "user_game_profiles"
}

// XPEvent 经验值流水，amount + reason 便于审计
type XPEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Amount    int64     `json:"amount" gorm:"not null"`
	Reason    string    `json:"reason" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (XPEvent) TableName() string {
	return "xp_events"
}

// XPForLevel 从 level 升到 level+1 所需经验，随等级单调递增
func XPForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(level) * 100
}

// XPResult 一次加经验的结果。XPForNextLevel 与 Progress
// 由当前等级和当前经验推导，从不落库
type XPResult struct {
	LeveledUp      bool    `json:"leveled_up"`
	Level          int     `json:"level"`
	CurrentXP      int64   `json:"current_xp"`
	TotalXP        int64   `json:"total_xp"`
	XPForNextLevel int64   `json:"xp_for_next_level"`
	Progress       float64 `json:"progress"` // 0-100
}

// AddXp 增加经验值。current 与 total 同步累加；
// 跨过升级阈值时结转溢出经验（非清零），单次大额奖励可连升多级
func (p *UserGameProfile) AddXp(amount int64) (*XPResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("经验值增量不能为负数: %d", amount)
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.CurrentXP += amount
	p.TotalXP += amount

	leveledUp := false
	for p.CurrentXP >= XPForLevel(p.Level) {
		p.CurrentXP -= XPForLevel(p.Level)
		p.Level++
		leveledUp = true
	}
	return p.snapshot(leveledUp), nil
}

// Snapshot 当前档案的派生视图（不加经验）
func (p *UserGameProfile) Snapshot() *XPResult {
	return p.snapshot(false)
}

func (p *UserGameProfile) snapshot(leveledUp bool) *XPResult {
	need := XPForLevel(p.Level)
	progress := 0.0
	if need > 0 {
		progress = float64(p.CurrentXP) / float64(need) * 100
	}
	return &XPResult{
		LeveledUp:      leveledUp,
		Level:          p.Level,
		CurrentXP:      p.CurrentXP,
		TotalXP:        p.TotalXP,
		XPForNextLevel: need,
		Progress:       progress,
	}
}
