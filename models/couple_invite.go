package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// CoupleInvite 配对邀请令牌模型
type CoupleInvite struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CoupleID  uint           `json:"couple_id" gorm:"index;not null"`
	InviterID uint           `json:"inviter_id" gorm:"index;not null"`
	Email     string         `json:"email" gorm:"size:100;not null"`
	Token     string         `json:"token" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"not null"`
	Used      bool           `json:"used" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Couple    Couple         `json:"-" gorm:"foreignKey:CoupleID"`
}

// TableName 设置表名
func (CoupleInvite) TableName() string {
	return "couple_invites"
}

// GenerateInviteToken 生成随机邀请令牌
func GenerateInviteToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// IsExpired 检查邀请是否过期
func (i *CoupleInvite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsValid 检查邀请是否有效
func (i *CoupleInvite) IsValid() bool {
	return !i.Used && !i.IsExpired()
}
