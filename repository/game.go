package repository

import (
	"couplefin/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameRepository 游戏化档案数据访问
type GameRepository struct {
	db *gorm.DB
}

// NewGameRepository 创建游戏化仓库
func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// FindOrCreateProfile 查找档案，不存在则创建零值档案。
// user_id 唯一索引 + INSERT IGNORE 语义保证并发首次加经验只会产生一行
func (r *GameRepository) FindOrCreateProfile(userID uint) (*models.UserGameProfile, error) {
	fresh := models.UserGameProfile{UserID: userID, Level: 1}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	var profile models.UserGameProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translateNotFound(err, "游戏档案")
	}
	return &profile, nil
}

// SaveProfile 保存档案
func (r *GameRepository) SaveProfile(profile *models.UserGameProfile) error {
	return r.db.Save(profile).Error
}

// CreateEvent 记录经验值流水
func (r *GameRepository) CreateEvent(event *models.XPEvent) error {
	return r.db.Create(event).Error
}

// ListEvents 列出用户的经验值流水（新到旧）
func (r *GameRepository) ListEvents(userID uint, limit int) ([]models.XPEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var events []models.XPEvent
	err := r.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
