package service

import (
	"log"

	"couplefin/models"
	"couplefin/repository"

	"gorm.io/gorm"
)

// AwardXP 给用户加经验：找到或创建档案、累加、落库并记录流水。
// 在调用方的事务里执行时与触发写操作一起提交。
// 同额重复奖励会重复累加，去重由调用方负责
func AwardXP(db *gorm.DB, userID uint, amount int64, reason string) (*models.XPResult, error) {
	repo := repository.NewGameRepository(db)

	profile, err := repo.FindOrCreateProfile(userID)
	if err != nil {
		return nil, err
	}

	result, err := profile.AddXp(amount)
	if err != nil {
		return nil, err
	}

	if err := repo.SaveProfile(profile); err != nil {
		return nil, err
	}
	if err := repo.CreateEvent(&models.XPEvent{UserID: userID, Amount: amount, Reason: reason}); err != nil {
		return nil, err
	}

	if result.LeveledUp {
		log.Printf("用户 %d 升级到 %d 级 (原因: %s)", userID, result.Level, reason)
	}
	return result, nil
}
