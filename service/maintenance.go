package service

import (
	"log"
	"time"

	"couplefin/models"
	"couplefin/repository"

	"gorm.io/gorm"
)

// ResetDueAllowances 把当天到期情侣的剩余额度恢复为每月额度，返回重置条数。
// 重复执行把剩余额度拉回每月额度，巡检应每天至多跑一次
func ResetDueAllowances(db *gorm.DB, now time.Time) (int, error) {
	repo := repository.NewCoupleRepository(db)
	couples, err := repo.ListDueForReset(now)
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range couples {
		couple := &couples[i]
		couple.ResetAllowances()
		if err := repo.Save(couple); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ExpireOverdueSubscriptions 把超过当前周期仍为 ACTIVE 的订阅置为 EXPIRED，
// 返回处理条数。幂等，任意频率重跑安全
func ExpireOverdueSubscriptions(db *gorm.DB, now time.Time) (int, error) {
	repo := repository.NewSubscriptionRepository(db)
	subs, err := repo.ListExpired(now)
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range subs {
		sub := &subs[i]
		sub.Status = models.SubscriptionStatusExpired
		if err := repo.Save(sub); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func runMaintenance(db *gorm.DB, now time.Time) {
	if n, err := ResetDueAllowances(db, now); err != nil {
		log.Printf("[错误] 额度重置巡检失败: %v", err)
	} else if n > 0 {
		log.Printf("已重置 %d 对情侣的自由支配额度", n)
	}

	if n, err := ExpireOverdueSubscriptions(db, now); err != nil {
		log.Printf("[错误] 订阅过期巡检失败: %v", err)
	} else if n > 0 {
		log.Printf("已过期 %d 条订阅", n)
	}
}

// StartMaintenance 启动后台巡检：启动时先跑一次，之后按 interval 周期执行
func StartMaintenance(db *gorm.DB, interval time.Duration) {
	go func() {
		runMaintenance(db, time.Now())
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for now := range ticker.C {
			runMaintenance(db, now)
		}
	}()
}
