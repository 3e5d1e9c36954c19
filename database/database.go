package database

import (
	"fmt"
	"log"

	"couplefin/config"
	"couplefin/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// 构建 MySQL DSN 连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Couple{},
		&models.CoupleInvite{},
		&models.Account{},
		&models.Category{},
		&models.TransactionGroup{},
		&models.Transaction{},
		&models.Plan{},
		&models.Subscription{},
		&models.UserGameProfile{},
		&models.XPEvent{},
	); err != nil {
		return err
	}

	// 初始化套餐（仅当表为空时）
	var planCount int64
	DB.Model(&models.Plan{}).Count(&planCount)
	if planCount == 0 {
		plans := models.DefaultPlans()
		if err := DB.Create(&plans).Error; err != nil {
			return fmt.Errorf("初始化套餐失败: %w", err)
		}
		log.Printf("已初始化 %d 个默认套餐", len(plans))
	}

	log.Println("数据库初始化成功")
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
