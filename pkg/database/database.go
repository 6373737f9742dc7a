package database

import (
	"edu_market_backend/internal/config"
	"edu_market_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release模式默认不做自动迁移，需要-migrate显式开启
	if cfg.Server.Mode == "release" && !cfg.ForceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseSection{},
		&model.CourseLesson{},
		&model.Enrollment{},
		&model.StudentProgress{},
		&model.SubscriptionUsage{},
		&model.ScormPackage{},
		&model.ScormAttempt{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}
