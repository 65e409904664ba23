package database

import (
	"fmt"
	"log"
	"safety_training_backend/internal/config"
	"safety_training_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
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

	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认跳过迁移，-migrate 标志可强制执行
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	if err := seedDefaults(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Company{},
		&model.Worker{},
		&model.Training{},
		&model.Slide{},
		&model.Question{},
		&model.QuestionOption{},
		&model.Enrollment{},
		&model.Certificate{},
	)
}

// seedDefaults 首次启动时写入默认公司和管理员账号
func seedDefaults(db *gorm.DB) error {
	var companyCount int64
	db.Model(&model.Company{}).Count(&companyCount)
	if companyCount == 0 {
		company := &model.Company{
			Name:     "Head Office",
			INN:      "0000000000",
			IsActive: true,
		}
		if err := db.Create(company).Error; err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &model.Worker{
			SapID:     "admin",
			FirstName: "System",
			LastName:  "Administrator",
			Password:  string(hash),
			Role:      model.RoleAdmin,
			CompanyID: company.ID,
		}
		if err := db.Create(admin).Error; err != nil {
			return err
		}
		log.Println("Seeded default company and admin account")
	}

	return nil
}
