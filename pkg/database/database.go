package database

import (
	"fmt"
	"log"
	"papershare_backend/internal/config"
	"papershare_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Department{},
		&model.Course{},
		&model.Semester{},
		&model.ExamType{},
		&model.Question{},
		&model.Submission{},
		&model.Vote{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认学期（如果为空则插入常用的八个学期）
	var semCount int64
	db.Model(&model.Semester{}).Count(&semCount)
	if semCount == 0 {
		for i := 1; i <= 8; i++ {
			db.Create(&model.Semester{Name: fmt.Sprintf("Semester %d", i)})
		}
	}

	// 默认考试类型
	var etCount int64
	db.Model(&model.ExamType{}).Count(&etCount)
	if etCount == 0 {
		defaultExamTypes := []string{"End Semester", "Mid Semester", "Supplementary", "Quiz"}
		for _, name := range defaultExamTypes {
			db.Create(&model.ExamType{Name: name})
		}
	}

	return db, nil
}
