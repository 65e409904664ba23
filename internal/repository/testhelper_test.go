package repository

import (
	"fmt"
	"strings"
	"testing"

	"safety_training_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 测试用内存库。生产走 MySQL，枚举列在 sqlite 上无法 AutoMigrate，
// 因此建表语句手工维护，列名与模型的 gorm 映射保持一致。
var testSchema = []string{
	`CREATE TABLE companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		name TEXT, inn TEXT, address TEXT,
		is_active BOOLEAN DEFAULT 1)`,
	`CREATE TABLE workers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		sap_id TEXT, first_name TEXT, last_name TEXT, middle_name TEXT,
		email TEXT, position TEXT, password TEXT,
		role TEXT DEFAULT 'worker',
		company_id INTEGER, disabled BOOLEAN DEFAULT 0,
		last_login DATETIME, last_seen DATETIME)`,
	`CREATE TABLE trainings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		title TEXT, description TEXT,
		passing_score INTEGER DEFAULT 70,
		validity_period INTEGER DEFAULT 0,
		is_mandatory BOOLEAN DEFAULT 0,
		is_active BOOLEAN DEFAULT 1)`,
	`CREATE TABLE training_slides (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		training_id INTEGER, type TEXT DEFAULT 'text',
		title TEXT, content TEXT,
		duration INTEGER DEFAULT 30, "order" INTEGER DEFAULT 0)`,
	`CREATE TABLE training_questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		training_id INTEGER, text TEXT,
		points INTEGER DEFAULT 1, "order" INTEGER DEFAULT 0)`,
	`CREATE TABLE training_question_options (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		question_id INTEGER, text TEXT,
		is_correct BOOLEAN DEFAULT 0, "order" INTEGER DEFAULT 0)`,
	`CREATE TABLE enrollments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		worker_id INTEGER, training_id INTEGER,
		status TEXT DEFAULT 'not_started',
		progress INTEGER DEFAULT 0,
		current_slide INTEGER DEFAULT 0,
		score INTEGER, attempts INTEGER DEFAULT 0,
		started_at DATETIME, completed_at DATETIME,
		certificate_number TEXT DEFAULT '', issued_by TEXT DEFAULT '',
		expires_at DATETIME,
		version INTEGER DEFAULT 0)`,
	`CREATE TABLE certificates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		enrollment_id INTEGER, worker_id INTEGER, training_id INTEGER,
		certificate_number TEXT, issued_by TEXT, score INTEGER,
		issued_at DATETIME, expires_at DATETIME)`,
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Log = zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}
	return db
}
