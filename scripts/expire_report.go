// 手动触发到期证书扫描脚本
//
// 该功能已集成到主应用的后台定时任务中（默认每 24 小时自动执行一次）。
// 此脚本仅用于手动触发，例如合规审计前需要立即出一份到期提醒名单时。
//
// 用法: go run scripts/expire_report.go

package main

import (
	"log"
	"os"
	"safety_training_backend/internal/config"
	"safety_training_backend/internal/repository"
	"safety_training_backend/internal/service"
	"safety_training_backend/pkg/database"
	"safety_training_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}
	if cfg.Certificate.ExpiryWarnDays <= 0 {
		cfg.Certificate.ExpiryWarnDays = 30
	}
	if cfg.Certificate.IssuedBy == "" {
		cfg.Certificate.IssuedBy = "Safety Training Department"
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	certRepo := repository.NewCertificateRepository(db)
	certService := service.NewCertificateService(certRepo, &cfg.Certificate)

	log.Println("手动触发到期证书扫描...")
	if err := certService.ReportExpiring(); err != nil {
		log.Fatalf("扫描失败: %v", err)
	}
	log.Println("完成！")
}
