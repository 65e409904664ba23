package repository

import (
	"safety_training_backend/internal/model"

	"gorm.io/gorm"
)

type DashboardRepository struct {
	DB *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

// CompletionRow (公司, 培训) 维度的报名统计
type CompletionRow struct {
	CompanyID  uint `json:"companyId"`
	TrainingID uint `json:"trainingId"`
	Total      int  `json:"total"`
	Completed  int  `json:"completed"`
}

// CompletionStats 按 (公司, 培训) 分组统计报名数和完成数，过滤条件可选
func (r *DashboardRepository) CompletionStats(companyID, trainingID uint) ([]CompletionRow, error) {
	var rows []CompletionRow

	query := r.DB.Model(&model.Enrollment{}).
		Select("workers.company_id AS company_id, enrollments.training_id AS training_id, "+
			"COUNT(*) AS total, "+
			"SUM(CASE WHEN enrollments.status = ? THEN 1 ELSE 0 END) AS completed",
			model.EnrollmentCompleted).
		Joins("JOIN workers ON workers.id = enrollments.worker_id").
		Group("workers.company_id, enrollments.training_id")

	if companyID > 0 {
		query = query.Where("workers.company_id = ?", companyID)
	}
	if trainingID > 0 {
		query = query.Where("enrollments.training_id = ?", trainingID)
	}

	err := query.Scan(&rows).Error
	return rows, err
}

// NotEnrolledWorkers 公司中没有任何该培训报名记录的员工，分页返回
func (r *DashboardRepository) NotEnrolledWorkers(companyID, trainingID uint, page, limit int) ([]model.Worker, int64, error) {
	var workers []model.Worker
	var total int64

	sub := r.DB.Model(&model.Enrollment{}).
		Select("worker_id").
		Where("training_id = ?", trainingID)

	query := r.DB.Model(&model.Worker{}).
		Where("company_id = ?", companyID).
		Where("id NOT IN (?)", sub)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("last_name, first_name").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&workers).Error
	return workers, total, err
}
