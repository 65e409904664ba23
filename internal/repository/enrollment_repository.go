package repository

import (
	"errors"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

// BulkEnroll 批量报名，已有报名记录的员工静默跳过
func (r *EnrollmentRepository) BulkEnroll(trainingID uint, workerIDs []uint) (int, error) {
	created := 0
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		for _, workerID := range workerIDs {
			var count int64
			if err := tx.Model(&model.Enrollment{}).
				Where("worker_id = ? AND training_id = ?", workerID, trainingID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			e := &model.Enrollment{
				WorkerID:   workerID,
				TrainingID: trainingID,
				Status:     model.EnrollmentNotStarted,
			}
			if err := tx.Create(e).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	return created, err
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Preload("Worker").Preload("Training").First(&enrollment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) FindByWorkerAndTraining(workerID, trainingID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("worker_id = ? AND training_id = ?", workerID, trainingID).
		First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) ListByWorker(workerID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Preload("Training").
		Where("worker_id = ?", workerID).
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) ListByTraining(trainingID uint, page, limit int) ([]model.Enrollment, int64, error) {
	var enrollments []model.Enrollment
	var total int64

	query := r.DB.Model(&model.Enrollment{}).Where("training_id = ?", trainingID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Worker").
		Order("id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&enrollments).Error
	return enrollments, total, err
}

// versionedUpdate 基于读取时的版本号做条件更新，版本不匹配说明有并发写入，
// 后到的写入直接失败，不允许静默覆盖。
func versionedUpdate(tx *gorm.DB, enrollment *model.Enrollment, fields map[string]interface{}) error {
	fields["version"] = enrollment.Version + 1
	res := tx.Model(&model.Enrollment{}).
		Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrEnrollmentConflict
	}
	return nil
}

// TrackProgress 进度更新事务：只动进度相关字段组
func (r *EnrollmentRepository) TrackProgress(enrollment *model.Enrollment, slideIndex, progress int, startedAt *time.Time) error {
	fields := map[string]interface{}{
		"current_slide": slideIndex,
		"progress":      progress,
	}
	if enrollment.Status == model.EnrollmentNotStarted {
		fields["status"] = model.EnrollmentInProgress
	}
	if enrollment.StartedAt == nil && startedAt != nil {
		fields["started_at"] = startedAt
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return versionedUpdate(tx, enrollment, fields)
	})
}

// SubmitResult 考核结果事务：得分、状态、证书写入和历史证书记录要么全部落库，
// 要么全部回滚，不允许出现已通过但没有完成时间或证书字段的中间态。
func (r *EnrollmentRepository) SubmitResult(enrollment *model.Enrollment, fields map[string]interface{}, cert *model.Certificate) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := versionedUpdate(tx, enrollment, fields); err != nil {
			return err
		}
		if cert != nil {
			if err := tx.Create(cert).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ResetCycle 把报名记录重置为全新周期；历史证书表不动
func (r *EnrollmentRepository) ResetCycle(enrollment *model.Enrollment) error {
	fields := map[string]interface{}{
		"status":             model.EnrollmentNotStarted,
		"progress":           0,
		"current_slide":      0,
		"score":              nil,
		"started_at":         nil,
		"completed_at":       nil,
		"certificate_number": "",
		"issued_by":          "",
		"expires_at":         nil,
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return versionedUpdate(tx, enrollment, fields)
	})
}
