package repository

import (
	"errors"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type WorkerRepository struct {
	DB *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{DB: db}
}

func (r *WorkerRepository) Create(worker *model.Worker) error {
	return r.DB.Create(worker).Error
}

func (r *WorkerRepository) FindByID(id uint) (*model.Worker, error) {
	var worker model.Worker
	err := r.DB.Preload("Company").First(&worker, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrWorkerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *WorkerRepository) FindBySapID(sapID string) (*model.Worker, error) {
	var worker model.Worker
	err := r.DB.Preload("Company").Where("sap_id = ?", sapID).First(&worker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrWorkerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *WorkerRepository) FindBySapIDs(sapIDs []string) ([]model.Worker, error) {
	var workers []model.Worker
	err := r.DB.Where("sap_id IN ?", sapIDs).Find(&workers).Error
	return workers, err
}

func (r *WorkerRepository) ListByCompany(companyID uint, page, limit int) ([]model.Worker, int64, error) {
	var workers []model.Worker
	var total int64

	query := r.DB.Model(&model.Worker{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("last_name, first_name").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&workers).Error
	return workers, total, err
}

func (r *WorkerRepository) UpdateLastLogin(workerID uint) error {
	return r.DB.Model(&model.Worker{}).
		Where("id = ?", workerID).
		Update("last_login", time.Now()).Error
}

func (r *WorkerRepository) UpdateLastSeen(workerID uint) error {
	return r.DB.Model(&model.Worker{}).
		Where("id = ?", workerID).
		Update("last_seen", time.Now()).Error
}
