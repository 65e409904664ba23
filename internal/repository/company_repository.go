package repository

import (
	"errors"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"

	"gorm.io/gorm"
)

type CompanyRepository struct {
	DB *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

func (r *CompanyRepository) Create(company *model.Company) error {
	return r.DB.Create(company).Error
}

func (r *CompanyRepository) FindByID(id uint) (*model.Company, error) {
	var company model.Company
	err := r.DB.First(&company, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) List(page, limit int) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	if err := r.DB.Model(&model.Company{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Order("name").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&companies).Error
	return companies, total, err
}

func (r *CompanyRepository) CountWorkers(companyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Worker{}).Where("company_id = ?", companyID).Count(&count).Error
	return count, err
}
