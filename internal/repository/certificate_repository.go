package repository

import (
	"errors"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) FindByNumber(number string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("certificate_number = ?", number).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCertificateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListByWorker 员工全部历史证书，新的在前
func (r *CertificateRepository) ListByWorker(workerID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("worker_id = ?", workerID).
		Order("issued_at DESC").
		Find(&certs).Error
	return certs, err
}

// ListExpiring 即将到期的证书：expires_at 落在 [now, now+warn] 区间内
func (r *CertificateRepository) ListExpiring(now time.Time, warn time.Duration) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?", now, now.Add(warn)).
		Order("expires_at").
		Find(&certs).Error
	return certs, err
}
