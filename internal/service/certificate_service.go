package service

import (
	"safety_training_backend/internal/config"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/repository"
	"safety_training_backend/internal/util"
	"safety_training_backend/pkg/logger"
	"safety_training_backend/pkg/monitoring"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CertificateService struct {
	Repo *repository.CertificateRepository
	Cfg  *config.CertificateConfig
}

func NewCertificateService(repo *repository.CertificateRepository, cfg *config.CertificateConfig) *CertificateService {
	return &CertificateService{Repo: repo, Cfg: cfg}
}

// ExpiresAt 证书有效期计算：完成时间 + 有效期月数；0 个月 = 永久有效
func ExpiresAt(completedAt time.Time, validityMonths int) *time.Time {
	if validityMonths <= 0 {
		return nil
	}
	expires := completedAt.AddDate(0, validityMonths, 0)
	return &expires
}

// NewCertificateNumber 形如 ST-2026-3FA8C21B
func NewCertificateNumber(issuedAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "ST-" + issuedAt.Format("2006") + "-" + suffix
}

// Issue 在首次通过考核的那一刻生成证书字段和历史记录。
// 调用方负责把返回值与考核结果放进同一个事务。
func (s *CertificateService) Issue(enrollment *model.Enrollment, training *model.Training, completedAt time.Time, score *int) *model.Certificate {
	cert := &model.Certificate{
		EnrollmentID:      enrollment.ID,
		WorkerID:          enrollment.WorkerID,
		TrainingID:        training.ID,
		CertificateNumber: NewCertificateNumber(completedAt),
		IssuedBy:          s.Cfg.IssuedBy,
		Score:             score,
		IssuedAt:          completedAt,
		ExpiresAt:         ExpiresAt(completedAt, training.ValidityPeriod),
	}

	monitoring.CertificatesIssued.Inc()
	return cert
}

// CertificateView 证书读取视图。isExpired/isValid 每次读取都基于当前时间重新计算，
// 从不缓存：签发与长有效期之间的时间差会让任何存储的布尔值失真。
type CertificateView struct {
	CertificateNumber string     `json:"certificateNumber"`
	IssuedBy          string     `json:"issuedBy"`
	Score             *int       `json:"score"`
	Attempts          int        `json:"attempts"`
	CompletedAt       *time.Time `json:"completedAt"`
	ExpiresAt         *time.Time `json:"expiresAt"`
	IsExpired         bool       `json:"isExpired"`
	IsValid           bool       `json:"isValid"`
}

// BuildView 从报名记录推导当前周期的证书视图
func (s *CertificateService) BuildView(enrollment *model.Enrollment) (*CertificateView, error) {
	if enrollment.Status != model.EnrollmentCompleted || enrollment.CertificateNumber == "" {
		return nil, util.ErrCertificateNotFound
	}

	expired := enrollment.IsExpired(time.Now())
	return &CertificateView{
		CertificateNumber: enrollment.CertificateNumber,
		IssuedBy:          enrollment.IssuedBy,
		Score:             enrollment.Score,
		Attempts:          enrollment.Attempts,
		CompletedAt:       enrollment.CompletedAt,
		ExpiresAt:         enrollment.ExpiresAt,
		IsExpired:         expired,
		IsValid:           !expired,
	}, nil
}

func (s *CertificateService) History(workerID uint) ([]model.Certificate, error) {
	return s.Repo.ListByWorker(workerID)
}

// ReportExpiring 记录即将到期的证书，由后台定时任务周期性调用
func (s *CertificateService) ReportExpiring() error {
	warn := time.Duration(s.Cfg.ExpiryWarnDays) * 24 * time.Hour
	certs, err := s.Repo.ListExpiring(time.Now(), warn)
	if err != nil {
		return err
	}

	for _, cert := range certs {
		logger.Log.Info("certificate expiring soon",
			zap.String("certificateNumber", cert.CertificateNumber),
			zap.Uint("workerId", cert.WorkerID),
			zap.Uint("trainingId", cert.TrainingID),
			zap.Timep("expiresAt", cert.ExpiresAt))
	}

	logger.Log.Info("expiring certificate sweep finished", zap.Int("count", len(certs)))
	return nil
}
