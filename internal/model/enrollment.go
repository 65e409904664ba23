package model

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentNotStarted EnrollmentStatus = "not_started"
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
)

// Enrollment 记录一名员工与一个培训之间的全部过程状态。
// 证书字段在通过考核时写入一次；isPassed/isExpired 永远在读取时推导，不落库。
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	WorkerID   uint      `gorm:"uniqueIndex:idx_worker_training;not null" json:"workerId"`
	Worker     *Worker   `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	TrainingID uint      `gorm:"uniqueIndex:idx_worker_training;not null" json:"trainingId"`
	Training   *Training `gorm:"foreignKey:TrainingID" json:"training,omitempty"`

	Status       EnrollmentStatus `gorm:"type:enum('not_started','in_progress','completed');default:'not_started'" json:"status"`
	Progress     int              `gorm:"default:0" json:"progress"`     // 0-100
	CurrentSlide int              `gorm:"default:0" json:"currentSlide"` // 断点续看位置
	Score        *int             `json:"score"`                         // 百分比，未答题时为 null
	Attempts     int              `gorm:"default:0" json:"attempts"`
	StartedAt    *time.Time       `json:"startedAt"`
	CompletedAt  *time.Time       `json:"completedAt"`

	// 当前周期的证书字段；历史证书另存 certificates 表
	CertificateNumber string     `gorm:"size:50" json:"certificateNumber,omitempty"`
	IssuedBy          string     `gorm:"size:255" json:"issuedBy,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt"`

	// 乐观锁版本号：track 与 submit 的并发写通过它互斥
	Version int `gorm:"default:0" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// IsPassed 读取时推导，不存储
func (e *Enrollment) IsPassed(passingScore int) bool {
	return e.Status == EnrollmentCompleted && e.Score != nil && *e.Score >= passingScore
}

// IsExpired 必须每次用当前时间重新计算，持久化的布尔值会过期失真
func (e *Enrollment) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// Certificate 历史证书记录：重新报名时保留，不原地覆盖
// swagger:model Certificate
type Certificate struct {
	BaseModel
	EnrollmentID      uint       `gorm:"index;not null" json:"enrollmentId"`
	WorkerID          uint       `gorm:"index;not null" json:"workerId"`
	TrainingID        uint       `gorm:"index;not null" json:"trainingId"`
	CertificateNumber string     `gorm:"size:50;uniqueIndex" json:"certificateNumber"`
	IssuedBy          string     `gorm:"size:255" json:"issuedBy"`
	Score             *int       `json:"score"`
	IssuedAt          time.Time  `json:"issuedAt"`
	ExpiresAt         *time.Time `json:"expiresAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
