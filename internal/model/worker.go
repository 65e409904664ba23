package model

import (
	"time"
)

type WorkerRole string

const (
	RoleWorker     WorkerRole = "worker"
	RoleSupervisor WorkerRole = "supervisor"
	RoleAdmin      WorkerRole = "admin"
)

// swagger:model Worker
type Worker struct {
	BaseModel
	SapID      string     `gorm:"size:50;uniqueIndex;not null" json:"sapId"` // 工号，登录凭证
	FirstName  string     `gorm:"size:100;not null" json:"firstName"`
	LastName   string     `gorm:"size:100;not null" json:"lastName"`
	MiddleName string     `gorm:"size:100" json:"middleName"`
	Email      string     `gorm:"size:100" json:"email"`
	Position   string     `gorm:"size:150" json:"position"`
	Password   string     `gorm:"size:100;not null" json:"-"`
	Role       WorkerRole `gorm:"type:enum('worker','supervisor','admin');default:'worker'" json:"role"`
	CompanyID  uint       `gorm:"index;not null" json:"companyId"`
	Company    *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Disabled   bool       `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time  `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen   time.Time  `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (Worker) TableName() string {
	return "workers"
}

func (w *Worker) FullName() string {
	name := w.LastName + " " + w.FirstName
	if w.MiddleName != "" {
		name += " " + w.MiddleName
	}
	return name
}
