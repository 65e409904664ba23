package model

// swagger:model Company
type Company struct {
	BaseModel
	Name     string `gorm:"size:255;not null" json:"name"`
	INN      string `gorm:"size:20;uniqueIndex" json:"inn"` // 税号，企业唯一标识
	Address  string `gorm:"size:255" json:"address"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (Company) TableName() string {
	return "companies"
}
