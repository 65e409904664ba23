package model

type SlideType string

const (
	SlideFile         SlideType = "file"
	SlideText         SlideType = "text"
	SlideGoogleSlides SlideType = "google_slides"
)

// DefaultSlideDuration 幻灯片默认最短停留时间（秒）
const DefaultSlideDuration = 30

// swagger:model Training
type Training struct {
	BaseModel
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	PassingScore   int        `gorm:"default:70" json:"passingScore"`  // 通过线（百分比 0-100）
	ValidityPeriod int        `gorm:"default:0" json:"validityPeriod"` // 证书有效期（月），0 = 永久有效
	IsMandatory    bool       `gorm:"default:false" json:"isMandatory"`
	IsActive       bool       `gorm:"default:true" json:"isActive"`
	Slides         []Slide    `gorm:"foreignKey:TrainingID" json:"slides,omitempty"`
	Questions      []Question `gorm:"foreignKey:TrainingID" json:"questions,omitempty"`
}

func (Training) TableName() string {
	return "trainings"
}

// swagger:model Slide
type Slide struct {
	BaseModel
	TrainingID uint      `gorm:"index;not null" json:"trainingId"`
	Type       SlideType `gorm:"type:enum('file','text','google_slides');default:'text'" json:"type"`
	Title      string    `gorm:"size:255" json:"title"`
	Content    string    `gorm:"type:text" json:"content"`   // 文本内容 / 文件对象键 / google slides 链接
	Duration   int       `gorm:"default:30" json:"duration"` // 最短停留时间（秒）
	Order      int       `gorm:"default:0" json:"order"`
}

func (Slide) TableName() string {
	return "training_slides"
}

// DwellSeconds 返回幻灯片生效的最短停留时间
func (s *Slide) DwellSeconds() int {
	if s.Duration <= 0 {
		return DefaultSlideDuration
	}
	return s.Duration
}

// swagger:model Question
type Question struct {
	BaseModel
	TrainingID uint             `gorm:"index;not null" json:"trainingId"`
	Text       string           `gorm:"type:text;not null" json:"text"`
	Points     int              `gorm:"default:1" json:"points"`
	Order      int              `gorm:"default:0" json:"order"`
	Options    []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "training_questions"
}

// CorrectOptionID 返回唯一标准答案的选项ID，未设置时返回 0
func (q *Question) CorrectOptionID() uint {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return 0
}

// swagger:model QuestionOption
type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (QuestionOption) TableName() string {
	return "training_question_options"
}
