package repository

import (
	"errors"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"

	"gorm.io/gorm"
)

type TrainingRepository struct {
	DB *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{DB: db}
}

func (r *TrainingRepository) Create(training *model.Training) error {
	return r.DB.Create(training).Error
}

// Update 保存培训；replaceSlides/replaceQuestions 为真时对应集合整体替换，
// 旧的幻灯片或题目（含选项）先删再插，内容作为一个整体版本更新
func (r *TrainingRepository) Update(training *model.Training, replaceSlides, replaceQuestions bool) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if replaceSlides {
			if err := tx.Where("training_id = ?", training.ID).Delete(&model.Slide{}).Error; err != nil {
				return err
			}
		}

		if replaceQuestions {
			var questionIDs []uint
			if err := tx.Model(&model.Question{}).
				Where("training_id = ?", training.ID).
				Pluck("id", &questionIDs).Error; err != nil {
				return err
			}
			if len(questionIDs) > 0 {
				if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.QuestionOption{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("training_id = ?", training.ID).Delete(&model.Question{}).Error; err != nil {
				return err
			}
		}

		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(training).Error
	})
}

func (r *TrainingRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Training{}, id).Error
}

// FindByID 加载培训及其有序的幻灯片、题目和选项
func (r *TrainingRepository) FindByID(id uint) (*model.Training, error) {
	var training model.Training
	err := r.DB.
		Preload("Slides", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		First(&training, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTrainingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *TrainingRepository) List(page, limit int, activeOnly bool) ([]model.Training, int64, error) {
	var trainings []model.Training
	var total int64

	query := r.DB.Model(&model.Training{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("title").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&trainings).Error
	return trainings, total, err
}
