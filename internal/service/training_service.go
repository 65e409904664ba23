package service

import (
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/repository"
	"safety_training_backend/internal/util"
)

type TrainingService struct {
	Repo *repository.TrainingRepository
}

func NewTrainingService(repo *repository.TrainingRepository) *TrainingService {
	return &TrainingService{Repo: repo}
}

type SlideReq struct {
	Type     model.SlideType `json:"type" binding:"required"`
	Title    string          `json:"title"`
	Content  string          `json:"content" binding:"required"`
	Duration int             `json:"duration"`
}

type OptionReq struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionReq struct {
	Text    string      `json:"text" binding:"required"`
	Points  int         `json:"points"`
	Options []OptionReq `json:"options" binding:"required"`
}

type TrainingReq struct {
	Title          *string        `json:"title"`
	Description    *string        `json:"description"`
	PassingScore   *int           `json:"passingScore"`
	ValidityPeriod *int           `json:"validityPeriod"`
	IsMandatory    *bool          `json:"isMandatory"`
	IsActive       *bool          `json:"isActive"`
	Slides         *[]SlideReq    `json:"slides"`
	Questions      *[]QuestionReq `json:"questions"`
}

func validateTrainingReq(req *TrainingReq) error {
	if req.PassingScore != nil && (*req.PassingScore < 0 || *req.PassingScore > 100) {
		return util.NewValidationError("passing score must be between 0 and 100")
	}
	if req.ValidityPeriod != nil && *req.ValidityPeriod < 0 {
		return util.NewValidationError("validity period must not be negative")
	}
	if req.Questions != nil {
		// 每道题在编辑时必须恰好一个标准答案
		for _, q := range *req.Questions {
			correct := 0
			for _, o := range q.Options {
				if o.IsCorrect {
					correct++
				}
			}
			if correct != 1 {
				return util.NewValidationError("each question must have exactly one correct option")
			}
		}
	}
	return nil
}

func applyTrainingReq(training *model.Training, req *TrainingReq) {
	if req.Title != nil {
		training.Title = *req.Title
	}
	if req.Description != nil {
		training.Description = *req.Description
	}
	if req.PassingScore != nil {
		training.PassingScore = *req.PassingScore
	}
	if req.ValidityPeriod != nil {
		training.ValidityPeriod = *req.ValidityPeriod
	}
	if req.IsMandatory != nil {
		training.IsMandatory = *req.IsMandatory
	}
	if req.IsActive != nil {
		training.IsActive = *req.IsActive
	}
	if req.Slides != nil {
		slides := make([]model.Slide, len(*req.Slides))
		for i, sr := range *req.Slides {
			duration := sr.Duration
			if duration <= 0 {
				duration = model.DefaultSlideDuration
			}
			slides[i] = model.Slide{
				Type:     sr.Type,
				Title:    sr.Title,
				Content:  sr.Content,
				Duration: duration,
				Order:    i,
			}
		}
		training.Slides = slides
	}
	if req.Questions != nil {
		questions := make([]model.Question, len(*req.Questions))
		for i, qr := range *req.Questions {
			points := qr.Points
			if points <= 0 {
				points = 1
			}
			options := make([]model.QuestionOption, len(qr.Options))
			for j, or := range qr.Options {
				options[j] = model.QuestionOption{
					Text:      or.Text,
					IsCorrect: or.IsCorrect,
					Order:     j,
				}
			}
			questions[i] = model.Question{
				Text:    qr.Text,
				Points:  points,
				Order:   i,
				Options: options,
			}
		}
		training.Questions = questions
	}
}

func (s *TrainingService) Create(req TrainingReq) (*model.Training, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, util.NewValidationError("title is required")
	}
	if err := validateTrainingReq(&req); err != nil {
		return nil, err
	}

	training := &model.Training{
		PassingScore: 70,
		IsActive:     true,
	}
	applyTrainingReq(training, &req)

	if err := s.Repo.Create(training); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(training.ID)
}

func (s *TrainingService) Update(id uint, req TrainingReq) (*model.Training, error) {
	if err := validateTrainingReq(&req); err != nil {
		return nil, err
	}

	training, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	applyTrainingReq(training, &req)

	if err := s.Repo.Update(training, req.Slides != nil, req.Questions != nil); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(id)
}

func (s *TrainingService) Delete(id uint) error {
	if _, err := s.Repo.FindByID(id); err != nil {
		return err
	}
	return s.Repo.Delete(id)
}

func (s *TrainingService) Get(id uint) (*model.Training, error) {
	return s.Repo.FindByID(id)
}

func (s *TrainingService) List(page, limit int, activeOnly bool) ([]model.Training, int64, error) {
	return s.Repo.List(page, limit, activeOnly)
}
