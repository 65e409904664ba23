package service

import (
	"context"
	"fmt"
	"math"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/repository"
	"safety_training_backend/internal/util"
	"safety_training_backend/pkg/logger"
	"safety_training_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

type EnrollmentService struct {
	Repo         *repository.EnrollmentRepository
	TrainingRepo *repository.TrainingRepository
	WorkerRepo   *repository.WorkerRepository
	Randomizer   *QuizRandomizer
	Gate         *SlideGateService
	Certificates *CertificateService
	Storage      *StorageService
}

func NewEnrollmentService(
	repo *repository.EnrollmentRepository,
	trainingRepo *repository.TrainingRepository,
	workerRepo *repository.WorkerRepository,
	randomizer *QuizRandomizer,
	gate *SlideGateService,
	certificates *CertificateService,
	storage *StorageService,
) *EnrollmentService {
	return &EnrollmentService{
		Repo:         repo,
		TrainingRepo: trainingRepo,
		WorkerRepo:   workerRepo,
		Randomizer:   randomizer,
		Gate:         gate,
		Certificates: certificates,
		Storage:      storage,
	}
}

func (s *EnrollmentService) Enroll(workerID, trainingID uint) (*model.Enrollment, error) {
	if _, err := s.WorkerRepo.FindByID(workerID); err != nil {
		return nil, err
	}
	training, err := s.TrainingRepo.FindByID(trainingID)
	if err != nil {
		return nil, err
	}
	if !training.IsActive {
		return nil, util.ErrTrainingInactive
	}

	if _, err := s.Repo.FindByWorkerAndTraining(workerID, trainingID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	}

	enrollment := &model.Enrollment{
		WorkerID:   workerID,
		TrainingID: trainingID,
		Status:     model.EnrollmentNotStarted,
	}
	if err := s.Repo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// BulkEnroll 按工号批量报名，返回新建的报名数
func (s *EnrollmentService) BulkEnroll(trainingID uint, sapIDs []string) (int, error) {
	training, err := s.TrainingRepo.FindByID(trainingID)
	if err != nil {
		return 0, err
	}
	if !training.IsActive {
		return 0, util.ErrTrainingInactive
	}

	workers, err := s.WorkerRepo.FindBySapIDs(sapIDs)
	if err != nil {
		return 0, err
	}
	if len(workers) == 0 {
		return 0, util.NewValidationError("no workers matched the given sap ids")
	}

	workerIDs := make([]uint, len(workers))
	for i := range workers {
		workerIDs[i] = workers[i].ID
	}
	return s.Repo.BulkEnroll(trainingID, workerIDs)
}

func (s *EnrollmentService) ListForWorker(workerID uint) ([]model.Enrollment, error) {
	return s.Repo.ListByWorker(workerID)
}

func (s *EnrollmentService) ListForTraining(trainingID uint, page, limit int) ([]model.Enrollment, int64, error) {
	return s.Repo.ListByTraining(trainingID, page, limit)
}

// SessionSlide 会话中的幻灯片视图，file 类型的内容已解析为可访问 URL
type SessionSlide struct {
	Index    int             `json:"index"`
	Type     model.SlideType `json:"type"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Duration int             `json:"duration"`
}

// SessionQuestion 员工卷面视图：题目和选项已按个人种子洗牌，标准答案标记被剥离
type SessionQuestion struct {
	ID      uint            `json:"id"`
	Text    string          `json:"text"`
	Points  int             `json:"points"`
	Options []SessionOption `json:"options"`
}

type SessionOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type TrainingSession struct {
	Training      *model.Training   `json:"training"`
	Enrollment    *model.Enrollment `json:"enrollment"`
	Slides        []SessionSlide    `json:"slides"`
	Questions     []SessionQuestion `json:"questions"`
	CurrentSlide  int               `json:"currentSlide"`
	TimeRemaining int               `json:"timeRemaining"`
	CanProceed    bool              `json:"canProceed"`
}

// OpenSession 组装员工培训会话：培训、报名状态、门控起点和个人固定顺序的卷面
func (s *EnrollmentService) OpenSession(ctx context.Context, workerID uint, trainingID uint) (*TrainingSession, error) {
	worker, err := s.WorkerRepo.FindByID(workerID)
	if err != nil {
		return nil, err
	}
	training, err := s.TrainingRepo.FindByID(trainingID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.Repo.FindByWorkerAndTraining(workerID, trainingID)
	if err != nil {
		return nil, err
	}

	session := s.Gate.Open(workerID, enrollment, training.Slides)
	currentSlide, timeRemaining, canProceed := session.Snapshot()

	slides := make([]SessionSlide, len(training.Slides))
	for i, slide := range training.Slides {
		slides[i] = SessionSlide{
			Index:    i,
			Type:     slide.Type,
			Title:    slide.Title,
			Content:  s.Storage.SlideContentURL(ctx, &slide),
			Duration: slide.DwellSeconds(),
		}
	}

	shuffled := s.Randomizer.Shuffle(training.Questions, worker.SapID, training.ID)
	questions := make([]SessionQuestion, len(shuffled))
	for i, q := range shuffled {
		options := make([]SessionOption, len(q.Options))
		for j, o := range q.Options {
			options[j] = SessionOption{ID: o.ID, Text: o.Text}
		}
		questions[i] = SessionQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Points:  q.Points,
			Options: options,
		}
	}

	// 卷面不泄露答案
	training.Questions = nil

	return &TrainingSession{
		Training:      training,
		Enrollment:    enrollment,
		Slides:        slides,
		Questions:     questions,
		CurrentSlide:  currentSlide,
		TimeRemaining: timeRemaining,
		CanProceed:    canProceed,
	}, nil
}

// CloseSession 停止会话计时器
func (s *EnrollmentService) CloseSession(workerID, trainingID uint) {
	s.Gate.Close(workerID, trainingID)
}

// TrackSlideProgress 幂等的进度上报：持久化断点位置。
// 已完成的报名处于复看模式，进度不再回写。
func (s *EnrollmentService) TrackSlideProgress(workerID, trainingID uint, slideIndex int) error {
	training, err := s.TrainingRepo.FindByID(trainingID)
	if err != nil {
		return err
	}
	enrollment, err := s.Repo.FindByWorkerAndTraining(workerID, trainingID)
	if err != nil {
		return err
	}

	if enrollment.Status == model.EnrollmentCompleted {
		return nil
	}

	total := len(training.Slides)
	if total == 0 {
		return util.NewValidationError("training has no slides")
	}
	if slideIndex < 0 || slideIndex >= total {
		return util.NewValidationError(fmt.Sprintf("invalid slide index %d", slideIndex))
	}

	// 门控会话存在时，由它裁决这次切换是否合法
	if session := s.Gate.Get(workerID, trainingID); session != nil {
		if err := session.RequestAdvance(slideIndex); err != nil {
			return err
		}
	}

	progress := int(math.Round(float64(slideIndex+1) / float64(total) * 100))
	now := time.Now()
	return s.Repo.TrackProgress(enrollment, slideIndex, progress, &now)
}

// QuizResult 考核结果
type QuizResult struct {
	Score          int  `json:"score"` // 百分比
	CorrectCount   int  `json:"correctCount"`
	TotalQuestions int  `json:"totalQuestions"`
	Percentage     int  `json:"percentage"`
	Passed         bool `json:"passed"`
	Attempts       int  `json:"attempts"`
}

// SubmitQuiz 校验并评分一份完整答卷。
// 答卷不完整时本地拒绝：无任何状态变化，answer 次数不增加。
// 完整答卷无论通过与否 attempts 都加一；通过时完成状态、完成时间、
// 证书字段和历史证书记录在一个事务里全部落库。
func (s *EnrollmentService) SubmitQuiz(workerID, trainingID uint, answers map[uint]uint) (*QuizResult, error) {
	training, err := s.TrainingRepo.FindByID(trainingID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.Repo.FindByWorkerAndTraining(workerID, trainingID)
	if err != nil {
		return nil, err
	}

	// 已完成周期只读：证书字段在通过时一次性写入，
	// 重新答题必须先经 ReEnroll / AdminReset 开启新周期
	if enrollment.Status == model.EnrollmentCompleted {
		return nil, util.NewEligibilityError("training already completed, re-enroll to take the quiz again")
	}

	total := len(training.Questions)
	if total == 0 {
		return nil, util.NewValidationError("training has no quiz")
	}

	// 完整性校验优先于一切副作用
	for _, q := range training.Questions {
		optionID, ok := answers[q.ID]
		if !ok {
			return nil, util.NewValidationError("all questions must be answered before submitting")
		}
		valid := false
		for _, o := range q.Options {
			if o.ID == optionID {
				valid = true
				break
			}
		}
		if !valid {
			return nil, util.NewValidationError(fmt.Sprintf("answer for question %d refers to an unknown option", q.ID))
		}
	}

	correct := 0
	for _, q := range training.Questions {
		if answers[q.ID] == q.CorrectOptionID() {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(total) * 100))
	passed := score >= training.PassingScore
	now := time.Now()

	fields := map[string]interface{}{
		"score":    score,
		"attempts": enrollment.Attempts + 1,
	}

	var cert *model.Certificate
	if passed {
		cert = s.Certificates.Issue(enrollment, training, now, &score)
		fields["status"] = model.EnrollmentCompleted
		fields["completed_at"] = now
		fields["certificate_number"] = cert.CertificateNumber
		fields["issued_by"] = cert.IssuedBy
		fields["expires_at"] = cert.ExpiresAt
	}

	if err := s.Repo.SubmitResult(enrollment, fields, cert); err != nil {
		return nil, err
	}

	outcome := "fail"
	if passed {
		outcome = "pass"
	}
	monitoring.QuizSubmissions.WithLabelValues(outcome).Inc()

	logger.Log.Info("quiz submitted",
		zap.Uint("workerId", workerID),
		zap.Uint("trainingId", trainingID),
		zap.Int("score", score),
		zap.Bool("passed", passed))

	return &QuizResult{
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		Percentage:     score,
		Passed:         passed,
		Attempts:       enrollment.Attempts + 1,
	}, nil
}

// CompleteWithoutQuiz 无题目的培训看完即完成：不评分，证书照常签发
func (s *EnrollmentService) CompleteWithoutQuiz(workerID, trainingID uint) (*model.Enrollment, error) {
	training, err := s.TrainingRepo.FindByID(trainingID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.Repo.FindByWorkerAndTraining(workerID, trainingID)
	if err != nil {
		return nil, err
	}

	if len(training.Questions) > 0 {
		return nil, util.ErrTrainingHasQuestions
	}
	if enrollment.Status == model.EnrollmentCompleted {
		return enrollment, nil
	}

	now := time.Now()
	cert := s.Certificates.Issue(enrollment, training, now, nil)
	fields := map[string]interface{}{
		"status":             model.EnrollmentCompleted,
		"progress":           100,
		"completed_at":       now,
		"certificate_number": cert.CertificateNumber,
		"issued_by":          cert.IssuedBy,
		"expires_at":         cert.ExpiresAt,
	}

	if err := s.Repo.SubmitResult(enrollment, fields, cert); err != nil {
		return nil, err
	}

	return s.Repo.FindByWorkerAndTraining(workerID, trainingID)
}

// ReEnroll 自助重新报名：仅当培训已完成且证书已过期时允许，
// 旧证书保留在历史表中。
func (s *EnrollmentService) ReEnroll(workerID, trainingID uint) (*model.Enrollment, error) {
	enrollment, err := s.Repo.FindByWorkerAndTraining(workerID, trainingID)
	if err != nil {
		return nil, err
	}

	if enrollment.Status != model.EnrollmentCompleted {
		return nil, util.NewEligibilityError("training has never been completed, nothing to reset")
	}
	if !enrollment.IsExpired(time.Now()) {
		return nil, util.NewEligibilityError("certificate is still valid, re-enrollment is not available yet")
	}

	if err := s.Repo.ResetCycle(enrollment); err != nil {
		return nil, err
	}
	s.Gate.Close(workerID, trainingID)

	logger.Log.Info("enrollment reset by worker",
		zap.Uint("workerId", workerID),
		zap.Uint("trainingId", trainingID))

	return s.Repo.FindByWorkerAndTraining(workerID, trainingID)
}

// AdminReset 主管/管理员强制重置：绕过证书过期校验，权限在路由层把关
func (s *EnrollmentService) AdminReset(enrollmentID uint, actor *util.Claims) (*model.Enrollment, error) {
	if actor == nil || (actor.Role != model.RoleSupervisor && actor.Role != model.RoleAdmin) {
		return nil, util.ErrPermissionDenied
	}

	enrollment, err := s.Repo.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != model.EnrollmentCompleted {
		return nil, util.NewEligibilityError("training has never been completed, nothing to reset")
	}

	if err := s.Repo.ResetCycle(enrollment); err != nil {
		return nil, err
	}
	s.Gate.Close(enrollment.WorkerID, enrollment.TrainingID)

	logger.Log.Info("enrollment reset by supervisor",
		zap.Uint("enrollmentId", enrollmentID),
		zap.Uint("actorId", actor.WorkerID))

	return s.Repo.FindByID(enrollmentID)
}

// GetCertificate 证书读取：isExpired/isValid 即时推导
func (s *EnrollmentService) GetCertificate(workerID, trainingID uint) (*CertificateView, error) {
	enrollment, err := s.Repo.FindByWorkerAndTraining(workerID, trainingID)
	if err != nil {
		return nil, err
	}
	return s.Certificates.BuildView(enrollment)
}
