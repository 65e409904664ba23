package service

import (
	"context"
	"testing"
	"time"

	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 0)

	env.enroll(t, training.ID)

	_, err := env.enrollments.Enroll(env.worker.ID, training.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
}

func TestEnrollRejectsInactiveTraining(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 0)
	require.NoError(t, env.db.Model(training).Update("is_active", false).Error)

	_, err := env.enrollments.Enroll(env.worker.ID, training.ID)
	assert.ErrorIs(t, err, util.ErrTrainingInactive)
}

func TestSubmitQuizPassIssuesCertificate(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	env.enroll(t, training.ID)

	result, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.correctAnswers(t, training.ID))
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.True(t, result.Passed)
	assert.Equal(t, 1, result.Attempts)

	got, err := env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCompleted, got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, 100, *got.Score)
	assert.NotNil(t, got.CompletedAt)
	assert.NotEmpty(t, got.CertificateNumber)
	assert.Equal(t, "Safety Training Department", got.IssuedBy)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, got.CompletedAt.AddDate(0, 12, 0), *got.ExpiresAt, 2*time.Second)

	// 历史证书一并落库
	history, err := env.certs.History(env.worker.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, got.CertificateNumber, history[0].CertificateNumber)
}

func TestSubmitQuizRejectedAfterCompletion(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	env.enroll(t, training.ID)

	_, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.correctAnswers(t, training.ID))
	require.NoError(t, err)

	before, err := env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)

	// 复训模式下重交答卷不能刷新证书
	_, err = env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.correctAnswers(t, training.ID))
	require.Error(t, err)
	assert.True(t, util.IsEligibilityError(err))

	after, err := env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.Equal(t, before.CertificateNumber, after.CertificateNumber)
	assert.Equal(t, before.ExpiresAt.Unix(), after.ExpiresAt.Unix())
	assert.Equal(t, 1, after.Attempts)

	history, err := env.certs.History(env.worker.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSubmitQuizFailKeepsCycleOpen(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	env.enroll(t, training.ID)

	result, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.wrongAnswers(t, training.ID))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.Attempts)

	got, err := env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.NotEqual(t, model.EnrollmentCompleted, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Empty(t, got.CertificateNumber)
	require.NotNil(t, got.Score)
	assert.Equal(t, 0, *got.Score)

	history, err := env.certs.History(env.worker.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSubmitQuizPartialScoreRounding(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 3, 70, 0)
	env.enroll(t, training.ID)

	// 3 题答对 2 题：round(2/3*100) = 67，低于 70 不通过
	answers := env.correctAnswers(t, training.ID)
	wrong := env.wrongAnswers(t, training.ID)
	for qID := range answers {
		answers[qID] = wrong[qID]
		break
	}

	result, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 67, result.Score)
	assert.False(t, result.Passed)
}

func TestSubmitQuizRejectsIncompleteAnswerSet(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 3, 70, 0)
	env.enroll(t, training.ID)

	answers := env.correctAnswers(t, training.ID)
	for qID := range answers {
		delete(answers, qID)
		break
	}

	_, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, answers)
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))

	// 本地拒绝不产生任何状态变化
	got, err := env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Attempts)
	assert.Nil(t, got.Score)
	assert.Equal(t, model.EnrollmentNotStarted, got.Status)
}

func TestSubmitQuizRejectsUnknownOption(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 0)
	env.enroll(t, training.ID)

	answers := env.correctAnswers(t, training.ID)
	for qID := range answers {
		answers[qID] = 999999
		break
	}

	_, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, answers)
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))

	got, err := env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Attempts)
}

func TestSubmitQuizWithoutQuestions(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 0)
	env.enroll(t, training.ID)

	_, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, map[uint]uint{})
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))
}

func TestAttemptsAccumulateAcrossSubmissions(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 0)
	env.enroll(t, training.ID)

	_, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.wrongAnswers(t, training.ID))
	require.NoError(t, err)

	result, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.correctAnswers(t, training.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
}

func TestCompleteWithoutQuiz(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 6)
	env.enroll(t, training.ID)

	got, err := env.enrollments.CompleteWithoutQuiz(env.worker.ID, training.ID)
	require.NoError(t, err)

	assert.Equal(t, model.EnrollmentCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Nil(t, got.Score, "no quiz, no score")
	assert.NotEmpty(t, got.CertificateNumber)
	assert.NotNil(t, got.ExpiresAt)

	// 重复调用幂等
	again, err := env.enrollments.CompleteWithoutQuiz(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.Equal(t, got.CertificateNumber, again.CertificateNumber)

	history, err := env.certs.History(env.worker.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCompleteWithoutQuizRejectedWhenQuizExists(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 0)
	env.enroll(t, training.ID)

	_, err := env.enrollments.CompleteWithoutQuiz(env.worker.ID, training.ID)
	assert.ErrorIs(t, err, util.ErrTrainingHasQuestions)
}

func TestReEnrollRequiresCompletion(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	env.enroll(t, training.ID)

	_, err := env.enrollments.ReEnroll(env.worker.ID, training.ID)
	require.Error(t, err)
	assert.True(t, util.IsEligibilityError(err))
}

func TestReEnrollBlockedWhileCertificateValid(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	env.enroll(t, training.ID)

	_, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.correctAnswers(t, training.ID))
	require.NoError(t, err)

	_, err = env.enrollments.ReEnroll(env.worker.ID, training.ID)
	require.Error(t, err)
	assert.True(t, util.IsEligibilityError(err))
}

func TestReEnrollAfterExpiryStartsFreshCycle(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	env.enroll(t, training.ID)

	_, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.correctAnswers(t, training.ID))
	require.NoError(t, err)

	// 把证书推成已过期
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, env.db.Model(&model.Enrollment{}).
		Where("worker_id = ? AND training_id = ?", env.worker.ID, training.ID).
		Update("expires_at", expired).Error)

	got, err := env.enrollments.ReEnroll(env.worker.ID, training.ID)
	require.NoError(t, err)

	assert.Equal(t, model.EnrollmentNotStarted, got.Status)
	assert.Equal(t, 0, got.Progress)
	assert.Nil(t, got.Score)
	assert.Empty(t, got.CertificateNumber)
	assert.Equal(t, 1, got.Attempts, "attempts accumulate across cycles")

	// 旧证书保留在历史表
	history, err := env.certs.History(env.worker.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAdminResetBypassesExpiry(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	enrollment := env.enroll(t, training.ID)

	_, err := env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.correctAnswers(t, training.ID))
	require.NoError(t, err)

	supervisor := &util.Claims{WorkerID: 99, Role: model.RoleSupervisor}
	got, err := env.enrollments.AdminReset(enrollment.ID, supervisor)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentNotStarted, got.Status)
}

func TestAdminResetDeniedForWorkers(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	enrollment := env.enroll(t, training.ID)

	_, err := env.enrollments.AdminReset(enrollment.ID, &util.Claims{WorkerID: 1, Role: model.RoleWorker})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestTrackSlideProgressPersistsBreakpoint(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 0)
	env.enroll(t, training.ID)

	require.NoError(t, env.enrollments.TrackSlideProgress(env.worker.ID, training.ID, 0))

	got, err := env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentInProgress, got.Status)
	assert.Equal(t, 0, got.CurrentSlide)
	assert.Equal(t, 50, got.Progress, "slide 1 of 2")
	assert.NotNil(t, got.StartedAt)

	require.NoError(t, env.enrollments.TrackSlideProgress(env.worker.ID, training.ID, 1))
	got, err = env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
}

func TestTrackSlideProgressRejectsBadIndex(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 0)
	env.enroll(t, training.ID)

	assert.True(t, util.IsValidationError(env.enrollments.TrackSlideProgress(env.worker.ID, training.ID, -1)))
	assert.True(t, util.IsValidationError(env.enrollments.TrackSlideProgress(env.worker.ID, training.ID, 2)))
}

func TestTrackSlideProgressNoopWhenCompleted(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 0)
	env.enroll(t, training.ID)

	_, err := env.enrollments.CompleteWithoutQuiz(env.worker.ID, training.ID)
	require.NoError(t, err)

	// 复看模式下进度不回写
	require.NoError(t, env.enrollments.TrackSlideProgress(env.worker.ID, training.ID, 0))
	got, err := env.enrollments.Repo.FindByWorkerAndTraining(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, model.EnrollmentCompleted, got.Status)
}

func TestTrackSlideProgressConsultsActiveGate(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 0)
	env.enroll(t, training.ID)

	_, err := env.enrollments.OpenSession(context.Background(), env.worker.ID, training.ID)
	require.NoError(t, err)
	defer env.enrollments.CloseSession(env.worker.ID, training.ID)

	// 第 0 张停留时间未到，门控会话拒绝前进
	err = env.enrollments.TrackSlideProgress(env.worker.ID, training.ID, 1)
	require.Error(t, err)
	assert.True(t, util.IsValidationError(err))

	session := env.enrollments.Gate.Get(env.worker.ID, training.ID)
	require.NotNil(t, session)
	session.Tick()

	require.NoError(t, env.enrollments.TrackSlideProgress(env.worker.ID, training.ID, 1))
}

func TestOpenSessionShufflesAndStripsAnswers(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 5, 70, 0)
	env.enroll(t, training.ID)

	session, err := env.enrollments.OpenSession(context.Background(), env.worker.ID, training.ID)
	require.NoError(t, err)
	defer env.enrollments.CloseSession(env.worker.ID, training.ID)

	require.Len(t, session.Questions, 5)
	require.Len(t, session.Slides, 2)
	assert.Nil(t, session.Training.Questions, "answer key must not leak")

	// 卷面顺序与个人种子洗牌一致
	full, err := env.enrollments.TrainingRepo.FindByID(training.ID)
	require.NoError(t, err)
	expected := env.enrollments.Randomizer.Shuffle(full.Questions, env.worker.SapID, training.ID)
	for i := range expected {
		assert.Equal(t, expected[i].ID, session.Questions[i].ID)
	}

	// 同一员工再次打开顺序不变
	again, err := env.enrollments.OpenSession(context.Background(), env.worker.ID, training.ID)
	require.NoError(t, err)
	for i := range session.Questions {
		assert.Equal(t, session.Questions[i].ID, again.Questions[i].ID)
	}
}

func TestBulkEnrollBySapIDs(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 0, 70, 0)

	now := time.Now()
	other := &model.Worker{
		SapID: "1002", FirstName: "Anna", LastName: "Sidorova", Password: "x",
		Role: model.RoleWorker, CompanyID: env.worker.CompanyID, LastLogin: now, LastSeen: now,
	}
	require.NoError(t, env.db.Create(other).Error)

	created, err := env.enrollments.BulkEnroll(training.ID, []string{"1001", "1002", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// 再次指派静默跳过已有报名
	created, err = env.enrollments.BulkEnroll(training.ID, []string{"1001", "1002"})
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestGetCertificateRecomputesValidity(t *testing.T) {
	env := newTestEnv(t)
	training := env.seedTraining(t, 2, 70, 12)
	env.enroll(t, training.ID)

	_, err := env.enrollments.GetCertificate(env.worker.ID, training.ID)
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)

	_, err = env.enrollments.SubmitQuiz(env.worker.ID, training.ID, env.correctAnswers(t, training.ID))
	require.NoError(t, err)

	view, err := env.enrollments.GetCertificate(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.False(t, view.IsExpired)
	assert.True(t, view.IsValid)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, env.db.Model(&model.Enrollment{}).
		Where("worker_id = ? AND training_id = ?", env.worker.ID, training.ID).
		Update("expires_at", expired).Error)

	view, err = env.enrollments.GetCertificate(env.worker.ID, training.ID)
	require.NoError(t, err)
	assert.True(t, view.IsExpired)
	assert.False(t, view.IsValid)
}
