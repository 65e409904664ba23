package service

import (
	"regexp"
	"testing"
	"time"

	"safety_training_backend/internal/config"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiresAtAddsCalendarMonths(t *testing.T) {
	completed := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	expires := ExpiresAt(completed, 12)
	require.NotNil(t, expires)
	assert.Equal(t, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC), *expires)

	expires = ExpiresAt(completed, 6)
	require.NotNil(t, expires)
	assert.Equal(t, time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC), *expires)
}

func TestExpiresAtZeroMonthsMeansPerpetual(t *testing.T) {
	assert.Nil(t, ExpiresAt(time.Now(), 0))
	assert.Nil(t, ExpiresAt(time.Now(), -1))
}

func TestCertificateNumberFormat(t *testing.T) {
	issued := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ST-2026-[0-9A-F]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number := NewCertificateNumber(issued)
		assert.Regexp(t, pattern, number)
		seen[number] = true
	}
	assert.Len(t, seen, 50, "certificate numbers must be unique")
}

func TestIssueCopiesValidityFromTraining(t *testing.T) {
	svc := NewCertificateService(nil, &config.CertificateConfig{IssuedBy: "Safety Training Department"})
	enrollment := &model.Enrollment{WorkerID: 4}
	enrollment.ID = 9
	training := &model.Training{ValidityPeriod: 12}
	training.ID = 2

	completed := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	score := 85
	cert := svc.Issue(enrollment, training, completed, &score)

	assert.Equal(t, uint(9), cert.EnrollmentID)
	assert.Equal(t, uint(4), cert.WorkerID)
	assert.Equal(t, uint(2), cert.TrainingID)
	assert.Equal(t, "Safety Training Department", cert.IssuedBy)
	assert.Equal(t, completed, cert.IssuedAt)
	require.NotNil(t, cert.ExpiresAt)
	assert.Equal(t, completed.AddDate(0, 12, 0), *cert.ExpiresAt)
	require.NotNil(t, cert.Score)
	assert.Equal(t, 85, *cert.Score)
}

func TestBuildViewRecomputesExpiry(t *testing.T) {
	svc := NewCertificateService(nil, &config.CertificateConfig{})

	completed := time.Now().Add(-time.Hour)
	valid := time.Now().Add(24 * time.Hour)
	score := 90
	enrollment := &model.Enrollment{
		Status:            model.EnrollmentCompleted,
		Score:             &score,
		Attempts:          2,
		CompletedAt:       &completed,
		CertificateNumber: "ST-2026-00FF00FF",
		IssuedBy:          "Safety Training Department",
		ExpiresAt:         &valid,
	}

	view, err := svc.BuildView(enrollment)
	require.NoError(t, err)
	assert.False(t, view.IsExpired)
	assert.True(t, view.IsValid)
	assert.Equal(t, 2, view.Attempts)

	expired := time.Now().Add(-time.Minute)
	enrollment.ExpiresAt = &expired
	view, err = svc.BuildView(enrollment)
	require.NoError(t, err)
	assert.True(t, view.IsExpired)
	assert.False(t, view.IsValid)
}

func TestBuildViewPerpetualCertificateNeverExpires(t *testing.T) {
	svc := NewCertificateService(nil, &config.CertificateConfig{})

	completed := time.Now().AddDate(-10, 0, 0)
	enrollment := &model.Enrollment{
		Status:            model.EnrollmentCompleted,
		CompletedAt:       &completed,
		CertificateNumber: "ST-2016-12345678",
		ExpiresAt:         nil,
	}

	view, err := svc.BuildView(enrollment)
	require.NoError(t, err)
	assert.False(t, view.IsExpired)
	assert.True(t, view.IsValid)
}

func TestBuildViewRequiresCompletedCycle(t *testing.T) {
	svc := NewCertificateService(nil, &config.CertificateConfig{})

	_, err := svc.BuildView(&model.Enrollment{Status: model.EnrollmentInProgress})
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)

	// 重置后的周期没有证书，即使历史上完成过
	_, err = svc.BuildView(&model.Enrollment{Status: model.EnrollmentNotStarted, Attempts: 3})
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)
}
