package service

import (
	"context"
	"testing"
	"time"

	"safety_training_backend/internal/model"
	"safety_training_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, completionRate(0, 0), "no eligible workers is 0%, not an error")
	assert.Equal(t, 0, completionRate(0, 10))
	assert.Equal(t, 50, completionRate(1, 2))
	assert.Equal(t, 67, completionRate(2, 3))
	assert.Equal(t, 100, completionRate(7, 7))
}

func TestCompletionStatsWithoutRedis(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(repository.NewDashboardRepository(db), nil)

	company := &model.Company{Name: "Alpha Mining", INN: "7701000001", IsActive: true}
	require.NoError(t, db.Create(company).Error)

	training := &model.Training{Title: "Fire Safety", IsActive: true}
	require.NoError(t, db.Create(training).Error)

	now := time.Now()
	for i, status := range []model.EnrollmentStatus{
		model.EnrollmentCompleted,
		model.EnrollmentCompleted,
		model.EnrollmentInProgress,
		model.EnrollmentNotStarted,
	} {
		worker := &model.Worker{
			SapID: string(rune('a' + i)), FirstName: "W", LastName: "W", Password: "x",
			Role: model.RoleWorker, CompanyID: company.ID, LastLogin: now, LastSeen: now,
		}
		require.NoError(t, db.Create(worker).Error)
		require.NoError(t, db.Create(&model.Enrollment{
			WorkerID: worker.ID, TrainingID: training.ID, Status: status,
		}).Error)
	}

	summary, err := svc.CompletionStats(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, summary.Stats, 1)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 50, summary.Percentage)
	assert.Equal(t, 50, summary.Stats[0].Percentage)
}

func TestCompletionStatsEmptyScope(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(repository.NewDashboardRepository(db), nil)

	summary, err := svc.CompletionStats(context.Background(), 42, 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Stats)
	assert.Equal(t, 0, summary.Percentage)
}
