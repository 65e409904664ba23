package service

import (
	"testing"
	"time"

	"safety_training_backend/internal/config"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/repository"
	"safety_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEnv(t *testing.T) (*AuthService, *model.Worker) {
	t.Helper()
	db := setupTestDB(t)

	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret"
	cfg.JWT.ExpireTime = time.Hour

	svc := NewAuthService(repository.NewWorkerRepository(db), cfg)

	hash, err := svc.HashPassword("safe-password")
	require.NoError(t, err)

	now := time.Now()
	worker := &model.Worker{
		SapID:     "1001",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Password:  hash,
		Role:      model.RoleWorker,
		CompanyID: 1,
		LastLogin: now,
		LastSeen:  now,
	}
	require.NoError(t, db.Create(worker).Error)
	return svc, worker
}

func TestLoginReturnsValidToken(t *testing.T) {
	svc, worker := newAuthEnv(t)

	result, err := svc.Login("1001", "safe-password")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, worker.ID, result.Worker.ID)

	claims, err := util.ParseJWT(result.Token, svc.Config.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, worker.ID, claims.WorkerID)
	assert.Equal(t, "1001", claims.SapID)
	assert.Equal(t, model.RoleWorker, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthEnv(t)

	_, err := svc.Login("1001", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestLoginRejectsUnknownSapID(t *testing.T) {
	svc, _ := newAuthEnv(t)

	_, err := svc.Login("9999", "safe-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestProfileReturnsWorker(t *testing.T) {
	svc, worker := newAuthEnv(t)

	got, err := svc.Profile(worker.ID)
	require.NoError(t, err)
	assert.Equal(t, "1001", got.SapID)
	assert.Equal(t, "Petrov", got.LastName)

	_, err = svc.Profile(worker.ID + 100)
	assert.ErrorIs(t, err, util.ErrWorkerNotFound)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, worker := newAuthEnv(t)

	require.NoError(t, svc.WorkerRepo.DB.Model(worker).Update("disabled", true).Error)

	_, err := svc.Login("1001", "safe-password")
	assert.ErrorIs(t, err, util.ErrAccountDisabled)
}
