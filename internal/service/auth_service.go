package service

import (
	"safety_training_backend/internal/config"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/repository"
	"safety_training_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	WorkerRepo *repository.WorkerRepository
	Config     *config.Config
}

func NewAuthService(workerRepo *repository.WorkerRepository, cfg *config.Config) *AuthService {
	return &AuthService{WorkerRepo: workerRepo, Config: cfg}
}

type LoginResult struct {
	Token  string        `json:"token"`
	Worker *model.Worker `json:"worker"`
}

// Login 按工号登录
func (s *AuthService) Login(sapID, password string) (*LoginResult, error) {
	worker, err := s.WorkerRepo.FindBySapID(sapID)
	if err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if worker.Disabled {
		return nil, util.ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(worker.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(worker, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	_ = s.WorkerRepo.UpdateLastLogin(worker.ID)

	return &LoginResult{Token: token, Worker: worker}, nil
}

// Profile 返回当前登录工人的信息（含归属公司）
func (s *AuthService) Profile(workerID uint) (*model.Worker, error) {
	return s.WorkerRepo.FindByID(workerID)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
