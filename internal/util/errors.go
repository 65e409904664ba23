package util

import "errors"

var (
	ErrWorkerNotFound       = errors.New("员工不存在")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrTrainingNotFound     = errors.New("training not found")
	ErrTrainingInactive     = errors.New("training is not active")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidCredentials   = errors.New("工号或密码错误")
	ErrAccountDisabled      = errors.New("账号已被禁用")
	ErrAlreadyEnrolled      = errors.New("already enrolled in this training")
	ErrCertificateNotFound  = errors.New("certificate not found")
	ErrEnrollmentConflict   = errors.New("enrollment was modified concurrently, please retry")
	ErrTrainingHasQuestions = errors.New("training has a quiz, completion requires submission")
)

// ValidationError 本地校验失败：不产生任何状态变化，不计入答题次数
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// EligibilityError 状态不满足转换条件（如证书未过期就申请重新报名）
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string {
	return e.Reason
}

func NewEligibilityError(reason string) error {
	return &EligibilityError{Reason: reason}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsEligibilityError(err error) bool {
	var ee *EligibilityError
	return errors.As(err, &ee)
}
