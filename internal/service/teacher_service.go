package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-announcements/pkg/errors"
)

type teacherRepository interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// TeacherService gates mutating operations on the existence of a staff account.
type TeacherService struct {
	repo   teacherRepository
	logger *zap.Logger
}

// NewTeacherService constructs the service.
func NewTeacherService(repo teacherRepository, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, logger: logger}
}

// Authorize succeeds when username names a registered teacher.
func (s *TeacherService) Authorize(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return appErrors.ErrUnauthorized
	}
	ok, err := s.repo.Exists(ctx, username)
	if err != nil {
		s.logger.Error("teacher lookup failed", zap.String("teacher_username", username), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teacher")
	}
	if !ok {
		return appErrors.ErrUnauthorized
	}
	return nil
}
