package user

import (
	"context"
	"fmt"

	"organic-be/internal/logger"
	"organic-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (User, error)
	List(ctx context.Context, email string) ([]User, error)
	UpdateRole(ctx context.Context, id int64, role Role) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register stores the account as given. Duplicate emails are not rejected.
func (s *service) Register(ctx context.Context, input RegisterInput) (User, error) {
	log := logger.FromCtx(ctx)

	if err := utils.ValidateStruct(input); err != nil {
		return User{}, err
	}

	u, err := s.repo.Create(ctx, User{
		Email: input.Email,
		Name:  input.Name,
		Photo: input.Photo,
		Role:  input.Role,
	})
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user registered",
		zap.Int64("user_id", u.ID),
		zap.String("email", u.Email),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}

func (s *service) List(ctx context.Context, email string) ([]User, error) {
	users, err := s.repo.List(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if email != "" && len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users, nil
}

func (s *service) UpdateRole(ctx context.Context, id int64, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("user role updated",
		zap.Int64("user_id", id),
		zap.String("role", string(role)),
	)
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("user deleted", zap.Int64("user_id", id))
	return nil
}
