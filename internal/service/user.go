package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
)

type UserParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      model.UserRole
	Address   *model.Address
}

type UserService interface {
	// CreateUser stores the user and returns it together with every user known afterwards.
	CreateUser(ctx context.Context, params UserParams) (model.User, []model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, params UserParams) (model.User, error)
}

type userService struct {
	db       db.DB
	userRepo repository.UserRepository
}

func NewUserService(
	db db.DB,
	userRepo repository.UserRepository,
) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
	}
}

func (s *userService) CreateUser(ctx context.Context, params UserParams) (model.User, []model.User, error) {
	var (
		user  model.User
		users []model.User
	)
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		user, err = s.userRepo.
			WithDB(db).
			CreateUser(ctx, repository.UserParams(params))
		if err != nil {
			return fmt.Errorf("user repository create user: %w", err)
		}

		users, err = s.userRepo.
			WithDB(db).
			ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("user repository list users: %w", err)
		}

		return nil
	}); err != nil {
		return model.User{}, nil, storageErr(fmt.Errorf("db with tx: %w", err))
	}

	return user, users, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.UserNotFoundErr
		}
		return model.User{}, storageErr(fmt.Errorf("user repository get user: %w", err))
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, storageErr(fmt.Errorf("user repository list users: %w", err))
	}

	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, params UserParams) (model.User, error) {
	user, err := s.userRepo.UpdateUser(ctx, id, repository.UserParams(params))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.UserNotFoundErr
		}
		return model.User{}, storageErr(fmt.Errorf("user repository update user: %w", err))
	}

	return user, nil
}
