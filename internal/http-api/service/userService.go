package service

import (
	"context"
	"errors"
	"fmt"

	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"

	"gorm.io/gorm"
)

type UserService interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UploadAvatar stores a new avatar image and repoints the user record.
	UploadAvatar(ctx context.Context, username string, file File, requester *models.User) (*models.User, error)
}

type userService struct {
	repo    repository.UserRepository
	storage StorageService
}

func NewUserService(r repository.UserRepository, storage StorageService) UserService {
	return &userService{repo: r, storage: storage}
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, username string, file File, requester *models.User) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if requester == nil || (requester.ID != user.ID && !requester.IsAdmin()) {
		return nil, fmt.Errorf("%w: cannot change another user's avatar", ErrPermissionDenied)
	}

	avatarPath, err := s.storage.StoreAvatar(file, username)
	if err != nil {
		return nil, err
	}

	user.AvatarPath = &avatarPath
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
