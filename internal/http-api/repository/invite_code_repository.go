package repository

import (
	"context"

	"comichub/internal/http-api/models"

	"gorm.io/gorm"
)

// InviteCodeRepository backs the invite-gated registration flow.
type InviteCodeRepository interface {
	FindByCode(ctx context.Context, code string) (*models.InviteCode, error)
	Delete(ctx context.Context, code string) error
	RecordUse(ctx context.Context, use *models.UsedInviteCode) error
}

type inviteCodeRepository struct {
	db *gorm.DB
}

func NewInviteCodeRepository(db *gorm.DB) InviteCodeRepository {
	return &inviteCodeRepository{db: db}
}

func (r *inviteCodeRepository) FindByCode(ctx context.Context, code string) (*models.InviteCode, error) {
	var ic models.InviteCode
	if err := r.db.WithContext(ctx).First(&ic, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &ic, nil
}

// Delete consumes the code so it cannot be used twice.
func (r *inviteCodeRepository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Delete(&models.InviteCode{Code: code}).Error
}

func (r *inviteCodeRepository) RecordUse(ctx context.Context, use *models.UsedInviteCode) error {
	return r.db.WithContext(ctx).Create(use).Error
}
