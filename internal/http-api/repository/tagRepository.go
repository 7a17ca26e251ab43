package repository

import (
	"context"
	"errors"
	"fmt"

	"comichub/internal/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateName is returned when the unique index on tags.name rejects an
// insert. The registry does lookup-then-create, so this only fires when two
// requests race on the same new name.
var ErrDuplicateName = errors.New("tag name already exists")

// TagCount is one row of the popular-tags ranking.
type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// TagRepository defines the data access contract for the tag registry.
type TagRepository interface {
	GetAll(ctx context.Context) ([]models.Tag, error)
	GetPopular(ctx context.Context, limit int) ([]TagCount, error)
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	Create(ctx context.Context, t *models.Tag) error
}

// tagRepository is the GORM implementation of TagRepository.
type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var list []models.Tag
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	return list, nil
}

// GetPopular ranks tags by how many comics carry them, most used first.
// The inner JOIN drops tags no comic references; ties break on name so the
// ranking is stable.
func (r *tagRepository) GetPopular(ctx context.Context, limit int) ([]TagCount, error) {
	var list []TagCount
	if err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.name AS name, COUNT(ct.comic_id) AS count").
		Joins("JOIN comic_tags ct ON ct.tag_id = tags.id").
		Group("tags.name").
		Order("count desc, tags.name asc").
		Limit(limit).
		Scan(&list).Error; err != nil {
		return nil, fmt.Errorf("get popular tags: %w", err)
	}
	return list, nil
}

func (r *tagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var t models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tagRepository) Create(ctx context.Context, t *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
