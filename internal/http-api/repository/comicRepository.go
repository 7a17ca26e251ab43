package repository

import (
	"context"
	"errors"
	"fmt"

	"comichub/internal/http-api/models"

	"gorm.io/gorm"
)

// Sort modes accepted by GetAll.
const (
	SortNone    = "none"
	SortPopular = "popular" // view_count desc
	SortLatest  = "latest"  // created_at desc
)

// ComicRepository defines the data access contract for the comic catalog.
type ComicRepository interface {
	GetAll(ctx context.Context, page, pageSize int, sort string) ([]models.Comic, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Comic, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Comic, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, c *models.Comic) error
	Update(ctx context.Context, c *models.Comic) error
	UpdateWithTags(ctx context.Context, c *models.Comic, tags []models.Tag) error
	Delete(ctx context.Context, id int64) error

	IncrementViewCount(ctx context.Context, id int64) error

	SearchByTitle(ctx context.Context, title string) ([]models.Comic, error)
	SearchByAuthor(ctx context.Context, author string) ([]models.Comic, error)
	SearchByTag(ctx context.Context, tagName string) ([]models.Comic, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]models.Comic, error)
}

// comicRepository is the GORM implementation of ComicRepository.
type comicRepository struct {
	db *gorm.DB
}

func NewComicRepository(db *gorm.DB) ComicRepository {
	return &comicRepository{db: db}
}

// GetAll returns one zero-indexed page of comics plus the total record count.
func (r *comicRepository) GetAll(ctx context.Context, page, pageSize int, sort string) ([]models.Comic, int64, error) {
	var list []models.Comic
	var total int64

	// Count total records
	if err := r.db.WithContext(ctx).Model(&models.Comic{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count comics: %w", err)
	}

	// id as tiebreaker keeps pages stable between requests; without an
	// ORDER BY Postgres may repeat or skip rows across pages
	q := r.db.WithContext(ctx).Preload("Tags")
	switch sort {
	case SortPopular:
		q = q.Order("view_count desc, id")
	case SortLatest:
		q = q.Order("created_at desc, id")
	default:
		q = q.Order("id")
	}

	if err := q.
		Limit(pageSize).
		Offset(page * pageSize).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list comics: %w", err)
	}

	return list, total, nil
}

func (r *comicRepository) GetByID(ctx context.Context, id int64) (*models.Comic, error) {
	var c models.Comic
	if err := r.db.WithContext(ctx).Preload("Tags").First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get comic: %w", err)
	}
	return &c, nil
}

func (r *comicRepository) GetByUserID(ctx context.Context, userID string) ([]models.Comic, error) {
	var list []models.Comic
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get comics by user: %w", err)
	}
	return list, nil
}

func (r *comicRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comic{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count comics by user: %w", err)
	}
	return n, nil
}

// Create persists the comic and its tag associations in one transaction.
// GORM will populate c.ID and c.CreatedAt.
func (r *comicRepository) Create(ctx context.Context, c *models.Comic) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create comic: %w", err)
	}
	return nil
}

func (r *comicRepository) Update(ctx context.Context, c *models.Comic) error {
	// Save only touches the comics row; tag associations stay as they are.
	// Edits that also change tags go through UpdateWithTags.
	if err := r.db.WithContext(ctx).Omit("Tags").Save(c).Error; err != nil {
		return fmt.Errorf("update comic: %w", err)
	}
	return nil
}

// UpdateWithTags saves the row and swaps the tag set wholesale inside one
// transaction, so a failed save never leaves a half-applied edit.
func (r *comicRepository) UpdateWithTags(ctx context.Context, c *models.Comic, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Save(c).Error; err != nil {
			return err
		}
		return tx.Model(c).Association("Tags").Replace(&tags)
	})
	if err != nil {
		return fmt.Errorf("update comic with tags: %w", err)
	}
	return nil
}

func (r *comicRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Select("Tags").Delete(&models.Comic{ID: id}).Error; err != nil {
		return fmt.Errorf("delete comic: %w", err)
	}
	return nil
}

// IncrementViewCount bumps the counter in a single UPDATE so concurrent
// views never lose increments at a read-modify-write boundary.
func (r *comicRepository) IncrementViewCount(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comic{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment view count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchByTitle performs a case-insensitive substring match on title.
func (r *comicRepository) SearchByTitle(ctx context.Context, title string) ([]models.Comic, error) {
	var list []models.Comic
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("title ILIKE ?", "%"+title+"%").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search comics by title: %w", err)
	}
	return list, nil
}

// SearchByAuthor performs a case-insensitive substring match on author.
// COALESCE avoids NULL author rows breaking the ILIKE.
func (r *comicRepository) SearchByAuthor(ctx context.Context, author string) ([]models.Comic, error) {
	var list []models.Comic
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("COALESCE(author,'') ILIKE ?", "%"+author+"%").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search comics by author: %w", err)
	}
	return list, nil
}

// SearchByTag returns comics with at least one tag whose name contains tagName.
func (r *comicRepository) SearchByTag(ctx context.Context, tagName string) ([]models.Comic, error) {
	var list []models.Comic
	if err := r.db.WithContext(ctx).
		Model(&models.Comic{}).
		Distinct("comics.*").
		Joins("JOIN comic_tags ct ON ct.comic_id = comics.id").
		Joins("JOIN tags t ON t.id = ct.tag_id").
		Where("t.name ILIKE ?", "%"+tagName+"%").
		Preload("Tags").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search comics by tag: %w", err)
	}
	return list, nil
}

// SearchByKeyword matches a single term against title, author, description
// and tag names at once. LEFT JOINs keep untagged comics in play; DISTINCT
// collapses comics matched through several tags.
func (r *comicRepository) SearchByKeyword(ctx context.Context, keyword string) ([]models.Comic, error) {
	var list []models.Comic
	pattern := "%" + keyword + "%"
	if err := r.db.WithContext(ctx).
		Model(&models.Comic{}).
		Distinct("comics.*").
		Joins("LEFT JOIN comic_tags ct ON ct.comic_id = comics.id").
		Joins("LEFT JOIN tags t ON t.id = ct.tag_id").
		Where("comics.title ILIKE ? OR COALESCE(comics.author,'') ILIKE ? OR COALESCE(comics.description,'') ILIKE ? OR COALESCE(t.name,'') ILIKE ?",
			pattern, pattern, pattern, pattern).
		Preload("Tags").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search comics by keyword: %w", err)
	}
	return list, nil
}
