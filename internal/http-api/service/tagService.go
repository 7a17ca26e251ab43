package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"

	"gorm.io/gorm"
)

const (
	defaultPopularTags = 10
	maxPopularTags     = 100
)

// TagService resolves free-text tag input into canonical Tag records,
// deduplicated by exact name.
type TagService interface {
	Resolve(ctx context.Context, rawInputs []string) ([]models.Tag, error)
	ListAllNames(ctx context.Context) ([]string, error)
	ListPopular(ctx context.Context, limit int) ([]repository.TagCount, error)
}

type tagService struct {
	repo repository.TagRepository
}

func NewTagService(r repository.TagRepository) TagService {
	return &tagService{repo: r}
}

// SplitTagInput normalizes one raw input string into tag names: it splits on
// commas, trims whitespace and drops entries that are empty after trimming.
// A plain single name passes through unchanged.
func SplitTagInput(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Resolve turns raw tag strings (single names or comma-separated lists) into
// Tag records, creating missing ones. The result never contains two tags with
// the same name, even when the same name appears across multiple inputs.
func (s *tagService) Resolve(ctx context.Context, rawInputs []string) ([]models.Tag, error) {
	seen := make(map[string]bool)
	var tags []models.Tag

	for _, raw := range rawInputs {
		for _, name := range SplitTagInput(raw) {
			if seen[name] {
				continue
			}
			seen[name] = true

			tag, err := s.getOrCreate(ctx, name)
			if err != nil {
				return nil, err
			}
			tags = append(tags, *tag)
		}
	}
	return tags, nil
}

func (s *tagService) ListAllNames(ctx context.Context) ([]string, error) {
	tags, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names, nil
}

// ListPopular returns the most used tags with their usage counts. A non
// positive limit falls back to the default; oversized limits are clamped.
func (s *tagService) ListPopular(ctx context.Context, limit int) ([]repository.TagCount, error) {
	if limit <= 0 {
		limit = defaultPopularTags
	}
	if limit > maxPopularTags {
		limit = maxPopularTags
	}
	return s.repo.GetPopular(ctx, limit)
}

func (s *tagService) getOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup tag %q: %w", name, err)
	}

	created := &models.Tag{Name: name}
	if err := s.repo.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			// lost the create race to a concurrent resolve of the same name
			return nil, fmt.Errorf("%w: tag %q", ErrDuplicateEntity, name)
		}
		return nil, err
	}
	return created, nil
}
