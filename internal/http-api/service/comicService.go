package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comichub/internal/cache"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	listCachePrefix = "comics:list:"
)

// UploadComicInput carries everything needed to create a comic: metadata,
// raw tag strings (single names or comma-separated lists), the cover and the
// ordered page files.
type UploadComicInput struct {
	Title       string
	Description *string
	Author      *string
	Tags        []string
	Cover       File
	Pages       []File
}

// UpdateComicInput carries a metadata edit. A nil Tags leaves the tag set
// untouched; a non-nil Tags replaces it wholesale.
type UpdateComicInput struct {
	Title       string
	Description *string
	Author      *string
	Tags        []string
}

// ListPage is one page of catalog results plus the total record count.
type ListPage struct {
	Items      []models.Comic `json:"items"`
	Total      int64          `json:"total"`
	TotalPages int64          `json:"total_pages"`
}

type ComicService interface {
	GetAll(ctx context.Context, page, pageSize int, sort string) (*ListPage, error)
	GetByID(ctx context.Context, id int64) (*models.Comic, error)
	GetByUser(ctx context.Context, userID string) ([]models.Comic, error)
	CountByUser(ctx context.Context, userID string) (int64, error)

	Upload(ctx context.Context, in UploadComicInput, owner *models.User) (*models.Comic, error)
	Update(ctx context.Context, id int64, in UpdateComicInput, requester *models.User) (*models.Comic, error)
	UpdateCover(ctx context.Context, id int64, cover File, requester *models.User) (*models.Comic, error)
	Delete(ctx context.Context, id int64, requester *models.User) error

	IncrementView(ctx context.Context, id int64) error

	AdvancedSearch(ctx context.Context, title, author, tag string) ([]models.Comic, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]models.Comic, error)
}

type comicService struct {
	repo    repository.ComicRepository
	tags    TagService
	storage StorageService
	cache   *cache.Cache
}

// NewComicService wires the catalog against its collaborators. cache may be
// nil; listing then always hits the database.
func NewComicService(r repository.ComicRepository, tags TagService, storage StorageService, c *cache.Cache) ComicService {
	return &comicService{repo: r, tags: tags, storage: storage, cache: c}
}

// GetAll returns one zero-indexed page of the catalog. sort is one of
// repository.SortNone, SortPopular, SortLatest; page size is clamped to
// maxPageSize so a caller cannot request the whole catalog in one page.
func (s *comicService) GetAll(ctx context.Context, page, pageSize int, sort string) (*ListPage, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	key := fmt.Sprintf("%s%s:%d:%d", listCachePrefix, sort, page, pageSize)
	var cached ListPage
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	items, total, err := s.repo.GetAll(ctx, page, pageSize, sort)
	if err != nil {
		return nil, err
	}

	result := &ListPage{
		Items:      items,
		Total:      total,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	// best-effort; a failed cache write never fails the request
	_ = s.cache.Set(ctx, key, result)
	return result, nil
}

func (s *comicService) GetByID(ctx context.Context, id int64) (*models.Comic, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comic %d", ErrNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

func (s *comicService) GetByUser(ctx context.Context, userID string) ([]models.Comic, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *comicService) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountByUserID(ctx, userID)
}

// Upload creates a comic. Order matters for partial-failure damage control:
// cover and pages hit disk first and any storage failure aborts before a
// catalog record exists (files already written under the fresh folder id are
// garbage for the out-of-band sweep). The metadata record, including tag
// associations, is persisted last as a single transaction.
func (s *comicService) Upload(ctx context.Context, in UploadComicInput, owner *models.User) (*models.Comic, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(in.Pages) == 0 {
		return nil, fmt.Errorf("%w: at least one page is required", ErrValidation)
	}
	if in.Cover == nil {
		return nil, fmt.Errorf("%w: cover image is required", ErrValidation)
	}

	// fresh random folder id; uniqueness across the catalog comes from the
	// uuid entropy plus the unique index on folder_path
	folderID := uuid.New().String()

	coverPath, err := s.storage.StoreCover(in.Cover)
	if err != nil {
		return nil, err
	}

	for _, page := range in.Pages {
		// zero-byte multipart slots are skipped on disk but still counted
		// in PageCount below, matching the original system
		if page == nil || page.Size() == 0 {
			continue
		}
		if _, err := s.storage.StorePage(page, folderID); err != nil {
			return nil, err
		}
	}

	tags, err := s.tags.Resolve(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	comic := &models.Comic{
		Title:          in.Title,
		Description:    normalizeOptional(in.Description),
		Author:         normalizeOptional(in.Author),
		CoverImagePath: coverPath,
		FolderPath:     folderID,
		PageCount:      len(in.Pages),
		UserID:         owner.ID,
		Tags:           tags,
	}
	if err := s.repo.Create(ctx, comic); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return comic, nil
}

func (s *comicService) Update(ctx context.Context, id int64, in UpdateComicInput, requester *models.User) (*models.Comic, error) {
	comic, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(comic, requester) {
		return nil, fmt.Errorf("%w: user %s cannot edit comic %d", ErrPermissionDenied, requester.ID, id)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	comic.Title = in.Title
	comic.Description = normalizeOptional(in.Description)
	comic.Author = normalizeOptional(in.Author)

	if in.Tags != nil {
		tags, err := s.tags.Resolve(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		comic.Tags = tags
		// row save and tag replacement commit together; a failure rolls
		// back the whole edit
		if err := s.repo.UpdateWithTags(ctx, comic, tags); err != nil {
			return nil, err
		}
	} else if err := s.repo.Update(ctx, comic); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return comic, nil
}

// UpdateCover stores the new cover and repoints the record. The previous
// cover file stays on disk; reclaiming it belongs to the orphan sweep, not
// to this path.
func (s *comicService) UpdateCover(ctx context.Context, id int64, cover File, requester *models.User) (*models.Comic, error) {
	comic, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(comic, requester) {
		return nil, fmt.Errorf("%w: user %s cannot edit comic %d", ErrPermissionDenied, requester.ID, id)
	}

	coverPath, err := s.storage.StoreCover(cover)
	if err != nil {
		return nil, err
	}

	comic.CoverImagePath = coverPath
	if err := s.repo.Update(ctx, comic); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return comic, nil
}

// Delete removes the page folder first, then the metadata record. If the
// folder removal fails the record is deliberately kept and the error
// surfaced: losing metadata while files linger is the worse failure mode,
// and there is no transaction spanning both stores.
func (s *comicService) Delete(ctx context.Context, id int64, requester *models.User) error {
	comic, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(comic, requester) {
		return fmt.Errorf("%w: user %s cannot delete comic %d", ErrPermissionDenied, requester.ID, id)
	}

	if comic.FolderPath != "" {
		if err := s.storage.DeleteFolder(comic.FolderPath); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateListings(ctx)
	return nil
}

// IncrementView bumps the hit counter. Repeated views from the same client
// all count; the increment happens atomically in the database.
func (s *comicService) IncrementView(ctx context.Context, id int64) error {
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: comic %d", ErrNotFound, id)
		}
		return err
	}
	// popular listings drift until the cache TTL expires; acceptable for a
	// hit counter, so no invalidation here
	return nil
}

// AdvancedSearch ANDs together whichever filters are non-empty. Each filter
// computes its own candidate set (substring match on title, author, or any
// tag name) and the sets are intersected in evaluation order: title, then
// author, then tag. With no filters the whole catalog comes back. The result
// is a full unpaginated list, deliberately separate from GetAll's paginated
// path.
func (s *comicService) AdvancedSearch(ctx context.Context, title, author, tag string) ([]models.Comic, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	tag = strings.TrimSpace(tag)

	var result []models.Comic
	hasCondition := false

	if title != "" {
		byTitle, err := s.repo.SearchByTitle(ctx, title)
		if err != nil {
			return nil, err
		}
		result = byTitle
		hasCondition = true
	}

	if author != "" {
		byAuthor, err := s.repo.SearchByAuthor(ctx, author)
		if err != nil {
			return nil, err
		}
		if hasCondition {
			result = intersectByID(result, byAuthor)
		} else {
			result = byAuthor
			hasCondition = true
		}
	}

	if tag != "" {
		byTag, err := s.repo.SearchByTag(ctx, tag)
		if err != nil {
			return nil, err
		}
		if hasCondition {
			result = intersectByID(result, byTag)
		} else {
			result = byTag
			hasCondition = true
		}
	}

	if !hasCondition {
		// empty pattern matches every row: the no-filter case returns the
		// full catalog
		return s.repo.SearchByTitle(ctx, "")
	}

	return result, nil
}

// SearchByKeyword matches one term across title, author, description and tag
// names, the quick search box beside the field-filtered path. An empty
// keyword returns the full catalog, same as a filterless AdvancedSearch.
func (s *comicService) SearchByKeyword(ctx context.Context, keyword string) ([]models.Comic, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.repo.SearchByTitle(ctx, "")
	}
	return s.repo.SearchByKeyword(ctx, keyword)
}

// intersectByID keeps the elements of a whose ID also appears in b,
// preserving a's order.
func intersectByID(a, b []models.Comic) []models.Comic {
	ids := make(map[int64]bool, len(b))
	for _, c := range b {
		ids[c.ID] = true
	}
	out := make([]models.Comic, 0, len(a))
	for _, c := range a {
		if ids[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// canModify reports whether the requester owns the comic or is an admin.
func canModify(c *models.Comic, requester *models.User) bool {
	return requester != nil && (c.UserID == requester.ID || requester.IsAdmin())
}

func (s *comicService) invalidateListings(ctx context.Context) {
	_ = s.cache.InvalidatePrefix(ctx, listCachePrefix)
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
