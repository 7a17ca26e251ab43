package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"comichub/internal/http-api/handler"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- MOCK SERVICE ---

type MockComicService struct {
	mock.Mock
}

func (m *MockComicService) GetAll(ctx context.Context, page, pageSize int, sort string) (*service.ListPage, error) {
	args := m.Called(ctx, page, pageSize, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListPage), args.Error(1)
}

func (m *MockComicService) GetByID(ctx context.Context, id int64) (*models.Comic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comic), args.Error(1)
}

func (m *MockComicService) GetByUser(ctx context.Context, userID string) ([]models.Comic, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Comic), args.Error(1)
}

func (m *MockComicService) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockComicService) Upload(ctx context.Context, in service.UploadComicInput, owner *models.User) (*models.Comic, error) {
	args := m.Called(ctx, in, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comic), args.Error(1)
}

func (m *MockComicService) Update(ctx context.Context, id int64, in service.UpdateComicInput, requester *models.User) (*models.Comic, error) {
	args := m.Called(ctx, id, in, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comic), args.Error(1)
}

func (m *MockComicService) UpdateCover(ctx context.Context, id int64, cover service.File, requester *models.User) (*models.Comic, error) {
	args := m.Called(ctx, id, cover, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comic), args.Error(1)
}

func (m *MockComicService) Delete(ctx context.Context, id int64, requester *models.User) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func (m *MockComicService) IncrementView(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockComicService) AdvancedSearch(ctx context.Context, title, author, tag string) ([]models.Comic, error) {
	args := m.Called(ctx, title, author, tag)
	return args.Get(0).([]models.Comic), args.Error(1)
}

func (m *MockComicService) SearchByKeyword(ctx context.Context, keyword string) ([]models.Comic, error) {
	args := m.Called(ctx, keyword)
	return args.Get(0).([]models.Comic), args.Error(1)
}

// --- SETUP ---

func mockAuthMiddleware(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("username", "testuser")
		c.Set("role", role)
		c.Next()
	}
}

func setupRouter(svc *MockComicService, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewComicHandler(svc)
	h.RegisterRoutes(r.Group("/api/comics"), mockAuthMiddleware(userID, role))
	return r
}

// --- TESTS ---

func TestListPagination(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "u1", models.RoleUser)

	items := make([]models.Comic, 12)
	for i := range items {
		items[i] = models.Comic{ID: int64(i + 1), Title: fmt.Sprintf("Comic %d", i+1)}
	}
	svc.On("GetAll", mock.Anything, 0, 12, "popular").Return(&service.ListPage{
		Items: items, Total: 15, TotalPages: 2,
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/comics?page=0&page_size=12&sort=popular", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			Page       int   `json:"page"`
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 12)
	assert.Equal(t, int64(15), body.Pagination.Total)
	assert.Equal(t, int64(2), body.Pagination.TotalPages)
}

func TestGetNotFound(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "u1", models.RoleUser)

	svc.On("GetByID", mock.Anything, int64(99)).
		Return(nil, fmt.Errorf("%w: comic 99", service.ErrNotFound))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/comics/99", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetInvalidID(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "u1", models.RoleUser)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/comics/not-a-number", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchPassesFilters(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "u1", models.RoleUser)

	svc.On("AdvancedSearch", mock.Anything, "Demo", "alex", "action").
		Return([]models.Comic{{ID: 1, Title: "Demo"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/comics/search?title=Demo&author=alex&tag=action", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertCalled(t, "AdvancedSearch", mock.Anything, "Demo", "alex", "action")
}

func TestSearchKeywordMode(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "u1", models.RoleUser)

	svc.On("SearchByKeyword", mock.Anything, "naruto").
		Return([]models.Comic{{ID: 4, Title: "Naruto"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/comics/search?keyword=naruto", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertCalled(t, "SearchByKeyword", mock.Anything, "naruto")
	// keyword wins over field filters; the AND path is never consulted
	svc.AssertNotCalled(t, "AdvancedSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListKeepsPopularOrder(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "u1", models.RoleUser)

	// most viewed first, as the catalog returns them
	items := []models.Comic{
		{ID: 3, Title: "Third", ViewCount: 30},
		{ID: 1, Title: "First", ViewCount: 20},
		{ID: 2, Title: "Second", ViewCount: 10},
	}
	svc.On("GetAll", mock.Anything, 0, 3, "popular").Return(&service.ListPage{
		Items: items, Total: 3, TotalPages: 1,
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/comics?page=0&page_size=3&sort=popular", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			ID        int64 `json:"id"`
			ViewCount int64 `json:"view_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{body.Data[0].ID, body.Data[1].ID, body.Data[2].ID})
	for i := 1; i < len(body.Data); i++ {
		assert.GreaterOrEqual(t, body.Data[i-1].ViewCount, body.Data[i].ViewCount)
	}
}

func TestDeleteForbidden(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "stranger", models.RoleUser)

	svc.On("Delete", mock.Anything, int64(1), mock.MatchedBy(func(u *models.User) bool {
		return u != nil && u.ID == "stranger"
	})).Return(fmt.Errorf("%w: not the owner", service.ErrPermissionDenied))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/comics/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteNoContent(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "owner-id", models.RoleCreator)

	svc.On("Delete", mock.Anything, int64(1), mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/comics/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestViewCountsHit(t *testing.T) {
	svc := new(MockComicService)
	r := setupRouter(svc, "u1", models.RoleUser)

	svc.On("IncrementView", mock.Anything, int64(3)).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/comics/3/view", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertCalled(t, "IncrementView", mock.Anything, int64(3))
}
