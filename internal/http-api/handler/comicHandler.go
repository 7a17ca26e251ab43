package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"comichub/internal/http-api/dto"
	"comichub/internal/http-api/middleware"
	"comichub/internal/http-api/models"
	"comichub/internal/http-api/repository"
	"comichub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type ComicHandler struct {
	svc service.ComicService
}

func NewComicHandler(svc service.ComicService) *ComicHandler {
	return &ComicHandler{svc: svc}
}

// RegisterRoutes mounts the catalog endpoints. authMW guards the mutating
// routes; reads are public.
func (h *ComicHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/search", h.Search)
	rg.GET("/:comic_id", h.Get)
	rg.POST("/:comic_id/view", h.View)

	rg.POST("", authMW, h.Upload)
	rg.PUT("/:comic_id", authMW, h.Update)
	rg.PUT("/:comic_id/cover", authMW, h.UpdateCover)
	rg.DELETE("/:comic_id", authMW, h.Delete)
}

func (h *ComicHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Parse pagination parameters (zero-indexed pages)
	page := 0
	pageSize := 0

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed >= 0 {
			page = parsed
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}

	sort := c.DefaultQuery("sort", repository.SortNone)

	result, err := h.svc.GetAll(ctx, page, pageSize, sort)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": dto.FromModelsToResponses(result.Items),
		"pagination": gin.H{
			"page":        page,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// Search serves both search modes: a keyword parameter runs the single-term
// multi-field search, otherwise title/author/tag are ANDed as field filters.
func (h *ComicHandler) Search(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var list []models.Comic
	var err error
	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		list, err = h.svc.SearchByKeyword(ctx, keyword)
	} else {
		list, err = h.svc.AdvancedSearch(ctx, c.Query("title"), c.Query("author"), c.Query("tag"))
	}
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToResponses(list)})
}

func (h *ComicHandler) Get(c *gin.Context) {
	id, err := comicID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comic, err := h.svc.GetByID(ctx, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToResponse(*comic))
}

// View counts one hit on the comic. Every call counts; this is a hit
// counter, not unique visitors.
func (h *ComicHandler) View(c *gin.Context) {
	id, err := comicID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.IncrementView(ctx, id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upload accepts a multipart form: title, description, author, tags
// (repeatable, comma-separated values accepted), cover (one file) and
// pages (one or more files, in reading order).
func (h *ComicHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	in := service.UploadComicInput{
		Title: c.PostForm("title"),
		Tags:  form.Value["tags"],
	}
	if v := c.PostForm("description"); v != "" {
		in.Description = &v
	}
	if v := c.PostForm("author"); v != "" {
		in.Author = &v
	}
	if covers := form.File["cover"]; len(covers) > 0 {
		in.Cover = service.MultipartFile(covers[0])
	}
	for _, fh := range form.File["pages"] {
		in.Pages = append(in.Pages, service.MultipartFile(fh))
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	comic, err := h.svc.Upload(ctx, in, middleware.CurrentUser(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToResponse(*comic))
}

func (h *ComicHandler) Update(c *gin.Context) {
	id, err := comicID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var in dto.UpdateComicDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comic, err := h.svc.Update(ctx, id, service.UpdateComicInput{
		Title:       in.Title,
		Description: in.Description,
		Author:      in.Author,
		Tags:        in.Tags,
	}, middleware.CurrentUser(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToResponse(*comic))
}

func (h *ComicHandler) UpdateCover(c *gin.Context) {
	id, err := comicID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	fh, err := c.FormFile("cover")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cover file is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	comic, err := h.svc.UpdateCover(ctx, id, service.MultipartFile(fh), middleware.CurrentUser(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToResponse(*comic))
}

func (h *ComicHandler) Delete(c *gin.Context) {
	id, err := comicID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id, middleware.CurrentUser(c)); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func comicID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("comic_id"), 10, 64)
}
