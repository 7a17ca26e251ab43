package dto

import (
	"time"

	"comichub/internal/http-api/models"
)

// UpdateComicDTO used for PUT /api/comics/:comic_id. A null tags field keeps
// the current tag set; a present one replaces it wholesale.
type UpdateComicDTO struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Author      *string  `json:"author,omitempty"`
	Tags        []string `json:"tags"`
}

// ComicResponse DTO for responses
type ComicResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	Author         *string   `json:"author,omitempty"`
	CoverImagePath string    `json:"cover_image_path"`
	PageCount      int       `json:"page_count"`
	ViewCount      int64     `json:"view_count"`
	UserID         string    `json:"user_id"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Converters
func FromModelToResponse(c models.Comic) ComicResponse {
	tags := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		tags = append(tags, t.Name)
	}
	return ComicResponse{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Author:         c.Author,
		CoverImagePath: c.CoverImagePath,
		PageCount:      c.PageCount,
		ViewCount:      c.ViewCount,
		UserID:         c.UserID,
		Tags:           tags,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func FromModelsToResponses(list []models.Comic) []ComicResponse {
	resp := make([]ComicResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, FromModelToResponse(c))
	}
	return resp
}
