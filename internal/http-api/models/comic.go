package models

import "time"

type Comic struct {
	ID             int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Title          string  `json:"title" gorm:"not null"`
	Description    *string `json:"description,omitempty"`
	Author         *string `json:"author,omitempty"`
	CoverImagePath string  `json:"cover_image_path"`
	// FolderPath is the id of the page directory under comics/. Assigned once
	// at upload time and never changed afterwards; unique across the catalog.
	FolderPath string `json:"folder_path" gorm:"uniqueIndex;size:64;not null"`
	PageCount  int    `json:"page_count"`
	ViewCount  int64  `json:"view_count" gorm:"default:0;not null"`

	UserID string `json:"user_id" gorm:"type:uuid;index;not null"`
	User   *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`

	// association
	Tags []Tag `json:"tags,omitempty" gorm:"many2many:comic_tags;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Comic) TableName() string {
	return "comics"
}
