package models

// explicit join model so the comic_tags table has its own id
type ComicTag struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ComicID int64 `json:"comic_id" gorm:"index;not null"`
	TagID   int64 `json:"tag_id" gorm:"index;not null"`
}

func (ComicTag) TableName() string {
	return "comic_tags"
}
