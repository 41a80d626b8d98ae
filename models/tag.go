package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Tag labels posts. Titles are unique and stored lowercase.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:20;uniqueIndex;not null" json:"title"`

	Posts []Post `gorm:"many2many:post_tags;" json:"-"`

	// Filled by CountPostsForTags, never stored.
	PostsCount int `gorm:"-" json:"posts_count"`
}

// BeforeSave lowercases the title so the unique index always sees the
// normalized form; case variants of an existing tag collide instead of
// creating duplicates.
func (t *Tag) BeforeSave(tx *gorm.DB) error {
	t.Title = strings.ToLower(strings.TrimSpace(t.Title))
	if t.Title == "" {
		return errors.New("tag title cannot be empty")
	}
	return nil
}
