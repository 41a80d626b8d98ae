package models

import "time"

// Comment is a reader reply owned by its post; deleting the post deletes
// its comments.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"index;not null" json:"post_id"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PublishedAt time.Time `gorm:"not null" json:"published_at"`
}
