package models

import "time"

// Post is a published blog entry written by a staff user. The write path
// must attach at least one tag before a post becomes visible; the teaser
// serializer depends on it.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Slug        string    `gorm:"size:200;index;not null" json:"slug"`
	ImageURL    string    `gorm:"size:512" json:"image_url"`
	PublishedAt time.Time `gorm:"index;not null" json:"published_at"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Author      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`

	Tags     []Tag     `gorm:"many2many:post_tags;" json:"tags"`
	Likes    []User    `gorm:"many2many:post_likes;" json:"-"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Filled by the batched count queries, never stored.
	LikesCount    int `gorm:"-" json:"likes_count"`
	CommentsCount int `gorm:"-" json:"comments_count"`
}
