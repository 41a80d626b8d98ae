package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by the single-entity lookups when no row
	// matches. Candidate-set queries never return it; an empty result is
	// an empty slice.
	ErrNotFound = errors.New("record not found")

	// ErrTagInUse rejects deletion of a tag still referenced by posts.
	ErrTagInUse = errors.New("tag is referenced by posts")
)

// PostBySlug returns the single post with the given slug, author and tags
// loaded. Slugs are unique by convention, not by type; a duplicated slug is
// treated as a miss rather than an arbitrary pick.
func PostBySlug(db *gorm.DB, slug string) (Post, error) {
	var posts []Post
	err := db.Preload("Author").Preload("Tags").
		Where("slug = ?", slug).
		Limit(2).
		Find(&posts).Error
	if err != nil {
		return Post{}, err
	}
	if len(posts) != 1 {
		return Post{}, ErrNotFound
	}
	return posts[0], nil
}

// TagByTitle looks up a tag by its normalized (lowercase) title.
func TagByTitle(db *gorm.DB, title string) (Tag, error) {
	var tag Tag
	err := db.Where("title = ?", strings.ToLower(strings.TrimSpace(title))).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Tag{}, ErrNotFound
	}
	if err != nil {
		return Tag{}, err
	}
	return tag, nil
}

// AllPosts returns every post with author and tags loaded, in no particular
// order. Callers rank and truncate.
func AllPosts(db *gorm.DB) ([]Post, error) {
	var posts []Post
	if err := db.Preload("Author").Preload("Tags").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// AllTags returns every tag in no particular order.
func AllTags(db *gorm.DB) ([]Tag, error) {
	var tags []Tag
	if err := db.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// PostsByTag returns the posts referencing the given tag. An unknown tag id
// simply matches nothing.
func PostsByTag(db *gorm.DB, tagID uint) ([]Post, error) {
	var posts []Post
	err := db.Preload("Author").Preload("Tags").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", tagID).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PostsInYearRange returns posts published within the given calendar year,
// ordered ascending by publication time (archive pages read oldest first).
func PostsInYearRange(db *gorm.DB, year int) ([]Post, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var posts []Post
	err := db.Preload("Author").Preload("Tags").
		Where("published_at >= ? AND published_at < ?", start, end).
		Order("published_at ASC, id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CommentsForPost returns a post's comments oldest first.
func CommentsForPost(db *gorm.DB, postID uint) ([]Comment, error) {
	var comments []Comment
	err := db.Where("post_id = ?", postID).
		Order("published_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// DeletePost removes a post and cascades: owned comments are deleted, tag
// and like relation rows are detached, all in one transaction.
func DeletePost(db *gorm.DB, postID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&PostTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Post{}, postID).Error
	})
}

// DeleteTag removes a tag, refusing with ErrTagInUse while any post still
// references it.
func DeleteTag(db *gorm.DB, tagID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&PostTag{}).Where("tag_id = ?", tagID).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrTagInUse
		}
		return tx.Delete(&Tag{}, tagID).Error
	})
}
