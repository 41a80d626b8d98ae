package models

import (
	"sort"

	"gorm.io/gorm"
)

// Ranked views over the raw candidate sets. Ranking happens in two phases:
// first the candidates are decorated with the metric that orders them and
// truncated, then comment counts are batched for the surviving page only.
// Counting comments before ranking would spend a query column on rows the
// truncation throws away.
//
// A limit <= 0 means unlimited. Ties always break by ascending id so the
// ordering is deterministic.

// PopularPosts returns posts ranked by like count, optionally restricted to
// a tag. An unknown tag id yields an empty slice, not an error; only the
// by-title lookup in store.go reports ErrNotFound.
func PopularPosts(db *gorm.DB, limit int, tagID *uint) ([]Post, error) {
	var (
		posts []Post
		err   error
	)
	if tagID != nil {
		posts, err = PostsByTag(db, *tagID)
	} else {
		posts, err = AllPosts(db)
	}
	if err != nil {
		return nil, err
	}

	if err := fillLikesCounts(db, posts); err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].LikesCount != posts[j].LikesCount {
			return posts[i].LikesCount > posts[j].LikesCount
		}
		return posts[i].ID < posts[j].ID
	})
	posts = limitSlice(posts, limit)

	if err := fillCommentsCounts(db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PopularTags returns tags ranked by the number of distinct posts
// referencing them.
func PopularTags(db *gorm.DB, limit int) ([]Tag, error) {
	tags, err := AllTags(db)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(tags))
	for i, tag := range tags {
		ids[i] = tag.ID
	}
	counts, err := CountPostsForTags(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		tags[i].PostsCount = counts[tags[i].ID]
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].PostsCount != tags[j].PostsCount {
			return tags[i].PostsCount > tags[j].PostsCount
		}
		return tags[i].ID < tags[j].ID
	})
	return limitSlice(tags, limit), nil
}

// FreshPosts returns posts newest first.
func FreshPosts(db *gorm.DB, limit int) ([]Post, error) {
	var posts []Post
	q := db.Preload("Author").Preload("Tags").
		Order("published_at DESC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	if err := fillCommentsCounts(db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PostsInYear returns a calendar-year archive, oldest first. The direction
// deliberately differs from the other views; archives read chronologically.
func PostsInYear(db *gorm.DB, year int) ([]Post, error) {
	posts, err := PostsInYearRange(db, year)
	if err != nil {
		return nil, err
	}
	if err := fillCommentsCounts(db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func fillLikesCounts(db *gorm.DB, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	counts, err := CountLikes(db, postIDs(posts))
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].LikesCount = counts[posts[i].ID]
	}
	return nil
}

func fillCommentsCounts(db *gorm.DB, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	counts, err := CountComments(db, postIDs(posts))
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].CommentsCount = counts[posts[i].ID]
	}
	return nil
}

func postIDs(posts []Post) []uint {
	ids := make([]uint, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	return ids
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
