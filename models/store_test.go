package models

import (
	"errors"
	"testing"
	"time"
)

func TestPostBySlug(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author", true)
	tag := createTestTag(t, db, "go")
	created := createTestPost(t, db, author, "hello-world", time.Now(), tag)

	post, err := PostBySlug(db, "hello-world")
	if err != nil {
		t.Fatalf("PostBySlug failed: %v", err)
	}
	if post.ID != created.ID {
		t.Errorf("Expected post %d, got %d", created.ID, post.ID)
	}
	if post.Author.Username != "author" {
		t.Errorf("Expected author preloaded, got %q", post.Author.Username)
	}
	if len(post.Tags) != 1 || post.Tags[0].Title != "go" {
		t.Errorf("Expected tags preloaded, got %v", post.Tags)
	}
}

func TestPostBySlugNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := PostBySlug(db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPostBySlugAmbiguousIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author", true)
	tag := createTestTag(t, db, "go")
	createTestPost(t, db, author, "dup", time.Now(), tag)

	twin := Post{Title: "Twin", Text: "text", Slug: "dup", PublishedAt: time.Now(), AuthorID: author.ID, Tags: []Tag{tag}}
	if err := db.Create(&twin).Error; err != nil {
		t.Fatalf("Failed to create duplicate-slug post: %v", err)
	}

	_, err := PostBySlug(db, "dup")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for ambiguous slug, got %v", err)
	}
}

func TestTagByTitleIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	created := createTestTag(t, db, "Python")

	tag, err := TagByTitle(db, "  PYTHON ")
	if err != nil {
		t.Fatalf("TagByTitle failed: %v", err)
	}
	if tag.ID != created.ID {
		t.Errorf("Expected tag %d, got %d", created.ID, tag.ID)
	}
	if tag.Title != "python" {
		t.Errorf("Expected stored title lowercased, got %q", tag.Title)
	}
}

func TestTagByTitleNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := TagByTitle(db, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTagSaveRejectsEmptyTitle(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Create(&Tag{Title: "   "}).Error; err == nil {
		t.Errorf("Expected error creating tag with blank title")
	}
}

func TestCommentsForPostOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author", true)
	reader := createTestUser(t, db, "reader", false)
	tag := createTestTag(t, db, "go")
	post := createTestPost(t, db, author, "threaded", time.Now(), tag)
	base := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

	late := addComment(t, db, post, reader, base.Add(time.Hour))
	early := addComment(t, db, post, reader, base)

	comments, err := CommentsForPost(db, post.ID)
	if err != nil {
		t.Fatalf("CommentsForPost failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(comments))
	}
	if comments[0].ID != early.ID || comments[1].ID != late.ID {
		t.Errorf("Expected oldest first, got [%d, %d]", comments[0].ID, comments[1].ID)
	}
}

func TestDeletePostCascades(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author", true)
	reader := createTestUser(t, db, "reader", false)
	tag := createTestTag(t, db, "go")
	post := createTestPost(t, db, author, "doomed", time.Now(), tag)
	addComment(t, db, post, reader, time.Now())
	addLike(t, db, post, reader)

	if err := DeletePost(db, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	var comments, tagLinks, likeLinks, tags int64
	db.Model(&Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	db.Model(&PostTag{}).Where("post_id = ?", post.ID).Count(&tagLinks)
	db.Model(&PostLike{}).Where("post_id = ?", post.ID).Count(&likeLinks)
	db.Model(&Tag{}).Count(&tags)

	if comments != 0 || tagLinks != 0 || likeLinks != 0 {
		t.Errorf("Expected comments and relation rows removed, got %d/%d/%d", comments, tagLinks, likeLinks)
	}
	if tags != 1 {
		t.Errorf("Tag itself must survive post deletion, got %d tags", tags)
	}
	if _, err := PostBySlug(db, "doomed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected post gone, got %v", err)
	}
}

func TestDeleteTagRefusesWhileReferenced(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author", true)
	tag := createTestTag(t, db, "sticky")
	post := createTestPost(t, db, author, "holder", time.Now(), tag)

	if err := DeleteTag(db, tag.ID); !errors.Is(err, ErrTagInUse) {
		t.Fatalf("Expected ErrTagInUse, got %v", err)
	}

	if err := DeletePost(db, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if err := DeleteTag(db, tag.ID); err != nil {
		t.Fatalf("DeleteTag failed after detaching: %v", err)
	}
	if _, err := TagByTitle(db, "sticky"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected tag gone, got %v", err)
	}
}
