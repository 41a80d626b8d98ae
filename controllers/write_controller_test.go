package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/manchos/sensive-blog/models"
)

func TestCreatePostRequiresStaff(t *testing.T) {
	r, db := setupTestRouter(t)
	reader := createTestUser(t, db, "reader", "pw", false)

	w := performRequest(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, reader), map[string]interface{}{
		"title": "Sneaky",
		"text":  "body",
		"tags":  []string{"go"},
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-staff, got %d", w.Code)
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := performRequest(t, r, http.MethodPost, "/api/v1/posts", "", map[string]interface{}{
		"title": "Anonymous",
		"text":  "body",
		"tags":  []string{"go"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestCreatePost(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)

	w := performRequest(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, staff), map[string]interface{}{
		"title": "Going Deeper",
		"text":  "body text",
		"tags":  []string{" Go ", "go", "Web"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	post, err := models.PostBySlug(db, "going-deeper")
	if err != nil {
		t.Fatalf("Expected post stored under slugified title: %v", err)
	}
	if post.AuthorID != staff.ID {
		t.Errorf("Expected author %d, got %d", staff.ID, post.AuthorID)
	}
	// Tag titles are normalized and deduplicated before attachment.
	if len(post.Tags) != 2 {
		t.Fatalf("Expected 2 tags after dedupe, got %d", len(post.Tags))
	}
	titles := map[string]bool{}
	for _, tag := range post.Tags {
		titles[tag.Title] = true
	}
	if !titles["go"] || !titles["web"] {
		t.Errorf("Expected normalized tags go and web, got %v", titles)
	}
}

func TestCreatePostWithoutTags(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)

	w := performRequest(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, staff), map[string]interface{}{
		"title": "Untagged",
		"text":  "body",
		"tags":  []string{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for post without tags, got %d", w.Code)
	}
}

func TestCreatePostSlugCollision(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)
	createTestPost(t, db, staff, "taken", time.Now(), "go")

	w := performRequest(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, staff), map[string]interface{}{
		"title": "Taken",
		"text":  "body",
		"tags":  []string{"go"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Post{}).Where("slug = ?", "taken").Count(&count)
	if count != 1 {
		t.Errorf("Expected colliding slug to be suffixed, found %d posts under it", count)
	}
	db.Model(&models.Post{}).Where("slug LIKE ?", "taken-%").Count(&count)
	if count != 1 {
		t.Errorf("Expected one suffixed slug, got %d", count)
	}
}

func TestDeletePostCascadesOverHTTP(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)
	reader := createTestUser(t, db, "reader", "pw", false)
	post := createTestPost(t, db, staff, "doomed", time.Now(), "go")
	comment := models.Comment{PostID: post.ID, AuthorID: reader.ID, Text: "bye", PublishedAt: time.Now()}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}

	w := performRequest(t, r, http.MethodDelete, "/api/v1/posts/doomed", tokenFor(t, staff), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var comments int64
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	if comments != 0 {
		t.Errorf("Expected comments deleted with the post, got %d", comments)
	}
}

func TestCreateComment(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)
	reader := createTestUser(t, db, "reader", "pw", false)
	createTestPost(t, db, staff, "open-thread", time.Now(), "go")

	w := performRequest(t, r, http.MethodPost, "/api/v1/posts/open-thread/comments", tokenFor(t, reader), map[string]string{
		"text": "first!",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 comment, got %d", count)
	}
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)
	createTestPost(t, db, staff, "open-thread", time.Now(), "go")

	w := performRequest(t, r, http.MethodPost, "/api/v1/posts/open-thread/comments", "", map[string]string{
		"text": "anon",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestCreateCommentSanitizesMarkup(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)
	reader := createTestUser(t, db, "reader", "pw", false)
	createTestPost(t, db, staff, "open-thread", time.Now(), "go")

	w := performRequest(t, r, http.MethodPost, "/api/v1/posts/open-thread/comments", tokenFor(t, reader), map[string]string{
		"text": `hello <script>alert("x")</script>`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var comment models.Comment
	if err := db.First(&comment).Error; err != nil {
		t.Fatalf("Failed to load comment: %v", err)
	}
	if comment.Text != "hello " {
		t.Errorf("Expected script tag stripped, got %q", comment.Text)
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)
	reader := createTestUser(t, db, "reader", "pw", false)
	post := createTestPost(t, db, staff, "likable", time.Now(), "go")
	token := tokenFor(t, reader)

	for i := 0; i < 2; i++ {
		w := performRequest(t, r, http.MethodPost, "/api/v1/posts/likable/like", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200 on like, got %d: %s", w.Code, w.Body.String())
		}
	}

	var likes int64
	db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes)
	if likes != 1 {
		t.Errorf("Expected a single like after double-tap, got %d", likes)
	}

	w := performRequest(t, r, http.MethodDelete, "/api/v1/posts/likable/like", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on unlike, got %d: %s", w.Code, w.Body.String())
	}
	db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes)
	if likes != 0 {
		t.Errorf("Expected like removed, got %d", likes)
	}
}

func TestDeleteTagConflictWhileReferenced(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := createTestUser(t, db, "editor", "pw", true)
	createTestPost(t, db, staff, "holder", time.Now(), "sticky")
	token := tokenFor(t, staff)

	w := performRequest(t, r, http.MethodDelete, "/api/v1/tags/sticky", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 while referenced, got %d: %s", w.Code, w.Body.String())
	}

	del := performRequest(t, r, http.MethodDelete, "/api/v1/posts/holder", token, nil)
	if del.Code != http.StatusOK {
		t.Fatalf("Expected 200 deleting post, got %d", del.Code)
	}

	w = performRequest(t, r, http.MethodDelete, "/api/v1/tags/sticky", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 deleting detached tag, got %d: %s", w.Code, w.Body.String())
	}
}
