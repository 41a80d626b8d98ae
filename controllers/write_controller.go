package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/manchos/sensive-blog/middleware"
	"github.com/manchos/sensive-blog/models"
	"github.com/manchos/sensive-blog/utils"
)

// WriteController covers the mutations the read core depends on: authoring
// posts (staff only), commenting, liking and the cascade deletes. Its main
// job is upholding the write-path invariants the serializers assume, above
// all that every post carries at least one tag.
type WriteController struct {
	db *gorm.DB
}

// NewWriteController creates a new WriteController instance.
func NewWriteController(db *gorm.DB) *WriteController {
	return &WriteController{db: db}
}

// CreatePost creates a post for the authenticated staff user. At least one
// tag is required; a post without tags would crash the teaser serializer.
func (w *WriteController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title       string    `json:"title" binding:"required,min=1"`
		Text        string    `json:"text" binding:"required"`
		ImageURL    string    `json:"image_url"`
		PublishedAt time.Time `json:"published_at"`
		Tags        []string  `json:"tags" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	text := utils.Sanitize(req.Text)

	tagTitles := normalizeTagTitles(req.Tags)
	if len(tagTitles) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "at least one tag is required")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	publishedAt := req.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	slug := utils.Slugify(title)
	var clash int64
	w.db.Model(&models.Post{}).Where("slug = ?", slug).Count(&clash)
	if slug == "" || clash > 0 {
		slug = utils.UniqueSlug(slug)
	}

	post := models.Post{
		Title:       title,
		Text:        text,
		Slug:        slug,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		PublishedAt: publishedAt,
		AuthorID:    userID,
	}

	err := w.db.Transaction(func(tx *gorm.DB) error {
		tags := make([]models.Tag, len(tagTitles))
		for i, t := range tagTitles {
			if err := tx.Where("title = ?", t).FirstOrCreate(&tags[i], models.Tag{Title: t}).Error; err != nil {
				return err
			}
		}
		post.Tags = tags
		return tx.Create(&post).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:")
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post and cascades to its comments and relation rows.
func (w *WriteController) DeletePost(ctx *gin.Context) {
	post, ok := w.findPost(ctx)
	if !ok {
		return
	}

	if err := models.DeletePost(w.db, post.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:")
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// CreateComment adds a comment to the post behind the slug.
func (w *WriteController) CreateComment(ctx *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	text := utils.Sanitize(req.Text)
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40024, "text cannot be empty")
		return
	}

	post, ok := w.findPost(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID:      post.ID,
		AuthorID:    userID,
		Text:        text,
		PublishedAt: time.Now(),
	}
	if err := w.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to create comment")
		return
	}

	utils.InvalidateByPrefix("cache:")
	utils.Success(ctx, gin.H{"comment": comment})
}

// LikePost records a like; liking twice is a no-op.
func (w *WriteController) LikePost(ctx *gin.Context) {
	post, ok := w.findPost(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	like := models.PostLike{PostID: post.ID, UserID: userID}
	if err := w.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to like post")
		return
	}

	utils.InvalidateByPrefix("cache:")
	utils.Success(ctx, gin.H{"message": "liked"})
}

// UnlikePost removes a like; removing a missing like is a no-op.
func (w *WriteController) UnlikePost(ctx *gin.Context) {
	post, ok := w.findPost(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	err := w.db.Where("post_id = ? AND user_id = ?", post.ID, userID).Delete(&models.PostLike{}).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to unlike post")
		return
	}

	utils.InvalidateByPrefix("cache:")
	utils.Success(ctx, gin.H{"message": "unliked"})
}

// DeleteTag removes a tag, refusing while posts still reference it.
func (w *WriteController) DeleteTag(ctx *gin.Context) {
	tag, err := models.TagByTitle(w.db, ctx.Param("title"))
	if errors.Is(err, models.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40402, "tag not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to load tag")
		return
	}

	if err := models.DeleteTag(w.db, tag.ID); err != nil {
		if errors.Is(err, models.ErrTagInUse) {
			utils.Error(ctx, http.StatusConflict, 40901, "tag is still referenced by posts")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to delete tag")
		return
	}

	utils.InvalidateByPrefix("cache:")
	utils.Success(ctx, gin.H{"message": "tag deleted"})
}

func (w *WriteController) findPost(ctx *gin.Context) (models.Post, bool) {
	post, err := models.PostBySlug(w.db, ctx.Param("slug"))
	if errors.Is(err, models.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return models.Post{}, false
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load post")
		return models.Post{}, false
	}
	return post, true
}

func normalizeTagTitles(raw []string) []string {
	seen := map[string]bool{}
	titles := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		titles = append(titles, t)
	}
	return titles
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
