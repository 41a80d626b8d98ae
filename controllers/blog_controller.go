package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/manchos/sensive-blog/models"
	"github.com/manchos/sensive-blog/serializers"
	"github.com/manchos/sensive-blog/utils"
)

const (
	mostPopularPostsCount = 5
	mostFreshPostsCount   = 5
	popularTagsCount      = 5
	relatedPostsCount     = 20
)

// BlogController serves the aggregated read pages: homepage, post detail,
// tag filter and the year archive.
type BlogController struct {
	db *gorm.DB
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(db *gorm.DB) *BlogController {
	return &BlogController{db: db}
}

// Index returns the homepage feed: most popular posts, freshest posts and
// the most used tags.
func (b *BlogController) Index(ctx *gin.Context) {
	if bts, ok := utils.CacheGetBytes("cache:home"); ok {
		ctx.Data(200, "application/json", bts)
		return
	}

	popular, err := models.PopularPosts(b.db, mostPopularPostsCount, nil)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load popular posts")
		return
	}
	fresh, err := models.FreshPosts(b.db, mostFreshPostsCount)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load fresh posts")
		return
	}
	tags, err := models.PopularTags(b.db, popularTagsCount)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load popular tags")
		return
	}

	payload := gin.H{
		"most_popular_posts": b.serializePosts(popular),
		"page_posts":         b.serializePosts(fresh),
		"popular_tags":       b.serializeTags(tags),
	}
	b.cachePayload("cache:home", payload)
	utils.Success(ctx, payload)
}

// PostDetail returns a single post by slug together with the shared
// popular-posts and popular-tags blocks.
func (b *BlogController) PostDetail(ctx *gin.Context) {
	slug := ctx.Param("slug")

	cacheKey := "cache:post:detail:" + slug
	if bts, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", bts)
		return
	}

	post, err := models.PostBySlug(b.db, slug)
	if errors.Is(err, models.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load post")
		return
	}

	comments, err := models.CommentsForPost(b.db, post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load comments")
		return
	}
	b.loadCommentAuthors(comments)

	likes, err := models.CountLikes(b.db, []uint{post.ID})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to count likes")
		return
	}

	tags, err := models.PopularTags(b.db, popularTagsCount)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load popular tags")
		return
	}
	popular, err := models.PopularPosts(b.db, mostPopularPostsCount, nil)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load popular posts")
		return
	}

	payload := gin.H{
		"post":               serializers.SerializePostDetail(b.db, post, comments, likes[post.ID]),
		"popular_tags":       b.serializeTags(tags),
		"most_popular_posts": b.serializePosts(popular),
	}
	b.cachePayload(cacheKey, payload)
	utils.Success(ctx, payload)
}

// TagFilter returns the posts most popular within one tag. The tag itself
// is looked up by title and misses are a 404; an existing tag with no posts
// renders an empty list.
func (b *BlogController) TagFilter(ctx *gin.Context) {
	title := ctx.Param("title")

	cacheKey := "cache:tag:" + title
	if bts, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", bts)
		return
	}

	tag, err := models.TagByTitle(b.db, title)
	if errors.Is(err, models.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40402, "tag not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to load tag")
		return
	}

	related, err := models.PopularPosts(b.db, relatedPostsCount, &tag.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to load related posts")
		return
	}
	tags, err := models.PopularTags(b.db, popularTagsCount)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load popular tags")
		return
	}
	popular, err := models.PopularPosts(b.db, mostPopularPostsCount, nil)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load popular posts")
		return
	}

	payload := gin.H{
		"tag":                tag.Title,
		"posts":              b.serializePosts(related),
		"popular_tags":       b.serializeTags(tags),
		"most_popular_posts": b.serializePosts(popular),
	}
	b.cachePayload(cacheKey, payload)
	utils.Success(ctx, payload)
}

// YearArchive returns the posts of one calendar year, oldest first.
func (b *BlogController) YearArchive(ctx *gin.Context) {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil || year < 1 {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid year")
		return
	}

	posts, err := models.PostsInYear(b.db, year)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to load archive")
		return
	}

	utils.Success(ctx, gin.H{
		"year":  year,
		"posts": b.serializePosts(posts),
	})
}

// loadCommentAuthors fills comment authors with a single batched query
// instead of one lookup per comment.
func (b *BlogController) loadCommentAuthors(comments []models.Comment) {
	if len(comments) == 0 {
		return
	}
	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.AuthorID
	}
	ids = utils.UniqueUint(ids)

	var users []models.User
	if err := b.db.Find(&users, ids).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("failed to load comment authors: %v", err)
		}
		return
	}
	userMap := make(map[uint]models.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}
	for i := range comments {
		if user, ok := userMap[comments[i].AuthorID]; ok {
			comments[i].Author = user
		}
	}
}

func (b *BlogController) serializePosts(posts []models.Post) []serializers.PostTeaser {
	out := make([]serializers.PostTeaser, len(posts))
	for i := range posts {
		out[i] = serializers.SerializePost(b.db, posts[i], &posts[i].CommentsCount)
	}
	return out
}

func (b *BlogController) serializeTags(tags []models.Tag) []serializers.TagSummary {
	out := make([]serializers.TagSummary, len(tags))
	for i := range tags {
		out[i] = serializers.SerializeTag(b.db, tags[i], &tags[i].PostsCount)
	}
	return out
}

func (b *BlogController) cachePayload(key string, payload gin.H) {
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(key, wrapper, time.Hour)
}
