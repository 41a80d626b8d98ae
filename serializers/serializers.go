package serializers

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/manchos/sensive-blog/models"
)

// TeaserLength is the number of characters of post text shown on list pages.
const TeaserLength = 200

// TagSummary is the flat tag shape embedded in every serialized post.
type TagSummary struct {
	Title        string `json:"title"`
	PostsWithTag int    `json:"posts_with_tag"`
}

// PostTeaser is the flat, presentation-ready post shape for list pages.
type PostTeaser struct {
	Title          string       `json:"title"`
	TeaserText     string       `json:"teaser_text"`
	Author         string       `json:"author"`
	CommentsAmount int          `json:"comments_amount"`
	ImageURL       *string      `json:"image_url"`
	PublishedAt    time.Time    `json:"published_at"`
	Slug           string       `json:"slug"`
	Tags           []TagSummary `json:"tags"`
	FirstTagTitle  string       `json:"first_tag_title"`
}

// CommentView is the flat comment shape on the post detail page.
type CommentView struct {
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"published_at"`
	Author      string    `json:"author"`
}

// PostDetail is the full post shape for the detail page.
type PostDetail struct {
	Title       string        `json:"title"`
	Text        string        `json:"text"`
	Author      string        `json:"author"`
	Comments    []CommentView `json:"comments"`
	LikesAmount int           `json:"likes_amount"`
	ImageURL    *string       `json:"image_url"`
	PublishedAt time.Time     `json:"published_at"`
	Slug        string        `json:"slug"`
	Tags        []TagSummary  `json:"tags"`
}

// SerializePost projects a post into its teaser shape. commentsCount carries
// a batched count when the caller has one; nil takes the slow fallback path
// and issues a single-entity count query. Tag order is preserved as loaded,
// the serializer never resorts it.
//
// A post with zero tags panics: list pages unconditionally show the first
// tag, so an empty tag set is a write-path bug that must surface loudly
// instead of being patched over on read.
func SerializePost(db *gorm.DB, post models.Post, commentsCount *int) PostTeaser {
	if len(post.Tags) == 0 {
		panic(fmt.Sprintf("serializers: post %d (%q) has no tags", post.ID, post.Slug))
	}

	amount := 0
	if commentsCount != nil {
		amount = *commentsCount
	} else {
		var n int64
		db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&n)
		amount = int(n)
	}

	return PostTeaser{
		Title:          post.Title,
		TeaserText:     teaser(post.Text),
		Author:         post.Author.Username,
		CommentsAmount: amount,
		ImageURL:       imageURL(post),
		PublishedAt:    post.PublishedAt,
		Slug:           post.Slug,
		Tags:           serializeTags(db, post.Tags),
		FirstTagTitle:  post.Tags[0].Title,
	}
}

// SerializePostDetail projects a post plus its comments into the detail
// shape. likesCount must come from a batched count covering this post.
func SerializePostDetail(db *gorm.DB, post models.Post, comments []models.Comment, likesCount int) PostDetail {
	views := make([]CommentView, len(comments))
	for i, comment := range comments {
		views[i] = CommentView{
			Text:        comment.Text,
			PublishedAt: comment.PublishedAt,
			Author:      comment.Author.Username,
		}
	}

	return PostDetail{
		Title:       post.Title,
		Text:        post.Text,
		Author:      post.Author.Username,
		Comments:    views,
		LikesAmount: likesCount,
		ImageURL:    imageURL(post),
		PublishedAt: post.PublishedAt,
		Slug:        post.Slug,
		Tags:        serializeTags(db, post.Tags),
	}
}

// SerializeTag projects a tag. postsCount carries a batched count when the
// caller has one; nil falls back to a direct count query against the
// relation table.
func SerializeTag(db *gorm.DB, tag models.Tag, postsCount *int) TagSummary {
	count := 0
	if postsCount != nil {
		count = *postsCount
	} else {
		var n int64
		db.Model(&models.PostTag{}).Where("tag_id = ?", tag.ID).Distinct("post_id").Count(&n)
		count = int(n)
	}
	return TagSummary{Title: tag.Title, PostsWithTag: count}
}

// serializeTags handles the nested tag lists of serialized posts. Those
// tags come from association preloads without counts, so each one takes the
// fallback path.
func serializeTags(db *gorm.DB, tags []models.Tag) []TagSummary {
	summaries := make([]TagSummary, len(tags))
	for i, tag := range tags {
		summaries[i] = SerializeTag(db, tag, nil)
	}
	return summaries
}

func teaser(text string) string {
	runes := []rune(text)
	if len(runes) > TeaserLength {
		return string(runes[:TeaserLength])
	}
	return text
}

func imageURL(post models.Post) *string {
	if post.ImageURL == "" {
		return nil
	}
	url := post.ImageURL
	return &url
}
