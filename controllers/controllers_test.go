package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/manchos/sensive-blog/config"
	"github.com/manchos/sensive-blog/models"
	"github.com/manchos/sensive-blog/routes"
	"github.com/manchos/sensive-blog/utils"
)

func init() {
	// Deterministic config for the whole package: no config file, no env.
	// The Redis port points at nothing so every cache lookup is a miss and
	// handlers always take the database path.
	config.SetForTesting(config.AppConfig{
		AppPort:            "0",
		JWTSecret:          "test-secret",
		RedisHost:          "127.0.0.1",
		RedisPort:          63790,
		RateLimitPerMinute: 100000,
		AllowedOrigins:     []string{"*"},
		GinMode:            "test",
	})
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return routes.SetupRouter(db), db
}

func createTestUser(t *testing.T, db *gorm.DB, username, password string, staff bool) models.User {
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{Username: username, PasswordHash: hash, IsStaff: staff}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, author models.User, slug string, publishedAt time.Time, tagTitles ...string) models.Post {
	tags := make([]models.Tag, len(tagTitles))
	for i, title := range tagTitles {
		if err := db.Where("title = ?", title).FirstOrCreate(&tags[i], models.Tag{Title: title}).Error; err != nil {
			t.Fatalf("Failed to create test tag: %v", err)
		}
	}
	post := models.Post{
		Title:       "Post " + slug,
		Text:        "Text of " + slug,
		Slug:        slug,
		PublishedAt: publishedAt,
		AuthorID:    author.ID,
		Tags:        tags,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	return post
}

func tokenFor(t *testing.T, user models.User) string {
	token, err := utils.GenerateToken(user.ID, user.Username, user.IsStaff, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

func performRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func dataList(t *testing.T, resp apiResponse, key string) []interface{} {
	v, ok := resp.Data[key]
	if !ok {
		t.Fatalf("Response data missing key %q: %v", key, resp.Data)
	}
	list, ok := v.([]interface{})
	if !ok {
		t.Fatalf("Expected %q to be a list, got %T", key, v)
	}
	return list
}

func likePostN(t *testing.T, db *gorm.DB, post models.Post, n int) {
	for i := 0; i < n; i++ {
		user := createTestUser(t, db, fmt.Sprintf("fan-%d-%d", post.ID, i), "pw", false)
		if err := db.Create(&models.PostLike{PostID: post.ID, UserID: user.ID}).Error; err != nil {
			t.Fatalf("Failed to create like: %v", err)
		}
	}
}
