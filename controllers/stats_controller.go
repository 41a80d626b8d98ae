package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/manchos/sensive-blog/models"
	"github.com/manchos/sensive-blog/utils"
)

// StatsController exposes the visit statistics the page-view recorder
// collects, plus basic content counts.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the blog.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var postCount int64
	var commentCount int64
	var tagCount int64
	var todayViews int64

	if err := s.db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	if err := s.db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}
	if err := s.db.Model(&models.Tag{}).Count(&tagCount).Error; err != nil {
		tagCount = 0
	}

	// Same local-midnight value the page-view recorder writes, so the
	// comparison holds regardless of how the driver encodes DATE.
	now := time.Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&todayViews).Error; err != nil {
		todayViews = 0
	}

	utils.Success(ctx, gin.H{
		"post_count":    postCount,
		"comment_count": commentCount,
		"tag_count":     tagCount,
		"today_views":   todayViews,
	})
}
