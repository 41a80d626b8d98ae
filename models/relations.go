package models

// PostTag and PostLike back the Post.Tags and Post.Likes many-to-many
// associations. They are declared explicitly so the aggregate queries can
// run GROUP BY counts directly against the relation tables, and so the
// composite primary keys rule out duplicate relation rows.

type PostTag struct {
	PostID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey"`
}

type PostLike struct {
	PostID uint `gorm:"primaryKey"`
	UserID uint `gorm:"primaryKey"`
}
