package models

import "gorm.io/gorm"

// AllModels returns every model for migration. Join tables are listed so
// their composite primary keys are created even on an empty schema.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Post{},
		&Comment{},
		&PostTag{},
		&PostLike{},
		&PageView{},
	}
}

// AutoMigrate registers the explicit join tables and migrates all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Post{}, "Tags", &PostTag{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&Post{}, "Likes", &PostLike{}); err != nil {
		return err
	}
	return db.AutoMigrate(AllModels()...)
}
