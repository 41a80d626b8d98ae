package models

import "gorm.io/gorm"

// Batched aggregate counts. Each function issues exactly one GROUP BY query
// against a relation table regardless of how many ids are passed in, which
// is what keeps the list pages free of per-row count queries. The returned
// map always carries every requested id; ids with no relation rows (or that
// do not exist at all) map to zero.

type countRow struct {
	ID  uint `gorm:"column:id"`
	Cnt int  `gorm:"column:cnt"`
}

// CountLikes returns the number of liking users per post.
func CountLikes(db *gorm.DB, postIDs []uint) (map[uint]int, error) {
	return countGrouped(db, &PostLike{}, "post_id", "COUNT(*)", postIDs)
}

// CountComments returns the number of comments per post.
func CountComments(db *gorm.DB, postIDs []uint) (map[uint]int, error) {
	return countGrouped(db, &Comment{}, "post_id", "COUNT(*)", postIDs)
}

// CountPostsForTags returns the number of distinct posts referencing each
// tag. DISTINCT matters: a post must count once per tag no matter how many
// relation rows connect them.
func CountPostsForTags(db *gorm.DB, tagIDs []uint) (map[uint]int, error) {
	return countGrouped(db, &PostTag{}, "tag_id", "COUNT(DISTINCT post_id)", tagIDs)
}

func countGrouped(db *gorm.DB, model interface{}, keyColumn, countExpr string, ids []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		// Nothing to count; do not fall through to an unfiltered scan.
		return counts, nil
	}
	for _, id := range ids {
		counts[id] = 0
	}

	var rows []countRow
	err := db.Model(model).
		Select(keyColumn + " AS id, " + countExpr + " AS cnt").
		Where(keyColumn+" IN ?", ids).
		Group(keyColumn).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Cnt
	}
	return counts, nil
}
