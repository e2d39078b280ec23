package models

import "time"

type Tag struct {
	BaseModel

	Name string `json:"name" gorm:"uniqueIndex"`

	// ReferenceCount caches the number of live post_tags rows pointing at
	// this tag. The rows are the source of truth, never this column.
	ReferenceCount int64 `json:"reference_count"`

	Posts []Post `json:"posts" gorm:"many2many:post_tags"`
}

// PostTag is the association row between a post and a tag. The composite
// primary key rejects a duplicate attach at the storage layer.
type PostTag struct {
	PostID    uint      `json:"post_id" gorm:"primaryKey"`
	TagID     uint      `json:"tag_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}
