package models

import "time"

type PostState = int8

const (
	PostStatePublished = PostState(iota)
	PostStateHidden
)

type Post struct {
	BaseModel

	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Language string    `json:"language"`
	State    PostState `json:"state"`

	AuthorID uint    `json:"author_id"`
	Author   Account `json:"author" gorm:"foreignKey:AuthorID"`

	Tags []Tag `json:"tags" gorm:"many2many:post_tags"`
}

// PostView joins the post row with its author and tag names.
type PostView struct {
	ID           uint      `json:"id"`
	AuthorID     uint      `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Language     string    `json:"language"`
	Tags         []string  `json:"tags"`
	State        PostState `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (v Post) ToView(author Account, tags []string) PostView {
	return PostView{
		ID:           v.ID,
		AuthorID:     v.AuthorID,
		AuthorName:   author.Name,
		AuthorAvatar: author.Avatar,
		Title:        v.Title,
		Content:      v.Content,
		Language:     v.Language,
		Tags:         tags,
		State:        v.State,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
