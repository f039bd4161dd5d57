package model

import (
	"github.com/google/uuid"
)

// Post is a community-board entry visible to patients.
type Post struct {
	Base
	AuthorID   uuid.UUID `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	AuthorRole string    `db:"author_role" json:"author_role"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body"`
	Likes      int       `db:"likes" json:"likes"`
}

// SearchField implements search.Fielder.
func (p *Post) SearchField(name string) string {
	switch name {
	case "title":
		return p.Title
	case "body":
		return p.Body
	case "author_name":
		return p.AuthorName
	default:
		return ""
	}
}

type CreatePostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}
