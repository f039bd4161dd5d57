package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) repository.PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (id, author_id, author_name, author_role, title, body, likes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		post.ID,
		post.AuthorID,
		post.AuthorName,
		post.AuthorRole,
		post.Title,
		post.Body,
		post.Likes,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, ordered bool) ([]*model.Post, error) {
	query := `SELECT * FROM posts`
	if ordered {
		query += ` ORDER BY created_at DESC`
	}
	var posts []*model.Post
	err := r.db.SelectContext(ctx, &posts, query)
	if err != nil {
		if ordered {
			return nil, classifyOrdered("posts", err)
		}
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}
