package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/posts-api/internal/database"
	"github.com/deppfellow/posts-api/internal/model"
)

const (
	listPostsSQL  = `SELECT id, title, message FROM posts ORDER BY id`
	insertPostSQL = `INSERT INTO posts (title, message) VALUES ($1, $2)`
	updatePostSQL = `UPDATE posts SET title = $1, message = $2 WHERE id = $3`
	deletePostSQL = `DELETE FROM posts WHERE id = $1`
)

// PostRepository runs the statements for the posts table.
//
// Write methods return the affected-row count as reported by the store and
// leave its interpretation to the caller.
type PostRepository struct {
	exec *database.Executor
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(exec *database.Executor) *PostRepository {
	return &PostRepository{exec: exec}
}

// List returns every post ordered by id.
func (r *PostRepository) List(ctx context.Context) ([]model.Post, error) {
	posts, err := database.Select[model.Post](ctx, r.exec, listPostsSQL)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Create inserts a post; the store assigns its id.
func (r *PostRepository) Create(ctx context.Context, title, message string) (int64, error) {
	n, err := r.exec.Exec(ctx, insertPostSQL, title, message)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return n, nil
}

// Update replaces the title and message of the post with the given id.
func (r *PostRepository) Update(ctx context.Context, id int64, title, message string) (int64, error) {
	n, err := r.exec.Exec(ctx, updatePostSQL, title, message, id)
	if err != nil {
		return 0, fmt.Errorf("update post %d: %w", id, err)
	}
	return n, nil
}

// Delete removes the post with the given id.
func (r *PostRepository) Delete(ctx context.Context, id int64) (int64, error) {
	n, err := r.exec.Exec(ctx, deletePostSQL, id)
	if err != nil {
		return 0, fmt.Errorf("delete post %d: %w", id, err)
	}
	return n, nil
}
