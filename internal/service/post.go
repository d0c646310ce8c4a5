package service

import (
	"context"

	"github.com/deppfellow/posts-api/internal/errs"
	"github.com/deppfellow/posts-api/internal/model"
)

// Client-facing messages for post operations.
const (
	MsgNoPosts       = "No posts found"
	MsgPostInserted  = "Post successfully inserted"
	MsgInsertFailed  = "Error inserting post"
	MsgPostUpdated   = "Post successfully updated"
	MsgUpdateFailed  = "Error updating post"
	MsgPostDeleted   = "Post successfully deleted"
	MsgDeleteFailed  = "Error deleting post"
	MsgMissingCreate = "Missing title or message"
	MsgMissingUpdate = "Missing fields"
	MsgMissingDelete = "Missing id"
)

// PostStore is the persistence contract of PostService.
// Write methods report the number of affected rows.
type PostStore interface {
	List(ctx context.Context) ([]model.Post, error)
	Create(ctx context.Context, title, message string) (int64, error)
	Update(ctx context.Context, id int64, title, message string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// PostService applies the post rules: an empty listing is a 404 and every
// write must touch exactly one row.
type PostService struct {
	store PostStore
}

// NewPostService creates a PostService.
func NewPostService(store PostStore) *PostService {
	return &PostService{store: store}
}

// List returns all posts, or a not-found error when there are none.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, errs.NewNotFoundError(MsgNoPosts, true)
	}
	return posts, nil
}

// Create inserts a post.
func (s *PostService) Create(ctx context.Context, title, message string) error {
	n, err := s.store.Create(ctx, title, message)
	if err != nil {
		return err
	}
	return expectOneRow(n, MsgInsertFailed)
}

// Update replaces title and message of an existing post.
func (s *PostService) Update(ctx context.Context, id int64, title, message string) error {
	n, err := s.store.Update(ctx, id, title, message)
	if err != nil {
		return err
	}
	return expectOneRow(n, MsgUpdateFailed)
}

// Delete removes an existing post.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	return expectOneRow(n, MsgDeleteFailed)
}

// expectOneRow treats anything but a single affected row as a server-side
// failure: zero means no such post, more than one means the key is not unique.
func expectOneRow(affected int64, message string) error {
	if affected != 1 {
		return errs.NewInternalServerError().WithMessage(message)
	}
	return nil
}
