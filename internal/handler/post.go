package handler

import (
	"github.com/deppfellow/posts-api/internal/model"
	"github.com/deppfellow/posts-api/internal/server"
	"github.com/deppfellow/posts-api/internal/service"
	"github.com/deppfellow/posts-api/internal/validation"
	"github.com/labstack/echo/v4"
)

// MessageResponse is the body of every successful write.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListPostsRequest carries no input.
type ListPostsRequest struct{}

// Validate always succeeds; listing takes no input.
func (r *ListPostsRequest) Validate() error { return nil }

// CreatePostRequest is accepted as JSON or as a url-encoded form.
type CreatePostRequest struct {
	Title   string `json:"title" form:"title" validate:"required"`
	Message string `json:"message" form:"message" validate:"required"`
}

// Validate checks that title and message are present.
func (r *CreatePostRequest) Validate() error { return validation.Struct(r) }

// ValidationMessage is the client message when title or message is missing or malformed.
func (r *CreatePostRequest) ValidationMessage() string { return service.MsgMissingCreate }

// UpdatePostRequest replaces both fields of the post identified by ID.
// An ID of 0 counts as missing.
type UpdatePostRequest struct {
	ID      int64  `json:"id" form:"id" validate:"required"`
	Title   string `json:"title" form:"title" validate:"required"`
	Message string `json:"message" form:"message" validate:"required"`
}

// Validate checks that id, title and message are present.
func (r *UpdatePostRequest) Validate() error { return validation.Struct(r) }

// ValidationMessage is the client message when id, title or message is missing or malformed.
func (r *UpdatePostRequest) ValidationMessage() string { return service.MsgMissingUpdate }

// DeletePostRequest identifies the post to remove. ID may also come from the
// query string.
type DeletePostRequest struct {
	ID int64 `json:"id" form:"id" query:"id" validate:"required"`
}

// Validate checks that id is present.
func (r *DeletePostRequest) Validate() error { return validation.Struct(r) }

// ValidationMessage is the client message when id is missing or malformed.
func (r *DeletePostRequest) ValidationMessage() string { return service.MsgMissingDelete }

// PostHandler exposes the four post operations.
type PostHandler struct {
	Handler
	postService *service.PostService
}

// NewPostHandler constructs a PostHandler.
func NewPostHandler(s *server.Server, postService *service.PostService) *PostHandler {
	return &PostHandler{
		Handler:     NewHandler(s),
		postService: postService,
	}
}

// ListPosts returns every post ordered by id.
func (h *PostHandler) ListPosts(c echo.Context, _ *ListPostsRequest) ([]model.Post, error) {
	return h.postService.List(c.Request().Context())
}

// CreatePost inserts a post.
func (h *PostHandler) CreatePost(c echo.Context, req *CreatePostRequest) (*MessageResponse, error) {
	if err := h.postService.Create(c.Request().Context(), req.Title, req.Message); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: service.MsgPostInserted}, nil
}

// UpdatePost replaces title and message of a post.
func (h *PostHandler) UpdatePost(c echo.Context, req *UpdatePostRequest) (*MessageResponse, error) {
	if err := h.postService.Update(c.Request().Context(), req.ID, req.Title, req.Message); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: service.MsgPostUpdated}, nil
}

// DeletePost removes a post.
func (h *PostHandler) DeletePost(c echo.Context, req *DeletePostRequest) (*MessageResponse, error) {
	if err := h.postService.Delete(c.Request().Context(), req.ID); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: service.MsgPostDeleted}, nil
}
