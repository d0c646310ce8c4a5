package service

import (
	"github.com/deppfellow/posts-api/internal/repository"
)

// Services groups every service the handlers depend on.
type Services struct {
	Post *PostService
}

// NewServices builds the services on top of the repositories.
func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Post: NewPostService(repos.Posts),
	}
}
