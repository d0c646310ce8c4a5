package repository

import (
	"github.com/deppfellow/posts-api/internal/database"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Posts *PostRepository
}

// NewRepositories constructs the repository container on top of a shared executor.
func NewRepositories(exec *database.Executor) *Repositories {
	return &Repositories{
		Posts: NewPostRepository(exec),
	}
}
