// Package model contains the domain models shared by the repository,
// service and handler layers.
package model

// Post is the single managed entity. ID is assigned by the store on insert
// and never changes afterwards.
type Post struct {
	ID      int64  `json:"id" db:"id"`
	Title   string `json:"title" db:"title"`
	Message string `json:"message" db:"message"`
}
