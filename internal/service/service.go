// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// input from the handlers, applies the domain rules and calls repository
// methods to interact with the data.
package service
