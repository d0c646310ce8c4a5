// Package repository handles all interactions with the database.
//
// It contains the SQL statements and methods to fetch, persist, update or
// remove data, keeping SQL out of the service layer.
package repository
