// Package repository defines the sentinel errors every persistence
// implementation maps its driver failures onto. The store contracts
// themselves live beside the code that consumes them, in the domain
// packages, so this package stays import-free of domain types.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when inserting an entity that already exists
	ErrDuplicate = errors.New("duplicate entity")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
