// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never ORM models or driver types
//   - Failures are *domain.StorageError; an expected absence is a Lookup, not an error
package ports

import (
	"context"

	"github.com/jsamuelsen/book-service/internal/domain"
)

// BookRepository is the persistence contract for books.
//
// Every failure is reported as a *domain.StorageError carrying a fixed,
// operation-specific message, with the driver error reachable via errors.Is/As.
type BookRepository interface {
	// Create inserts a book and returns it with its store-assigned ID.
	Create(ctx context.Context, book domain.NewBook) (domain.Book, error)

	// FindAll returns every book in storage order.
	FindAll(ctx context.Context) ([]domain.Book, error)

	// FindByID looks up a single book. A missing ID is NotFound, not an error.
	FindByID(ctx context.Context, id int64) (domain.Lookup[domain.Book], error)

	// Update applies the supplied fields to the book with the given ID and
	// returns the stored result. A missing ID is NotFound, not an error.
	Update(ctx context.Context, id int64, update domain.BookUpdate) (domain.Lookup[domain.Book], error)

	// Delete removes the book with the given ID. It is a no-op when absent.
	Delete(ctx context.Context, id int64) error

	// FindByGenre returns the books whose genre equals genre exactly.
	FindByGenre(ctx context.Context, genre string) ([]domain.Book, error)
}
