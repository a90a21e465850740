// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/jsamuelsen/book-service/internal/domain"
	"github.com/jsamuelsen/book-service/internal/platform/logging"
	"github.com/jsamuelsen/book-service/internal/ports"
)

// Operation-specific messages returned to callers.
const (
	msgCreateFailed   = "Failed to create the book"
	msgFetchFailed    = "Failed to fetch the book"
	msgUpdateFailed   = "Failed to update the book"
	msgDeleteFailed   = "Failed to delete the book"
	msgGenreFailed    = "Failed to fetch books by genre"
	msgListFailed     = "Failed to fetch all books"
	msgDiscountFailed = "Failed to calculate total discounted price"
)

// BookService orchestrates book use cases on top of a BookRepository.
// Every failure is returned as a *domain.ServiceError whose Kind tells the
// caller whether the book was missing, the input was invalid, or storage failed.
type BookService struct {
	repo   ports.BookRepository
	logger *slog.Logger
}

// BookServiceConfig contains the dependencies of the book service.
type BookServiceConfig struct {
	Repository ports.BookRepository
	Logger     *slog.Logger
}

// NewBookService creates a book service. It panics when no repository is given.
func NewBookService(cfg BookServiceConfig) *BookService {
	if cfg.Repository == nil {
		panic("app: BookServiceConfig.Repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BookService{
		repo:   cfg.Repository,
		logger: logger,
	}
}

// CreateBook validates and stores a new book.
func (s *BookService) CreateBook(ctx context.Context, nb domain.NewBook) (domain.Book, error) {
	const op = "CreateBook"

	if err := nb.Validate(); err != nil {
		return domain.Book{}, domain.NewServiceError(op, domain.KindValidation, msgCreateFailed, err)
	}

	book, err := s.repo.Create(ctx, nb)
	if err != nil {
		return domain.Book{}, s.fail(ctx, op, domain.KindStorage, msgCreateFailed, err)
	}

	s.log(ctx).InfoContext(ctx, "book created", slog.Int64("book_id", book.ID))

	return book, nil
}

// GetBookByID returns the book with the given ID.
// A missing book is a ServiceError of kind not_found.
func (s *BookService) GetBookByID(ctx context.Context, id int64) (domain.Book, error) {
	const op = "GetBookByID"

	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Book{}, s.fail(ctx, op, domain.KindStorage, msgFetchFailed, err)
	}

	book, ok := found.Value()
	if !ok {
		return domain.Book{}, notFound(op, msgFetchFailed, id)
	}

	return *book, nil
}

// UpdateBook applies a partial update and returns the stored result.
func (s *BookService) UpdateBook(ctx context.Context, id int64, update domain.BookUpdate) (domain.Book, error) {
	const op = "UpdateBook"

	if err := update.Validate(); err != nil {
		return domain.Book{}, domain.NewServiceError(op, domain.KindValidation, msgUpdateFailed, err)
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return domain.Book{}, s.fail(ctx, op, domain.KindStorage, msgUpdateFailed, err)
	}

	book, ok := updated.Value()
	if !ok {
		return domain.Book{}, notFound(op, msgUpdateFailed, id)
	}

	s.log(ctx).InfoContext(ctx, "book updated", slog.Int64("book_id", id))

	return *book, nil
}

// DeleteBook removes a book and returns the record as it was before deletion.
// The repository's Delete is not called when the book does not exist.
func (s *BookService) DeleteBook(ctx context.Context, id int64) (domain.Book, error) {
	const op = "DeleteBook"

	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Book{}, s.fail(ctx, op, domain.KindStorage, msgDeleteFailed, err)
	}

	book, ok := found.Value()
	if !ok {
		return domain.Book{}, notFound(op, msgDeleteFailed, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Book{}, s.fail(ctx, op, domain.KindStorage, msgDeleteFailed, err)
	}

	s.log(ctx).InfoContext(ctx, "book deleted", slog.Int64("book_id", id))

	return *book, nil
}

// GetBooksByGenre returns every book whose genre matches exactly.
// No match yields an empty, non-nil slice.
func (s *BookService) GetBooksByGenre(ctx context.Context, genre string) ([]domain.Book, error) {
	books, err := s.repo.FindByGenre(ctx, genre)
	if err != nil {
		return nil, s.fail(ctx, "GetBooksByGenre", domain.KindStorage, msgGenreFailed, err)
	}

	return nonNil(books), nil
}

// GetAllBooks returns every stored book.
func (s *BookService) GetAllBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, "GetAllBooks", domain.KindStorage, msgListFailed, err)
	}

	return nonNil(books), nil
}

// GetTotalDiscountedPriceByGenre sums the prices of every book in genre and
// applies pct percent off, rounded to cents. Returns 0 when nothing matches.
func (s *BookService) GetTotalDiscountedPriceByGenre(ctx context.Context, genre string, pct float64) (float64, error) {
	const op = "GetTotalDiscountedPriceByGenre"

	if err := domain.ValidateDiscount(pct); err != nil {
		return 0, domain.NewServiceError(op, domain.KindValidation, msgDiscountFailed, err)
	}

	books, err := s.repo.FindByGenre(ctx, genre)
	if err != nil {
		return 0, s.fail(ctx, op, domain.KindStorage, msgDiscountFailed, err)
	}

	total := domain.DiscountedTotal(books, pct)

	s.log(ctx).DebugContext(ctx, "discounted total calculated",
		slog.String("genre", genre),
		slog.Int("books", len(books)),
		slog.Float64("discount_percentage", pct),
		slog.Float64("total", total),
	)

	return total, nil
}

// fail logs err at the point of catch and wraps it as a ServiceError.
func (s *BookService) fail(ctx context.Context, op string, kind domain.ErrorKind, message string, err error) error {
	s.log(ctx).ErrorContext(ctx, message,
		slog.String("op", op),
		slog.Any("error", err),
	)

	return domain.NewServiceError(op, kind, message, err)
}

func (s *BookService) log(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}

func notFound(op, message string, id int64) error {
	return domain.NewServiceError(op, domain.KindNotFound, message,
		domain.NewNotFoundError("book", strconv.FormatInt(id, 10)))
}

func nonNil(books []domain.Book) []domain.Book {
	if books == nil {
		return []domain.Book{}
	}

	return books
}
