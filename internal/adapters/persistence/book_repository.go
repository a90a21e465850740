package persistence

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jsamuelsen/book-service/internal/domain"
	"github.com/jsamuelsen/book-service/internal/ports"
)

// instrumentationName is used for OpenTelemetry tracer and meter.
const instrumentationName = "github.com/jsamuelsen/book-service/internal/adapters/persistence"

// Fixed storage failure messages, one per operation.
const (
	msgCreate      = "Database error while creating the book"
	msgFindByID    = "Database error while fetching the book by ID"
	msgUpdate      = "Database error while updating the book"
	msgDelete      = "Database error while deleting the book"
	msgFindByGenre = "Database error while fetching books by genre"
	msgFindAll     = "Database error while fetching all books"
)

// Compile-time interface check.
var _ ports.BookRepository = (*BookRepository)(nil)

// BookRepository is the gorm implementation of ports.BookRepository.
// Each method issues a single statement (Update issues one plus a re-read).
type BookRepository struct {
	db       *gorm.DB
	system   string
	tracer   trace.Tracer
	duration metric.Float64Histogram
}

// NewBookRepository creates a repository over an open database.
func NewBookRepository(db *DB) (*BookRepository, error) {
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"db.client.operation.duration",
		metric.WithDescription("Duration of book repository operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	return &BookRepository{
		db:       db.Gorm,
		system:   db.Driver,
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
	}, nil
}

// Create inserts a book and returns the stored row, read back with
// RETURNING so column conversions show up in the result.
func (r *BookRepository) Create(ctx context.Context, book domain.NewBook) (domain.Book, error) {
	ctx, done := r.start(ctx, "create")

	rec := newBookRecord(book)
	if err := r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&rec).Error; err != nil {
		return domain.Book{}, done(domain.NewStorageError("create", msgCreate, err))
	}

	done(nil)

	return rec.toDomain(), nil
}

// FindAll returns every book ordered by ID.
func (r *BookRepository) FindAll(ctx context.Context) ([]domain.Book, error) {
	ctx, done := r.start(ctx, "find_all")

	var records []bookRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, done(domain.NewStorageError("find_all", msgFindAll, err))
	}

	done(nil)

	return toDomainList(records), nil
}

// FindByID looks up a book by ID.
func (r *BookRepository) FindByID(ctx context.Context, id int64) (domain.Lookup[domain.Book], error) {
	ctx, done := r.start(ctx, "find_by_id", attribute.Int64("book.id", id))

	found, err := r.findByID(ctx, id)
	if err != nil {
		return domain.NotFound[domain.Book](), done(domain.NewStorageError("find_by_id", msgFindByID, err))
	}

	done(nil)

	return found, nil
}

// Update applies the supplied fields and re-reads the row.
// An empty update skips the UPDATE statement and only re-reads.
func (r *BookRepository) Update(ctx context.Context, id int64, update domain.BookUpdate) (domain.Lookup[domain.Book], error) {
	ctx, done := r.start(ctx, "update", attribute.Int64("book.id", id))

	if !update.IsEmpty() {
		err := r.db.WithContext(ctx).
			Model(&bookRecord{}).
			Where("id = ?", id).
			Updates(updateColumns(update)).Error
		if err != nil {
			return domain.NotFound[domain.Book](), done(domain.NewStorageError("update", msgUpdate, err))
		}
	}

	found, err := r.findByID(ctx, id)
	if err != nil {
		return domain.NotFound[domain.Book](), done(domain.NewStorageError("update", msgUpdate, err))
	}

	done(nil)

	return found, nil
}

// Delete removes the book with the given ID. Deleting a missing ID is a no-op.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	ctx, done := r.start(ctx, "delete", attribute.Int64("book.id", id))

	if err := r.db.WithContext(ctx).Delete(&bookRecord{}, id).Error; err != nil {
		return done(domain.NewStorageError("delete", msgDelete, err))
	}

	done(nil)

	return nil
}

// FindByGenre returns the books whose genre matches exactly (case-sensitive).
func (r *BookRepository) FindByGenre(ctx context.Context, genre string) ([]domain.Book, error) {
	ctx, done := r.start(ctx, "find_by_genre", attribute.String("book.genre", genre))

	var records []bookRecord

	err := r.db.WithContext(ctx).
		Where("genre = ?", genre).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, done(domain.NewStorageError("find_by_genre", msgFindByGenre, err))
	}

	done(nil)

	return toDomainList(records), nil
}

func (r *BookRepository) findByID(ctx context.Context, id int64) (domain.Lookup[domain.Book], error) {
	var records []bookRecord

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&records).Error
	if err != nil {
		return domain.NotFound[domain.Book](), err
	}

	if len(records) == 0 {
		return domain.NotFound[domain.Book](), nil
	}

	return domain.Found(records[0].toDomain()), nil
}

// start opens a span for op and returns a func that ends it, records the
// operation duration, and passes err through.
func (r *BookRepository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error) error) {
	startTime := time.Now()

	attrs = append(attrs,
		attribute.String("db.system", r.system),
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", "books"),
	)

	ctx, span := r.tracer.Start(ctx, "BookRepository."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) error {
		outcome := "ok"
		if err != nil {
			outcome = "error"

			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		r.duration.Record(ctx, time.Since(startTime).Seconds(),
			metric.WithAttributes(
				attribute.String("db.operation", op),
				attribute.String("outcome", outcome),
			),
		)

		span.End()

		return err
	}
}
