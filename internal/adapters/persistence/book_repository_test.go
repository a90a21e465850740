package persistence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/book-service/internal/adapters/persistence/migrations"
	"github.com/jsamuelsen/book-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openTestDB opens a migrated SQLite database in a temp dir.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()

	db, err := Open(ctx, Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "books.db"),
		Logger: discardLogger(),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(ctx, db.SQL, db.Driver, discardLogger()))

	return db
}

func newTestRepository(t *testing.T) *BookRepository {
	t.Helper()

	repo, err := NewBookRepository(openTestDB(t))
	require.NoError(t, err)

	return repo
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})

	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestBookRepository_CreateAndFindByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, domain.NewBook{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: 9.99})
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	second, err := repo.Create(ctx, domain.NewBook{Title: "Emma", Author: "Jane Austen", Genre: "Romance", Price: 7.5})
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, second.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	book, ok := found.Value()
	require.True(t, ok)
	assert.Equal(t, created, *book)
}

func TestBookRepository_CreateReturnsStoredPrice(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, price := range []float64{9.999, 0.001, 1e12} {
		t.Run(fmt.Sprint(price), func(t *testing.T) {
			created, err := repo.Create(ctx, domain.NewBook{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: price})
			require.NoError(t, err)
			assert.InDelta(t, price, created.Price, 1e-9)

			found, err := repo.FindByID(ctx, created.ID)
			require.NoError(t, err)

			book, ok := found.Value()
			require.True(t, ok)
			assert.Equal(t, created, *book)
		})
	}
}

func TestBookRepository_FindByID_Missing(t *testing.T) {
	repo := newTestRepository(t)

	found, err := repo.FindByID(context.Background(), 12345)

	require.NoError(t, err)
	assert.False(t, found.IsFound())
}

func TestBookRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, domain.NewBook{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: 9.99})
	require.NoError(t, err)

	t.Run("partial update changes only supplied fields", func(t *testing.T) {
		found, err := repo.Update(ctx, created.ID, domain.BookUpdate{Title: strPtr("Dune Messiah"), Price: floatPtr(12.5)})
		require.NoError(t, err)

		book, ok := found.Value()
		require.True(t, ok)
		assert.Equal(t, "Dune Messiah", book.Title)
		assert.Equal(t, "Frank Herbert", book.Author)
		assert.Equal(t, "Fiction", book.Genre)
		assert.InDelta(t, 12.5, book.Price, 1e-9)
	})

	t.Run("empty update returns the current record", func(t *testing.T) {
		found, err := repo.Update(ctx, created.ID, domain.BookUpdate{})
		require.NoError(t, err)

		book, ok := found.Value()
		require.True(t, ok)
		assert.Equal(t, "Dune Messiah", book.Title)
	})

	t.Run("missing id", func(t *testing.T) {
		found, err := repo.Update(ctx, 9999, domain.BookUpdate{Title: strPtr("Ghost")})
		require.NoError(t, err)
		assert.False(t, found.IsFound())
	})
}

func TestBookRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, domain.NewBook{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: 9.99})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found.IsFound())

	// Deleting again is a no-op.
	require.NoError(t, repo.Delete(ctx, created.ID))
}

func TestBookRepository_FindByGenre_IsExactAndCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, nb := range []domain.NewBook{
		{Title: "A", Author: "X", Genre: "Fiction", Price: 50},
		{Title: "B", Author: "Y", Genre: "Fiction", Price: 75},
		{Title: "C", Author: "Z", Genre: "fiction", Price: 10},
		{Title: "D", Author: "W", Genre: "Science Fiction", Price: 20},
	} {
		_, err := repo.Create(ctx, nb)
		require.NoError(t, err)
	}

	books, err := repo.FindByGenre(ctx, "Fiction")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.InDelta(t, 112.5, domain.DiscountedTotal(books, 10), 1e-9)

	none, err := repo.FindByGenre(ctx, "Poetry")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	empty, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := range 3 {
		_, err := repo.Create(ctx, domain.NewBook{Title: fmt.Sprintf("Book %d", i), Author: "A", Genre: "G", Price: 1})
		require.NoError(t, err)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBookRepository_StorageFailure(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo, err := NewBookRepository(db)
	require.NoError(t, err)

	require.NoError(t, db.Close())

	tests := []struct {
		op      string
		message string
		call    func() error
	}{
		{
			op:      "create",
			message: "Database error while creating the book",
			call: func() error {
				_, err := repo.Create(ctx, domain.NewBook{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: 9.99})
				return err
			},
		},
		{
			op:      "find_by_id",
			message: "Database error while fetching the book by ID",
			call: func() error {
				_, err := repo.FindByID(ctx, 1)
				return err
			},
		},
		{
			op:      "update",
			message: "Database error while updating the book",
			call: func() error {
				_, err := repo.Update(ctx, 1, domain.BookUpdate{Title: strPtr("Emma")})
				return err
			},
		},
		{
			op:      "delete",
			message: "Database error while deleting the book",
			call:    func() error { return repo.Delete(ctx, 1) },
		},
		{
			op:      "find_by_genre",
			message: "Database error while fetching books by genre",
			call: func() error {
				_, err := repo.FindByGenre(ctx, "Fiction")
				return err
			},
		},
		{
			op:      "find_all",
			message: "Database error while fetching all books",
			call: func() error {
				_, err := repo.FindAll(ctx)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			err := tt.call()

			var se *domain.StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.op, se.Op)
			assert.Equal(t, tt.message, se.Error())
			assert.True(t, domain.IsStorage(err))
			assert.NotNil(t, se.Err)
		})
	}
}

func TestBookRepository_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	const workers = 20

	ids := make([]int64, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error {
			book, err := repo.Create(gctx, domain.NewBook{
				Title:  fmt.Sprintf("Book %d", i),
				Author: "Author",
				Genre:  "Concurrent",
				Price:  float64(i + 1),
			})
			ids[i] = book.ID

			return err
		})
	}

	require.NoError(t, g.Wait())

	seen := make(map[int64]struct{}, workers)
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	assert.Len(t, seen, workers, "every create must get a unique id")

	books, err := repo.FindByGenre(ctx, "Concurrent")
	require.NoError(t, err)
	assert.Len(t, books, workers)
}

func TestHealthChecker(t *testing.T) {
	db := openTestDB(t)
	checker := NewHealthChecker(db)

	assert.Equal(t, "database", checker.Name())
	require.NoError(t, checker.Check(context.Background()))

	require.NoError(t, db.Close())
	require.Error(t, checker.Check(context.Background()))
}
