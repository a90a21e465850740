package persistence

import "github.com/jsamuelsen/book-service/internal/domain"

// bookRecord is the gorm model for the books table.
// The schema itself is owned by the migrations package.
type bookRecord struct {
	ID     int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Title  string  `gorm:"column:title;not null"`
	Author string  `gorm:"column:author;not null"`
	Genre  string  `gorm:"column:genre;not null;index"`
	Price  float64 `gorm:"column:price;not null"`
}

func (bookRecord) TableName() string { return "books" }

func (r bookRecord) toDomain() domain.Book {
	return domain.Book{
		ID:     r.ID,
		Title:  r.Title,
		Author: r.Author,
		Genre:  r.Genre,
		Price:  r.Price,
	}
}

func newBookRecord(b domain.NewBook) bookRecord {
	return bookRecord{
		Title:  b.Title,
		Author: b.Author,
		Genre:  b.Genre,
		Price:  b.Price,
	}
}

// updateColumns returns the column assignments for the supplied fields only.
func updateColumns(u domain.BookUpdate) map[string]any {
	cols := make(map[string]any, 4)

	if u.Title != nil {
		cols["title"] = *u.Title
	}

	if u.Author != nil {
		cols["author"] = *u.Author
	}

	if u.Genre != nil {
		cols["genre"] = *u.Genre
	}

	if u.Price != nil {
		cols["price"] = *u.Price
	}

	return cols
}

func toDomainList(records []bookRecord) []domain.Book {
	books := make([]domain.Book, len(records))
	for i, r := range records {
		books[i] = r.toDomain()
	}

	return books
}
