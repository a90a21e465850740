package domain

import (
	"math"
	"strings"
)

// Book is a single catalog record.
type Book struct {
	ID     int64
	Title  string
	Author string
	Genre  string
	Price  float64
}

// NewBook holds the fields of a book that has not been stored yet.
type NewBook struct {
	Title  string
	Author string
	Genre  string
	Price  float64
}

// Validate enforces the record invariants for creation.
func (b NewBook) Validate() error {
	if err := requireText("title", b.Title); err != nil {
		return err
	}

	if err := requireText("author", b.Author); err != nil {
		return err
	}

	if err := requireText("genre", b.Genre); err != nil {
		return err
	}

	return requirePositive("price", b.Price)
}

// BookUpdate is a partial update. Nil fields are left untouched.
type BookUpdate struct {
	Title  *string
	Author *string
	Genre  *string
	Price  *float64
}

// IsEmpty reports whether no field is supplied.
func (u BookUpdate) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.Genre == nil && u.Price == nil
}

// Validate enforces the record invariants on the supplied fields only.
func (u BookUpdate) Validate() error {
	for field, v := range map[string]*string{"title": u.Title, "author": u.Author, "genre": u.Genre} {
		if v == nil {
			continue
		}

		if err := requireText(field, *v); err != nil {
			return err
		}
	}

	if u.Price != nil {
		return requirePositive("price", *u.Price)
	}

	return nil
}

// Apply copies the supplied fields onto b.
func (u BookUpdate) Apply(b *Book) {
	if u.Title != nil {
		b.Title = *u.Title
	}

	if u.Author != nil {
		b.Author = *u.Author
	}

	if u.Genre != nil {
		b.Genre = *u.Genre
	}

	if u.Price != nil {
		b.Price = *u.Price
	}
}

// MaxDiscountPercent is the exclusive upper bound of a discount percentage.
const MaxDiscountPercent = 100

// ValidateDiscount checks that pct lies in [0, 100).
func ValidateDiscount(pct float64) error {
	if math.IsNaN(pct) || pct < 0 || pct >= MaxDiscountPercent {
		return NewValidationErrorWithValue("discount", "must be at least 0 and less than 100", pct)
	}

	return nil
}

// DiscountedTotal sums the prices of books and applies a percentage discount,
// rounded to two decimal places. An empty list yields 0.
func DiscountedTotal(books []Book, pct float64) float64 {
	var total float64
	for _, b := range books {
		total += b.Price
	}

	return roundCents(total * (1 - pct/100))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return NewValidationError(field, "must not be empty")
	}

	return nil
}

func requirePositive(field string, v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return NewValidationErrorWithValue(field, "must be a positive number", v)
	}

	return nil
}
