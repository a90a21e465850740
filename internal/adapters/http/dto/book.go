package dto

import (
	"strconv"

	"github.com/jsamuelsen/book-service/internal/domain"
)

// MessageBookDeleted is returned after a successful delete.
const MessageBookDeleted = "Book deleted successfully"

// CreateBookRequest is the body of POST /books.
type CreateBookRequest struct {
	Title  string   `json:"title"  validate:"required,notempty"`
	Author string   `json:"author" validate:"required,notempty"`
	Genre  string   `json:"genre"  validate:"required,notempty"`
	Price  *float64 `json:"price"  validate:"required,gt=0"`
}

// FieldMessages implements FieldMessages.
func (CreateBookRequest) FieldMessages() map[string]string {
	return map[string]string{
		"title.required":  "Title is required",
		"title.notempty":  "Title is required",
		"author.required": "Author is required",
		"author.notempty": "Author is required",
		"genre.required":  "Genre is required",
		"genre.notempty":  "Genre is required",
		"price.required":  "Price is required",
		"price.gt":        "Price must be a positive number",
	}
}

// ToDomain converts the request to a domain.NewBook.
func (r CreateBookRequest) ToDomain() domain.NewBook {
	nb := domain.NewBook{
		Title:  r.Title,
		Author: r.Author,
		Genre:  r.Genre,
	}

	if r.Price != nil {
		nb.Price = *r.Price
	}

	return nb
}

// UpdateBookRequest is the body of PUT /books/:id. Absent fields are left unchanged.
type UpdateBookRequest struct {
	Title  *string  `json:"title"  validate:"omitempty,notempty"`
	Author *string  `json:"author" validate:"omitempty,notempty"`
	Genre  *string  `json:"genre"  validate:"omitempty,notempty"`
	Price  *float64 `json:"price"  validate:"omitempty,gt=0"`
}

// FieldMessages implements FieldMessages.
func (UpdateBookRequest) FieldMessages() map[string]string {
	return map[string]string{
		"title.notempty":  "Title cannot be empty if provided",
		"author.notempty": "Author cannot be empty if provided",
		"genre.notempty":  "Genre cannot be empty if provided",
		"price.gt":        "Price must be a positive number",
	}
}

// ToDomain converts the request to a domain.BookUpdate.
func (r UpdateBookRequest) ToDomain() domain.BookUpdate {
	return domain.BookUpdate{
		Title:  r.Title,
		Author: r.Author,
		Genre:  r.Genre,
		Price:  r.Price,
	}
}

// BookIDParam is the :id path parameter.
type BookIDParam struct {
	ID string `uri:"id" json:"id" validate:"required,posint"`
}

// FieldMessages implements FieldMessages.
func (BookIDParam) FieldMessages() map[string]string {
	return map[string]string{
		"id.required": "ID must be a positive integer",
		"id.posint":   "ID must be a positive integer",
	}
}

// Value returns the validated id. Call only after validation succeeded.
func (p BookIDParam) Value() int64 {
	id, _ := strconv.ParseInt(p.ID, 10, 64)
	return id
}

// DiscountQuery is the query string of GET /books/discounted-price.
type DiscountQuery struct {
	Genre    string   `form:"genre"    json:"genre"    validate:"required,notempty"`
	Discount *float64 `form:"discount" json:"discount" validate:"required,gt=0,lt=100"`
}

// FieldMessages implements FieldMessages.
func (DiscountQuery) FieldMessages() map[string]string {
	return map[string]string{
		"genre.required":    "Genre is required",
		"genre.notempty":    "Genre is required",
		"discount.required": "Discount is required",
		"discount.gt":       "Discount must be between 0 and 100",
		"discount.lt":       "Discount must be between 0 and 100",
	}
}

// BookResponse is the JSON representation of a book.
type BookResponse struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  string  `json:"genre"`
	Price  float64 `json:"price"`
}

// NewBookResponse converts a domain Book to its response form.
func NewBookResponse(b domain.Book) BookResponse {
	return BookResponse{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		Genre:  b.Genre,
		Price:  b.Price,
	}
}

// NewBookListResponse converts books to a non-nil response slice.
func NewBookListResponse(books []domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, NewBookResponse(b))
	}

	return out
}

// DiscountResponse is the result of a discounted total calculation.
type DiscountResponse struct {
	Genre              string  `json:"genre"`
	DiscountPercentage float64 `json:"discount_percentage"`
	TotalDiscountPrice float64 `json:"total_discount_price"`
}

// MessageResponse is a body carrying only a message.
type MessageResponse struct {
	Message string `json:"message"`
}
