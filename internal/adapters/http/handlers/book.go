package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/book-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/book-service/internal/app"
)

// Failure messages reported as "message" on server errors.
const (
	msgCreateFailed   = "Failed to create the book"
	msgGetFailed      = "Failed to retrieve the book"
	msgUpdateFailed   = "Failed to update the book"
	msgDeleteFailed   = "Failed to delete the book"
	msgListFailed     = "Failed to retrieve books"
	msgDiscountFailed = "Failed to calculate discounted price"
)

// BookHandler handles the /books endpoints.
type BookHandler struct {
	service *app.BookService
}

// NewBookHandler creates a new book handler.
func NewBookHandler(service *app.BookService) *BookHandler {
	return &BookHandler{
		service: service,
	}
}

// CreateBook handles POST /books.
//
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Param book body dto.CreateBookRequest true "Book"
// @Success 201 {object} dto.BookResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, req, err)
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleErrorAs(c, err, msgCreateFailed)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBookResponse(book))
}

// GetAllBooks handles GET /books.
//
// @Summary List all books
// @Tags books
// @Produce json
// @Success 200 {array} dto.BookResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /books [get]
func (h *BookHandler) GetAllBooks(c *gin.Context) {
	books, err := h.service.GetAllBooks(c.Request.Context())
	if err != nil {
		dto.HandleErrorAs(c, err, msgListFailed)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookListResponse(books))
}

// GetBookByID handles GET /books/:id.
//
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} dto.BookResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /books/{id} [get]
func (h *BookHandler) GetBookByID(c *gin.Context) {
	id, ok := bindBookID(c)
	if !ok {
		return
	}

	book, err := h.service.GetBookByID(c.Request.Context(), id)
	if err != nil {
		dto.HandleErrorAs(c, err, msgGetFailed)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookResponse(book))
}

// UpdateBook handles PUT /books/:id. Only the supplied fields change.
//
// @Summary Update a book
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param book body dto.UpdateBookRequest true "Fields to change"
// @Success 200 {object} dto.BookResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := bindBookID(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, req, err)
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), id, req.ToDomain())
	if err != nil {
		dto.HandleErrorAs(c, err, msgUpdateFailed)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookResponse(book))
}

// DeleteBook handles DELETE /books/:id.
//
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := bindBookID(c)
	if !ok {
		return
	}

	if _, err := h.service.DeleteBook(c.Request.Context(), id); err != nil {
		dto.HandleErrorAs(c, err, msgDeleteFailed)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: dto.MessageBookDeleted})
}

// GetDiscountedPrice handles GET /books/discounted-price?genre=&discount=.
// It returns the total price of the genre's books after the discount.
//
// @Summary Total discounted price of a genre
// @Tags books
// @Produce json
// @Param genre query string true "Genre, matched exactly"
// @Param discount query number true "Discount percentage, exclusive 0..100"
// @Success 200 {object} dto.DiscountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /books/discounted-price [get]
func (h *BookHandler) GetDiscountedPrice(c *gin.Context) {
	var q dto.DiscountQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleBindError(c, q, err)
		return
	}

	total, err := h.service.GetTotalDiscountedPriceByGenre(c.Request.Context(), q.Genre, *q.Discount)
	if err != nil {
		dto.HandleErrorAs(c, err, msgDiscountFailed)
		return
	}

	c.JSON(http.StatusOK, dto.DiscountResponse{
		Genre:              q.Genre,
		DiscountPercentage: *q.Discount,
		TotalDiscountPrice: total,
	})
}

// RegisterBookRoutes registers the /books routes on rg. write is applied
// to the mutating routes only.
func (h *BookHandler) RegisterBookRoutes(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	books := rg.Group("/books")

	books.GET("", h.GetAllBooks)
	books.GET("/discounted-price", h.GetDiscountedPrice)
	books.GET("/:id", h.GetBookByID)

	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clip(write), handler)
	}

	books.POST("", guarded(h.CreateBook)...)
	books.PUT("/:id", guarded(h.UpdateBook)...)
	books.DELETE("/:id", guarded(h.DeleteBook)...)
}

// bindBookID binds and validates :id, writing a 400 when it is invalid.
func bindBookID(c *gin.Context) (int64, bool) {
	var p dto.BookIDParam
	if err := dto.BindURIAndValidate(c, &p); err != nil {
		dto.HandleBindError(c, p, err)
		return 0, false
	}

	return p.Value(), true
}
