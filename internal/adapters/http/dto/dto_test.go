package dto

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/book-service/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ptr[T any](v T) *T { return &v }

// TestNewErrorResponse tests creating a basic error response.
func TestNewErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		want    *ErrorResponse
	}{
		{
			name:    "not found",
			code:    ErrorCodeNotFound,
			message: "Book not found",
			want:    &ErrorResponse{Code: ErrorCodeNotFound, Message: "Book not found"},
		},
		{
			name:    "internal",
			code:    ErrorCodeInternal,
			message: "Failed to fetch all books",
			want:    &ErrorResponse{Code: ErrorCodeInternal, Message: "Failed to fetch all books"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewErrorResponse(tt.code, tt.message))
		})
	}
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	details := map[string]string{"title": "Title is required"}

	got := NewErrorResponseWithDetails(ErrorCodeValidation, MessageValidation, details)

	assert.Equal(t, ErrorCodeValidation, got.Code)
	assert.Equal(t, MessageValidation, got.Message)
	assert.Equal(t, details, got.Details)
}

func TestErrorResponse_Builders(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeInternal, "Failed to create the book").
		WithCause("Database error while creating the book").
		WithTraceID("trace-1")

	assert.Equal(t, "Database error while creating the book", resp.Cause)
	assert.Equal(t, "trace-1", resp.TraceID)
}

// The "error" key is part of the wire contract.
func TestErrorResponse_JSON(t *testing.T) {
	tests := []struct {
		name string
		resp *ErrorResponse
		want string
	}{
		{
			name: "message only",
			resp: &ErrorResponse{Message: "Book not found"},
			want: `{"message":"Book not found"}`,
		},
		{
			name: "message and cause",
			resp: &ErrorResponse{Message: "Internal Server Error", Cause: "boom"},
			want: `{"message":"Internal Server Error","error":"boom"}`,
		},
		{
			name: "all fields",
			resp: &ErrorResponse{
				Message: "Validation failed",
				Code:    ErrorCodeValidation,
				Details: map[string]string{"price": "Price is required"},
				TraceID: "abc",
			},
			want: `{"message":"Validation failed","code":"VALIDATION_ERROR","details":{"price":"Price is required"},"traceId":"abc"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.resp)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"UNKNOWN", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestMapError(t *testing.T) {
	driverErr := errors.New("pq: relation \"books\" does not exist")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
		wantCause  string
		wantDetail map[string]string
	}{
		{
			name: "service not found",
			err: domain.NewServiceError("GetBookByID", domain.KindNotFound, "Failed to fetch the book",
				domain.NewNotFoundError("book", "7")),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
			wantMsg:    "Book not found",
		},
		{
			name:       "bare sentinel not found",
			err:        domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
			wantMsg:    MessageResourceNotFound,
		},
		{
			name: "service validation",
			err: domain.NewServiceError("GetTotalDiscountedPriceByGenre", domain.KindValidation,
				"Failed to calculate total discounted price",
				domain.NewValidationError("discount", "must be at least 0 and less than 100")),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeValidation,
			wantMsg:    "Failed to calculate total discounted price",
			wantCause:  "validation failed for discount: must be at least 0 and less than 100",
			wantDetail: map[string]string{"discount": "must be at least 0 and less than 100"},
		},
		{
			name: "storage failure hides the driver error",
			err: domain.NewServiceError("GetAllBooks", domain.KindStorage, "Failed to fetch all books",
				domain.NewStorageError("find_all", "Database error while fetching all books", driverErr)),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternal,
			wantMsg:    "Failed to fetch all books",
			wantCause:  "Database error while fetching all books",
		},
		{
			name: "deadline exceeded",
			err: domain.NewServiceError("GetAllBooks", domain.KindStorage, "Failed to fetch all books",
				domain.NewStorageError("find_all", "Database error while fetching all books", context.DeadlineExceeded)),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   ErrorCodeTimeout,
			wantMsg:    MessageTimeout,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternal,
			wantMsg:    MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, tt.wantCause, resp.Cause)
			assert.Equal(t, tt.wantDetail, resp.Details)
			assert.NotContains(t, resp.Cause, "pq:")
		})
	}
}

// TestGetTraceID tests trace ID resolution order.
func TestGetTraceID(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:  trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	})

	tests := []struct {
		name         string
		setupContext func(*gin.Context)
		want         string
	}{
		{
			name: "trace ID in context",
			setupContext: func(c *gin.Context) {
				c.Set("trace_id", "context-trace-123")
			},
			want: "context-trace-123",
		},
		{
			name: "trace ID in header",
			setupContext: func(c *gin.Context) {
				c.Request.Header.Set("X-Request-ID", "header-trace-456")
			},
			want: "header-trace-456",
		},
		{
			name: "trace ID in context takes precedence",
			setupContext: func(c *gin.Context) {
				c.Set("trace_id", "context-trace-123")
				c.Request.Header.Set("X-Request-ID", "header-trace-456")
			},
			want: "context-trace-123",
		},
		{
			name: "active span wins over header",
			setupContext: func(c *gin.Context) {
				c.Request = c.Request.WithContext(trace.ContextWithSpanContext(context.Background(), spanCtx))
				c.Request.Header.Set("X-Request-ID", "header-trace-456")
			},
			want: "0102030405060708090a0b0c0d0e0f10",
		},
		{
			name:         "no trace ID",
			setupContext: func(*gin.Context) {},
			want:         "",
		},
		{
			name: "trace ID in context but wrong type",
			setupContext: func(c *gin.Context) {
				c.Set("trace_id", 12345)
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			tt.setupContext(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/books/1", nil)
	c.Set("trace_id", "trace-xyz")

	HandleError(c, domain.NewServiceError("GetBookByID", domain.KindStorage, "Failed to fetch the book",
		domain.NewStorageError("find_by_id", "Database error while fetching the book by ID", errors.New("conn refused"))))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to fetch the book", resp.Message)
	assert.Equal(t, "Database error while fetching the book by ID", resp.Cause)
	assert.Equal(t, "trace-xyz", resp.TraceID)
	assert.NotContains(t, w.Body.String(), "conn refused")
}

func TestHandleErrorAs(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name: "server error names the action",
			err: domain.NewServiceError("GetAllBooks", domain.KindStorage, "Failed to fetch all books",
				domain.NewStorageError("find_all", "Database error while fetching all books", errors.New("driver: bad conn"))),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"Failed to retrieve books","error":"Failed to fetch all books","code":"INTERNAL_ERROR"}`,
		},
		{
			name: "not found is unchanged",
			err: domain.NewServiceError("DeleteBook", domain.KindNotFound, "Failed to delete the book",
				domain.NewNotFoundError("book", "3")),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Book not found","code":"NOT_FOUND"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/books", nil)

			HandleErrorAs(c, tt.err, "Failed to retrieve books")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestHandleBindError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   string
		wantDetail map[string]string
	}{
		{
			name:     "malformed json",
			body:     `{"title":`,
			wantCode: ErrorCodeBadRequest,
		},
		{
			name:     "wrong type",
			body:     `{"title":"Dune","author":"Frank Herbert","genre":"Fiction","price":"cheap"}`,
			wantCode: ErrorCodeBadRequest,
		},
		{
			name:     "missing fields use request messages",
			body:     `{"title":"  ","price":0}`,
			wantCode: ErrorCodeValidation,
			wantDetail: map[string]string{
				"title":  "Title is required",
				"author": "Author is required",
				"genre":  "Genre is required",
				"price":  "Price must be a positive number",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req CreateBookRequest
			err := BindAndValidate(c, &req)
			require.Error(t, err)

			HandleBindError(c, req, err)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantDetail, resp.Details)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestCreateBookRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        CreateBookRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: ptr(9.99)},
		},
		{
			name:       "price missing",
			req:        CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction"},
			wantFields: []string{"price"},
		},
		{
			name:       "price negative",
			req:        CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: ptr(-1.0)},
			wantFields: []string{"price"},
		},
		{
			name:       "everything missing",
			req:        CreateBookRequest{},
			wantFields: []string{"title", "author", "genre", "price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			got := ValidationErrorsFor(tt.req, err)
			assert.Len(t, got, len(tt.wantFields))

			for _, f := range tt.wantFields {
				assert.Contains(t, got, f)
			}
		})
	}
}

func TestCreateBookRequest_ToDomain(t *testing.T) {
	req := CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: ptr(9.99)}

	assert.Equal(t, domain.NewBook{Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: 9.99}, req.ToDomain())
}

func TestUpdateBookRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateBookRequest
		wantMsg map[string]string
	}{
		{
			name: "empty update is valid",
			req:  UpdateBookRequest{},
		},
		{
			name: "partial update",
			req:  UpdateBookRequest{Price: ptr(12.5)},
		},
		{
			name:    "blank title",
			req:     UpdateBookRequest{Title: ptr("  ")},
			wantMsg: map[string]string{"title": "Title cannot be empty if provided"},
		},
		{
			name:    "zero price",
			req:     UpdateBookRequest{Price: ptr(0.0)},
			wantMsg: map[string]string{"price": "Price must be a positive number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantMsg == nil {
				require.NoError(t, err)
				return
			}

			assert.Equal(t, tt.wantMsg, ValidationErrorsFor(tt.req, err))
		})
	}
}

func TestUpdateBookRequest_ToDomain(t *testing.T) {
	req := UpdateBookRequest{Genre: ptr("Poetry")}

	update := req.ToDomain()

	require.NotNil(t, update.Genre)
	assert.Equal(t, "Poetry", *update.Genre)
	assert.Nil(t, update.Title)
	assert.Nil(t, update.Price)
}

func TestBookIDParam(t *testing.T) {
	tests := []struct {
		id      string
		valid   bool
		wantVal int64
	}{
		{id: "1", valid: true, wantVal: 1},
		{id: "42", valid: true, wantVal: 42},
		{id: "0"},
		{id: "-3"},
		{id: "abc"},
		{id: "1.5"},
		{id: ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p := BookIDParam{ID: tt.id}
			err := Validate(p)

			if !tt.valid {
				require.Error(t, err)
				assert.Equal(t, map[string]string{"id": "ID must be a positive integer"}, ValidationErrorsFor(p, err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantVal, p.Value())
		})
	}
}

func TestDiscountQuery_Bind(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr error
		wantMsg map[string]string
	}{
		{name: "valid", query: "?genre=Fiction&discount=10"},
		{
			name:    "missing genre",
			query:   "?discount=10",
			wantErr: ErrValidation,
			wantMsg: map[string]string{"genre": "Genre is required"},
		},
		{
			name:    "missing discount",
			query:   "?genre=Fiction",
			wantErr: ErrValidation,
			wantMsg: map[string]string{"discount": "Discount is required"},
		},
		{
			name:    "discount of 100",
			query:   "?genre=Fiction&discount=100",
			wantErr: ErrValidation,
			wantMsg: map[string]string{"discount": "Discount must be between 0 and 100"},
		},
		{
			name:    "discount of 0",
			query:   "?genre=Fiction&discount=0",
			wantErr: ErrValidation,
			wantMsg: map[string]string{"discount": "Discount must be between 0 and 100"},
		},
		{
			name:    "discount not numeric",
			query:   "?genre=Fiction&discount=lots",
			wantErr: ErrBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/books/discounted-price"+tt.query, nil)

			var q DiscountQuery
			err := BindQueryAndValidate(c, &q)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "Fiction", q.Genre)
				assert.InDelta(t, 10.0, *q.Discount, 1e-9)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantMsg != nil {
				assert.Equal(t, tt.wantMsg, ValidationErrorsFor(q, err))
			}
		})
	}
}

func TestNewBookListResponse(t *testing.T) {
	assert.NotNil(t, NewBookListResponse(nil))
	assert.Empty(t, NewBookListResponse(nil))

	got := NewBookListResponse([]domain.Book{{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: 9.99}})

	assert.Equal(t, []BookResponse{{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Price: 9.99}}, got)
}

func TestValidator_Shared(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}

func TestValidationMessage_Fallbacks(t *testing.T) {
	type shelf struct {
		Label    string   `json:"label"    validate:"min=3"`
		Code     string   `json:"code"     validate:"max=4"`
		Section  string   `json:"section"  validate:"oneof=A B"`
		Capacity int      `json:"capacity" validate:"gte=1,lte=500"`
		Slot     string   `json:"slot"     validate:"posint"`
		Owner    string   `json:"owner"    validate:"notempty"`
		Weight   *float64 `json:"weight"   validate:"required"`
		Spine    string   `json:"spine"    validate:"uppercase"`
	}

	err := Validate(shelf{Label: "ab", Code: "toolong", Section: "C", Capacity: 900, Slot: "x", Owner: " ", Spine: "dune"})
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, map[string]string{
		"label":    "must be at least 3 characters",
		"code":     "must be at most 4 characters",
		"section":  "must be one of: A B",
		"capacity": "must be less than or equal to 500",
		"slot":     "must be a positive integer",
		"owner":    "must not be empty",
		"weight":   "this field is required",
		"spine":    "failed validation: uppercase",
	}, ValidationErrorsFor(nil, err))
}

func TestValidationErrorsFor_NotAValidationError(t *testing.T) {
	assert.Empty(t, ValidationErrorsFor(CreateBookRequest{}, errors.New("boom")))
}

func TestBindURIAndValidate(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{id: "7"},
		{id: "0", wantErr: true},
		{id: "seven", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/books/"+tt.id, nil)
			c.Params = gin.Params{{Key: "id", Value: tt.id}}

			var p BookIDParam
			err := BindURIAndValidate(c, &p)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(7), p.Value())
		})
	}
}
