package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookcatalog/internal/httpx"

	"github.com/shopspring/decimal"
)

// HTTPHandler is the thin JSON adapter over the catalog service.
type HTTPHandler struct {
	service *Service
}

// NewHTTPHandler creates a new catalog HTTP handler.
func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// CreateBook handles POST /books
func (h *HTTPHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var in CreateBookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, string(CodeInvalidParameter), "invalid request body", nil)
		return
	}
	book, err := h.service.CreateBook(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreatedWithRequest(r, w, book)
}

// ListBooks handles GET /books
func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	books, total, err := h.service.ListBooks(r.Context(), Page{Limit: pageSize, Offset: (page - 1) * pageSize})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.JSONSuccessWithRequest(r, w, books, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// GetBook handles GET /books/{id}
func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBook(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, book, nil)
}

// GetBookByISBN handles GET /books/isbn/{isbn}
func (h *HTTPHandler) GetBookByISBN(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBookByISBN(r.Context(), r.PathValue("isbn"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, book, nil)
}

// UpdateBook handles PUT /books/{id}
func (h *HTTPHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var in UpdateBookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, string(CodeInvalidParameter), "invalid request body", nil)
		return
	}
	book, err := h.service.UpdateBook(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, book, nil)
}

// FilterBooks handles GET /books/filter (structured AND search)
func (h *HTTPHandler) FilterBooks(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	books, err := h.service.SearchBooks(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, books, map[string]any{"count": len(books)})
}

// SearchBooks handles GET /books/search (title OR author keyword search)
func (h *HTTPHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	books, err := h.service.SearchByTitleOrAuthor(r.Context(), query.Get("title"), query.Get("author"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, books, map[string]any{"count": len(books)})
}

// AvailableBooks handles GET /books/available
func (h *HTTPHandler) AvailableBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.AvailableBooks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, books, nil)
}

// BooksByAuthor handles GET /books/by-author?author=
func (h *HTTPHandler) BooksByAuthor(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.BooksByAuthor(r.Context(), r.URL.Query().Get("author"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, books, nil)
}

// BooksByPriceRange handles GET /books/price-range?min=&max=
func (h *HTTPHandler) BooksByPriceRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	min, err := optionalDecimal(query.Get("min"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	max, err := optionalDecimal(query.Get("max"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	books, err := h.service.BooksByPriceRange(r.Context(), min, max)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, books, nil)
}

// BooksByCategory handles GET /books/category/{categoryId}
func (h *HTTPHandler) BooksByCategory(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.BooksByCategory(r.Context(), r.PathValue("categoryId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, books, nil)
}

// CreateCategory handles POST /categories
func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in CreateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, string(CodeInvalidParameter), "invalid request body", nil)
		return
	}
	category, err := h.service.CreateCategory(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreatedWithRequest(r, w, category)
}

// ListCategories handles GET /categories
func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, categories, nil)
}

// DeleteCategory handles DELETE /categories/{id}
func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var be *Error
	if !errors.As(err, &be) {
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return
	}

	status := http.StatusInternalServerError
	switch be.Code {
	case CodeBookNotFound, CodeCategoryNotFound:
		status = http.StatusNotFound
	case CodeDuplicateISBN, CodeInvalidStatusTransition, CodeCategoryHasBooks, CodeCategoryExists:
		status = http.StatusConflict
	case CodeInvalidParameter:
		status = http.StatusBadRequest
	}
	httpx.JSONErrorWithRequest(r, w, status, string(be.Code), be.Message, nil)
}

func filterFromQuery(r *http.Request) (Filter, error) {
	query := r.URL.Query()

	f := Filter{
		TitleContains:  query.Get("title"),
		AuthorContains: query.Get("author"),
	}

	var err error
	if f.MinPrice, err = optionalDecimal(query.Get("min_price")); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = optionalDecimal(query.Get("max_price")); err != nil {
		return Filter{}, err
	}

	if raw := query.Get("status"); raw != "" {
		st, ok := ParseStatus(raw)
		if !ok {
			return Filter{}, errInvalidParameter("unknown status: " + raw)
		}
		f.Status = &st
	}

	if raw := query.Get("category_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.CategoryIDs = append(f.CategoryIDs, id)
			}
		}
	}
	return f, nil
}

func optionalDecimal(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errInvalidParameter("invalid decimal: " + raw)
	}
	return &d, nil
}
